package logind

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	busName     = "org.freedesktop.login1"
	// DefaultSession resolves to the caller's own session. A system service
	// has none, so it must name a seat's active session instead.
	DefaultSession = "/org/freedesktop/login1/session/self"
	setMethod   = "org.freedesktop.login1.Session.SetBrightness"
)

// LevelReader reads the backlight levels logind cannot report
type LevelReader interface {
	ReadMax(ctx context.Context) (int, error)
	Read(ctx context.Context) (int, error)
}

// Backlight writes brightness through systemd-logind, which lets an
// unprivileged session user change it without a udev rule. Reads go to sysfs.
// This implements the ports.Backlight interface
type Backlight struct {
	LevelReader
	session   dbus.BusObject
	subsystem string
	name      string
}

// NewBacklight creates a logind-backed backlight for the kernel device name
// in the "backlight" subsystem. logind only accepts SetBrightness on a
// session object; empty session selects DefaultSession.
func NewBacklight(conn *dbus.Conn, session, name string, reader LevelReader) *Backlight {
	if session == "" {
		session = DefaultSession
	}
	return &Backlight{
		LevelReader: reader,
		session:     conn.Object(busName, dbus.ObjectPath(session)),
		subsystem:   "backlight",
		name:        name,
	}
}

// Write asks logind to set the level
func (b *Backlight) Write(ctx context.Context, level int) error {
	if level < 0 {
		return fmt.Errorf("negative level %d", level)
	}
	call := b.session.CallWithContext(ctx, setMethod, 0, b.subsystem, b.name, uint32(level))
	if call.Err != nil {
		return fmt.Errorf("logind SetBrightness %s/%s: %w", b.subsystem, b.name, call.Err)
	}
	return nil
}
