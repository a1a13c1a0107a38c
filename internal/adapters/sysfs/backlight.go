package sysfs

import (
	"context"
	"path/filepath"
)

// Backlight reads and writes a /sys/class/backlight/<name> directory
// This implements the ports.Backlight interface
type Backlight struct {
	dir string
}

// NewBacklight creates a backlight for a device directory
func NewBacklight(dir string) *Backlight {
	return &Backlight{dir: dir}
}

// Name returns the kernel device name
func (b *Backlight) Name() string {
	return filepath.Base(b.dir)
}

// ReadMax reads max_brightness
func (b *Backlight) ReadMax(ctx context.Context) (int, error) {
	return readFileInt(filepath.Join(b.dir, "max_brightness"))
}

// Read reads brightness
func (b *Backlight) Read(ctx context.Context) (int, error) {
	return readFileInt(filepath.Join(b.dir, "brightness"))
}

// Write writes brightness. This needs write access to the attribute,
// usually root or a udev rule.
func (b *Backlight) Write(ctx context.Context, level int) error {
	return writeFileInt(filepath.Join(b.dir, "brightness"), level)
}
