package upower

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"

	"github.com/Josinosle/TABPP/internal/domain"
)

const (
	busName         = "org.freedesktop.UPower"
	objectPath      = "/org/freedesktop/UPower"
	upowerInterface = "org.freedesktop.UPower"
	deviceInterface = "org.freedesktop.UPower.Device"
	propsInterface  = "org.freedesktop.DBus.Properties"
	propsChanged    = propsInterface + ".PropertiesChanged"

	// DisplayDevice is the composite device UPower exposes for the whole system
	DisplayDevice = "/org/freedesktop/UPower/devices/DisplayDevice"
)

// Source delivers UPower property changes for every enumerated device and
// answers battery State queries.
// This implements ports.PowerEventSource and ports.BatteryStateReader
type Source struct {
	conn    *dbus.Conn
	object  func(path dbus.ObjectPath) dbus.BusObject
	battery dbus.ObjectPath
}

// NewSource creates a source on conn. batteryPath is the device queried at
// startup; empty selects DisplayDevice.
func NewSource(conn *dbus.Conn, batteryPath string) *Source {
	if batteryPath == "" {
		batteryPath = DisplayDevice
	}
	return &Source{
		conn: conn,
		object: func(path dbus.ObjectPath) dbus.BusObject {
			return conn.Object(busName, path)
		},
		battery: dbus.ObjectPath(batteryPath),
	}
}

// BatteryPath returns the device whose State is queried and tracked
func (s *Source) BatteryPath() string {
	return string(s.battery)
}

// Devices lists the device paths UPower currently knows about
func (s *Source) Devices(ctx context.Context) ([]dbus.ObjectPath, error) {
	var devices []dbus.ObjectPath
	call := s.object(objectPath).CallWithContext(ctx, upowerInterface+".EnumerateDevices", 0)
	if err := call.Store(&devices); err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return devices, nil
}

// BatteryState reads the State property of the battery device
func (s *Source) BatteryState(ctx context.Context) (domain.PowerState, error) {
	var v dbus.Variant
	call := s.object(s.battery).CallWithContext(ctx, propsInterface+".Get", 0, deviceInterface, "State")
	if err := call.Store(&v); err != nil {
		return domain.StateUnknown, fmt.Errorf("get %s State: %w", s.battery, err)
	}
	code, ok := variantInt(v)
	if !ok {
		return domain.StateUnknown, fmt.Errorf("get %s State: unexpected type %s", s.battery, v.Signature())
	}
	return domain.ParsePowerState(code), nil
}

// Subscribe adds a PropertiesChanged match for every device plus the battery
// device and forwards decoded events until ctx is done or the connection closes.
func (s *Source) Subscribe(ctx context.Context) (<-chan domain.PowerEvent, error) {
	enumerated, err := s.Devices(ctx)
	if err != nil {
		return nil, err
	}
	devices := watchPaths(enumerated, s.battery)

	var matched [][]dbus.MatchOption
	for _, path := range devices {
		opts := []dbus.MatchOption{
			dbus.WithMatchObjectPath(path),
			dbus.WithMatchInterface(propsInterface),
			dbus.WithMatchMember("PropertiesChanged"),
			dbus.WithMatchArg(0, deviceInterface),
		}
		if err := s.conn.AddMatchSignal(opts...); err != nil {
			for _, m := range matched {
				s.conn.RemoveMatchSignal(m...)
			}
			return nil, fmt.Errorf("add match for %s: %w", path, err)
		}
		matched = append(matched, opts)
		log.Debug().Str("path", string(path)).Msg("watching power device")
	}

	signals := make(chan *dbus.Signal, 10)
	s.conn.Signal(signals)

	out := make(chan domain.PowerEvent)
	go func() {
		defer close(out)
		defer func() {
			s.conn.RemoveSignal(signals)
			for _, m := range matched {
				if err := s.conn.RemoveMatchSignal(m...); err != nil {
					log.Debug().Err(err).Msg("failed to remove match")
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					log.Warn().Msg("system bus connection closed")
					return
				}
				ev, ok := decodePropertiesChanged(sig)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	log.Info().Int("devices", len(devices)).Msg("listening for power state changes")
	return out, nil
}

// watchPaths returns devices with battery appended when it is missing.
// EnumerateDevices never lists DisplayDevice.
func watchPaths(devices []dbus.ObjectPath, battery dbus.ObjectPath) []dbus.ObjectPath {
	for _, path := range devices {
		if path == battery {
			return devices
		}
	}
	return append(devices[:len(devices):len(devices)], battery)
}

// decodePropertiesChanged extracts Online and State from a UPower device
// PropertiesChanged signal. Signals carrying neither are dropped.
func decodePropertiesChanged(sig *dbus.Signal) (domain.PowerEvent, bool) {
	if sig == nil || sig.Name != propsChanged || len(sig.Body) < 2 {
		return domain.PowerEvent{}, false
	}
	if iface, ok := sig.Body[0].(string); !ok || iface != deviceInterface {
		return domain.PowerEvent{}, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return domain.PowerEvent{}, false
	}

	ev := domain.PowerEvent{
		Path:     string(sig.Path),
		Received: time.Now(),
	}
	if v, ok := changed["Online"]; ok {
		if online, ok := v.Value().(bool); ok {
			ev.Online = &online
		}
	}
	if v, ok := changed["State"]; ok {
		if code, ok := variantInt(v); ok {
			state := domain.ParsePowerState(code)
			ev.State = &state
		}
	}
	return ev, ev.HasChanges()
}

// variantInt accepts any integer-typed variant; UPower uses uint32
func variantInt(v dbus.Variant) (int64, bool) {
	switch n := v.Value().(type) {
	case uint32:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case int64:
		return n, true
	case uint16:
		return int64(n), true
	case int16:
		return int64(n), true
	case byte:
		return int64(n), true
	}
	return 0, false
}
