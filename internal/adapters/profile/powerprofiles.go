package profile

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	ppdBusName   = "net.hadess.PowerProfiles"
	ppdPath      = "/net/hadess/PowerProfiles"
	ppdInterface = "net.hadess.PowerProfiles"
	propsGet     = "org.freedesktop.DBus.Properties.Get"
	propsSet     = "org.freedesktop.DBus.Properties.Set"
)

// PowerProfiles selects a power-profiles-daemon profile ("performance",
// "balanced", "power-saver") over the system bus.
// This implements the ports.ProfileApplier interface
type PowerProfiles struct {
	obj dbus.BusObject
}

// NewPowerProfiles creates an applier on conn
func NewPowerProfiles(conn *dbus.Conn) *PowerProfiles {
	return &PowerProfiles{obj: conn.Object(ppdBusName, dbus.ObjectPath(ppdPath))}
}

// Apply sets ActiveProfile
func (p *PowerProfiles) Apply(ctx context.Context, profile string) error {
	call := p.obj.CallWithContext(ctx, propsSet, 0, ppdInterface, "ActiveProfile", dbus.MakeVariant(profile))
	if call.Err != nil {
		return fmt.Errorf("set ActiveProfile: %w", call.Err)
	}
	return nil
}

// Available lists the profile names the daemon offers
func (p *PowerProfiles) Available(ctx context.Context) ([]string, error) {
	var v dbus.Variant
	if err := p.obj.CallWithContext(ctx, propsGet, 0, ppdInterface, "Profiles").Store(&v); err != nil {
		return nil, fmt.Errorf("get Profiles: %w", err)
	}
	profiles, ok := v.Value().([]map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("get Profiles: unexpected type %s", v.Signature())
	}

	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if name, ok := p["Profile"].Value().(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}
