package domain

import (
	"strconv"
	"time"
)

// PowerState is the UPower device State property
type PowerState uint32

const (
	StateUnknown PowerState = iota
	StateCharging
	StateDischarging
	StateEmpty
	StateFullyCharged
	StatePendingCharge
	StatePendingDischarge
)

// ParsePowerState maps a raw UPower state code to a PowerState.
// Codes outside 0..6 are reported as StateUnknown.
func ParsePowerState(code int64) PowerState {
	if code < int64(StateUnknown) || code > int64(StatePendingDischarge) {
		return StateUnknown
	}
	return PowerState(code)
}

// String returns the human-readable name used in log lines
func (s PowerState) String() string {
	switch s {
	case StateCharging:
		return "Charging"
	case StateDischarging:
		return "Discharging"
	case StateEmpty:
		return "Empty"
	case StateFullyCharged:
		return "Fully charged"
	case StatePendingCharge:
		return "Pending charge"
	case StatePendingDischarge:
		return "Pending discharge"
	case StateUnknown:
		return "Unknown"
	}
	return "Unknown(" + strconv.FormatUint(uint64(s), 10) + ")"
}

// OnExternalPower reports whether the state puts the machine on the AC branch.
func (s PowerState) OnExternalPower() bool {
	return s == StateCharging || s == StateFullyCharged
}

// OnBattery reports whether the state puts the machine on the battery branch.
func (s PowerState) OnBattery() bool {
	return s == StateDischarging || s == StateEmpty
}

// PowerEvent is one PropertiesChanged notification from a power device.
// Either field may be absent.
type PowerEvent struct {
	Path     string
	Online   *bool
	State    *PowerState
	Received time.Time
}

// HasChanges reports whether the event carries any property the
// coordinator understands.
func (e PowerEvent) HasChanges() bool {
	return e.Online != nil || e.State != nil
}
