package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeIlluminance indicates the sensor reported a value below zero
	ErrNegativeIlluminance = errors.New("illuminance cannot be negative")

	// ErrInvalidMaxBrightness indicates the backlight reported a useless maximum
	ErrInvalidMaxBrightness = errors.New("max brightness must be positive")

	// ErrTransitionNotFound indicates the journal holds no transitions yet
	ErrTransitionNotFound = errors.New("transition not found")

	// ErrEventStreamClosed indicates the power event source stopped delivering
	ErrEventStreamClosed = errors.New("power event stream closed")
)

// DeviceReadError reports a failed read from the backlight or ambient sensor.
type DeviceReadError struct {
	Device string
	Err    error
}

func (e *DeviceReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Device, e.Err)
}

func (e *DeviceReadError) Unwrap() error { return e.Err }

// DeviceWriteError reports a failed backlight write. The device is assumed to
// still hold its previous level.
type DeviceWriteError struct {
	Device string
	Level  int
	Err    error
}

func (e *DeviceWriteError) Error() string {
	return fmt.Sprintf("write %s level %d: %v", e.Device, e.Level, e.Err)
}

func (e *DeviceWriteError) Unwrap() error { return e.Err }

// ProfileApplyError reports that the external profile switcher failed.
type ProfileApplyError struct {
	Profile string
	Err     error
}

func (e *ProfileApplyError) Error() string {
	return fmt.Sprintf("apply profile %q: %v", e.Profile, e.Err)
}

func (e *ProfileApplyError) Unwrap() error { return e.Err }
