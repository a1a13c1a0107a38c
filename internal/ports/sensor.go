package ports

import (
	"context"
)

// AmbientLightSensor defines how to read ambient light
// This is a PORT - adapters (sysfs IIO, Mock) implement it
type AmbientLightSensor interface {
	// Read returns the current raw illuminance. Units are device-defined.
	Read(ctx context.Context) (int, error)

	// Close releases any resources
	Close() error
}
