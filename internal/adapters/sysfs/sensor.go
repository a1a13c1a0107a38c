package sysfs

import (
	"context"
	"path/filepath"
)

// DefaultIlluminanceAttribute is the IIO attribute read by default
const DefaultIlluminanceAttribute = "in_illuminance_raw"

// LightSensor reads an IIO illuminance attribute such as
// /sys/bus/iio/devices/iio:device0/in_illuminance_raw
// This implements the ports.AmbientLightSensor interface
type LightSensor struct {
	path string
}

// NewLightSensor creates a sensor for attribute inside the IIO device dir.
// An empty attribute selects DefaultIlluminanceAttribute.
func NewLightSensor(dir, attribute string) *LightSensor {
	if attribute == "" {
		attribute = DefaultIlluminanceAttribute
	}
	return &LightSensor{path: filepath.Join(dir, attribute)}
}

// Read returns the raw illuminance value
func (s *LightSensor) Read(ctx context.Context) (int, error) {
	return readFileInt(s.path)
}

// Close is a no-op; the attribute is reopened on every read
func (s *LightSensor) Close() error {
	return nil
}
