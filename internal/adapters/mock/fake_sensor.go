package mock

import (
	"context"
	"math/rand"
	"sync"
)

// FakeSensor simulates an ambient light sensor for development
// This implements the ports.AmbientLightSensor interface
type FakeSensor struct {
	mu        sync.Mutex
	baseValue int
	variation int
	err       error
	reads     int
}

// NewFakeSensor creates a sensor that returns realistic values
// baseValue: average raw illuminance
// variation: +/- range (e.g., 1 means baseValue-1 .. baseValue+1)
func NewFakeSensor(baseValue, variation int) *FakeSensor {
	return &FakeSensor{
		baseValue: baseValue,
		variation: variation,
	}
}

// Read returns a simulated illuminance reading
func (s *FakeSensor) Read(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.err != nil {
		return 0, s.err
	}

	value := s.baseValue
	if s.variation > 0 {
		value += rand.Intn(2*s.variation+1) - s.variation
	}

	// Ensure non-negative
	if value < 0 {
		value = 0
	}
	return value, nil
}

// Set changes the base value and removes any variation
func (s *FakeSensor) Set(value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseValue = value
	s.variation = 0
}

// FailWith makes subsequent reads return err; nil restores normal reads
func (s *FakeSensor) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Reads returns how many times Read was called
func (s *FakeSensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Close is a no-op for fake sensor
func (s *FakeSensor) Close() error {
	return nil
}
