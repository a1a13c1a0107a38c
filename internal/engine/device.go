package engine

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/Josinosle/TABPP/internal/domain"
	"github.com/Josinosle/TABPP/internal/ports"
)

// BacklightDevice bounds every write to [0, max] and remembers the last known level.
// max is read once at construction and never changes.
type BacklightDevice struct {
	name    string
	dev     ports.Backlight
	max     int
	last    atomic.Int64
	written atomic.Bool
}

// NewBacklightDevice reads the device maximum and current level
func NewBacklightDevice(ctx context.Context, name string, dev ports.Backlight) (*BacklightDevice, error) {
	max, err := dev.ReadMax(ctx)
	if err != nil {
		return nil, &domain.DeviceReadError{Device: name, Err: err}
	}
	if max <= 0 {
		return nil, &domain.DeviceReadError{Device: name, Err: domain.ErrInvalidMaxBrightness}
	}

	b := &BacklightDevice{
		name: name,
		dev:  dev,
		max:  max,
	}
	if cur, err := dev.Read(ctx); err == nil {
		b.last.Store(int64(domain.ClampBrightness(cur, max)))
	} else {
		log.Warn().Err(err).Str("device", name).Msg("failed to read initial brightness")
	}

	log.Info().
		Str("device", name).
		Int("max", max).
		Int64("level", b.last.Load()).
		Msg("opened backlight")
	return b, nil
}

// Max returns the device maximum
func (b *BacklightDevice) Max() int {
	return b.max
}

// SetBrightness clamps level and writes it. On failure the previous level is
// assumed to still be in effect.
func (b *BacklightDevice) SetBrightness(ctx context.Context, level int) error {
	level = domain.ClampBrightness(level, b.max)
	if err := b.dev.Write(ctx, level); err != nil {
		return &domain.DeviceWriteError{Device: b.name, Level: level, Err: err}
	}
	b.last.Store(int64(level))
	b.written.Store(true)
	return nil
}

// GetBrightness returns the device-reported level. If the device cannot be
// read after this process has written to it, the last written level is used.
func (b *BacklightDevice) GetBrightness(ctx context.Context) (int, error) {
	level, err := b.dev.Read(ctx)
	if err != nil {
		if b.written.Load() {
			log.Debug().Err(err).Str("device", b.name).Msg("using last written brightness")
			return int(b.last.Load()), nil
		}
		return 0, &domain.DeviceReadError{Device: b.name, Err: err}
	}
	level = domain.ClampBrightness(level, b.max)
	b.last.Store(int64(level))
	return level, nil
}

// Last returns the last known level without touching the device
func (b *BacklightDevice) Last() int {
	return int(b.last.Load())
}

// AmbientSensor performs fresh illuminance reads; nothing is cached
type AmbientSensor struct {
	name string
	dev  ports.AmbientLightSensor
}

// NewAmbientSensor wraps a sensor port
func NewAmbientSensor(name string, dev ports.AmbientLightSensor) *AmbientSensor {
	return &AmbientSensor{name: name, dev: dev}
}

// ReadIlluminance returns the raw reading or a DeviceReadError
func (s *AmbientSensor) ReadIlluminance(ctx context.Context) (int, error) {
	lux, err := s.dev.Read(ctx)
	if err != nil {
		return 0, &domain.DeviceReadError{Device: s.name, Err: err}
	}
	if lux < 0 {
		return 0, &domain.DeviceReadError{Device: s.name, Err: domain.ErrNegativeIlluminance}
	}
	return lux, nil
}
