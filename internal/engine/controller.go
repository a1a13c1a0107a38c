package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Josinosle/TABPP/internal/domain"
)

// Reference tuning used by DefaultControllerConfig
const (
	// DefaultScale is the backlight levels per raw illuminance unit
	DefaultScale = 200
	// DefaultSteps is the number of writes in one transition
	DefaultSteps = 10
	// DefaultStepDelay is the pause between transition writes
	DefaultStepDelay = 50 * time.Millisecond
)

// ControllerConfig tunes the ambient-to-brightness mapping and the transition
type ControllerConfig struct {
	Scale     int           // backlight levels per illuminance unit
	Steps     int           // linear increments per transition
	StepDelay time.Duration // pause between increments
}

// DefaultControllerConfig returns the reference tuning
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Scale:     DefaultScale,
		Steps:     DefaultSteps,
		StepDelay: DefaultStepDelay,
	}
}

// BrightnessController derives backlight levels from ambient light.
// It does no locking: the coordinator guarantees a single writer at a time.
type BrightnessController struct {
	backlight *BacklightDevice
	sensor    *AmbientSensor
	cfg       ControllerConfig
}

// NewBrightnessController creates a controller over an opened backlight and sensor
func NewBrightnessController(backlight *BacklightDevice, sensor *AmbientSensor, cfg ControllerConfig) *BrightnessController {
	return &BrightnessController{
		backlight: backlight,
		sensor:    sensor,
		cfg:       cfg,
	}
}

// SetBrightness writes level, clamped to the device range
func (c *BrightnessController) SetBrightness(ctx context.Context, level int) error {
	return c.backlight.SetBrightness(ctx, level)
}

// GetBrightness returns the current backlight level
func (c *BrightnessController) GetBrightness(ctx context.Context) (int, error) {
	return c.backlight.GetBrightness(ctx)
}

// MaxBrightness returns the device maximum
func (c *BrightnessController) MaxBrightness() int {
	return c.backlight.Max()
}

// LastBrightness returns the last known level without device I/O
func (c *BrightnessController) LastBrightness() int {
	return c.backlight.Last()
}

// ApplyAmbient runs one sampling and transition cycle. If the target equals
// the current level nothing is written. A cancelled ctx stops the transition
// between steps, leaving the last written level in place.
func (c *BrightnessController) ApplyAmbient(ctx context.Context) error {
	lux, err := c.sensor.ReadIlluminance(ctx)
	if err != nil {
		return err
	}

	current, err := c.backlight.GetBrightness(ctx)
	if err != nil {
		return err
	}

	target := domain.AmbientTarget(lux, c.cfg.Scale, c.backlight.Max())
	if target == current {
		log.Debug().Int("lux", lux).Int("level", current).Msg("brightness already at target")
		return nil
	}

	log.Debug().
		Int("lux", lux).
		Int("from", current).
		Int("to", target).
		Msg("adjusting brightness")

	return c.transition(ctx, current, target)
}

// transition writes the intermediate levels from current to target
func (c *BrightnessController) transition(ctx context.Context, current, target int) error {
	levels := domain.TransitionSteps(current, target, c.cfg.Steps, c.backlight.Max())

	for i, level := range levels {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.backlight.SetBrightness(ctx, level); err != nil {
			return err
		}
		if i == len(levels)-1 || c.cfg.StepDelay <= 0 {
			continue
		}

		timer := time.NewTimer(c.cfg.StepDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
