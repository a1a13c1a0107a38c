package ports

import (
	"context"
)

// Backlight defines access to a single display backlight
// This is a PORT - adapters (sysfs, logind, Mock) implement it
type Backlight interface {
	// ReadMax returns the device maximum level
	ReadMax(ctx context.Context) (int, error)

	// Read returns the level currently reported by the device
	Read(ctx context.Context) (int, error)

	// Write sets the level. Callers clamp before writing.
	Write(ctx context.Context, level int) error
}
