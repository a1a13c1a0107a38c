package ports

import (
	"context"

	"github.com/Josinosle/TABPP/internal/domain"
)

// PowerEventSource delivers property changes for every power device
// This is a PORT - adapters (UPower over D-Bus, Mock) implement it
type PowerEventSource interface {
	// Subscribe starts delivery. The channel is closed once ctx is done or
	// the source fails.
	Subscribe(ctx context.Context) (<-chan domain.PowerEvent, error)
}

// BatteryStateReader answers the one synchronous query the coordinator makes
// at startup.
type BatteryStateReader interface {
	BatteryState(ctx context.Context) (domain.PowerState, error)
}
