package domain

import (
	"context"
	"time"
)

// TransitionRepository defines operations for keeping coordinator decisions
// This is a PORT - the in-memory journal implements it
type TransitionRepository interface {
	// SaveTransition records a transition and assigns its ID
	SaveTransition(ctx context.Context, t *Transition) error

	// GetLatestTransition retrieves the most recent transition
	GetLatestTransition(ctx context.Context) (*Transition, error)

	// GetTransitionsSince retrieves transitions at or after since, oldest first.
	// A zero since returns everything held.
	GetTransitionsSince(ctx context.Context, since time.Time) ([]*Transition, error)
}
