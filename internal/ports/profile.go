package ports

import (
	"context"
)

// ProfileApplier selects a named power-management profile
// This is a PORT - adapters (tuned-adm command, power-profiles-daemon, Mock) implement it
type ProfileApplier interface {
	Apply(ctx context.Context, profile string) error
}
