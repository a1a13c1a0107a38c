package engine

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/Josinosle/TABPP/internal/domain"
	"github.com/Josinosle/TABPP/internal/ports"
)

// ProfileSwitcher selects between the AC and battery profiles. Every select
// runs the applier, since the profile may have been changed outside the daemon.
type ProfileSwitcher struct {
	applier ports.ProfileApplier
	high    string
	low     string
	active  atomic.String
}

// NewProfileSwitcher creates a switcher for the given profile names
func NewProfileSwitcher(applier ports.ProfileApplier, high, low string) *ProfileSwitcher {
	return &ProfileSwitcher{
		applier: applier,
		high:    high,
		low:     low,
	}
}

// SelectHigh applies the AC profile
func (s *ProfileSwitcher) SelectHigh(ctx context.Context) error {
	return s.selectProfile(ctx, s.high)
}

// SelectLow applies the battery profile
func (s *ProfileSwitcher) SelectLow(ctx context.Context) error {
	return s.selectProfile(ctx, s.low)
}

// Active returns the last successfully applied profile, or "" if unknown
func (s *ProfileSwitcher) Active() string {
	return s.active.Load()
}

func (s *ProfileSwitcher) selectProfile(ctx context.Context, profile string) error {
	if err := s.applier.Apply(ctx, profile); err != nil {
		// the system may be left on either profile
		s.active.Store("")
		return &domain.ProfileApplyError{Profile: profile, Err: err}
	}

	s.active.Store(profile)
	log.Info().Str("profile", profile).Msg("applied power profile")
	return nil
}
