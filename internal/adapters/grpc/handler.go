package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Josinosle/TABPP/internal/domain"
)

// StatusProvider returns the daemon snapshot
type StatusProvider interface {
	Status(ctx context.Context) domain.Status
}

// StatusHandler implements the gRPC Status service
type StatusHandler struct {
	provider StatusProvider
	journal  domain.TransitionRepository
}

// NewStatusHandler creates a new gRPC handler
func NewStatusHandler(provider StatusProvider, journal domain.TransitionRepository) *StatusHandler {
	return &StatusHandler{
		provider: provider,
		journal:  journal,
	}
}

// GetStatus returns the current power state, brightness, poller and profile
func (h *StatusHandler) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	log.Debug().Msg("GetStatus called")

	s := h.provider.Status(ctx)
	fields := map[string]interface{}{
		"state":          s.State.String(),
		"state_code":     uint32(s.State),
		"state_known":    s.StateKnown,
		"brightness":     s.Brightness,
		"max_brightness": s.MaxBrightness,
		"poller_running": s.PollerRunning,
		"active_profile": s.ActiveProfile,
	}
	if s.ACKnown {
		fields["ac_online"] = s.ACOnline
	} else {
		fields["ac_online"] = nil
	}
	if s.LastTransition != nil {
		fields["last_transition"] = convertTransition(s.LastTransition)
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode status")
		return nil, status.Error(codes.Internal, "failed to encode status")
	}
	return out, nil
}

// ListTransitions returns journal entries from the last req seconds, oldest first.
// Zero returns everything the journal holds.
func (h *StatusHandler) ListTransitions(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	window := req.GetValue()
	log.Debug().Int64("window_seconds", window).Msg("ListTransitions called")

	if window < 0 {
		return nil, status.Error(codes.InvalidArgument, "window must not be negative")
	}

	var since time.Time
	if window > 0 {
		since = time.Now().Add(-time.Duration(window) * time.Second)
	}

	transitions, err := h.journal.GetTransitionsSince(ctx, since)
	if err != nil {
		log.Error().Err(err).Msg("failed to get transitions")
		return nil, status.Error(codes.Internal, "failed to get transitions")
	}

	values := make([]interface{}, len(transitions))
	for i, t := range transitions {
		values[i] = convertTransition(t)
	}

	out, err := structpb.NewList(values)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode transitions")
		return nil, status.Error(codes.Internal, "failed to encode transitions")
	}
	return out, nil
}

// convertTransition converts a domain transition into a structpb-compatible map
func convertTransition(t *domain.Transition) map[string]interface{} {
	return map[string]interface{}{
		"id":        t.ID,
		"origin":    string(t.Origin),
		"path":      t.Path,
		"state":     t.State.String(),
		"action":    string(t.Action),
		"timestamp": t.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}
