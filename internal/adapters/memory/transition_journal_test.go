package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Josinosle/TABPP/internal/domain"
)

func TestSaveAndGetLatest(t *testing.T) {
	journal := NewTransitionJournal(4)
	ctx := context.Background()

	if _, err := journal.GetLatestTransition(ctx); err != domain.ErrTransitionNotFound {
		t.Fatalf("expected ErrTransitionNotFound, got %v", err)
	}

	first := domain.NewTransition(domain.OriginReconcile, "", domain.StateDischarging)
	second := domain.NewTransition(domain.OriginEvent, "/org/freedesktop/UPower/devices/battery_BAT0", domain.StateCharging)

	for _, tr := range []*domain.Transition{first, second} {
		if err := journal.SaveTransition(ctx, tr); err != nil {
			t.Fatalf("SaveTransition failed: %v", err)
		}
	}
	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}

	latest, err := journal.GetLatestTransition(ctx)
	if err != nil {
		t.Fatalf("GetLatestTransition failed: %v", err)
	}
	if latest.Action != domain.ActionExternalPower {
		t.Errorf("expected action %q, got %q", domain.ActionExternalPower, latest.Action)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	journal := NewTransitionJournal(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := journal.SaveTransition(ctx, domain.NewTransition(domain.OriginEvent, "", domain.StateDischarging)); err != nil {
			t.Fatalf("SaveTransition failed: %v", err)
		}
	}

	if journal.Len() != 3 {
		t.Fatalf("expected 3 transitions, got %d", journal.Len())
	}
	all, err := journal.GetTransitionsSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("GetTransitionsSince failed: %v", err)
	}
	if all[0].ID != 3 || all[2].ID != 5 {
		t.Errorf("expected IDs 3..5, got %d..%d", all[0].ID, all[2].ID)
	}
}

func TestGetTransitionsSince(t *testing.T) {
	journal := NewTransitionJournal(0)
	ctx := context.Background()
	now := time.Now()

	old := &domain.Transition{State: domain.StateCharging, Action: domain.ActionExternalPower, Timestamp: now.Add(-time.Hour)}
	recent := &domain.Transition{State: domain.StateEmpty, Action: domain.ActionBattery, Timestamp: now}
	for _, tr := range []*domain.Transition{old, recent} {
		if err := journal.SaveTransition(ctx, tr); err != nil {
			t.Fatalf("SaveTransition failed: %v", err)
		}
	}

	got, err := journal.GetTransitionsSince(ctx, now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("GetTransitionsSince failed: %v", err)
	}
	if len(got) != 1 || got[0] != recent {
		t.Fatalf("expected only the recent transition, got %d", len(got))
	}

	got, _ = journal.GetTransitionsSince(ctx, time.Time{})
	if len(got) != 2 {
		t.Errorf("zero since should return everything, got %d", len(got))
	}
}
