package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Josinosle/TABPP/internal/domain"
)

// DefaultCapacity is how many transitions a journal keeps when none is given
const DefaultCapacity = 256

// TransitionJournal implements domain.TransitionRepository with a bounded
// in-memory ring. Nothing survives a restart.
type TransitionJournal struct {
	mu          sync.RWMutex
	transitions []*domain.Transition // oldest first
	capacity    int
	nextID      int64
}

// NewTransitionJournal creates an empty journal holding at most capacity entries
func NewTransitionJournal(capacity int) *TransitionJournal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &TransitionJournal{
		transitions: make([]*domain.Transition, 0, capacity),
		capacity:    capacity,
		nextID:      1,
	}
}

// SaveTransition appends a transition, evicting the oldest when full
func (j *TransitionJournal) SaveTransition(ctx context.Context, t *domain.Transition) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// Assign ID if not set
	if t.ID == 0 {
		t.ID = j.nextID
		j.nextID++
	}

	if len(j.transitions) == j.capacity {
		copy(j.transitions, j.transitions[1:])
		j.transitions = j.transitions[:len(j.transitions)-1]
	}
	j.transitions = append(j.transitions, t)
	return nil
}

// GetLatestTransition returns the most recent transition
func (j *TransitionJournal) GetLatestTransition(ctx context.Context) (*domain.Transition, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if len(j.transitions) == 0 {
		return nil, domain.ErrTransitionNotFound
	}
	return j.transitions[len(j.transitions)-1], nil
}

// GetTransitionsSince returns transitions at or after since, oldest first
func (j *TransitionJournal) GetTransitionsSince(ctx context.Context, since time.Time) ([]*domain.Transition, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var results []*domain.Transition
	for _, t := range j.transitions {
		if since.IsZero() || !t.Timestamp.Before(since) {
			results = append(results, t)
		}
	}
	return results, nil
}

// Len returns how many transitions are held
func (j *TransitionJournal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.transitions)
}
