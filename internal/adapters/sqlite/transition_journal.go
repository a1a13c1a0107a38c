package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Josinosle/TABPP/internal/domain"
)

// TransitionJournal implements domain.TransitionRepository with SQLite so the
// transition history survives restarts. At most capacity rows are kept.
type TransitionJournal struct {
	db       *sql.DB
	capacity int
}

// NewTransitionJournal opens (or creates) the journal at dbPath
func NewTransitionJournal(dbPath string, capacity int) (*TransitionJournal, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table if not exists
	schema := `
	CREATE TABLE IF NOT EXISTS power_transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		origin TEXT NOT NULL,
		path TEXT NOT NULL,
		state INTEGER NOT NULL,
		action TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transitions_timestamp ON power_transitions(timestamp);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if capacity <= 0 {
		capacity = 256
	}
	return &TransitionJournal{db: db, capacity: capacity}, nil
}

// SaveTransition stores a transition and prunes rows beyond capacity
func (j *TransitionJournal) SaveTransition(ctx context.Context, t *domain.Transition) error {
	query := `INSERT INTO power_transitions (origin, path, state, action, timestamp) VALUES (?, ?, ?, ?, ?)`

	result, err := j.db.ExecContext(ctx, query,
		string(t.Origin), t.Path, int64(t.State), string(t.Action), t.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert transition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}
	t.ID = id

	prune := `DELETE FROM power_transitions WHERE id <= ?`
	if _, err := j.db.ExecContext(ctx, prune, id-int64(j.capacity)); err != nil {
		return fmt.Errorf("failed to prune transitions: %w", err)
	}
	return nil
}

// GetLatestTransition returns the most recent transition
func (j *TransitionJournal) GetLatestTransition(ctx context.Context) (*domain.Transition, error) {
	query := `
		SELECT id, origin, path, state, action, timestamp
		FROM power_transitions
		ORDER BY id DESC
		LIMIT 1
	`

	t, err := scanTransition(j.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, domain.ErrTransitionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest transition: %w", err)
	}
	return t, nil
}

// GetTransitionsSince returns transitions at or after since, oldest first.
// A zero since returns everything.
func (j *TransitionJournal) GetTransitionsSince(ctx context.Context, since time.Time) ([]*domain.Transition, error) {
	query := `
		SELECT id, origin, path, state, action, timestamp
		FROM power_transitions
		WHERE timestamp >= ?
		ORDER BY id ASC
	`

	var cutoff int64
	if !since.IsZero() {
		cutoff = since.UnixNano()
	}

	rows, err := j.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	var transitions []*domain.Transition
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

// Close closes the database connection
func (j *TransitionJournal) Close() error {
	return j.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransition(s scanner) (*domain.Transition, error) {
	var (
		t              domain.Transition
		origin, action string
		state, nanos   int64
	)
	if err := s.Scan(&t.ID, &origin, &t.Path, &state, &action, &nanos); err != nil {
		return nil, err
	}
	t.Origin = domain.Origin(origin)
	t.Action = domain.Action(action)
	t.State = domain.ParsePowerState(state)
	t.Timestamp = time.Unix(0, nanos)
	return &t, nil
}
