package mock

import (
	"context"
	"sync"
)

// FakeBacklight is an in-memory backlight that records every write
// This implements the ports.Backlight interface
type FakeBacklight struct {
	mu       sync.Mutex
	max      int
	level    int
	writes   []int
	writeErr error
	readErr  error
	onWrite  func(level int)
}

// NewFakeBacklight creates a backlight with the given maximum and level
func NewFakeBacklight(max, level int) *FakeBacklight {
	return &FakeBacklight{max: max, level: level}
}

// ReadMax returns the configured maximum
func (b *FakeBacklight) ReadMax(ctx context.Context) (int, error) {
	return b.max, nil
}

// Read returns the current level
func (b *FakeBacklight) Read(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readErr != nil {
		return 0, b.readErr
	}
	return b.level, nil
}

// Write stores level and appends it to the write log
func (b *FakeBacklight) Write(ctx context.Context, level int) error {
	b.mu.Lock()
	if b.writeErr != nil {
		err := b.writeErr
		b.mu.Unlock()
		return err
	}
	b.level = level
	b.writes = append(b.writes, level)
	hook := b.onWrite
	b.mu.Unlock()

	if hook != nil {
		hook(level)
	}
	return nil
}

// Level returns the current level
func (b *FakeBacklight) Level() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}

// Writes returns a copy of every level written so far
func (b *FakeBacklight) Writes() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.writes...)
}

// ResetWrites clears the write log
func (b *FakeBacklight) ResetWrites() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = nil
}

// FailWrites makes Write return err; nil restores normal writes
func (b *FakeBacklight) FailWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeErr = err
}

// FailReads makes Read return err; nil restores normal reads
func (b *FakeBacklight) FailReads(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readErr = err
}

// OnWrite registers a hook called after every successful write
func (b *FakeBacklight) OnWrite(hook func(level int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onWrite = hook
}
