package domain

import (
	"time"
)

// Action is what the coordinator did in response to a power state
type Action string

const (
	// ActionExternalPower stopped the poller, maxed brightness and selected the AC profile
	ActionExternalPower Action = "ac"
	// ActionBattery started the poller and selected the battery profile
	ActionBattery Action = "battery"
	// ActionNone is the inert branch for Unknown and Pending* states
	ActionNone Action = "none"
)

// Origin says what triggered a transition
type Origin string

const (
	OriginEvent     Origin = "event"
	OriginReconcile Origin = "reconcile"
)

// Transition records one coordinator decision
type Transition struct {
	ID        int64
	Origin    Origin
	Path      string
	State     PowerState
	Action    Action
	Timestamp time.Time
}

// NewTransition derives the action for a state and stamps it with the current time
func NewTransition(origin Origin, path string, state PowerState) *Transition {
	return &Transition{
		Origin:    origin,
		Path:      path,
		State:     state,
		Action:    ActionFor(state),
		Timestamp: time.Now(),
	}
}

// ActionFor returns the branch the coordinator takes for state
func ActionFor(state PowerState) Action {
	switch {
	case state.OnExternalPower():
		return ActionExternalPower
	case state.OnBattery():
		return ActionBattery
	}
	return ActionNone
}

// Status is a point-in-time snapshot of the daemon
type Status struct {
	State          PowerState
	StateKnown     bool
	ACOnline       bool
	ACKnown        bool
	Brightness     int
	MaxBrightness  int
	PollerRunning  bool
	ActiveProfile  string
	LastTransition *Transition
}
