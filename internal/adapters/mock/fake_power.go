package mock

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Josinosle/TABPP/internal/domain"
)

// FakeProfiles records applied profile names
// This implements the ports.ProfileApplier interface
type FakeProfiles struct {
	mu      sync.Mutex
	applied []string
	err     error
}

// NewFakeProfiles creates an applier that always succeeds
func NewFakeProfiles() *FakeProfiles {
	return &FakeProfiles{}
}

// Apply records profile, or fails if FailWith was set
func (p *FakeProfiles) Apply(ctx context.Context, profile string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.applied = append(p.applied, profile)
	log.Debug().Str("profile", profile).Msg("mock profile applied")
	return nil
}

// Applied returns every successfully applied profile in order
func (p *FakeProfiles) Applied() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.applied...)
}

// FailWith makes Apply return err; nil restores success
func (p *FakeProfiles) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Device paths FakePower reports events from
const (
	BatteryPath   = "/org/freedesktop/UPower/devices/battery_BAT0"
	LinePowerPath = "/org/freedesktop/UPower/devices/line_power_AC"
)

// FakePower is a scripted power event source and battery
// This implements ports.PowerEventSource and ports.BatteryStateReader
type FakePower struct {
	mu     sync.Mutex
	state  domain.PowerState
	err    error
	events chan domain.PowerEvent
}

// NewFakePower creates a source whose battery reports state
func NewFakePower(state domain.PowerState) *FakePower {
	return &FakePower{
		state:  state,
		events: make(chan domain.PowerEvent, 16),
	}
}

// BatteryState returns the scripted state
func (p *FakePower) BatteryState(ctx context.Context) (domain.PowerState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.err
}

// FailWith makes BatteryState return err
func (p *FakePower) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Subscribe returns the scripted event channel. It is closed when ctx ends.
func (p *FakePower) Subscribe(ctx context.Context) (<-chan domain.PowerEvent, error) {
	out := make(chan domain.PowerEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-p.events:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// SendState queues a State change and updates the battery state
func (p *FakePower) SendState(state domain.PowerState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	p.events <- domain.PowerEvent{Path: BatteryPath, State: &state}
}

// SendOnline queues an Online change
func (p *FakePower) SendOnline(online bool) {
	p.events <- domain.PowerEvent{Path: LinePowerPath, Online: &online}
}
