package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/Josinosle/TABPP/internal/domain"
	"github.com/Josinosle/TABPP/internal/ports"
)

// Coordinator reacts to power state changes. It owns the ambient poller and is
// the only caller of Start and Stop, which is what keeps brightness writes
// from racing: the AC branch joins the poller before writing the maximum.
type Coordinator struct {
	controller *BrightnessController
	poller     *AmbientPoller
	profiles   *ProfileSwitcher
	battery    ports.BatteryStateReader
	devicePath string
	journal    domain.TransitionRepository

	mu sync.Mutex // serializes state handling

	state      atomic.Uint32
	stateKnown atomic.Bool
	acOnline   atomic.Bool
	acKnown    atomic.Bool
}

// NewCoordinator wires the coordinator. Only State changes from devicePath
// drive actions; an empty devicePath accepts every device. journal may be nil.
func NewCoordinator(
	controller *BrightnessController,
	poller *AmbientPoller,
	profiles *ProfileSwitcher,
	battery ports.BatteryStateReader,
	devicePath string,
	journal domain.TransitionRepository,
) *Coordinator {
	return &Coordinator{
		controller: controller,
		poller:     poller,
		profiles:   profiles,
		battery:    battery,
		devicePath: devicePath,
		journal:    journal,
	}
}

// Run reconciles against the current battery state, then handles events
// until ctx is cancelled or the stream closes. The poller is stopped before
// Run returns.
func (c *Coordinator) Run(ctx context.Context, events <-chan domain.PowerEvent) error {
	defer c.poller.Stop()

	c.Reconcile(ctx)

	log.Info().Msg("listening for power state changes")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("coordinator stopping")
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return domain.ErrEventStreamClosed
			}
			c.OnPropertiesChanged(ctx, ev)
		}
	}
}

// Reconcile queries the battery state once and applies it as if it had
// arrived in an event. A failed query is logged and skipped.
func (c *Coordinator) Reconcile(ctx context.Context) {
	state, err := c.battery.BatteryState(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to query battery state, waiting for events")
		return
	}

	log.Info().Str("state", state.String()).Msg("initial battery state")
	c.apply(ctx, domain.OriginReconcile, "", state)
}

// OnPropertiesChanged handles one notification. Online is recorded and
// logged only; every action is keyed off State of the battery device.
// State changes of other devices, such as peripheral batteries, are logged.
func (c *Coordinator) OnPropertiesChanged(ctx context.Context, ev domain.PowerEvent) {
	if ev.Online != nil {
		c.acOnline.Store(*ev.Online)
		c.acKnown.Store(true)
		status := "Offline"
		if *ev.Online {
			status = "Online"
		}
		log.Info().Str("path", ev.Path).Msgf("AC Power: %s", status)
	}

	if ev.State != nil {
		log.Info().Str("path", ev.Path).Msgf("Battery State Changed: %s", *ev.State)
		if !c.tracks(ev.Path) {
			log.Debug().Str("path", ev.Path).Msg("ignoring state of untracked device")
			return
		}
		c.apply(ctx, domain.OriginEvent, ev.Path, *ev.State)
	}
}

// tracks reports whether State changes from path drive actions. Events
// without a path come from sources that only know one device.
func (c *Coordinator) tracks(path string) bool {
	return c.devicePath == "" || path == "" || path == c.devicePath
}

func (c *Coordinator) apply(ctx context.Context, origin domain.Origin, path string, state domain.PowerState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(uint32(state))
	c.stateKnown.Store(true)

	t := domain.NewTransition(origin, path, state)
	switch t.Action {
	case domain.ActionExternalPower:
		c.onExternalPower(ctx)
	case domain.ActionBattery:
		c.onBattery(ctx)
	default:
		log.Debug().Str("state", state.String()).Msg("no action for state")
	}

	if c.journal != nil {
		if err := c.journal.SaveTransition(ctx, t); err != nil {
			log.Error().Err(err).Msg("failed to record transition")
		}
	}
}

func (c *Coordinator) onExternalPower(ctx context.Context) {
	// the poller must be quiescent or its next tick would undo the write below
	if c.poller.Stop() {
		log.Info().Msg("ambient poller stopped")
	}

	full := c.controller.MaxBrightness()
	if err := c.controller.SetBrightness(ctx, full); err != nil {
		log.Error().Err(err).Msg("failed to set full brightness")
	} else {
		log.Info().Int("level", full).Msg("set full brightness")
	}

	if err := c.profiles.SelectHigh(ctx); err != nil {
		log.Error().Err(err).Msg("failed to select AC profile")
	}
}

func (c *Coordinator) onBattery(ctx context.Context) {
	if !c.poller.Running() {
		if c.poller.Start(ctx) {
			log.Info().Msg("ambient poller started")
		}
	} else {
		log.Debug().Msg("ambient poller already running")
	}

	if err := c.profiles.SelectLow(ctx); err != nil {
		log.Error().Err(err).Msg("failed to select battery profile")
	}
}

// Status returns a snapshot without touching any device
func (c *Coordinator) Status(ctx context.Context) domain.Status {
	s := domain.Status{
		State:         domain.PowerState(c.state.Load()),
		StateKnown:    c.stateKnown.Load(),
		ACOnline:      c.acOnline.Load(),
		ACKnown:       c.acKnown.Load(),
		Brightness:    c.controller.LastBrightness(),
		MaxBrightness: c.controller.MaxBrightness(),
		PollerRunning: c.poller.Running(),
		ActiveProfile: c.profiles.Active(),
	}
	if c.journal != nil {
		if t, err := c.journal.GetLatestTransition(ctx); err == nil {
			s.LastTransition = t
		}
	}
	return s
}
