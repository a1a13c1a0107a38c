package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

// Sampler runs one ambient sampling cycle
type Sampler interface {
	ApplyAmbient(ctx context.Context) error
}

// AmbientPoller runs a Sampler periodically in at most one goroutine.
// Stop does not return until that goroutine has exited.
type AmbientPoller struct {
	sampler  Sampler
	interval time.Duration

	mu     sync.Mutex // guards cancel and done
	cancel context.CancelFunc
	done   chan struct{}

	running atomic.Bool
}

// NewAmbientPoller creates a stopped poller
func NewAmbientPoller(sampler Sampler, interval time.Duration) *AmbientPoller {
	return &AmbientPoller{
		sampler:  sampler,
		interval: interval,
	}
}

// Start launches the polling loop under ctx. It reports whether a new loop
// was started; calling it while a loop is live does nothing.
func (p *AmbientPoller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		select {
		case <-p.done:
			// exited on its own when the parent ctx ended; reap it
			p.cancel()
			p.cancel, p.done = nil, nil
		default:
			return false
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	p.running.Store(true)

	go p.loop(loopCtx, done)
	return true
}

// Stop asks the loop to exit and waits until it has. It reports whether a
// loop was live.
func (p *AmbientPoller) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		return false
	}

	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
	return true
}

// Running reports whether the loop goroutine is live
func (p *AmbientPoller) Running() bool {
	return p.running.Load()
}

func (p *AmbientPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer p.running.Store(false)

	log.Info().
		Dur("interval", p.interval).
		Msg("starting ambient poller")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping ambient poller")
			return
		case <-timer.C:
		}

		if err := p.sampler.ApplyAmbient(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info().Msg("stopping ambient poller")
				return
			}
			log.Error().Err(err).Msg("ambient cycle failed")
		}

		timer.Reset(p.interval)
	}
}
