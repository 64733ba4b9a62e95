package chat

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// PollingSource runs one tick function on a fixed interval. It is the
// transport seam of the package: everything downstream consumes
// snapshots, so an HTTP poll could later be swapped for a streaming
// subscription without touching reconciliation logic.
//
// The first tick fires immediately on Start, so the initial update is
// never delayed by a full interval. Ticks are treated as independent,
// idempotent full reads; no overlap guard is applied and a slow tick is
// simply followed by the next one.
type PollingSource struct {
	name     string
	clock    clockwork.Clock
	interval time.Duration
	tick     func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPollingSource builds a stopped source. tick must be safe to call
// from a dedicated goroutine.
func NewPollingSource(name string, clock clockwork.Clock, interval time.Duration, tick func(ctx context.Context)) *PollingSource {
	return &PollingSource{
		name:     name,
		clock:    clock,
		interval: interval,
		tick:     tick,
	}
}

// Start arms the source: an immediate tick, then one tick per interval.
// Starting a running source is a no-op.
func (p *PollingSource) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	zap.L().Info("polling source started",
		zap.String("source", p.name),
		zap.Duration("interval", p.interval),
	)

	go func() {
		defer close(done)
		p.tick(ctx)
		ticker := p.clock.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				p.tick(ctx)
			}
		}
	}()
}

// Stop disarms the source and waits for the loop to exit. An in-flight
// tick is not interrupted beyond context cancellation; results landing
// after Stop must be discarded by the owner (generation guard).
func (p *PollingSource) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	zap.L().Info("polling source stopped", zap.String("source", p.name))
}

// Running reports whether the source is currently armed.
func (p *PollingSource) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
