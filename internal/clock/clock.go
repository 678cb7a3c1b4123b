// Package clock provides the protocol's logical time source.
//
// All verification lifecycle arithmetic (expiry windows, attestation
// validity) is expressed in ticks rather than wall-clock time. A tick is
// an opaque monotonically increasing counter; the mapping from ticks to
// wall time is a deployment concern (the server advances one tick per
// configured interval), which keeps lifecycle rules deterministic and
// directly testable.
package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	id "agegate/pkg/domain"
)

// Clock is the protocol's logical time source.
// Implementations must be safe for concurrent use.
type Clock interface {
	// Now returns the current tick.
	Now() id.Tick
}

// Manual is a clock advanced explicitly by the caller.
// It is the clock used in tests and by the offline tooling.
type Manual struct {
	mu  sync.Mutex
	now id.Tick
}

// NewManual creates a manual clock starting at the given tick.
func NewManual(start id.Tick) *Manual {
	return &Manual{now: start}
}

// Now returns the current tick.
func (c *Manual) Now() id.Tick {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by n ticks.
func (c *Manual) Advance(n uint64) id.Tick {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(n)
	return c.now
}

// Set places the clock at an absolute tick. It never moves backwards;
// setting an earlier tick is a no-op.
func (c *Manual) Set(t id.Tick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
}

// Interval is a clock that advances one tick per wall-clock interval.
// It is the production clock: the server starts it once at boot and
// stops it on shutdown.
type Interval struct {
	interval time.Duration
	now      atomic.Uint64

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewInterval creates an interval clock starting at the given tick.
// The clock does not advance until Start is called.
func NewInterval(start id.Tick, interval time.Duration) *Interval {
	c := &Interval{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	c.now.Store(uint64(start))
	return c
}

// Now returns the current tick.
func (c *Interval) Now() id.Tick {
	return id.Tick(c.now.Load())
}

// Start begins advancing the clock. It returns immediately; the clock
// runs until Stop is called or the context is cancelled.
func (c *Interval) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.now.Add(1)
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop halts the clock and waits for the ticker goroutine to exit.
// Safe to call multiple times, including before Start.
func (c *Interval) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	if c.started.Load() {
		<-c.done
	}
}

// Verify interfaces are satisfied.
var (
	_ Clock = (*Manual)(nil)
	_ Clock = (*Interval)(nil)
)
