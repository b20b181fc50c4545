// Package refresh serializes refresh requests: at most one reconciliation
// pass runs at a time, and triggers arriving mid-flight share its result.
package refresh

import (
	"context"
	"sync"
)

// flight is one in-progress refresh awaited by any number of callers.
type flight struct {
	done chan struct{}
	err  error
}

// Coordinator guarantees at-most-one effective concurrent refresh. A request
// arriving while one is in flight does not start a second pass; it waits for
// and shares the in-flight result, so no request is ever dropped silently.
// There is no mid-flight cancellation: a waiter's context expiring abandons
// the wait, never the underlying refresh.
type Coordinator struct {
	run     func(ctx context.Context) error
	onStart func()

	mu       sync.Mutex
	inflight *flight
}

// NewCoordinator wraps the given refresh pipeline. onStart, if non-nil,
// fires once per effective pass before the pipeline runs (the "refresh
// started" notification).
func NewCoordinator(run func(ctx context.Context) error, onStart func()) *Coordinator {
	return &Coordinator{run: run, onStart: onStart}
}

// Refresh runs the pipeline, or joins the in-flight run. Returns the error
// of whichever pass satisfied this request. On failure the previously
// displayed state stays in place; this type only reports the outcome.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if f := c.inflight; f != nil {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	c.inflight = f
	c.mu.Unlock()

	if c.onStart != nil {
		c.onStart()
	}
	f.err = c.run(ctx)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(f.done)
	return f.err
}

// Refreshing reports whether a pass is currently in flight.
func (c *Coordinator) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil
}
