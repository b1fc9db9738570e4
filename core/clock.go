package core

import (
	"context"
	"sync"
	"time"
)

// Clock is the monotonic time source used for every timestamp in the system.
//
// Now returns microseconds since an arbitrary fixed origin. SleepUntil blocks
// until the clock reaches the absolute instant t; callers always pass a
// precomputed instant, never "now + delta", so scheduling jitter cannot
// accumulate across periods.
type Clock interface {
	Now() Micros
	SleepUntil(ctx context.Context, t Micros) error
}

// =============================================================================
// SystemClock: real monotonic clock
// =============================================================================

// SystemClock reads Go's monotonic clock, anchored at construction time.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock whose origin is the moment of the call.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns microseconds elapsed since the clock was created.
func (c *SystemClock) Now() Micros {
	return time.Since(c.start).Microseconds()
}

// SleepUntil blocks until the monotonic clock reaches t. When t has already
// passed it returns immediately; an overrunning frame therefore coalesces
// into the next tick instead of being corrected.
func (c *SystemClock) SleepUntil(ctx context.Context, t Micros) error {
	d := time.Duration(t-c.Now()) * time.Microsecond
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// VirtualClock: simulated clock for deterministic tests
// =============================================================================

// VirtualClock is a simulated clock for single-context tests. Time only moves
// when someone sleeps on it or calls Advance, so the cyclic executive can be
// ticked deterministically without real delays.
//
// SleepUntil advances virtual time to the target instant and returns. It is
// not meant to coordinate multiple sleeping goroutines.
type VirtualClock struct {
	mu  sync.Mutex
	now Micros
}

// NewVirtualClock returns a virtual clock starting at origin.
func NewVirtualClock(origin Micros) *VirtualClock {
	return &VirtualClock{now: origin}
}

// Now returns the current virtual time.
func (c *VirtualClock) Now() Micros {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// SleepUntil advances virtual time to t. Instants in the past are a no-op,
// mirroring SystemClock's coalescing behavior.
func (c *VirtualClock) SleepUntil(ctx context.Context, t Micros) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
	return nil
}

// Advance moves virtual time forward by d. Used by tests to inject jitter
// between ticks.
func (c *VirtualClock) Advance(d Micros) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}
