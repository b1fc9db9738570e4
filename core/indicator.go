package core

import "sync/atomic"

// StatusIndicator drives the two binary outputs on the reference board: one
// toggled on any missed or skipped job, one toggled once per completed
// hyperperiod.
//
// Implementations must be fire-and-forget: calls come from the hot timing
// path and may never block.
type StatusIndicator interface {
	// ToggleOverrun signals a MISS or SKIPPED job.
	ToggleOverrun()

	// ToggleHyperperiod signals a completed hyperperiod boundary.
	ToggleHyperperiod()
}

// NopIndicator discards all signals.
type NopIndicator struct{}

func (NopIndicator) ToggleOverrun()     {}
func (NopIndicator) ToggleHyperperiod() {}

// CountingIndicator counts toggles instead of driving hardware. Used in tests
// and exposed through scheduler stats.
type CountingIndicator struct {
	overruns     atomic.Uint64
	hyperperiods atomic.Uint64
}

func (c *CountingIndicator) ToggleOverrun()     { c.overruns.Add(1) }
func (c *CountingIndicator) ToggleHyperperiod() { c.hyperperiods.Add(1) }

// Overruns returns the number of overrun toggles observed.
func (c *CountingIndicator) Overruns() uint64 { return c.overruns.Load() }

// Hyperperiods returns the number of hyperperiod toggles observed.
func (c *CountingIndicator) Hyperperiods() uint64 { return c.hyperperiods.Load() }
