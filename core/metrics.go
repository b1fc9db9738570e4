package core

import "time"

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for exporting scheduling outcomes.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// All methods are optional; implementations should handle nil receivers gracefully.
// Metrics are fed by the reporting aggregator when it drains the execution
// log, never from the dispatch path, so a slow backend cannot perturb task
// timing.
type Metrics interface {
	// RecordJobOutcome counts one classified job attempt.
	RecordJobOutcome(taskName string, outcome Outcome)

	// RecordExecTime records a completed job's measured execution time.
	RecordExecTime(taskName string, execTime time.Duration)

	// RecordLogDepth records how many records the drain returned.
	RecordLogDepth(depth int)

	// RecordHyperperiod counts one completed hyperperiod for the given
	// scheduling model ("cyclic" or "rate_monotonic").
	RecordHyperperiod(model string)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) RecordJobOutcome(string, Outcome)     {}
func (NopMetrics) RecordExecTime(string, time.Duration) {}
func (NopMetrics) RecordLogDepth(int)                   {}
func (NopMetrics) RecordHyperperiod(string)             {}

// SchedulerStats is a point-in-time snapshot of a scheduler back-end,
// exposed for polling-based observability.
type SchedulerStats struct {
	Model        string
	Ticks        uint64
	Hyperperiods uint64
	MissesTotal  uint64
	LogDepth     int
	Running      bool
}

// StatsProvider is implemented by both scheduler back-ends.
type StatsProvider interface {
	Stats() SchedulerStats
}
