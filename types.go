package rtsched

import "github.com/StillLYOU/IL2235-lab1/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the rtsched package for most use cases.

// Micros is a timestamp or duration in microseconds
type Micros = core.Micros

// Task is the immutable descriptor of a periodic workload
type Task = core.Task

// TaskID identifies one of the periodic workloads
type TaskID = core.TaskID

// Job is one execution instance (release) of a task
type Job = core.Job

// Outcome classifies a job attempt (OK, MISS, SKIPPED)
type Outcome = core.Outcome

// ExecutionLog is the bounded, shared sequence of job records
type ExecutionLog = core.ExecutionLog

// Summary holds per-hyperperiod outcome totals
type Summary = core.Summary

// ScheduleTable is the offline frame-to-task assignment of the cyclic model
type ScheduleTable = core.ScheduleTable

// Frame is one minor frame of the cyclic schedule
type Frame = core.Frame

// CyclicExecutive is the time-triggered, non-preemptive dispatcher
type CyclicExecutive = core.CyclicExecutive

// RateMonotonicScheduler is the preemptive fixed-priority dispatcher
type RateMonotonicScheduler = core.RateMonotonicScheduler

// Reporter is the per-hyperperiod reporting aggregator
type Reporter = core.Reporter

// Clock is the monotonic microsecond time source
type Clock = core.Clock

// DurationSensor is the 8-bit input behind the variable-duration task
type DurationSensor = core.DurationSensor

// StatusIndicator drives the overrun and hyperperiod outputs
type StatusIndicator = core.StatusIndicator

// Logger is the structured logging seam
type Logger = core.Logger

// Metrics is the observability seam fed by the reporting aggregator
type Metrics = core.Metrics

// CyclicOptions carries the optional collaborators of a CyclicExecutive
type CyclicOptions = core.CyclicOptions

// RateMonotonicOptions carries the optional collaborators of a RateMonotonicScheduler
type RateMonotonicOptions = core.RateMonotonicOptions

// Task identity constants
const (
	TaskA = core.TaskA
	TaskB = core.TaskB
	TaskC = core.TaskC
	TaskD = core.TaskD
	TaskE = core.TaskE
	TaskF = core.TaskF
)

// Outcome constants
const (
	OutcomeOK      = core.OutcomeOK
	OutcomeMiss    = core.OutcomeMiss
	OutcomeSkipped = core.OutcomeSkipped
)

// Constructors and configuration helpers, re-exported for the common path.
var (
	DefaultTaskSet       = core.DefaultTaskSet
	DefaultScheduleTable = core.DefaultScheduleTable
	DefaultSensorScale   = core.DefaultSensorScale
	AssignRateMonotonic  = core.AssignRateMonotonic
	NewExecutionLog      = core.NewExecutionLog
	NewSystemClock       = core.NewSystemClock
	NewVirtualClock      = core.NewVirtualClock
	NewStaticSensor      = core.NewStaticSensor
	NewReporter          = core.NewReporter
	NewDefaultLogger     = core.NewDefaultLogger
	NewNoOpLogger        = core.NewNoOpLogger
)

// NewCyclicExecutive builds the time-triggered dispatcher for a schedule
// table and task set. See core.NewCyclicExecutive.
func NewCyclicExecutive(table ScheduleTable, tasks []Task, log *ExecutionLog, clock Clock, sensor DurationSensor, opts core.CyclicOptions) (*CyclicExecutive, error) {
	return core.NewCyclicExecutive(table, tasks, log, clock, sensor, opts)
}

// NewRateMonotonicScheduler builds the fixed-priority dispatcher for a task
// set. See core.NewRateMonotonicScheduler.
func NewRateMonotonicScheduler(tasks []Task, log *ExecutionLog, clock Clock, sensor DurationSensor, opts core.RateMonotonicOptions) (*RateMonotonicScheduler, error) {
	return core.NewRateMonotonicScheduler(tasks, log, clock, sensor, opts)
}
