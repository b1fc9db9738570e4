package core

import (
	"context"
	"fmt"
	"sync"
)

// CyclicExecutive is the time-triggered dispatcher: a single execution
// context driven at minor-frame cadence by the static schedule table. Tasks
// within a frame run sequentially and are never preempted; a long-running
// task delays everything after it in the frame, and an overrunning frame
// coalesces into the next tick rather than being corrected.
type CyclicExecutive struct {
	table     ScheduleTable
	tasks     []Task
	log       *ExecutionLog
	clock     Clock
	sensor    DurationSensor
	scale     SensorScale
	indicator StatusIndicator
	reporter  *Reporter
	logger    Logger

	mu           sync.Mutex
	tick         uint64
	base         Micros
	started      bool
	running      bool
	hyperperiods uint64
}

// CyclicOptions carries the optional collaborators of a CyclicExecutive.
// Zero-value fields fall back to no-op implementations; Scale falls back to
// the reference sensor scale.
type CyclicOptions struct {
	Scale     SensorScale
	Indicator StatusIndicator
	Reporter  *Reporter
	Logger    Logger
}

// NewCyclicExecutive builds a dispatcher for the given table and task set.
// The table is validated against the task set; a malformed table is a
// configuration defect and is rejected here, before any tick runs.
func NewCyclicExecutive(table ScheduleTable, tasks []Task, log *ExecutionLog, clock Clock, sensor DurationSensor, opts CyclicOptions) (*CyclicExecutive, error) {
	if err := table.Validate(tasks); err != nil {
		return nil, fmt.Errorf("schedule table: %w", err)
	}
	if log == nil || clock == nil || sensor == nil {
		return nil, fmt.Errorf("log, clock and sensor are required")
	}

	if opts.Scale == (SensorScale{}) {
		opts.Scale = DefaultSensorScale()
	}
	if opts.Indicator == nil {
		opts.Indicator = NopIndicator{}
	}
	if opts.Logger == nil {
		opts.Logger = NewNoOpLogger()
	}

	return &CyclicExecutive{
		table:     table,
		tasks:     tasks,
		log:       log,
		clock:     clock,
		sensor:    sensor,
		scale:     opts.Scale,
		indicator: opts.Indicator,
		reporter:  opts.Reporter,
		logger:    opts.Logger,
	}, nil
}

// Tick executes one minor frame: all tasks scheduled for the current frame,
// in declared order, with the variable-duration skip check applied before the
// sensor-driven task. Exposed so tests can drive the dispatcher frame by
// frame without a timer.
//
// The very first tick captures the base time; every later release and
// deadline is computed from that fixed origin, not from the possibly-jittered
// tick time, so frame drift does not compound.
func (c *CyclicExecutive) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if !c.started {
		c.base = c.clock.Now()
		c.started = true
	}
	tick := c.tick
	base := c.base
	c.mu.Unlock()

	localFrame := int(tick % uint64(len(c.table.Frames)))
	frameStart := base + Micros(tick)*c.table.MinorFrame
	frameDeadline := frameStart + c.table.MinorFrame

	for _, id := range c.table.Frames[localFrame].Tasks {
		task, _ := TaskByID(c.tasks, id)
		c.dispatch(ctx, task, localFrame, tick, frameStart, frameDeadline)
	}

	c.mu.Lock()
	c.tick++
	boundary := c.tick%uint64(len(c.table.Frames)) == 0
	if boundary {
		c.hyperperiods++
	}
	c.mu.Unlock()

	if boundary {
		// Reporting is synchronous in this model: if it runs long it eats
		// into the next frame and shows up there as a miss. Kept outside the
		// per-frame loop so at most one tick per hyperperiod pays for it.
		// Without a reporter the log is left for the caller to drain.
		if c.reporter != nil {
			c.reporter.Flush("cyclic")
		} else {
			c.indicator.ToggleHyperperiod()
		}
	}

	return nil
}

// dispatch runs (or skips) a single job and appends its finalized record.
func (c *CyclicExecutive) dispatch(ctx context.Context, task Task, frame int, tick uint64, release, deadline Micros) {
	duration := task.Nominal

	if task.Variable {
		// Sample the sensor immediately before the skip decision and compare
		// the predicted demand against the slack left in this frame.
		value := c.sensor.Read()
		predicted := c.scale.Predicted(value)
		slack := deadline - c.clock.Now()

		if slack < predicted {
			c.log.Append(Job{
				TaskID:   task.ID,
				Name:     task.Name,
				Frame:    frame,
				Seq:      tick,
				Release:  release,
				Deadline: deadline,
				Outcome:  Classify(0, deadline, true),
			})
			c.indicator.ToggleOverrun()
			return
		}
		duration = c.scale.Duration(value)
	}

	start := c.clock.Now()
	c.clock.SleepUntil(ctx, start+duration)
	completion := c.clock.Now()

	outcome := Classify(completion, deadline, false)
	c.log.Append(Job{
		TaskID:     task.ID,
		Name:       task.Name,
		Frame:      frame,
		Seq:        tick,
		Release:    release,
		Start:      start,
		Completion: completion,
		Deadline:   deadline,
		Outcome:    outcome,
	})

	if outcome == OutcomeMiss {
		c.indicator.ToggleOverrun()
	}
}

// Run drives the dispatcher at minor-frame cadence until ctx is cancelled or,
// when hyperperiods > 0, that many hyperperiods have completed. Tick targets
// are computed additively from the base time; a frame that overruns its slot
// makes the following sleep a no-op (a coalesced tick), which is this model's
// documented overrun failure mode.
func (c *CyclicExecutive) Run(ctx context.Context, hyperperiods int) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("cyclic executive already running")
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.logger.Info("cyclic executive started",
		F("minor_frame_us", c.table.MinorFrame),
		F("frames", len(c.table.Frames)),
		F("hyperperiod_us", c.table.Hyperperiod()),
	)
	c.logSchedulePreview()

	frames := uint64(len(c.table.Frames))
	for {
		if err := c.Tick(ctx); err != nil {
			return err
		}

		c.mu.Lock()
		tick := c.tick
		base := c.base
		done := c.hyperperiods
		c.mu.Unlock()

		if hyperperiods > 0 && done >= uint64(hyperperiods) && tick%frames == 0 {
			c.logger.Info("cyclic executive finished", F("hyperperiods", done))
			return nil
		}

		if err := c.clock.SleepUntil(ctx, base+Micros(tick)*c.table.MinorFrame); err != nil {
			return err
		}
	}
}

// Stats implements StatsProvider.
func (c *CyclicExecutive) Stats() SchedulerStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SchedulerStats{
		Model:        "cyclic",
		Ticks:        c.tick,
		Hyperperiods: c.hyperperiods,
		MissesTotal:  c.log.MissesTotal(),
		LogDepth:     c.log.Len(),
		Running:      c.running,
	}
}

func (c *CyclicExecutive) logSchedulePreview() {
	for i, frame := range c.table.Frames {
		names := make([]string, len(frame.Tasks))
		for j, id := range frame.Tasks {
			names[j] = id.String()
		}
		c.logger.Debug("schedule frame", F("frame", i), F("tasks", names))
	}
}
