package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// RateMonotonicScheduler is the preemptive alternative to the cyclic
// executive: every task becomes an independent, strictly periodic activation
// with a fixed rate-monotonic priority, plus one lowest-priority activation
// for the reporting aggregator.
//
// Each activation computes its own absolute release and deadline from the
// shared base time and its per-task sequence counter, applies the identical
// variable-task skip check, and suspends until the next period boundary with
// an anti-drift wait: the wake instant is base + (seq+1)*period, computed
// additively from the intended schedule, never from "now". Preemption between
// activations is provided by the runtime scheduler; the assigned priorities
// are carried in every record and drive the configuration-time ordering.
//
// The only shared mutable state is the execution log and its counters, behind
// one lock with O(1) critical sections. Activations run for the scheduler's
// lifetime; there is no per-job cancellation and an in-progress job is never
// aborted.
type RateMonotonicScheduler struct {
	tasks     []Task
	log       *ExecutionLog
	clock     Clock
	sensor    DurationSensor
	scale     SensorScale
	indicator StatusIndicator
	reporter  *Reporter
	logger    Logger

	hyperperiod Micros

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	base         Micros
	releases     atomic.Uint64
	hyperperiods atomic.Uint64
}

// RateMonotonicOptions carries the optional collaborators of the scheduler.
type RateMonotonicOptions struct {
	Scale     SensorScale
	Indicator StatusIndicator
	Reporter  *Reporter
	Logger    Logger
}

// NewRateMonotonicScheduler builds the priority-model scheduler. Priorities
// are (re)assigned here, at configuration time, in rate-monotonic order; they
// never change afterwards. The hyperperiod is derived as the LCM of all task
// periods.
func NewRateMonotonicScheduler(tasks []Task, log *ExecutionLog, clock Clock, sensor DurationSensor, opts RateMonotonicOptions) (*RateMonotonicScheduler, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("task set is empty")
	}
	if log == nil || clock == nil || sensor == nil {
		return nil, fmt.Errorf("log, clock and sensor are required")
	}

	owned := make([]Task, len(tasks))
	copy(owned, tasks)
	owned = AssignRateMonotonic(owned)

	hyperperiod := owned[0].Period
	for _, t := range owned[1:] {
		hyperperiod = lcm(hyperperiod, t.Period)
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

	return &RateMonotonicScheduler{
		tasks:       owned,
		log:         log,
		clock:       clock,
		sensor:      sensor,
		scale:       opts.Scale,
		indicator:   opts.Indicator,
		reporter:    opts.Reporter,
		logger:      opts.Logger,
		hyperperiod: hyperperiod,
	}, nil
}

// Hyperperiod returns the LCM of all task periods.
func (s *RateMonotonicScheduler) Hyperperiod() Micros {
	return s.hyperperiod
}

// Tasks returns the task set with assigned priorities, in descending
// priority order.
func (s *RateMonotonicScheduler) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Priority > out[j-1].Priority; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Start captures the shared base time and launches one periodic activation
// per task plus the aggregator activation. It returns immediately; use Stop
// or cancel ctx to end the run.
func (s *RateMonotonicScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.base = s.clock.Now()

	s.logger.Info("rate-monotonic scheduler started",
		F("tasks", len(s.tasks)),
		F("hyperperiod_us", s.hyperperiod),
	)
	for _, t := range s.Tasks() {
		s.logger.Debug("periodic activation",
			F("task", t.Name), F("period_us", t.Period), F("priority", t.Priority))
	}

	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.activationLoop(runCtx, task)
	}

	if s.reporter != nil {
		s.wg.Add(1)
		go s.aggregatorLoop(runCtx)
	}

	return nil
}

// Stop cancels all activations and waits for them to exit. In-progress jobs
// finish their current sleep; no partial records are written.
func (s *RateMonotonicScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// activationLoop is the strictly periodic body shared by all tasks.
func (s *RateMonotonicScheduler) activationLoop(ctx context.Context, task Task) {
	defer s.wg.Done()

	for seq := uint64(0); ; seq++ {
		release := s.base + Micros(seq)*task.Period
		deadline := release + task.Deadline

		s.runJob(ctx, task, seq, release, deadline)
		s.releases.Add(1)

		// Anti-drift wait: the wake instant derives from the intended
		// schedule, so jitter from this job cannot leak into the next.
		if err := s.clock.SleepUntil(ctx, s.base+Micros(seq+1)*task.Period); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *RateMonotonicScheduler) runJob(ctx context.Context, task Task, seq uint64, release, deadline Micros) {
	duration := task.Nominal

	if task.Variable {
		value := s.sensor.Read()
		predicted := s.scale.Predicted(value)
		slack := deadline - s.clock.Now()

		if slack < predicted {
			s.log.Append(Job{
				TaskID:   task.ID,
				Name:     task.Name,
				Frame:    -1,
				Seq:      seq,
				Release:  release,
				Deadline: deadline,
				Outcome:  Classify(0, deadline, true),
			})
			s.indicator.ToggleOverrun()
			return
		}
		duration = s.scale.Duration(value)
	}

	start := s.clock.Now()
	if err := s.clock.SleepUntil(ctx, start+duration); err != nil {
		// Shutdown interrupted the job mid-execution; no record is written
		// for a job that neither completed nor was skipped.
		return
	}
	completion := s.clock.Now()

	outcome := Classify(completion, deadline, false)
	s.log.Append(Job{
		TaskID:     task.ID,
		Name:       task.Name,
		Frame:      -1,
		Seq:        seq,
		Release:    release,
		Start:      start,
		Completion: completion,
		Deadline:   deadline,
		Outcome:    outcome,
	})

	if outcome == OutcomeMiss {
		s.indicator.ToggleOverrun()
	}
}

// aggregatorLoop is the reporting activation. It waits one full hyperperiod
// before its first drain so there is data to report, then flushes at every
// hyperperiod boundary using the same anti-drift wait as the task loops.
func (s *RateMonotonicScheduler) aggregatorLoop(ctx context.Context) {
	defer s.wg.Done()

	for n := uint64(1); ; n++ {
		if err := s.clock.SleepUntil(ctx, s.base+Micros(n)*s.hyperperiod); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		s.reporter.Flush("rate_monotonic")
		s.hyperperiods.Add(1)
	}
}

// Stats implements StatsProvider.
func (s *RateMonotonicScheduler) Stats() SchedulerStats {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return SchedulerStats{
		Model:        "rate_monotonic",
		Ticks:        s.releases.Load(),
		Hyperperiods: s.hyperperiods.Load(),
		MissesTotal:  s.log.MissesTotal(),
		LogDepth:     s.log.Len(),
		Running:      running,
	}
}

func lcm(a, b Micros) Micros {
	return a / gcd(a, b) * b
}

func gcd(a, b Micros) Micros {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
