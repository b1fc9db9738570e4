// Package rtsched is a single-processor real-time scheduling testbed that
// evaluates two competing designs for the same fixed mix of six periodic
// workloads: a time-triggered cyclic executive and a preemptive fixed-priority
// scheduler with rate-monotonic priorities.
//
// Both back-ends share one timing contract: every job is released at a known
// absolute time, must finish before its deadline, and any miss is observed,
// counted and signaled without destabilizing the rest of the system.
//
// # Quick Start
//
// Run the cyclic executive over the reference schedule:
//
//	log := rtsched.NewExecutionLog(0)
//	clock := rtsched.NewSystemClock()
//	sensor := rtsched.NewStaticSensor(64)
//	reporter := rtsched.NewReporter(log, os.Stdout, nil, nil, nil)
//
//	exec, err := rtsched.NewCyclicExecutive(
//		rtsched.DefaultScheduleTable(), rtsched.DefaultTaskSet(),
//		log, clock, sensor, core.CyclicOptions{Reporter: reporter})
//	if err != nil {
//		panic(err)
//	}
//	exec.Run(context.Background(), 10) // ten hyperperiods
//
// # Key Concepts
//
// ScheduleTable: the offline-computed assignment of tasks to minor frames
// within one hyperperiod. The cyclic executive dispatches frames at a fixed
// cadence, non-preemptively, anchoring all release and deadline math at the
// base time captured on the first tick.
//
// RateMonotonicScheduler: the alternative model. Each task runs as an
// independent strictly-periodic activation at a fixed rate-monotonic
// priority, with an anti-drift wait between releases, and the reporting
// aggregator runs as the lowest-priority activation.
//
// ExecutionLog: the bounded, lock-guarded record of job attempts, drained and
// reset once per hyperperiod by the Reporter. Misses and skips are counted
// inside the same critical section that appends the record.
//
// # Degradation Policy
//
// One task's duration is driven by an external 8-bit sensor. Immediately
// before each of its releases the dispatcher predicts the demand and, when
// the remaining slack is insufficient, skips the job: a SKIPPED record is
// logged, the overrun indicator toggles, and the schedule proceeds. No job is
// ever retried, and an in-progress job is never aborted.
package rtsched
