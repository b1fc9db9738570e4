package core

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

// cyclicHarness wires a CyclicExecutive to a virtual clock so tests can
// drive frames deterministically, without real delays.
type cyclicHarness struct {
	exec      *CyclicExecutive
	clock     *VirtualClock
	log       *ExecutionLog
	sensor    *StaticSensor
	indicator *CountingIndicator
	table     ScheduleTable
}

func newCyclicHarness(t *testing.T, tasks []Task, sensorValue uint8, reporter *Reporter) *cyclicHarness {
	t.Helper()

	h := &cyclicHarness{
		clock:     NewVirtualClock(0),
		log:       NewExecutionLog(200),
		sensor:    NewStaticSensor(sensorValue),
		indicator: &CountingIndicator{},
		table:     DefaultScheduleTable(),
	}
	if reporter != nil {
		h.log = reporter.log
	}

	exec, err := NewCyclicExecutive(h.table, tasks, h.log, h.clock, h.sensor, CyclicOptions{
		Indicator: h.indicator,
		Reporter:  reporter,
	})
	if err != nil {
		t.Fatalf("NewCyclicExecutive failed: %v", err)
	}
	h.exec = exec
	return h
}

// tickFrames drives n minor frames, sleeping to each frame boundary between
// ticks the way the periodic timer would, plus jitterUS of extra delay per
// tick.
func (h *cyclicHarness) tickFrames(t *testing.T, n int, jitterUS Micros) {
	t.Helper()
	ctx := context.Background()
	base := h.clock.Now()

	for i := 0; i < n; i++ {
		if err := h.exec.Tick(ctx); err != nil {
			t.Fatalf("Tick %d failed: %v", i, err)
		}
		h.clock.SleepUntil(ctx, base+Micros(i+1)*h.table.MinorFrame)
		if jitterUS > 0 {
			h.clock.Advance(jitterUS)
		}
	}
}

func findJobs(jobs []Job, id TaskID) []Job {
	var out []Job
	for _, j := range jobs {
		if j.TaskID == id {
			out = append(out, j)
		}
	}
	return out
}

// TestCyclicExecutive_SkipOnMaxSensor tests the degradation policy at full demand
// Main test items:
// 1. Sensor value 255 predicts ~8ms, far above any frame's remaining slack
// 2. Task_C is SKIPPED with zero start/completion timestamps
// 3. The overrun indicator toggles for the skip
func TestCyclicExecutive_SkipOnMaxSensor(t *testing.T) {
	h := newCyclicHarness(t, DefaultTaskSet(), 255, nil)

	// Frames 0..3; frame 3 is the first Task_C release.
	h.tickFrames(t, 4, 0)

	jobs, _ := h.log.DrainAndReset()
	cJobs := findJobs(jobs, TaskC)
	if len(cJobs) != 1 {
		t.Fatalf("Task_C records = %d, want 1", len(cJobs))
	}

	c := cJobs[0]
	if c.Outcome != OutcomeSkipped {
		t.Fatalf("Task_C outcome = %s, want SKIPPED", c.Outcome)
	}
	if c.Start != 0 || c.Completion != 0 {
		t.Errorf("skipped job timestamps = %d/%d, want 0/0", c.Start, c.Completion)
	}
	if h.indicator.Overruns() == 0 {
		t.Error("overrun indicator did not toggle for the skip")
	}
}

// TestCyclicExecutive_ExecuteOnZeroSensor tests the opposite extreme
// Main test items:
// 1. Sensor value 0 predicts zero demand
// 2. Task_C always executes, with zero measured execution time
func TestCyclicExecutive_ExecuteOnZeroSensor(t *testing.T) {
	h := newCyclicHarness(t, DefaultTaskSet(), 0, nil)

	h.tickFrames(t, 4, 0)

	jobs, _ := h.log.DrainAndReset()
	cJobs := findJobs(jobs, TaskC)
	if len(cJobs) != 1 {
		t.Fatalf("Task_C records = %d, want 1", len(cJobs))
	}
	if cJobs[0].Outcome != OutcomeOK {
		t.Fatalf("Task_C outcome = %s, want OK", cJobs[0].Outcome)
	}
	if got := cJobs[0].ExecTime(); got != 0 {
		t.Errorf("Task_C exec time = %d, want 0", got)
	}
}

// TestCyclicExecutive_OverloadedFrame tests the documented stress frame
// Main test items:
// 1. Every occurrence of frame 17 logs at least one MISS or SKIPPED job
// 2. With a mid-range sensor the pattern is exactly one MISS (Task_E,
//    completing 2ms past the frame deadline) and one SKIPPED (Task_C)
// 3. Miss counters advance by two per hyperperiod, all from frame 17
func TestCyclicExecutive_OverloadedFrame(t *testing.T) {
	h := newCyclicHarness(t, DefaultTaskSet(), 64, nil)

	const hyperperiods = 3
	h.tickFrames(t, hyperperiods*len(h.table.Frames), 0)

	jobs, summary := h.log.DrainAndReset()
	if got := len(jobs); got != hyperperiods*43 {
		t.Fatalf("logged jobs = %d, want %d", got, hyperperiods*43)
	}

	occurrences := 0
	for _, job := range jobs {
		if job.Frame != 17 {
			if job.Outcome != OutcomeOK {
				t.Errorf("%s in frame %d: outcome %s, want OK outside frame 17",
					job.Name, job.Frame, job.Outcome)
			}
			continue
		}
		switch job.TaskID {
		case TaskE:
			occurrences++
			if job.Outcome != OutcomeMiss {
				t.Errorf("Task_E in frame 17: outcome %s, want MISS", job.Outcome)
			}
			if job.Completion <= job.Deadline {
				t.Errorf("Task_E marked MISS but completion %d <= deadline %d",
					job.Completion, job.Deadline)
			}
		case TaskC:
			if job.Outcome != OutcomeSkipped {
				t.Errorf("Task_C in frame 17: outcome %s, want SKIPPED", job.Outcome)
			}
		}
	}
	if occurrences != hyperperiods {
		t.Errorf("frame 17 Task_E occurrences = %d, want %d", occurrences, hyperperiods)
	}

	if summary.Missed != hyperperiods || summary.Skipped != hyperperiods {
		t.Errorf("summary = %+v, want %d missed and %d skipped", summary, hyperperiods, hyperperiods)
	}
	if got := h.log.MissesTotal(); got != uint64(2*hyperperiods) {
		t.Errorf("misses_total = %d, want %d", got, 2*hyperperiods)
	}
	if got := h.indicator.Overruns(); got != uint64(2*hyperperiods) {
		t.Errorf("overrun toggles = %d, want %d", got, 2*hyperperiods)
	}
}

// TestCyclicExecutive_FeasibleHyperperiod tests a miss-free cycle
// Main test items:
// 1. With Task_E shortened to 2ms and the sensor at 0 no frame overloads
// 2. One hyperperiod logs exactly the configured occurrence counts
// 3. misses_total does not increase
func TestCyclicExecutive_FeasibleHyperperiod(t *testing.T) {
	tasks := DefaultTaskSet()
	for i := range tasks {
		if tasks[i].ID == TaskE {
			tasks[i].Nominal = 2_000
		}
	}

	h := newCyclicHarness(t, tasks, 0, nil)
	h.tickFrames(t, len(h.table.Frames), 0)

	jobs, summary := h.log.DrainAndReset()
	if len(jobs) != 43 {
		t.Fatalf("logged jobs = %d, want 43", len(jobs))
	}

	counts := map[TaskID]int{}
	for _, job := range jobs {
		counts[job.TaskID]++
	}
	for _, task := range tasks {
		want := int(h.table.Hyperperiod() / task.Period)
		if counts[task.ID] != want {
			t.Errorf("%s: %d jobs, want %d", task.Name, counts[task.ID], want)
		}
	}

	if summary.Missed != 0 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want no misses", summary)
	}
	if got := h.log.MissesTotal(); got != 0 {
		t.Errorf("misses_total = %d, want 0", got)
	}
}

// TestCyclicExecutive_BaseTimeAnchoring tests drift-free release math
// Main test items:
// 1. Releases and deadlines derive from the base captured on the first tick
// 2. Injected per-tick jitter never shows up in release times
// 3. Outcome labels stay consistent with the timestamps
func TestCyclicExecutive_BaseTimeAnchoring(t *testing.T) {
	h := newCyclicHarness(t, DefaultTaskSet(), 0, nil)
	base := h.clock.Now()

	// 300us of extra delay after every tick; absolute targets must absorb it.
	h.tickFrames(t, len(h.table.Frames), 300)

	jobs, _ := h.log.DrainAndReset()
	for _, job := range jobs {
		wantRelease := base + Micros(job.Seq)*h.table.MinorFrame
		if job.Release != wantRelease {
			t.Errorf("%s tick %d: release %d, want %d", job.Name, job.Seq, job.Release, wantRelease)
		}
		if job.Deadline != wantRelease+h.table.MinorFrame {
			t.Errorf("%s tick %d: deadline %d, want %d", job.Name, job.Seq, job.Deadline,
				wantRelease+h.table.MinorFrame)
		}

		switch job.Outcome {
		case OutcomeOK:
			if job.Completion > job.Deadline {
				t.Errorf("%s: OK but completion %d > deadline %d", job.Name, job.Completion, job.Deadline)
			}
		case OutcomeMiss:
			if job.Completion <= job.Deadline {
				t.Errorf("%s: MISS but completion %d <= deadline %d", job.Name, job.Completion, job.Deadline)
			}
		}
	}
}

// TestCyclicExecutive_ReporterBoundary tests the hyperperiod hand-off
// Main test items:
// 1. The reporter drains the log exactly at the hyperperiod boundary
// 2. The hyperperiod indicator toggles once per cycle
// 3. The rendered report carries the job table and summary counts
func TestCyclicExecutive_ReporterBoundary(t *testing.T) {
	var buf bytes.Buffer
	log := NewExecutionLog(0)
	indicator := &CountingIndicator{}
	reporter := NewReporter(log, &buf, nil, nil, indicator)

	h := newCyclicHarness(t, DefaultTaskSet(), 64, reporter)
	h.tickFrames(t, 2*len(h.table.Frames), 0)

	if got := h.log.Len(); got != 0 {
		t.Errorf("log holds %d records after boundary flushes, want 0", got)
	}
	if got := indicator.Hyperperiods(); got != 2 {
		t.Errorf("hyperperiod toggles = %d, want 2", got)
	}
	if got := reporter.Hyperperiods(); got != 2 {
		t.Errorf("reports emitted = %d, want 2", got)
	}

	out := buf.String()
	if !strings.Contains(out, "Hyperperiod 1 Report") || !strings.Contains(out, "Hyperperiod 2 Report") {
		t.Error("report output missing hyperperiod headers")
	}
	if !strings.Contains(out, "Total jobs scheduled: 43") {
		t.Error("report output missing job total")
	}
	if !strings.Contains(out, "WARNING: Deadline misses detected") {
		t.Error("report output missing the miss warning for the overloaded frame")
	}
}

// TestNewCyclicExecutive_Rejects tests constructor validation
func TestNewCyclicExecutive_Rejects(t *testing.T) {
	tasks := DefaultTaskSet()
	table := DefaultScheduleTable()
	log := NewExecutionLog(0)
	clock := NewVirtualClock(0)
	sensor := NewStaticSensor(0)

	bad := table
	bad.Frames = bad.Frames[:10]
	if _, err := NewCyclicExecutive(bad, tasks, log, clock, sensor, CyclicOptions{}); err == nil {
		t.Error("constructor accepted a malformed table")
	}

	if _, err := NewCyclicExecutive(table, tasks, nil, clock, sensor, CyclicOptions{}); err == nil {
		t.Error("constructor accepted a nil log")
	}
}

func TestCyclicExecutive_Stats(t *testing.T) {
	h := newCyclicHarness(t, DefaultTaskSet(), 64, nil)
	h.tickFrames(t, len(h.table.Frames), 0)

	stats := h.exec.Stats()
	if stats.Model != "cyclic" {
		t.Errorf("model = %q", stats.Model)
	}
	if stats.Ticks != uint64(len(h.table.Frames)) {
		t.Errorf("ticks = %d, want %d", stats.Ticks, len(h.table.Frames))
	}
	if stats.Hyperperiods != 1 {
		t.Errorf("hyperperiods = %d, want 1", stats.Hyperperiods)
	}
	if stats.MissesTotal != 2 {
		t.Errorf("misses_total = %d, want 2", stats.MissesTotal)
	}
}
