package core

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Reporter is the reporting aggregator: once per hyperperiod it drains the
// execution log, prints the human-readable job table, feeds metrics and
// toggles the hyperperiod indicator.
//
// The report surface is purely observational. Under the cyclic model Flush is
// called synchronously at the hyperperiod boundary; under the rate-monotonic
// model it runs in the lowest-priority activation so it never delays a task.
type Reporter struct {
	log       *ExecutionLog
	out       io.Writer
	logger    Logger
	metrics   Metrics
	indicator StatusIndicator

	mu           sync.Mutex
	hyperperiods uint64 // monotone report number, never reset
}

// NewReporter wires the aggregator to its collaborators. Nil logger, metrics
// and indicator default to the no-op implementations; a nil writer suppresses
// the text table.
func NewReporter(log *ExecutionLog, out io.Writer, logger Logger, metrics Metrics, indicator StatusIndicator) *Reporter {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if indicator == nil {
		indicator = NopIndicator{}
	}
	return &Reporter{
		log:       log,
		out:       out,
		logger:    logger,
		metrics:   metrics,
		indicator: indicator,
	}
}

// Flush drains the log, emits the report for one hyperperiod and returns the
// outcome summary. The log is left empty; flushing again without intervening
// appends reports zero records.
func (r *Reporter) Flush(model string) Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hyperperiods++
	jobs, summary := r.log.DrainAndReset()
	missesTotal := r.log.MissesTotal()

	r.render(jobs, summary, missesTotal)

	for _, job := range jobs {
		r.metrics.RecordJobOutcome(job.Name, job.Outcome)
		if job.Outcome != OutcomeSkipped {
			r.metrics.RecordExecTime(job.Name, time.Duration(job.ExecTime())*time.Microsecond)
		}
	}
	r.metrics.RecordLogDepth(len(jobs))
	r.metrics.RecordHyperperiod(model)

	r.indicator.ToggleHyperperiod()

	r.logger.Info("hyperperiod report",
		F("hyperperiod", r.hyperperiods),
		F("jobs", len(jobs)),
		F("misses", summary.Missed),
		F("skipped", summary.Skipped),
		F("misses_total", missesTotal),
	)

	return summary
}

// Hyperperiods returns how many reports have been emitted.
func (r *Reporter) Hyperperiods() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hyperperiods
}

func (r *Reporter) render(jobs []Job, summary Summary, missesTotal uint64) {
	if r.out == nil {
		return
	}

	fmt.Fprintf(r.out, "\n========== Hyperperiod %d Report ==========\n", r.hyperperiods)
	fmt.Fprintln(r.out, "Frame | Task   | Release    | Start      | Complete   | Deadline   | Exec Time | Status")
	fmt.Fprintln(r.out, "------+--------+------------+------------+------------+------------+-----------+--------")

	for _, job := range jobs {
		frame := "  -"
		if job.Frame >= 0 {
			frame = fmt.Sprintf("%3d", job.Frame)
		}
		fmt.Fprintf(r.out, " %s  | %-6s | %10d | %10d | %10d | %10d | %6d us | %s\n",
			frame, job.Name, job.Release, job.Start, job.Completion, job.Deadline,
			job.ExecTime(), job.Outcome)
	}

	fmt.Fprintln(r.out, "========================================================================================")
	fmt.Fprintf(r.out, "Total jobs scheduled: %d\n", len(jobs))
	fmt.Fprintf(r.out, "Deadline misses (this hyperperiod): %d\n", summary.Missed+summary.Skipped)
	fmt.Fprintf(r.out, "Deadline misses (total): %d\n", missesTotal)

	if summary.Missed+summary.Skipped > 0 {
		fmt.Fprintln(r.out, "\n*** WARNING: Deadline misses detected! ***")
		fmt.Fprintln(r.out, "Response Strategy: skip the variable-duration task when slack is insufficient")
	}
	fmt.Fprintln(r.out)
}
