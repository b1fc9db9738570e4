package core

import "sync"

// DefaultLogCapacity bounds the number of job records kept per hyperperiod.
// 43 jobs are scheduled per hyperperiod in the reference configuration; the
// headroom absorbs reporting that runs late.
const DefaultLogCapacity = 50

// Summary holds per-hyperperiod outcome totals.
type Summary struct {
	OK      int
	Missed  int
	Skipped int
}

// Jobs returns the total number of job attempts in the summary.
func (s Summary) Jobs() int {
	return s.OK + s.Missed + s.Skipped
}

// ExecutionLog is the bounded, insertion-ordered sequence of job records
// shared by all producers and drained once per hyperperiod by the reporting
// aggregator.
//
// One mutex guards the records and both miss counters, so a drained snapshot
// is always consistent with the counters read next to it. Critical sections
// are O(1) per record and never span a job's execution. Appends beyond
// capacity are dropped silently: losing a record must never stall or crash a
// dispatcher.
type ExecutionLog struct {
	mu       sync.Mutex
	records  []Job
	capacity int

	missesCurrent uint64 // reset each hyperperiod drain
	missesTotal   uint64 // never reset
	dropped       uint64
}

// NewExecutionLog creates a log bounded at capacity records. A non-positive
// capacity falls back to DefaultLogCapacity.
func NewExecutionLog(capacity int) *ExecutionLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &ExecutionLog{
		records:  make([]Job, 0, capacity),
		capacity: capacity,
	}
}

// Append records a finalized job. Missed and skipped jobs bump both miss
// counters inside the same critical section. When the log is full the record
// is dropped and only the drop counter moves.
func (l *ExecutionLog) Append(job Job) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if job.Missed() {
		l.missesCurrent++
		l.missesTotal++
	}

	if len(l.records) >= l.capacity {
		l.dropped++
		return
	}
	l.records = append(l.records, job)
}

// DrainAndReset returns all records in insertion order together with their
// outcome summary, then empties the log and resets the per-hyperperiod miss
// counter. Draining an empty log returns no records; a second drain with no
// intervening appends is always empty.
func (l *ExecutionLog) DrainAndReset() ([]Job, Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var summary Summary
	for _, job := range l.records {
		switch job.Outcome {
		case OutcomeMiss:
			summary.Missed++
		case OutcomeSkipped:
			summary.Skipped++
		default:
			summary.OK++
		}
	}

	out := make([]Job, len(l.records))
	copy(out, l.records)

	l.records = l.records[:0]
	l.missesCurrent = 0

	return out, summary
}

// Len returns the number of buffered records.
func (l *ExecutionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// MissesCurrent returns the miss count accumulated since the last drain.
func (l *ExecutionLog) MissesCurrent() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.missesCurrent
}

// MissesTotal returns the miss count accumulated since process start.
func (l *ExecutionLog) MissesTotal() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.missesTotal
}

// Dropped returns the number of records lost to the capacity bound.
func (l *ExecutionLog) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
