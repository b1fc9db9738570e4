package core

// Outcome classifies one job attempt.
type Outcome uint8

const (
	// OutcomeOK: the job completed at or before its deadline.
	OutcomeOK Outcome = iota

	// OutcomeMiss: the job completed after its deadline. The job is never
	// retried; the next release proceeds on schedule.
	OutcomeMiss

	// OutcomeSkipped: execution was withheld because the predicted duration
	// exceeded the remaining slack. Counts as a miss.
	OutcomeSkipped
)

// String returns the report label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeMiss:
		return "MISS"
	case OutcomeSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// Job is one execution instance (release) of a task. A Job is finalized at
// completion or at the skip decision and never updated after it is appended
// to the execution log.
type Job struct {
	TaskID TaskID
	Name   string

	// Frame is the minor-frame index under the cyclic model, -1 under the
	// rate-monotonic model.
	Frame int

	// Seq is the per-task release index; Release = base + Seq*Period under
	// the rate-monotonic model. The cyclic model keys releases by frame.
	Seq uint64

	Release    Micros
	Start      Micros
	Completion Micros
	Deadline   Micros

	Outcome Outcome
}

// ExecTime returns the measured execution time, zero for skipped jobs.
func (j Job) ExecTime() Micros {
	if j.Outcome == OutcomeSkipped {
		return 0
	}
	return j.Completion - j.Start
}

// Missed reports whether the job counts against the miss counters.
func (j Job) Missed() bool {
	return j.Outcome != OutcomeOK
}

// Classify is the deadline monitor: a pure function over a job attempt's
// timestamps. Skipped jobs are classified before execution and carry zero
// start/completion times; otherwise a job misses exactly when it completes
// strictly after its deadline.
func Classify(completion, deadline Micros, skipped bool) Outcome {
	if skipped {
		return OutcomeSkipped
	}
	if completion > deadline {
		return OutcomeMiss
	}
	return OutcomeOK
}
