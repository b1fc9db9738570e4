package core

// Micros is a timestamp or duration in microseconds.
//
// All scheduling math is done on a microsecond timeline anchored at the
// scheduler's base time, never on wall-clock time. This keeps release and
// deadline computation exact and independent of tick jitter.
type Micros = int64

// TaskID identifies one of the six periodic workloads.
type TaskID uint8

const (
	TaskA TaskID = iota
	TaskB
	TaskC
	TaskD
	TaskE
	TaskF

	numTasks
)

// String returns the display name of the task ("Task_A" .. "Task_F").
func (id TaskID) String() string {
	names := [numTasks]string{"Task_A", "Task_B", "Task_C", "Task_D", "Task_E", "Task_F"}
	if int(id) < len(names) {
		return names[id]
	}
	return "Task_?"
}

// =============================================================================
// Task: immutable descriptor of a periodic workload
// =============================================================================

// Task describes one periodic workload. Descriptors are small value types
// created at configuration time and never mutated afterwards; both dispatcher
// back-ends switch on the Variable flag rather than dispatching through
// function pointers.
type Task struct {
	ID   TaskID
	Name string

	// Period between releases. The deadline is implicit (D = T) but carried
	// explicitly so a job's absolute deadline is always Release + Deadline.
	Period   Micros
	Deadline Micros

	// Priority is only meaningful under the rate-monotonic model. Higher
	// value means higher priority. Assigned once by AssignRateMonotonic.
	Priority int

	// Nominal execution duration. Zero when Variable is set: the duration is
	// then derived from the external sensor immediately before each release.
	Nominal  Micros
	Variable bool
}

// DefaultTaskSet returns the six reference tasks.
//
// Periods (ms): A=10 B=5 C=25 D=50 E=50 F=20, hyperperiod LCM = 100ms.
// Nominal durations (ms): A=1 B=1 D=2 E=4 F=2; C is sensor-driven (0..8ms).
func DefaultTaskSet() []Task {
	tasks := []Task{
		{ID: TaskA, Period: 10_000, Nominal: 1_000},
		{ID: TaskB, Period: 5_000, Nominal: 1_000},
		{ID: TaskC, Period: 25_000, Variable: true},
		{ID: TaskD, Period: 50_000, Nominal: 2_000},
		{ID: TaskE, Period: 50_000, Nominal: 4_000},
		{ID: TaskF, Period: 20_000, Nominal: 2_000},
	}
	for i := range tasks {
		tasks[i].Name = tasks[i].ID.String()
		tasks[i].Deadline = tasks[i].Period
	}
	return AssignRateMonotonic(tasks)
}

// AssignRateMonotonic assigns fixed priorities in rate-monotonic order:
// the task with the shortest period gets the highest priority. Ties are
// broken by TaskID (lower ID wins) so the assignment is deterministic.
//
// The input slice is returned with priorities filled in; order is preserved.
func AssignRateMonotonic(tasks []Task) []Task {
	// Rank tasks by period without disturbing the caller's ordering.
	order := make([]int, len(tasks))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := tasks[order[j]], tasks[order[j-1]]
			if a.Period < b.Period || (a.Period == b.Period && a.ID < b.ID) {
				order[j], order[j-1] = order[j-1], order[j]
			} else {
				break
			}
		}
	}

	// Highest priority = len(tasks), lowest = 1. Priority 0 is reserved for
	// the reporting aggregator so it never outranks a task.
	for rank, idx := range order {
		tasks[idx].Priority = len(tasks) - rank
	}
	return tasks
}

// TaskByID returns the descriptor for id, or false when the set does not
// contain it.
func TaskByID(tasks []Task, id TaskID) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
