package core

import "fmt"

// Frame is one minor frame of the cyclic schedule: the ordered list of tasks
// dispatched when the frame is active. Order is execution order.
type Frame struct {
	Tasks []TaskID
}

// ScheduleTable is the offline-computed assignment of tasks to minor frames
// within one hyperperiod. It is built once at startup and read-only afterwards.
type ScheduleTable struct {
	MinorFrame Micros
	Frames     []Frame
}

// Hyperperiod returns the table's full cycle length.
func (t ScheduleTable) Hyperperiod() Micros {
	return t.MinorFrame * Micros(len(t.Frames))
}

// Occurrences returns how many frames schedule the given task.
func (t ScheduleTable) Occurrences(id TaskID) int {
	n := 0
	for _, frame := range t.Frames {
		for _, task := range frame.Tasks {
			if task == id {
				n++
			}
		}
	}
	return n
}

// JobsPerHyperperiod returns the total number of job releases in one cycle.
func (t ScheduleTable) JobsPerHyperperiod() int {
	n := 0
	for _, frame := range t.Frames {
		n += len(frame.Tasks)
	}
	return n
}

// FrameLoad returns the combined nominal duration of the frame's tasks,
// using predictedVariable as the instantaneous value for variable-duration
// tasks. Comparing the result against MinorFrame exposes infeasible frames;
// the schedule deliberately does not hide them.
func (t ScheduleTable) FrameLoad(frame int, tasks []Task, predictedVariable Micros) Micros {
	var load Micros
	for _, id := range t.Frames[frame].Tasks {
		task, ok := TaskByID(tasks, id)
		if !ok {
			continue
		}
		if task.Variable {
			load += predictedVariable
		} else {
			load += task.Nominal
		}
	}
	return load
}

// Validate checks the table against the task set: every task must occur
// exactly hyperperiod/period times, every period must divide into the
// hyperperiod, and every scheduled ID must exist in the set.
//
// Malformed tables are a configuration defect, not a runtime fault, so this
// is the only place they are rejected. Overloaded frames are legal; they are
// detected at run time through MISS/SKIPPED classification.
func (t ScheduleTable) Validate(tasks []Task) error {
	if t.MinorFrame <= 0 {
		return fmt.Errorf("minor frame must be positive, got %d", t.MinorFrame)
	}
	if len(t.Frames) == 0 {
		return fmt.Errorf("schedule has no frames")
	}

	hyperperiod := t.Hyperperiod()
	scheduled := make(map[TaskID]bool)
	for f, frame := range t.Frames {
		for _, id := range frame.Tasks {
			if _, ok := TaskByID(tasks, id); !ok {
				return fmt.Errorf("frame %d schedules unknown task %s", f, id)
			}
			scheduled[id] = true
		}
	}

	for _, task := range tasks {
		if hyperperiod%task.Period != 0 {
			return fmt.Errorf("%s: period %dus does not divide hyperperiod %dus",
				task.Name, task.Period, hyperperiod)
		}
		want := int(hyperperiod / task.Period)
		got := t.Occurrences(task.ID)
		if got != want {
			return fmt.Errorf("%s: %d occurrences per hyperperiod, schedule requires %d",
				task.Name, got, want)
		}
		if !scheduled[task.ID] {
			return fmt.Errorf("%s: not scheduled in any frame", task.Name)
		}
	}

	return nil
}

// DefaultScheduleTable returns the hand-derived reference schedule: 20 minor
// frames of 5ms, hyperperiod 100ms.
//
// Placement per hyperperiod:
//
//	B: every frame, always first (20x, period 5ms)
//	A: even frames               (10x, period 10ms)
//	F: frames 1,5,9,13,17        (5x,  period 20ms)
//	C: frames 3,8,13,17          (4x,  period 25ms)
//	D: frames 2,12               (2x,  period 50ms)
//	E: frames 7,17               (2x,  period 50ms)
//
// Frame 17 carries four tasks whose fixed load alone (B+F+E = 7ms) overruns
// the 5ms frame by 2ms before Task_C's variable demand is even added. The
// overload is kept as-is: it exercises the miss/skip machinery once per
// hyperperiod instead of being corrected offline.
func DefaultScheduleTable() ScheduleTable {
	return ScheduleTable{
		MinorFrame: 5_000,
		Frames: []Frame{
			{Tasks: []TaskID{TaskB, TaskA}},               // 0ms
			{Tasks: []TaskID{TaskB, TaskF}},               // 5ms
			{Tasks: []TaskID{TaskB, TaskA, TaskD}},        // 10ms
			{Tasks: []TaskID{TaskB, TaskC}},               // 15ms
			{Tasks: []TaskID{TaskB, TaskA}},               // 20ms
			{Tasks: []TaskID{TaskB, TaskF}},               // 25ms
			{Tasks: []TaskID{TaskB, TaskA}},               // 30ms
			{Tasks: []TaskID{TaskB, TaskE}},               // 35ms
			{Tasks: []TaskID{TaskB, TaskA, TaskC}},        // 40ms
			{Tasks: []TaskID{TaskB, TaskF}},               // 45ms
			{Tasks: []TaskID{TaskB, TaskA}},               // 50ms
			{Tasks: []TaskID{TaskB}},                      // 55ms
			{Tasks: []TaskID{TaskB, TaskA, TaskD}},        // 60ms
			{Tasks: []TaskID{TaskB, TaskF, TaskC}},        // 65ms
			{Tasks: []TaskID{TaskB, TaskA}},               // 70ms
			{Tasks: []TaskID{TaskB}},                      // 75ms
			{Tasks: []TaskID{TaskB, TaskA}},               // 80ms
			{Tasks: []TaskID{TaskB, TaskF, TaskE, TaskC}}, // 85ms, overloaded
			{Tasks: []TaskID{TaskB, TaskA}},               // 90ms
			{Tasks: []TaskID{TaskB}},                      // 95ms
		},
	}
}
