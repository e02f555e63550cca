package hooking

import "github.com/sarchlab/ddr4stim/sim/timing"

// A list of hook poses for the hooks to apply to
var (
	HookPosTaskStart = &HookPos{Name: "HookPosTaskStart"}
	HookPosTaskTag   = &HookPos{Name: "HookPosTaskTag"}
	HookPosTaskStep  = &HookPos{Name: "HookPosTaskStep"}
	HookPosTaskEnd   = &HookPos{Name: "HookPosTaskEnd"}
)

// TaskStart is data that is passed to the hook when a task starts.
type TaskStart struct {
	ID       string
	ParentID string
	Kind     string
	What     string
	Where    string
}

// TaskTag is data attached to a task to provide more information about the
// task.
type TaskTag struct {
	TaskID string
	What   string
	Detail string
}

// TaskStep is data that is passed to the hook when a task takes a step.
type TaskStep struct {
	TaskID string
	StepID string
	Kind   string
	What   string
	Detail string
}

// TaskEnd is data that is passed to the hook when a task ends. A task that
// ends with a non-empty Err was rejected or aborted.
type TaskEnd struct {
	ID  string
	Err string
}

// Step is a recorded TaskStep.
type Step struct {
	ID     string       `json:"id"`
	Cycle  timing.Cycle `json:"cycle"`
	Kind   string       `json:"kind"`
	What   string       `json:"what"`
	Detail string       `json:"detail"`
}

// Tag is a recorded TaskTag.
type Tag struct {
	What   string `json:"what"`
	Detail string `json:"detail"`
}

// Task is everything a tracer learned about one task.
type Task struct {
	ID         string       `json:"id"`
	ParentID   string       `json:"parent_id"`
	Kind       string       `json:"kind"`
	What       string       `json:"what"`
	Where      string       `json:"where"`
	StartCycle timing.Cycle `json:"start_cycle"`
	EndCycle   timing.Cycle `json:"end_cycle"`
	Err        string       `json:"err"`
	Steps      []Step       `json:"steps"`
	Tags       []Tag        `json:"tags"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t TaskStart) bool
