package hooking

import (
	"log"

	"github.com/sarchlab/ddr4stim/sim/timing"
	"github.com/tebeka/atexit"
)

// TracerBackend is a backend that can store tasks.
type TracerBackend interface {
	// Write writes a task to the storage.
	Write(t Task)

	// Flush flushes the tasks to the storage, in case if the backend buffers
	// the tasks.
	Flush()
}

// TaskTracer assembles the start, step, tag, and end of each task and hands
// complete tasks to a backend.
type TaskTracer struct {
	cycleTeller  timing.CycleTeller
	backend      TracerBackend
	filter       TaskFilter
	tracingTasks map[string]Task
}

// NewTaskTracer creates a new TaskTracer. Tasks still open at program exit are
// written with the exit cycle as their end.
func NewTaskTracer(
	cycleTeller timing.CycleTeller,
	backend TracerBackend,
) *TaskTracer {
	t := &TaskTracer{
		cycleTeller:  cycleTeller,
		backend:      backend,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() { t.Terminate() })

	return t
}

// WithFilter only keeps the tasks that pass the filter.
func (t *TaskTracer) WithFilter(filter TaskFilter) *TaskTracer {
	t.filter = filter
	return t
}

// Func records the start end of a task.
func (t *TaskTracer) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		t.StartTask(ctx.Item.(TaskStart))
	case HookPosTaskStep:
		t.StepTask(ctx.Item.(TaskStep))
	case HookPosTaskTag:
		t.TagTask(ctx.Item.(TaskTag))
	case HookPosTaskEnd:
		t.EndTask(ctx.Item.(TaskEnd))
	}
}

// StartTask marks the start of a task.
func (t *TaskTracer) StartTask(taskStart TaskStart) {
	startingTaskMustBeValid(taskStart)

	if t.filter != nil && !t.filter(taskStart) {
		return
	}

	t.tracingTasks[taskStart.ID] = Task{
		ID:         taskStart.ID,
		ParentID:   taskStart.ParentID,
		Kind:       taskStart.Kind,
		What:       taskStart.What,
		Where:      taskStart.Where,
		StartCycle: t.cycleTeller.Now(),
	}
}

func startingTaskMustBeValid(task TaskStart) {
	if task.ID == "" {
		log.Panic("task ID must be set")
	}

	if task.Kind == "" {
		log.Panic("task kind must be set")
	}

	if task.What == "" {
		log.Panic("task what must be set")
	}

	if task.Where == "" {
		log.Panic("task where must be set")
	}
}

// StepTask marks a step of a task.
func (t *TaskTracer) StepTask(ts TaskStep) {
	originalTask, ok := t.tracingTasks[ts.TaskID]
	if !ok {
		return
	}

	originalTask.Steps = append(originalTask.Steps, Step{
		ID:     ts.StepID,
		Cycle:  t.cycleTeller.Now(),
		Kind:   ts.Kind,
		What:   ts.What,
		Detail: ts.Detail,
	})

	t.tracingTasks[ts.TaskID] = originalTask
}

// TagTask marks a tag of a task.
func (t *TaskTracer) TagTask(tt TaskTag) {
	originalTask, ok := t.tracingTasks[tt.TaskID]
	if !ok {
		return
	}

	originalTask.Tags = append(originalTask.Tags, Tag{
		What:   tt.What,
		Detail: tt.Detail,
	})

	t.tracingTasks[tt.TaskID] = originalTask
}

// EndTask marks the end of a task.
func (t *TaskTracer) EndTask(taskEnd TaskEnd) {
	originalTask, ok := t.tracingTasks[taskEnd.ID]
	if !ok {
		return
	}

	originalTask.EndCycle = t.cycleTeller.Now()
	originalTask.Err = taskEnd.Err

	delete(t.tracingTasks, taskEnd.ID)

	t.backend.Write(originalTask)
}

// Terminate writes out unfinished tasks and flushes the backend.
func (t *TaskTracer) Terminate() {
	for _, task := range t.tracingTasks {
		task.EndCycle = t.cycleTeller.Now()
		t.backend.Write(task)
	}

	t.tracingTasks = make(map[string]Task)

	t.backend.Flush()
}
