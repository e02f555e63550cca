package hooking

import "github.com/sarchlab/ddr4stim/sim/timing"

// BusyTimeTracer counts the cycles during which at least one task is in
// flight. Overlapping tasks count once.
type BusyTimeTracer struct {
	cycleTeller timing.CycleTeller
	filter      TaskFilter
	inflight    map[string]bool
	busySince   timing.Cycle
	busyCycles  timing.Cycle
}

// NewBusyTimeTracer creates a new BusyTimeTracer. A nil filter accepts every
// task.
func NewBusyTimeTracer(
	cycleTeller timing.CycleTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		cycleTeller: cycleTeller,
		filter:      filter,
		inflight:    make(map[string]bool),
	}
}

// Func records the start end of a task.
func (t *BusyTimeTracer) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		t.StartTask(ctx.Item.(TaskStart))
	case HookPosTaskEnd:
		t.EndTask(ctx.Item.(TaskEnd))
	}
}

// BusyCycles returns the busy cycles of the finished busy periods plus the
// current one.
func (t *BusyTimeTracer) BusyCycles() timing.Cycle {
	if len(t.inflight) == 0 {
		return t.busyCycles
	}

	return t.busyCycles + t.cycleTeller.Now() - t.busySince
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(taskStart TaskStart) {
	if t.filter != nil && !t.filter(taskStart) {
		return
	}

	if len(t.inflight) == 0 {
		t.busySince = t.cycleTeller.Now()
	}

	t.inflight[taskStart.ID] = true
}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(taskEnd TaskEnd) {
	if !t.inflight[taskEnd.ID] {
		return
	}

	delete(t.inflight, taskEnd.ID)

	if len(t.inflight) == 0 {
		t.busyCycles += t.cycleTeller.Now() - t.busySince
	}
}
