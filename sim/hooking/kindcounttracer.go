package hooking

// KindCountTracer counts how many tasks of each kind started and how many of
// them ended with an error.
type KindCountTracer struct {
	kindNames  []string
	kindCount  map[string]uint64
	errorCount map[string]uint64
	inflight   map[string]string
}

// NewKindCountTracer creates a new KindCountTracer.
func NewKindCountTracer() *KindCountTracer {
	return &KindCountTracer{
		kindCount:  make(map[string]uint64),
		errorCount: make(map[string]uint64),
		inflight:   make(map[string]string),
	}
}

// Func updates the counters.
func (t *KindCountTracer) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		start := ctx.Item.(TaskStart)
		t.count(start.What)
		t.inflight[start.ID] = start.What
	case HookPosTaskEnd:
		end := ctx.Item.(TaskEnd)

		what, ok := t.inflight[end.ID]
		if !ok {
			return
		}

		delete(t.inflight, end.ID)

		if end.Err != "" {
			t.errorCount[what]++
		}
	}
}

func (t *KindCountTracer) count(what string) {
	_, ok := t.kindCount[what]
	if !ok {
		t.kindNames = append(t.kindNames, what)
	}

	t.kindCount[what]++
}

// KindNames returns the kinds seen, in first-seen order.
func (t *KindCountTracer) KindNames() []string {
	return t.kindNames
}

// Count returns the number of tasks started with the given kind.
func (t *KindCountTracer) Count(what string) uint64 {
	return t.kindCount[what]
}

// ErrorCount returns the number of tasks of the given kind that ended with an
// error.
func (t *KindCountTracer) ErrorCount(what string) uint64 {
	return t.errorCount[what]
}
