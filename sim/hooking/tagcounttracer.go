package hooking

// TagCountTracer counts the tags attached to the tasks that pass its filter.
type TagCountTracer struct {
	filter   TaskFilter
	inflight map[string]bool
	tagNames []string
	tagCount map[string]uint64
}

// NewTagCountTracer creates a new TagCountTracer. A nil filter accepts every
// task.
func NewTagCountTracer(filter TaskFilter) *TagCountTracer {
	return &TagCountTracer{
		filter:   filter,
		inflight: make(map[string]bool),
		tagCount: make(map[string]uint64),
	}
}

// Func counts the tags.
func (t *TagCountTracer) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		start := ctx.Item.(TaskStart)
		if t.filter == nil || t.filter(start) {
			t.inflight[start.ID] = true
		}
	case HookPosTaskTag:
		t.TagTask(ctx.Item.(TaskTag))
	case HookPosTaskEnd:
		delete(t.inflight, ctx.Item.(TaskEnd).ID)
	}
}

// TagNames returns the tag names seen, in first-seen order.
func (t *TagCountTracer) TagNames() []string {
	return t.tagNames
}

// TagCount returns how many times a tag was attached.
func (t *TagCountTracer) TagCount(tagName string) uint64 {
	return t.tagCount[tagName]
}

// TagTask counts a tag of an in-flight task.
func (t *TagCountTracer) TagTask(taskTag TaskTag) {
	if !t.inflight[taskTag.TaskID] {
		return
	}

	_, ok := t.tagCount[taskTag.What]
	if !ok {
		t.tagNames = append(t.tagNames, taskTag.What)
	}

	t.tagCount[taskTag.What]++
}
