package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ddr4stim/sim/timing"
)

var _ = Describe("BusyTimeTracer", func() {
	var (
		clock *stubCycleTeller
		t     *BusyTimeTracer
	)

	BeforeEach(func() {
		clock = &stubCycleTeller{}
		t = NewBusyTimeTracer(clock, nil)
	})

	It("should add separate tasks", func() {
		t.StartTask(TaskStart{ID: "1"})
		clock.now = 8
		t.EndTask(TaskEnd{ID: "1"})

		clock.now = 20
		t.StartTask(TaskStart{ID: "2"})
		clock.now = 24
		t.EndTask(TaskEnd{ID: "2"})

		Expect(t.BusyCycles()).To(Equal(timing.Cycle(12)))
	})

	It("should count overlapping tasks once", func() {
		t.StartTask(TaskStart{ID: "1"})
		clock.now = 4
		t.StartTask(TaskStart{ID: "2"})
		clock.now = 8
		t.EndTask(TaskEnd{ID: "1"})
		clock.now = 10
		t.EndTask(TaskEnd{ID: "2"})

		Expect(t.BusyCycles()).To(Equal(timing.Cycle(10)))
	})

	It("should include the running period", func() {
		clock.now = 5
		t.StartTask(TaskStart{ID: "1"})
		clock.now = 9

		Expect(t.BusyCycles()).To(Equal(timing.Cycle(4)))
	})

	It("should skip filtered tasks", func() {
		t = NewBusyTimeTracer(clock,
			func(ts TaskStart) bool { return ts.What == "read" })

		t.Func(HookCtx{Pos: HookPosTaskStart,
			Item: TaskStart{ID: "1", What: "write"}})
		clock.now = 4
		t.Func(HookCtx{Pos: HookPosTaskEnd, Item: TaskEnd{ID: "1"}})

		Expect(t.BusyCycles()).To(BeZero())
	})
})

var _ = Describe("TagCountTracer", func() {
	It("should count the tags of accepted tasks", func() {
		t := NewTagCountTracer(func(ts TaskStart) bool { return ts.Kind == "cmd" })

		t.Func(HookCtx{Pos: HookPosTaskStart,
			Item: TaskStart{ID: "1", Kind: "cmd", What: "write"}})
		t.Func(HookCtx{Pos: HookPosTaskTag,
			Item: TaskTag{TaskID: "1", What: "auto_precharge"}})
		t.Func(HookCtx{Pos: HookPosTaskEnd, Item: TaskEnd{ID: "1"}})

		t.Func(HookCtx{Pos: HookPosTaskStart,
			Item: TaskStart{ID: "2", Kind: "other", What: "write"}})
		t.Func(HookCtx{Pos: HookPosTaskTag,
			Item: TaskTag{TaskID: "2", What: "auto_precharge"}})

		t.TagTask(TaskTag{TaskID: "3", What: "auto_precharge"})

		Expect(t.TagNames()).To(Equal([]string{"auto_precharge"}))
		Expect(t.TagCount("auto_precharge")).To(Equal(uint64(1)))
	})
})
