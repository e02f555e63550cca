package trace

import (
	"bytes"
	"database/sql"
	"log"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ddr4stim/datarecording"
	"github.com/sarchlab/ddr4stim/dimm/device"
	"github.com/sarchlab/ddr4stim/sim/hooking"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

type fixedCycle timing.Cycle

func (c fixedCycle) Now() timing.Cycle {
	return timing.Cycle(c)
}

var _ = Describe("CommandLogger", func() {
	It("should print starts, tags, ends, and rejections", func() {
		buf := &bytes.Buffer{}
		l := NewCommandLogger(log.New(buf, "", 0), fixedCycle(8))

		l.Func(hooking.HookCtx{
			Pos:    hooking.HookPosTaskStart,
			Item:   hooking.TaskStart{ID: "1", Where: "DIMM"},
			Detail: "write bg0.ba0 col 3",
		})
		l.Func(hooking.HookCtx{
			Pos:  hooking.HookPosTaskTag,
			Item: hooking.TaskTag{TaskID: "1", What: "auto_precharge"},
		})
		l.Func(hooking.HookCtx{
			Pos:  hooking.HookPosTaskEnd,
			Item: hooking.TaskEnd{ID: "1"},
		})
		l.Func(hooking.HookCtx{
			Pos:  hooking.HookPosTaskEnd,
			Item: hooking.TaskEnd{ID: "2", Err: "too early"},
		})

		Expect(buf.String()).To(Equal(
			"start, 8, DIMM, 1, write bg0.ba0 col 3\n" +
				"tag, 8, 1, auto_precharge\n" +
				"end, 8, 1\n" +
				"reject, 8, 2, too early\n"))
	})
})

var _ = Describe("Recording", func() {
	var (
		base     string
		recorder datarecording.DataRecorder
	)

	BeforeEach(func() {
		base = filepath.Join(GinkgoT().TempDir(), "run")
		recorder = datarecording.New(base)
	})

	query := func(q string) int {
		db, err := sql.Open("sqlite3", base+".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var n int
		Expect(db.QueryRow(q).Scan(&n)).To(Succeed())

		return n
	}

	It("should store commands", func() {
		tracer := NewCommandRecorder(recorder, fixedCycle(4))

		tracer.StartTask(hooking.TaskStart{
			ID: "1", Kind: "cmd", What: "read", Where: "DIMM",
		})
		tracer.TagTask(hooking.TaskTag{TaskID: "1", What: "auto_precharge"})
		tracer.EndTask(hooking.TaskEnd{ID: "1"})
		tracer.Terminate()
		recorder.Close()

		Expect(query("SELECT COUNT(*) FROM commands WHERE Tags = 'auto_precharge'")).
			To(Equal(1))
	})

	It("should store pin samples in a shared recorder", func() {
		sink := NewRecorderSinkWith(recorder)
		Expect(sink.Open("ignored")).To(Succeed())

		Expect(sink.Dump(5, device.Inputs{Clock: true, DQ: ^uint64(0)},
			device.Outputs{})).To(Succeed())
		Expect(sink.Dump(10, device.Inputs{}, device.Outputs{})).To(Succeed())
		Expect(sink.Close()).To(Succeed())
		recorder.Close()

		Expect(query("SELECT COUNT(*) FROM pin_samples")).To(Equal(2))
		Expect(query("SELECT COUNT(*) FROM pin_samples WHERE DQ = -1")).To(Equal(1))
	})
})
