package dimm

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/ddr4stim/dimm/device"
	"github.com/sarchlab/ddr4stim/dimm/device/behavioral"
	"github.com/sarchlab/ddr4stim/dimm/encoding"
	"github.com/sarchlab/ddr4stim/dimm/signal"
	"github.com/sarchlab/ddr4stim/sim/hooking"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

type pinSample struct {
	time uint64
	in   device.Inputs
	out  device.Outputs
}

type recordingSink struct {
	samples []pinSample
	err     error
}

func (s *recordingSink) Open(string) error { return nil }

func (s *recordingSink) Dump(t uint64, in device.Inputs, out device.Outputs) error {
	s.samples = append(s.samples, pinSample{t, in, out})
	return s.err
}

func (s *recordingSink) Close() error { return nil }

var _ = Describe("Comp", func() {
	var (
		model   *behavioral.Model
		sink    *recordingSink
		c       *Comp
		bank0   signal.BankAddress
		payload signal.BurstPayload
	)

	BeforeEach(func() {
		model = behavioral.New(encoding.DefaultBitMap(), 4)
		sink = &recordingSink{}
		c = MakeBuilder().
			WithModel(model).
			WithSink(sink).
			WithMaxCycles(20000).
			Build("DIMM")
		c.Reset()

		bank0 = signal.BankAddress{}
		payload = signal.BurstPayload{1, 2, 3, 4, 5, 6, 7, 8}
	})

	It("should leave every bank idle after reset", func() {
		for _, b := range signal.AllBanks() {
			Expect(c.Status(b)).To(Equal(signal.BankStatusIdle))

			_, open := c.OpenRow(b)
			Expect(open).To(BeFalse())
		}

		Expect(c.Now()).To(Equal(timing.Cycle(0)))
		Expect(sink.samples).To(HaveLen(2))
		Expect(sink.samples[0].in.ResetN).To(BeFalse())
		Expect(sink.samples[1].in.ResetN).To(BeTrue())
	})

	It("should run the write scenario", func() {
		Expect(c.IssueActivate(bank0, 5)).To(Succeed())

		Expect(c.Now()).To(Equal(timing.Cycle(8)))
		Expect(c.Time()).To(Equal(uint64(80)))
		Expect(c.Status(bank0)).To(Equal(signal.BankStatusActive))
		Expect(c.EarliestNext(bank0)).To(Equal(timing.Cycle(8)))

		Expect(c.IssueWrite(bank0, 3, payload, false)).To(Succeed())

		Expect(c.Now()).To(Equal(timing.Cycle(12)))
		Expect(c.Status(bank0)).To(Equal(signal.BankStatusActive))

		beats := sink.samples[len(sink.samples)-signal.BurstLoad:]
		for i, s := range beats {
			Expect(s.in.DQ).To(Equal(payload[i]))
			Expect(s.in.Clock).To(Equal(i%2 == 0))
		}

		err := c.IssuePrecharge(bank0)

		var violation *signal.ProtocolViolationError
		Expect(errors.As(err, &violation)).To(BeTrue())
		Expect(violation.Kind).To(Equal(signal.CmdKindPrecharge))
		Expect(violation.Cycle).To(Equal(uint64(12)))
		Expect(c.Status(bank0)).To(Equal(signal.BankStatusActive))
	})

	It("should select the device for the command edge only", func() {
		Expect(c.IssueActivate(bank0, 5)).To(Succeed())

		selected := 0
		for _, s := range sink.samples {
			if !s.in.CSN {
				selected++
				Expect(s.in.Clock).To(BeTrue())
				Expect(s.in.ActN).To(BeFalse())
			}
		}

		Expect(selected).To(Equal(1))
	})

	It("should make activate illegal on an active bank", func() {
		for _, b := range signal.AllBanks() {
			issuedAt := c.Now()

			Expect(c.IssueActivate(b, 9)).To(Succeed())

			row, open := c.OpenRow(b)
			Expect(open).To(BeTrue())
			Expect(row).To(Equal(signal.Row(9)))
			Expect(c.CanIssue(b, signal.CmdKindActivate)).To(BeFalse())
			Expect(c.EarliestNext(b)).To(Equal(issuedAt + 8))
		}

		Expect(model.Faults()).To(BeEmpty())
	})

	It("should not answer for a bank outside its bit widths", func() {
		Expect(c.IssueActivate(signal.BankAddress{Bank: 1}, 3)).To(Succeed())

		aliased := signal.BankAddress{BankGroup: 2}
		outOfRange := signal.BankAddress{Bank: 4}

		for _, b := range []signal.BankAddress{aliased, outOfRange} {
			Expect(func() { c.Status(b) }).To(Panic())
			Expect(func() { c.OpenRow(b) }).To(Panic())
			Expect(func() { c.EarliestNext(b) }).To(Panic())
			Expect(c.CanIssue(b, signal.CmdKindRead)).To(BeFalse())
			Expect(c.CanIssue(b, signal.CmdKindActivate)).To(BeFalse())
		}

		Expect(c.Status(signal.BankAddress{Bank: 1})).
			To(Equal(signal.BankStatusActive))
	})

	It("should read back what was written", func() {
		b := signal.BankAddress{BankGroup: 1, Bank: 3}

		Expect(c.IssueActivate(b, 7)).To(Succeed())
		Expect(c.IssueWrite(b, 3, payload, false)).To(Succeed())
		Expect(c.WaitUntilLegal(b, signal.CmdKindRead)).To(Succeed())
		Expect(c.Now()).To(Equal(timing.Cycle(16)))

		data, err := c.IssueRead(b, 3, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(payload))
		Expect(model.Peek(b, 7, 3)).To(Equal(payload))
		Expect(model.Faults()).To(BeEmpty())
		Expect(c.Now()).To(Equal(timing.Cycle(24)))
	})

	It("should dispatch by kind", func() {
		_, err := c.Issue(signal.Command{
			Kind: signal.CmdKindActivate, Bank: bank0, Row: 1,
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = c.Issue(signal.Command{
			Kind: signal.CmdKindWrite, Bank: bank0, Column: 2, Data: payload,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.WaitUntilLegal(bank0, signal.CmdKindRead)).To(Succeed())

		data, err := c.Issue(signal.Command{
			Kind: signal.CmdKindRead, Bank: bank0, Column: 2,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(payload))
	})

	It("should precharge after an auto-precharge write", func() {
		Expect(c.IssueActivate(bank0, 5)).To(Succeed())
		Expect(c.IssueWrite(bank0, 3, payload, true)).To(Succeed())

		Expect(c.Status(bank0)).To(Equal(signal.BankStatusPrecharging))
		Expect(c.EarliestNext(bank0)).To(Equal(timing.Cycle(8 + 8 + 5)))
		Expect(c.CanIssue(bank0, signal.CmdKindActivate)).To(BeFalse())

		Expect(c.WaitUntilLegal(bank0, signal.CmdKindActivate)).To(Succeed())
		Expect(c.Now()).To(Equal(timing.Cycle(21)))
		Expect(c.IssueActivate(bank0, 6)).To(Succeed())
		Expect(model.Faults()).To(BeEmpty())
	})

	It("should precharge and return once the bank is idle", func() {
		Expect(c.IssueActivate(bank0, 5)).To(Succeed())
		Expect(c.IssuePrecharge(bank0)).To(Succeed())

		Expect(c.Now()).To(Equal(timing.Cycle(13)))
		Expect(c.Status(bank0)).To(Equal(signal.BankStatusIdle))
		Expect(c.CanIssue(bank0, signal.CmdKindActivate)).To(BeTrue())

		_, open := model.IsOpen(bank0)
		Expect(open).To(BeFalse())
	})

	It("should raise the refresh obligation at the boundary, not before", func() {
		c.Idle(signal.RefreshCycle - 1)
		Expect(c.CanIssue(bank0, signal.CmdKindActivate)).To(BeTrue())

		c.Idle(1)
		Expect(c.CanIssue(bank0, signal.CmdKindActivate)).To(BeFalse())

		err := c.WaitUntilLegal(bank0, signal.CmdKindActivate)

		var violation *signal.ProtocolViolationError
		Expect(errors.As(err, &violation)).To(BeTrue())
		Expect(violation.IsRefreshOverdue()).To(BeTrue())
		Expect(c.Now()).To(Equal(timing.Cycle(signal.RefreshCycle)))

		Expect(c.IssueRefresh()).To(Succeed())
		Expect(c.CyclesSinceLastRefresh()).To(Equal(timing.Cycle(16)))
		Expect(c.CanIssue(bank0, signal.CmdKindActivate)).To(BeTrue())
	})

	It("should report a desync when a wait never ends", func() {
		c = MakeBuilder().WithMaxCycles(50).Build("DIMM")
		c.Reset()

		err := c.WaitUntilLegal(bank0, signal.CmdKindRead)

		var desync *signal.DesyncError
		Expect(errors.As(err, &desync)).To(BeTrue())
		Expect(desync.Cycle).To(Equal(uint64(50)))
		Expect(desync.Bank).To(Equal(bank0))
	})

	It("should not refresh while a row is open", func() {
		c = MakeBuilder().WithMaxCycles(100).Build("DIMM")
		c.Reset()

		Expect(c.IssueActivate(bank0, 5)).To(Succeed())

		var violation *signal.ProtocolViolationError
		Expect(errors.As(c.IssueRefresh(), &violation)).To(BeTrue())

		var desync *signal.DesyncError
		Expect(errors.As(c.WaitUntilRefreshLegal(), &desync)).To(BeTrue())
	})

	It("should surface sink failures", func() {
		sinkErr := errors.New("disk full")
		sink.err = sinkErr

		err := c.IssueActivate(bank0, 5)

		Expect(errors.Is(err, sinkErr)).To(BeTrue())
		Expect(c.Status(bank0)).To(Equal(signal.BankStatusActive))
	})

	It("should report its state", func() {
		Expect(c.IssueActivate(bank0, 5)).To(Succeed())

		state := c.State().(State)
		Expect(state.Cycle).To(Equal(timing.Cycle(8)))
		Expect(state.Time).To(Equal(uint64(80)))
		Expect(state.Banks).To(HaveLen(signal.NumBanks))
		Expect(state.Banks[0].OpenRow).To(Equal(signal.Row(5)))
	})

	It("should count commands and rejections through hooks", func() {
		counter := hooking.NewKindCountTracer()
		c.AcceptHook(counter)

		Expect(c.IssueActivate(bank0, 5)).To(Succeed())
		Expect(c.IssueActivate(bank0, 5)).NotTo(Succeed())

		Expect(counter.Count("activate")).To(Equal(uint64(2)))
		Expect(counter.ErrorCount("activate")).To(Equal(uint64(1)))
	})
})

var _ = Describe("Comp rejections", func() {
	var (
		mockCtrl *gomock.Controller
		sink     *MockSink
		c        *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sink = NewMockSink(mockCtrl)
		c = MakeBuilder().WithSink(sink).Build("DIMM")

		sink.EXPECT().Dump(uint64(0), gomock.Any(), gomock.Any()).Times(2)
		c.Reset()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not touch any pin", func() {
		pins := c.dev.Pins()

		var rangeErr *signal.RangeError
		Expect(errors.As(
			c.IssueActivate(signal.BankAddress{}, signal.RowMask+1),
			&rangeErr)).To(BeTrue())
		Expect(rangeErr.Field).To(Equal("row"))

		Expect(errors.As(
			c.IssueWrite(signal.BankAddress{BankGroup: 2}, 0,
				signal.BurstPayload{}, false),
			&rangeErr)).To(BeTrue())

		Expect(errors.As(
			c.IssueWrite(signal.BankAddress{}, signal.ColumnMask+1,
				signal.BurstPayload{}, false),
			&rangeErr)).To(BeTrue())

		var violation *signal.ProtocolViolationError
		Expect(errors.As(c.IssuePrecharge(signal.BankAddress{}), &violation)).
			To(BeTrue())

		_, err := c.IssueRead(signal.BankAddress{}, 0, false)
		Expect(errors.As(err, &violation)).To(BeTrue())

		Expect(c.dev.Pins()).To(Equal(pins))
		Expect(c.Now()).To(Equal(timing.Cycle(0)))
	})

	It("should reject invalid names", func() {
		Expect(func() { MakeBuilder().Build("dimm") }).To(Panic())
	})
})
