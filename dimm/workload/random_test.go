package workload

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ddr4stim/dimm/signal"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

type stubView struct {
	status       [signal.NumBanks]signal.BankStatus
	sinceRefresh timing.Cycle
}

func (v *stubView) Now() timing.Cycle { return 0 }

func (v *stubView) Status(b signal.BankAddress) signal.BankStatus {
	return v.status[b.Index()]
}

func (v *stubView) OpenRow(b signal.BankAddress) (signal.Row, bool) {
	return 0, v.status[b.Index()] == signal.BankStatusActive
}

func (v *stubView) EarliestNext(signal.BankAddress) timing.Cycle { return 0 }

func (v *stubView) CyclesSinceLastRefresh() timing.Cycle {
	return v.sinceRefresh
}

func (v *stubView) CanIssue(signal.BankAddress, signal.CmdKind) bool {
	return true
}

var _ = Describe("RandomPolicy", func() {
	var view *stubView

	BeforeEach(func() {
		view = &stubView{}
	})

	It("should repeat itself with the same seed", func() {
		a := NewRandomPolicy(42)
		b := NewRandomPolicy(42)

		view.status[3] = signal.BankStatusActive

		for i := 0; i < 100; i++ {
			Expect(a.Next(view)).To(Equal(b.Next(view)))
		}
	})

	It("should only activate closed banks", func() {
		p := NewRandomPolicy(1)

		for i := 0; i < signal.NumBanks; i++ {
			if i != 5 {
				view.status[i] = signal.BankStatusActive
			}
		}

		for i := 0; i < 200; i++ {
			cmd := p.Next(view)
			Expect(cmd.Validate()).To(Succeed())

			switch cmd.Kind {
			case signal.CmdKindActivate:
				Expect(cmd.Bank.Index()).To(Equal(5))
			case signal.CmdKindRefresh:
				Fail("refresh with open rows")
			default:
				Expect(cmd.Bank.Index()).NotTo(Equal(5))
			}
		}
	})

	It("should activate or refresh when every bank is closed", func() {
		p := NewRandomPolicy(7)

		for i := 0; i < 100; i++ {
			Expect(p.Next(view).Kind).To(BeElementOf(
				signal.CmdKindActivate, signal.CmdKindRefresh))
		}
	})

	It("should close rows, then refresh, when the deadline nears", func() {
		p := NewRandomPolicy(3).WithRefreshMargin(100)
		view.sinceRefresh = signal.RefreshCycle - 100
		view.status[2] = signal.BankStatusActive

		Expect(p.Next(view)).To(Equal(signal.Command{
			Kind: signal.CmdKindPrecharge,
			Bank: signal.BankFromIndex(2),
		}))

		view.status[2] = signal.BankStatusPrecharging
		Expect(p.Next(view).Kind).To(Equal(signal.CmdKindRefresh))
	})

	It("should not ask for auto-precharge at rate zero", func() {
		p := NewRandomPolicy(9).WithAutoPrechargeRate(0)
		view.status[0] = signal.BankStatusActive

		for i := 0; i < 100; i++ {
			Expect(p.Next(view).AutoPrecharge).To(BeFalse())
		}
	})
})
