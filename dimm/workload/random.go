package workload

import (
	"math/rand"

	"github.com/sarchlab/ddr4stim/dimm/signal"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// RandomPolicy picks uniformly among the command kinds that make sense in
// the current bank states. When the refresh interval is about to run out, it
// closes every open row and refreshes.
type RandomPolicy struct {
	rng               *rand.Rand
	refreshMargin     timing.Cycle
	autoPrechargeRate float64
}

// NewRandomPolicy creates a policy. The same seed yields the same commands
// for the same sequence of views.
func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{
		rng:               rand.New(rand.NewSource(seed)),
		refreshMargin:     256,
		autoPrechargeRate: 0.25,
	}
}

// WithRefreshMargin sets how many cycles before the refresh deadline the
// policy starts closing rows to refresh.
func (p *RandomPolicy) WithRefreshMargin(cycles timing.Cycle) *RandomPolicy {
	p.refreshMargin = cycles
	return p
}

// WithAutoPrechargeRate sets the probability of a read or write asking for
// auto-precharge.
func (p *RandomPolicy) WithAutoPrechargeRate(rate float64) *RandomPolicy {
	p.autoPrechargeRate = rate
	return p
}

// Next picks the next command.
func (p *RandomPolicy) Next(v View) signal.Command {
	active, closed := p.partition(v)

	if p.refreshDue(v) {
		if len(active) > 0 {
			return signal.Command{
				Kind: signal.CmdKindPrecharge,
				Bank: active[0],
			}
		}

		return signal.Command{Kind: signal.CmdKindRefresh}
	}

	var kinds []signal.CmdKind

	if len(closed) > 0 {
		kinds = append(kinds, signal.CmdKindActivate)
	}

	if len(active) > 0 {
		kinds = append(kinds,
			signal.CmdKindPrecharge,
			signal.CmdKindRead,
			signal.CmdKindWrite)
	} else {
		kinds = append(kinds, signal.CmdKindRefresh)
	}

	switch kind := kinds[p.rng.Intn(len(kinds))]; kind {
	case signal.CmdKindActivate:
		return signal.Command{
			Kind: kind,
			Bank: p.pick(closed),
			Row:  signal.Row(p.rng.Intn(signal.RowMask + 1)),
		}
	case signal.CmdKindPrecharge:
		return signal.Command{Kind: kind, Bank: p.pick(active)}
	case signal.CmdKindRead, signal.CmdKindWrite:
		return p.columnCommand(kind, p.pick(active))
	default:
		return signal.Command{Kind: signal.CmdKindRefresh}
	}
}

func (p *RandomPolicy) refreshDue(v View) bool {
	return v.CyclesSinceLastRefresh()+p.refreshMargin >= signal.RefreshCycle
}

// partition splits the banks into those with an open row and those without.
func (p *RandomPolicy) partition(v View) (active, closed []signal.BankAddress) {
	for _, b := range signal.AllBanks() {
		if v.Status(b) == signal.BankStatusActive {
			active = append(active, b)
		} else {
			closed = append(closed, b)
		}
	}

	return active, closed
}

func (p *RandomPolicy) pick(banks []signal.BankAddress) signal.BankAddress {
	return banks[p.rng.Intn(len(banks))]
}

func (p *RandomPolicy) columnCommand(
	kind signal.CmdKind,
	b signal.BankAddress,
) signal.Command {
	cmd := signal.Command{
		Kind:          kind,
		Bank:          b,
		Column:        signal.Column(p.rng.Intn(signal.ColumnMask + 1)),
		AutoPrecharge: p.rng.Float64() < p.autoPrechargeRate,
	}

	if kind == signal.CmdKindWrite {
		for i := range cmd.Data {
			cmd.Data[i] = p.rng.Uint64()
		}
	}

	return cmd
}
