// Package org tracks the state of the banks of the DIMM and decides which
// commands are legal at a given cycle.
package org

import (
	"fmt"

	"github.com/sarchlab/ddr4stim/dimm/signal"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// BankState is the controller's view of one bank. OpenRow is only meaningful
// when Status is Active.
type BankState struct {
	Status       signal.BankStatus `json:"status"`
	OpenRow      signal.Row        `json:"open_row"`
	HasOpenRow   bool              `json:"has_open_row"`
	EarliestNext timing.Cycle      `json:"earliest_next"`
}

type bank struct {
	state BankState
}

func (b *bank) reset() {
	b.state = BankState{Status: signal.BankStatusIdle}
}

// precharged tells if the bank has no open row and has finished closing it.
func (b *bank) precharged(at timing.Cycle) bool {
	switch b.state.Status {
	case signal.BankStatusIdle:
		return true
	case signal.BankStatusPrecharging:
		return at >= b.state.EarliestNext
	default:
		return false
	}
}

// statusAllows returns the reason why the bank status forbids the command,
// or "" if it does not.
func (b *bank) statusAllows(kind signal.CmdKind, at timing.Cycle) string {
	s := b.state.Status

	switch kind {
	case signal.CmdKindActivate:
		if !b.precharged(at) {
			return fmt.Sprintf("activate needs an idle bank, bank is %s", s)
		}
	case signal.CmdKindRead, signal.CmdKindWrite:
		if s != signal.BankStatusActive {
			return fmt.Sprintf("%s needs an active bank, bank is %s", kind, s)
		}
	case signal.CmdKindPrecharge:
		if s == signal.BankStatusIdle {
			return "precharge needs an active or precharging bank, bank is idle"
		}
	}

	return ""
}

func (b *bank) start(cmd signal.Command, at timing.Cycle, t Timing) {
	switch cmd.Kind {
	case signal.CmdKindActivate:
		b.state = BankState{
			Status:       signal.BankStatusActive,
			OpenRow:      cmd.Row,
			HasOpenRow:   true,
			EarliestNext: at + timing.Cycle(t.ActivationLatency),
		}
	case signal.CmdKindRead, signal.CmdKindWrite:
		if !cmd.AutoPrecharge {
			b.state.EarliestNext = at + timing.Cycle(t.BurstCycles)
			return
		}

		b.state = BankState{
			Status: signal.BankStatusPrecharging,
			EarliestNext: at +
				timing.Cycle(t.BurstCycles) +
				timing.Cycle(t.PrechargeLatency),
		}
	case signal.CmdKindPrecharge:
		b.state = BankState{
			Status:       signal.BankStatusIdle,
			EarliestNext: at + timing.Cycle(t.PrechargeLatency),
		}
	case signal.CmdKindRefresh:
		b.state = BankState{
			Status:       signal.BankStatusIdle,
			EarliestNext: at + timing.Cycle(t.RefreshLatency),
		}
	}
}
