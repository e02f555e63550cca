package org

import (
	"fmt"
	"log"

	"github.com/sarchlab/ddr4stim/dimm/signal"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// Tracker owns the state of every bank. All bank mutations go through
// RecordIssued and ResetAll.
type Tracker struct {
	timing      Timing
	banks       [signal.NumBanks]bank
	lastRefresh timing.Cycle
}

// NewTracker creates a tracker with every bank idle.
func NewTracker(t Timing) *Tracker {
	if err := t.Validate(); err != nil {
		log.Panic(err)
	}

	tr := &Tracker{timing: t}
	tr.ResetAll(0)

	return tr
}

// Timing returns the intervals enforced by the tracker.
func (t *Tracker) Timing() Timing {
	return t.timing
}

// ResetAll makes every bank idle with no timing constraint and restarts the
// refresh interval at now.
func (t *Tracker) ResetAll(now timing.Cycle) {
	for i := range t.banks {
		t.banks[i].reset()
	}

	t.lastRefresh = now
}

// bank returns the bank at an address. It panics on an address that does not
// fit its bit widths, which would otherwise alias another bank.
func (t *Tracker) bank(b signal.BankAddress) *bank {
	if err := b.Validate(); err != nil {
		log.Panicf("invalid bank %s: %v", b, err)
	}

	return &t.banks[b.Index()]
}

// State returns the state of one bank.
func (t *Tracker) State(b signal.BankAddress) BankState {
	return t.bank(b).state
}

// Status returns the status of one bank.
func (t *Tracker) Status(b signal.BankAddress) signal.BankStatus {
	return t.bank(b).state.Status
}

// OpenRow returns the open row of a bank, if it has one.
func (t *Tracker) OpenRow(b signal.BankAddress) (signal.Row, bool) {
	s := t.bank(b).state
	return s.OpenRow, s.HasOpenRow
}

// EarliestNext returns the first cycle at which the bank accepts a command.
func (t *Tracker) EarliestNext(b signal.BankAddress) timing.Cycle {
	return t.bank(b).state.EarliestNext
}

// CyclesSinceLastRefresh returns how long the array has gone unrefreshed at
// the given cycle.
func (t *Tracker) CyclesSinceLastRefresh(at timing.Cycle) timing.Cycle {
	if at < t.lastRefresh {
		return 0
	}

	return at - t.lastRefresh
}

// LastRefresh returns the cycle of the last refresh or reset.
func (t *Tracker) LastRefresh() timing.Cycle {
	return t.lastRefresh
}

// CanIssue tells if the command is legal at the given cycle. For refresh the
// bank is ignored.
func (t *Tracker) CanIssue(
	b signal.BankAddress,
	kind signal.CmdKind,
	at timing.Cycle,
) bool {
	return t.Check(b, kind, at) == nil
}

// Check returns a ProtocolViolationError explaining why the command is not
// legal at the given cycle, or nil if it is.
func (t *Tracker) Check(
	b signal.BankAddress,
	kind signal.CmdKind,
	at timing.Cycle,
) error {
	if kind == signal.CmdKindRefresh {
		return t.checkRefresh(at)
	}

	bk := t.bank(b)

	if t.CyclesSinceLastRefresh(at) >= timing.Cycle(t.timing.RefreshCycle) {
		return t.violation(b, kind, at, signal.RefreshOverdue)
	}

	if at < bk.state.EarliestNext {
		return t.violation(b, kind, at,
			fmt.Sprintf("bank busy until cycle %d", bk.state.EarliestNext))
	}

	if reason := bk.statusAllows(kind, at); reason != "" {
		return t.violation(b, kind, at, reason)
	}

	return nil
}

func (t *Tracker) checkRefresh(at timing.Cycle) error {
	for i := range t.banks {
		bk := &t.banks[i]

		if at < bk.state.EarliestNext {
			return t.violation(signal.BankAddress{}, signal.CmdKindRefresh, at,
				fmt.Sprintf("bank %s busy until cycle %d",
					signal.BankFromIndex(i), bk.state.EarliestNext))
		}

		if !bk.precharged(at) {
			return t.violation(signal.BankAddress{}, signal.CmdKindRefresh, at,
				fmt.Sprintf("bank %s is %s", signal.BankFromIndex(i),
					bk.state.Status))
		}
	}

	return nil
}

func (t *Tracker) violation(
	b signal.BankAddress,
	kind signal.CmdKind,
	at timing.Cycle,
	reason string,
) error {
	return &signal.ProtocolViolationError{
		Kind:   kind,
		Bank:   b,
		Cycle:  uint64(at),
		Reason: reason,
	}
}

// RecordIssued moves a bank to the state that follows the command issued at
// the given cycle. An illegal command is rejected and leaves the state
// unchanged.
func (t *Tracker) RecordIssued(cmd signal.Command, at timing.Cycle) error {
	if err := t.Check(cmd.Bank, cmd.Kind, at); err != nil {
		return err
	}

	if cmd.Kind == signal.CmdKindRefresh {
		for i := range t.banks {
			t.banks[i].start(cmd, at, t.timing)
		}

		t.lastRefresh = at

		return nil
	}

	t.bank(cmd.Bank).start(cmd, at, t.timing)

	return nil
}

// Snapshot copies the state of every bank, in bank index order.
func (t *Tracker) Snapshot() []BankState {
	states := make([]BankState, len(t.banks))
	for i := range t.banks {
		states[i] = t.banks[i].state
	}

	return states
}
