// Package workload decides which commands to send to the DIMM and checks
// that the data read back matches the data written.
package workload

import (
	"github.com/sarchlab/ddr4stim/dimm/signal"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// A View is the read-only state a policy can base its decisions on.
type View interface {
	Now() timing.Cycle
	Status(b signal.BankAddress) signal.BankStatus
	OpenRow(b signal.BankAddress) (signal.Row, bool)
	EarliestNext(b signal.BankAddress) timing.Cycle
	CyclesSinceLastRefresh() timing.Cycle
	CanIssue(b signal.BankAddress, kind signal.CmdKind) bool
}

// A Policy picks the next command. The command does not need to be legal
// now, but it must become legal by waiting.
type Policy interface {
	Next(v View) signal.Command
}

// PolicyFunc turns a function into a Policy.
type PolicyFunc func(v View) signal.Command

// Next calls f(v).
func (f PolicyFunc) Next(v View) signal.Command {
	return f(v)
}
