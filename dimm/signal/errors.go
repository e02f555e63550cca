package signal

import "fmt"

// ProtocolViolationError reports a command that the protocol does not allow
// at the cycle it was requested. It aborts the run.
type ProtocolViolationError struct {
	Kind   CmdKind
	Bank   BankAddress
	Cycle  uint64
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	if !e.Kind.IsBankCommand() {
		return fmt.Sprintf("protocol violation: %s at cycle %d: %s",
			e.Kind, e.Cycle, e.Reason)
	}

	return fmt.Sprintf("protocol violation: %s to %s at cycle %d: %s",
		e.Kind, e.Bank, e.Cycle, e.Reason)
}

// RefreshOverdue is the reason of a violation caused by a missing refresh.
const RefreshOverdue = "refresh overdue"

// IsRefreshOverdue tells if the violation can only be cured by a refresh.
func (e *ProtocolViolationError) IsRefreshOverdue() bool {
	return e.Reason == RefreshOverdue
}

// RangeError reports an address field that does not fit its bit width.
type RangeError struct {
	Field string
	Value uint64
	Bits  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d does not fit in %d bits", e.Field, e.Value, e.Bits)
}

// DesyncError reports a wait for legality that never ended. It means the
// timing model and the device have diverged.
type DesyncError struct {
	Kind  CmdKind
	Bank  BankAddress
	Cycle uint64
	Limit uint64
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf(
		"%s to %s still illegal at cycle %d, simulation limit %d reached",
		e.Kind, e.Bank, e.Cycle, e.Limit)
}

// DataMismatchError reports read data that differs from what was written.
type DataMismatchError struct {
	Bank     BankAddress
	Row      Row
	Column   Column
	Cycle    uint64
	Expected BurstPayload
	Actual   BurstPayload
}

func (e *DataMismatchError) Error() string {
	return fmt.Sprintf(
		"read %s row %d col %d at cycle %d returned %x, expected %x",
		e.Bank, e.Row, e.Column, e.Cycle, e.Actual, e.Expected)
}
