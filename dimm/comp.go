// Package dimm drives a DDR4 DIMM model at the protocol level. The sequencer
// validates every command against the bank timing, encodes it onto the pins,
// and clocks the device through the command and its data burst.
package dimm

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/ddr4stim/dimm/device"
	"github.com/sarchlab/ddr4stim/dimm/encoding"
	"github.com/sarchlab/ddr4stim/dimm/internal/clock"
	"github.com/sarchlab/ddr4stim/dimm/internal/org"
	"github.com/sarchlab/ddr4stim/dimm/signal"
	"github.com/sarchlab/ddr4stim/sim/hooking"
	"github.com/sarchlab/ddr4stim/sim/id"
	"github.com/sarchlab/ddr4stim/sim/naming"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// BankState is the sequencer's view of one bank.
type BankState = org.BankState

// Comp is the protocol sequencer of one DIMM.
type Comp struct {
	naming.NamedBase
	hooking.HookableBase

	dev         *device.Interface
	clock       *clock.Driver
	encoder     encoding.Encoder
	tracker     *org.Tracker
	readLatency int
	maxCycles   timing.Cycle
	idGenerator id.IDGenerator
}

// Reset pulses the reset pin with every other pin released, then forgets all
// bank state. The clock does not toggle.
func (c *Comp) Reset() {
	c.dev.SetReset(true)
	c.dev.SetClockEnable(true)
	c.dev.Deselect()
	c.dev.SetData(0)
	c.dev.SetDataMask(0)
	c.dev.Settle()
	c.clock.Sample()

	c.dev.SetReset(false)
	c.dev.Settle()
	c.clock.Sample()

	c.tracker.ResetAll(c.clock.Now())
}

// Now returns the number of completed clock cycles.
func (c *Comp) Now() timing.Cycle {
	return c.clock.Now()
}

// Time returns the trace timestamp of the last clock toggle.
func (c *Comp) Time() uint64 {
	return c.clock.Time()
}

// MaxCycles returns the simulation time bound.
func (c *Comp) MaxCycles() timing.Cycle {
	return c.maxCycles
}

// ReadLatency returns the number of cycles between a read and its data.
func (c *Comp) ReadLatency() int {
	return c.readLatency
}

// Timing returns the intervals the sequencer enforces.
func (c *Comp) Timing() org.Timing {
	return c.tracker.Timing()
}

// Status returns the status of a bank.
func (c *Comp) Status(b signal.BankAddress) signal.BankStatus {
	return c.tracker.Status(b)
}

// OpenRow returns the row open in a bank, if any.
func (c *Comp) OpenRow(b signal.BankAddress) (signal.Row, bool) {
	return c.tracker.OpenRow(b)
}

// EarliestNext returns the first cycle at which a bank accepts a command.
func (c *Comp) EarliestNext(b signal.BankAddress) timing.Cycle {
	return c.tracker.EarliestNext(b)
}

// CyclesSinceLastRefresh returns how long the array has gone unrefreshed.
func (c *Comp) CyclesSinceLastRefresh() timing.Cycle {
	return c.tracker.CyclesSinceLastRefresh(c.clock.Now())
}

// CanIssue tells whether the command would be accepted now. The bank is
// ignored for refresh. A bank that does not fit its bit widths is never
// accepted.
func (c *Comp) CanIssue(b signal.BankAddress, kind signal.CmdKind) bool {
	if kind.IsBankCommand() && b.Validate() != nil {
		return false
	}

	return c.tracker.CanIssue(b, kind, c.clock.Now())
}

// Snapshot copies the state of every bank, in bank index order.
func (c *Comp) Snapshot() []BankState {
	return c.tracker.Snapshot()
}

// State is the saved state of a sequencer.
type State struct {
	Cycle       timing.Cycle `json:"cycle"`
	Time        uint64       `json:"time"`
	LastRefresh timing.Cycle `json:"last_refresh"`
	Banks       []BankState  `json:"banks"`
}

// State returns the current State.
func (c *Comp) State() any {
	return State{
		Cycle:       c.clock.Now(),
		Time:        c.clock.Time(),
		LastRefresh: c.tracker.LastRefresh(),
		Banks:       c.tracker.Snapshot(),
	}
}

// Err returns the first failure of the trace sink.
func (c *Comp) Err() error {
	return c.clock.Err()
}

// IssueActivate opens a row and returns once the bank is active.
func (c *Comp) IssueActivate(b signal.BankAddress, row signal.Row) error {
	return c.issueRowCommand(signal.Command{
		Kind: signal.CmdKindActivate,
		Bank: b,
		Row:  row,
	})
}

// IssuePrecharge closes the open row and returns once the bank is idle.
func (c *Comp) IssuePrecharge(b signal.BankAddress) error {
	return c.issueRowCommand(signal.Command{
		Kind: signal.CmdKindPrecharge,
		Bank: b,
	})
}

// IssueRefresh refreshes every bank. All banks must be precharged.
func (c *Comp) IssueRefresh() error {
	return c.issueRowCommand(signal.Command{Kind: signal.CmdKindRefresh})
}

// IssueWrite drives a burst into the open row.
func (c *Comp) IssueWrite(
	b signal.BankAddress,
	col signal.Column,
	data signal.BurstPayload,
	autoPrecharge bool,
) error {
	cmd := signal.Command{
		Kind:          signal.CmdKindWrite,
		Bank:          b,
		Column:        col,
		AutoPrecharge: autoPrecharge,
		Data:          data,
	}

	task, at, err := c.begin(cmd)
	if err != nil {
		return err
	}

	c.driveWrite(task, cmd)

	return c.complete(task, cmd, at)
}

// IssueRead captures a burst from the open row.
func (c *Comp) IssueRead(
	b signal.BankAddress,
	col signal.Column,
	autoPrecharge bool,
) (signal.BurstPayload, error) {
	cmd := signal.Command{
		Kind:          signal.CmdKindRead,
		Bank:          b,
		Column:        col,
		AutoPrecharge: autoPrecharge,
	}

	task, at, err := c.begin(cmd)
	if err != nil {
		return signal.BurstPayload{}, err
	}

	data := c.driveRead(task, cmd)

	return data, c.complete(task, cmd, at)
}

// Issue dispatches a command by kind. Data of a read is returned; it is zero
// for other kinds.
func (c *Comp) Issue(cmd signal.Command) (signal.BurstPayload, error) {
	switch cmd.Kind {
	case signal.CmdKindActivate:
		return signal.BurstPayload{}, c.IssueActivate(cmd.Bank, cmd.Row)
	case signal.CmdKindPrecharge:
		return signal.BurstPayload{}, c.IssuePrecharge(cmd.Bank)
	case signal.CmdKindRefresh:
		return signal.BurstPayload{}, c.IssueRefresh()
	case signal.CmdKindWrite:
		return signal.BurstPayload{},
			c.IssueWrite(cmd.Bank, cmd.Column, cmd.Data, cmd.AutoPrecharge)
	case signal.CmdKindRead:
		return c.IssueRead(cmd.Bank, cmd.Column, cmd.AutoPrecharge)
	default:
		return signal.BurstPayload{}, cmd.Validate()
	}
}

// WaitUntilLegal idles the clock until the command is legal. A missing
// refresh cannot be cured by waiting and is returned at once. Reaching the
// simulation time bound returns a DesyncError.
func (c *Comp) WaitUntilLegal(b signal.BankAddress, kind signal.CmdKind) error {
	if kind.IsBankCommand() {
		if err := b.Validate(); err != nil {
			return err
		}
	}

	for {
		now := c.clock.Now()

		err := c.tracker.Check(b, kind, now)
		if err == nil {
			return nil
		}

		var violation *signal.ProtocolViolationError
		if errors.As(err, &violation) && violation.IsRefreshOverdue() {
			return err
		}

		if now >= c.maxCycles {
			return &signal.DesyncError{
				Kind:  kind,
				Bank:  b,
				Cycle: uint64(now),
				Limit: uint64(c.maxCycles),
			}
		}

		c.Idle(1)
	}
}

// WaitUntilRefreshLegal idles the clock until every bank can be refreshed.
func (c *Comp) WaitUntilRefreshLegal() error {
	return c.WaitUntilLegal(signal.BankAddress{}, signal.CmdKindRefresh)
}

// Idle keeps the device deselected for the given number of cycles.
func (c *Comp) Idle(cycles int) {
	c.dev.Deselect()
	c.clock.Advance(cycles)
}

func (c *Comp) begin(cmd signal.Command) (string, timing.Cycle, error) {
	task := c.idGenerator.Generate()
	at := c.clock.Now()

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    hooking.HookPosTaskStart,
		Item: hooking.TaskStart{
			ID:    task,
			Kind:  "cmd",
			What:  cmd.Kind.String(),
			Where: c.Name(),
		},
		Detail: cmd,
	})

	err := cmd.Validate()
	if err == nil {
		err = c.tracker.Check(cmd.Bank, cmd.Kind, at)
	}

	if err != nil {
		c.end(task, err)
		return "", 0, err
	}

	c.step(task, "validated", "")

	if cmd.AutoPrecharge && cmd.Kind.IsColumnCommand() {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    hooking.HookPosTaskTag,
			Item:   hooking.TaskTag{TaskID: task, What: "auto_precharge"},
		})
	}

	return task, at, nil
}

func (c *Comp) step(task, what, detail string) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    hooking.HookPosTaskStep,
		Item: hooking.TaskStep{
			TaskID: task,
			Kind:   "cmd",
			What:   what,
			Detail: detail,
		},
	})
}

func (c *Comp) end(task string, err error) {
	end := hooking.TaskEnd{ID: task}
	if err != nil {
		end.Err = err.Error()
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    hooking.HookPosTaskEnd,
		Item:   end,
	})
}

// complete records the command in the tracker at the cycle it was driven.
func (c *Comp) complete(task string, cmd signal.Command, at timing.Cycle) error {
	if err := c.tracker.RecordIssued(cmd, at); err != nil {
		log.Panicf("%s was legal at cycle %d but cannot be recorded: %v",
			cmd, at, err)
	}

	err := c.clock.Err()
	if err != nil {
		err = fmt.Errorf("trace sink: %w", err)
	}

	c.end(task, err)

	return err
}

func (c *Comp) issueRowCommand(cmd signal.Command) error {
	task, at, err := c.begin(cmd)
	if err != nil {
		return err
	}

	t := c.tracker.Timing()

	window := t.PrechargeLatency
	switch cmd.Kind {
	case signal.CmdKindActivate:
		window = t.ActivationLatency
	case signal.CmdKindRefresh:
		window = t.RefreshLatency
	}

	c.driveCommandEdge(task, cmd)
	c.clock.Toggle()
	c.clock.Advance(window - 1)
	c.dev.Deselect()

	return c.complete(task, cmd, at)
}

// driveCommandEdge selects the device for one rising edge only, so that the
// device decodes the command exactly once. Address and bank stay driven.
func (c *Comp) driveCommandEdge(task string, cmd signal.Command) {
	c.dev.ApplyFrame(c.encoder.Encode(cmd))
	c.clock.Toggle()
	c.dev.ReleaseChipSelect()
	c.step(task, "driven", "")
}

// driveWrite puts two words on the bus per cycle, the even word for the
// rising edge and the odd word for the falling edge. The first word is
// sampled on the command edge.
func (c *Comp) driveWrite(task string, cmd signal.Command) {
	c.dev.SetData(cmd.Data[0])
	c.driveCommandEdge(task, cmd)
	c.step(task, "beat", beatDetail(0))

	for beat := 1; beat < signal.BurstLoad; beat++ {
		c.dev.SetData(cmd.Data[beat])
		c.clock.Toggle()
		c.step(task, "beat", beatDetail(beat))
	}

	c.dev.SetData(0)
	c.dev.Deselect()
}

// driveRead captures the words the device drives once the read latency has
// passed, one per clock edge.
func (c *Comp) driveRead(task string, cmd signal.Command) signal.BurstPayload {
	var data signal.BurstPayload

	c.driveCommandEdge(task, cmd)

	firstBeatEdge := 2 * c.readLatency
	for edge := 1; edge < firstBeatEdge+signal.BurstLoad; edge++ {
		c.clock.Toggle()

		if edge < firstBeatEdge {
			continue
		}

		beat := edge - firstBeatEdge

		word, valid := c.dev.ReadData()
		if !valid {
			c.step(task, "beat", beatDetail(beat)+" invalid")
		} else {
			c.step(task, "beat", beatDetail(beat))
		}

		data[beat] = word
	}

	c.dev.Deselect()

	return data
}

func beatDetail(beat int) string {
	return fmt.Sprintf("%d/%d", beat+1, signal.BurstLoad)
}
