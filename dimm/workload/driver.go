package workload

import (
	"context"

	"github.com/sarchlab/ddr4stim/dimm"
	"github.com/sarchlab/ddr4stim/dimm/signal"
	"github.com/sarchlab/ddr4stim/sim/naming"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// A Sequencer accepts commands for the DIMM.
type Sequencer interface {
	View

	Issue(cmd signal.Command) (signal.BurstPayload, error)
	WaitUntilLegal(b signal.BankAddress, kind signal.CmdKind) error
	MaxCycles() timing.Cycle
	Snapshot() []dimm.BankState
}

// Progress describes a run after one step.
type Progress struct {
	Step                   int              `json:"step"`
	TotalSteps             int              `json:"total_steps"`
	Cycle                  timing.Cycle     `json:"cycle"`
	MaxCycles              timing.Cycle     `json:"max_cycles"`
	CyclesSinceLastRefresh timing.Cycle     `json:"cycles_since_last_refresh"`
	LastCommand            string           `json:"last_command"`
	Banks                  []dimm.BankState `json:"banks"`
}

// An Observer is told about the progress of a run after every step.
type Observer interface {
	Observe(p Progress)
}

// Stats counts what a run did.
type Stats struct {
	Steps         int
	Issued        [signal.NumCmdKind]uint64
	VerifiedReads uint64
}

type location struct {
	bank   signal.BankAddress
	row    signal.Row
	column signal.Column
}

// endGuard keeps the last command and its wait clear of the time bound.
const endGuard = 64

// Driver runs a policy against a sequencer. It remembers every burst written
// and checks every burst read against it. Locations never written are
// expected to read as zero.
type Driver struct {
	naming.NamedBase

	seq        Sequencer
	policy     Policy
	observers  []Observer
	scoreboard map[location]signal.BurstPayload
	stats      Stats
}

// NewDriver creates a driver.
func NewDriver(name string, seq Sequencer, policy Policy) *Driver {
	return &Driver{
		NamedBase:  naming.MakeNamedBase(name),
		seq:        seq,
		policy:     policy,
		scoreboard: make(map[location]signal.BurstPayload),
	}
}

// AddObserver registers an observer.
func (d *Driver) AddObserver(o Observer) {
	d.observers = append(d.observers, o)
}

// Stats returns the counters of the run so far.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Run issues up to steps commands. It stops early, without an error, when
// the simulation time bound is near. Any protocol violation, desync, or data
// mismatch ends the run with that error.
func (d *Driver) Run(ctx context.Context, steps int) error {
	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.seq.Now()+endGuard >= d.seq.MaxCycles() {
			return nil
		}

		cmd := d.policy.Next(d.seq)
		if err := d.Step(cmd); err != nil {
			return err
		}

		d.notify(steps, cmd)
	}

	return nil
}

// Step waits until the command is legal, issues it, and checks the data.
func (d *Driver) Step(cmd signal.Command) error {
	if err := d.seq.WaitUntilLegal(cmd.Bank, cmd.Kind); err != nil {
		return err
	}

	row, _ := d.seq.OpenRow(cmd.Bank)
	at := d.seq.Now()

	data, err := d.seq.Issue(cmd)
	if err != nil {
		return err
	}

	d.stats.Steps++
	d.stats.Issued[cmd.Kind]++

	loc := location{cmd.Bank, row, cmd.Column}

	switch cmd.Kind {
	case signal.CmdKindWrite:
		d.scoreboard[loc] = cmd.Data
	case signal.CmdKindRead:
		expected := d.scoreboard[loc]
		if data != expected {
			return &signal.DataMismatchError{
				Bank:     cmd.Bank,
				Row:      row,
				Column:   cmd.Column,
				Cycle:    uint64(at),
				Expected: expected,
				Actual:   data,
			}
		}

		d.stats.VerifiedReads++
	}

	return nil
}

func (d *Driver) notify(steps int, cmd signal.Command) {
	if len(d.observers) == 0 {
		return
	}

	p := Progress{
		Step:                   d.stats.Steps,
		TotalSteps:             steps,
		Cycle:                  d.seq.Now(),
		MaxCycles:              d.seq.MaxCycles(),
		CyclesSinceLastRefresh: d.seq.CyclesSinceLastRefresh(),
		LastCommand:            cmd.String(),
		Banks:                  d.seq.Snapshot(),
	}

	for _, o := range d.observers {
		o.Observe(p)
	}
}
