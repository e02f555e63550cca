// Package clock drives the DIMM clock and keeps the trace time.
package clock

import (
	"github.com/sarchlab/ddr4stim/dimm/device"
	"github.com/sarchlab/ddr4stim/dimm/trace"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// A Device is a set of pins with a clock that can be toggled.
type Device interface {
	ToggleClock()
	ClockHigh() bool
	Pins() device.Inputs
	Outputs() device.Outputs
}

// Driver is the only place where the DIMM clock toggles. Each toggle advances
// the trace time by half a period and dumps the pins exactly once.
type Driver struct {
	dev        Device
	sink       trace.Sink
	halfPeriod uint64

	time  uint64
	cycle timing.Cycle
	err   error
}

// NewDriver creates a driver that starts at time 0 and cycle 0.
func NewDriver(dev Device, sink trace.Sink, halfPeriod uint64) *Driver {
	return &Driver{
		dev:        dev,
		sink:       sink,
		halfPeriod: halfPeriod,
	}
}

// Toggle flips the clock, settles the device, and dumps the pins. The cycle
// counter advances on falling edges, when a full period has completed.
func (d *Driver) Toggle() {
	d.dev.ToggleClock()
	d.time += d.halfPeriod

	d.dump()

	if !d.dev.ClockHigh() {
		d.cycle++
	}
}

// Sample dumps the pins at the current time without toggling.
func (d *Driver) Sample() {
	d.dump()
}

func (d *Driver) dump() {
	err := d.sink.Dump(d.time, d.dev.Pins(), d.dev.Outputs())
	if err != nil && d.err == nil {
		d.err = err
	}
}

// Advance runs n full clock periods.
func (d *Driver) Advance(n int) {
	for i := 0; i < 2*n; i++ {
		d.Toggle()
	}
}

// Now returns the number of completed clock periods.
func (d *Driver) Now() timing.Cycle {
	return d.cycle
}

// Time returns the trace time of the last toggle.
func (d *Driver) Time() uint64 {
	return d.time
}

// Err returns the first error reported by the sink. The run keeps going after
// a sink error so that the device sees the same stimulus.
func (d *Driver) Err() error {
	return d.err
}
