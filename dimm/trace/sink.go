// Package trace records what the stimulus did to the DIMM: waveforms of the
// pins and a log of the commands.
package trace

import (
	"errors"

	"github.com/sarchlab/ddr4stim/dimm/device"
)

// A Sink is an append-only waveform record keyed by trace time.
type Sink interface {
	// Open prepares the record at the given path.
	Open(path string) error

	// Dump records the pins at the given time. The clock driver calls it once
	// per clock toggle, after the device settles.
	Dump(time uint64, in device.Inputs, out device.Outputs) error

	// Close completes the record.
	Close() error
}

// NopSink drops every sample.
type NopSink struct{}

// Open does nothing.
func (NopSink) Open(string) error { return nil }

// Dump does nothing.
func (NopSink) Dump(uint64, device.Inputs, device.Outputs) error { return nil }

// Close does nothing.
func (NopSink) Close() error { return nil }

// MultiSink sends every sample to several sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks. Each sink is usually opened on its own path
// before being combined.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Open opens every sink at the same path.
func (m *MultiSink) Open(path string) error {
	for _, s := range m.sinks {
		if err := s.Open(path); err != nil {
			return err
		}
	}

	return nil
}

// Dump records the sample in every sink and reports every failure. A failing
// sink does not keep the sample from the others.
func (m *MultiSink) Dump(
	time uint64,
	in device.Inputs,
	out device.Outputs,
) error {
	var errs []error

	for _, s := range m.sinks {
		errs = append(errs, s.Dump(time, in, out))
	}

	return errors.Join(errs...)
}

// Close closes every sink and reports every failure.
func (m *MultiSink) Close() error {
	var errs []error

	for _, s := range m.sinks {
		errs = append(errs, s.Close())
	}

	return errors.Join(errs...)
}
