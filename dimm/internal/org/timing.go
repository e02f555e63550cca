package org

import (
	"fmt"

	"github.com/sarchlab/ddr4stim/dimm/signal"
)

// Timing holds the minimum intervals, in cycles, that the tracker enforces.
type Timing struct {
	ActivationLatency int
	PrechargeLatency  int
	BurstCycles       int
	RefreshCycle      int
	RefreshLatency    int
}

// DefaultTiming returns the timing of the DDR4 DIMM. A burst keeps its bank
// busy for one cycle per beat.
func DefaultTiming() Timing {
	return Timing{
		ActivationLatency: signal.ActivationLatency,
		PrechargeLatency:  signal.PrechargeLatency,
		BurstCycles:       signal.BurstLoad,
		RefreshCycle:      signal.RefreshCycle,
		RefreshLatency:    16,
	}
}

// Validate rejects non-positive intervals.
func (t Timing) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"activation latency", t.ActivationLatency},
		{"precharge latency", t.PrechargeLatency},
		{"burst cycles", t.BurstCycles},
		{"refresh cycle", t.RefreshCycle},
		{"refresh latency", t.RefreshLatency},
	}

	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", f.name, f.value)
		}
	}

	return nil
}
