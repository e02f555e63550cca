package timing

import (
	"log"
	"math"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// TimeScale is the length of one unit of the trace timestamp, in seconds.
type TimeScale float64

// A list of common trace time scales.
const (
	PS TimeScale = 1e-12
	NS TimeScale = 1e-9
	US TimeScale = 1e-6
)

// String returns the VCD spelling of the time scale.
func (s TimeScale) String() string {
	switch s {
	case PS:
		return "1ps"
	case NS:
		return "1ns"
	case US:
		return "1us"
	default:
		log.Panicf("unsupported time scale %g", float64(s))
	}

	return ""
}

// Period returns the time between two consecutive ticks, in seconds.
func (f Freq) Period() float64 {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return 1.0 / float64(f)
}

// HalfPeriod returns the number of time-scale units between two clock edges.
//
//	     |<-- half -->|
//	_____|‾‾‾‾‾‾‾‾‾‾‾‾|____________|‾‾‾‾
//
// The result is rounded to the nearest unit and is never 0.
func (f Freq) HalfPeriod(scale TimeScale) uint64 {
	units := math.Round(f.Period() / 2 / float64(scale))
	if units < 1 {
		log.Panicf("frequency %g Hz is too high for time scale %s",
			float64(f), scale)
	}

	return uint64(units)
}
