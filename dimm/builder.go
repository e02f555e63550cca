package dimm

import (
	"log"

	"github.com/sarchlab/ddr4stim/dimm/device"
	"github.com/sarchlab/ddr4stim/dimm/device/behavioral"
	"github.com/sarchlab/ddr4stim/dimm/encoding"
	"github.com/sarchlab/ddr4stim/dimm/internal/clock"
	"github.com/sarchlab/ddr4stim/dimm/internal/org"
	"github.com/sarchlab/ddr4stim/dimm/trace"
	"github.com/sarchlab/ddr4stim/sim/id"
	"github.com/sarchlab/ddr4stim/sim/naming"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// Builder can build DIMM sequencers.
type Builder struct {
	model          device.Model
	sink           trace.Sink
	bitMap         encoding.BitMap
	readLatency    int
	refreshLatency int
	maxCycles      uint64
	freq           timing.Freq
	scale          timing.TimeScale
	idGenerator    id.IDGenerator
}

// MakeBuilder creates a builder with the default parameters of the DDR4 DIMM.
func MakeBuilder() Builder {
	return Builder{
		sink:           trace.NopSink{},
		bitMap:         encoding.DefaultBitMap(),
		readLatency:    4,
		refreshLatency: 16,
		maxCycles:      6000,
		freq:           100 * timing.MHz,
		scale:          timing.NS,
	}
}

// WithModel sets the device model. By default, a behavioral model that uses
// the same bit map is created.
func (b Builder) WithModel(model device.Model) Builder {
	b.model = model
	return b
}

// WithSink sets where the pins are dumped after every clock toggle. The sink
// must be open.
func (b Builder) WithSink(sink trace.Sink) Builder {
	b.sink = sink
	return b
}

// WithBitMap sets the command layout on the address bus.
func (b Builder) WithBitMap(bitMap encoding.BitMap) Builder {
	b.bitMap = bitMap
	return b
}

// WithReadLatency sets the number of cycles between a read command and its
// first data word.
func (b Builder) WithReadLatency(cycles int) Builder {
	b.readLatency = cycles
	return b
}

// WithRefreshLatency sets the number of cycles a refresh keeps every bank
// busy.
func (b Builder) WithRefreshLatency(cycles int) Builder {
	b.refreshLatency = cycles
	return b
}

// WithMaxCycles sets the simulation time bound. Waiting for a command to
// become legal past this cycle is a desynchronization.
func (b Builder) WithMaxCycles(cycles uint64) Builder {
	b.maxCycles = cycles
	return b
}

// WithFreq sets the clock frequency.
func (b Builder) WithFreq(freq timing.Freq) Builder {
	b.freq = freq
	return b
}

// WithTimeScale sets the unit of the trace timestamps.
func (b Builder) WithTimeScale(scale timing.TimeScale) Builder {
	b.scale = scale
	return b
}

// WithIDGenerator sets how command task IDs are generated. Sequential IDs are
// used by default.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGenerator = g
	return b
}

// Build creates the sequencer. Every bank starts idle; call Reset before
// issuing commands to put the device in the same state.
func (b Builder) Build(name string) *Comp {
	if b.readLatency < 1 {
		log.Panicf("read latency must be at least 1 cycle, got %d",
			b.readLatency)
	}

	t := org.DefaultTiming()
	t.RefreshLatency = b.refreshLatency

	model := b.model
	if model == nil {
		model = behavioral.New(b.bitMap, b.readLatency)
	}

	idGenerator := b.idGenerator
	if idGenerator == nil {
		idGenerator = id.NewIDGenerator()
	}

	c := &Comp{
		NamedBase:   naming.MakeNamedBase(name),
		encoder:     encoding.NewEncoder(b.bitMap),
		tracker:     org.NewTracker(t),
		readLatency: b.readLatency,
		maxCycles:   timing.Cycle(b.maxCycles),
		idGenerator: idGenerator,
	}

	c.dev = device.NewInterface(model)
	c.clock = clock.NewDriver(c.dev, b.sink, b.freq.HalfPeriod(b.scale))

	return c
}
