package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sarchlab/ddr4stim/dimm/device"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

type vcdVar struct {
	id    string
	name  string
	width int
	value func(in device.Inputs, out device.Outputs) uint64
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}

var vcdVars = []vcdVar{
	{"!", "clk", 1, func(in device.Inputs, _ device.Outputs) uint64 {
		return boolBit(in.Clock)
	}},
	{"\"", "rst_n", 1, func(in device.Inputs, _ device.Outputs) uint64 {
		return boolBit(in.ResetN)
	}},
	{"#", "cke", 1, func(in device.Inputs, _ device.Outputs) uint64 {
		return boolBit(in.CKE)
	}},
	{"-", "cs_n", 1, func(in device.Inputs, _ device.Outputs) uint64 {
		return boolBit(in.CSN)
	}},
	{"%", "act_n", 1, func(in device.Inputs, _ device.Outputs) uint64 {
		return boolBit(in.ActN)
	}},
	{"&", "addr", 17, func(in device.Inputs, _ device.Outputs) uint64 {
		return uint64(in.Addr)
	}},
	{"'", "bg", 1, func(in device.Inputs, _ device.Outputs) uint64 {
		return uint64(in.BG)
	}},
	{"(", "ba", 2, func(in device.Inputs, _ device.Outputs) uint64 {
		return uint64(in.BA)
	}},
	{")", "dqm", 8, func(in device.Inputs, _ device.Outputs) uint64 {
		return uint64(in.DQM)
	}},
	{"*", "dq", 64, func(in device.Inputs, _ device.Outputs) uint64 {
		return in.DQ
	}},
	{"+", "dq_out", 64, func(_ device.Inputs, out device.Outputs) uint64 {
		return out.DQ
	}},
	{",", "dq_valid", 1, func(_ device.Inputs, out device.Outputs) uint64 {
		return boolBit(out.DQValid)
	}},
}

// VCDWriter writes the pins as a value change dump that waveform viewers can
// open. Only changed values are written after the first sample.
type VCDWriter struct {
	scale  timing.TimeScale
	module string
	date   time.Time

	file     *os.File
	w        *bufio.Writer
	last     []uint64
	lastTime uint64
	err      error
}

// NewVCDWriter creates a writer whose timestamps are in the given scale.
func NewVCDWriter(scale timing.TimeScale) *VCDWriter {
	return &VCDWriter{
		scale:  scale,
		module: "ddr4_dimm",
		date:   time.Now(),
	}
}

// WithDate fixes the date written in the header.
func (v *VCDWriter) WithDate(date time.Time) *VCDWriter {
	v.date = date
	return v
}

// Open creates the file at path and writes the header.
func (v *VCDWriter) Open(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	v.file = f

	return v.OpenWriter(f)
}

// OpenWriter writes the dump to w instead of a file.
func (v *VCDWriter) OpenWriter(w io.Writer) error {
	v.w = bufio.NewWriter(w)
	v.last = nil
	v.err = nil

	return v.writeHeader()
}

func (v *VCDWriter) writeHeader() error {
	v.printf("$date %s $end\n", v.date.Format(time.RFC1123))
	v.printf("$version ddr4stim $end\n")
	v.printf("$timescale %s $end\n", v.scale)
	v.printf("$scope module %s $end\n", v.module)

	for _, vv := range vcdVars {
		v.printf("$var wire %d %s %s $end\n", vv.width, vv.id, vv.name)
	}

	v.printf("$upscope $end\n$enddefinitions $end\n")

	if v.err != nil {
		return v.err
	}

	return v.w.Flush()
}

// printf writes to the buffer and keeps the first failure. Once a write fails
// every later Dump reports it.
func (v *VCDWriter) printf(format string, args ...any) {
	if v.err != nil {
		return
	}

	if _, err := fmt.Fprintf(v.w, format, args...); err != nil {
		v.err = err
	}
}

// Dump writes the values that changed since the previous sample. A sample
// that changes nothing writes nothing. The buffer drains to the output as it
// fills, so a failing output is reported by a later Dump, not always the
// first one after the failure.
func (v *VCDWriter) Dump(t uint64, in device.Inputs, out device.Outputs) error {
	if v.w == nil {
		return fmt.Errorf("vcd writer is not open")
	}

	if v.err != nil {
		return v.err
	}

	if v.last == nil {
		return v.dumpAll(t, in, out)
	}

	stamped := false

	for i, vv := range vcdVars {
		value := vv.value(in, out)
		if value == v.last[i] {
			continue
		}

		if !stamped && t != v.lastTime {
			v.printf("#%d\n", t)
			v.lastTime = t
		}

		stamped = true
		v.last[i] = value
		v.writeValue(vv, value)
	}

	return v.err
}

func (v *VCDWriter) dumpAll(t uint64, in device.Inputs, out device.Outputs) error {
	v.last = make([]uint64, len(vcdVars))
	v.lastTime = t

	v.printf("#%d\n$dumpvars\n", t)

	for i, vv := range vcdVars {
		v.last[i] = vv.value(in, out)
		v.writeValue(vv, v.last[i])
	}

	v.printf("$end\n")

	return v.err
}

func (v *VCDWriter) writeValue(vv vcdVar, value uint64) {
	if vv.width == 1 {
		v.printf("%d%s\n", value, vv.id)
		return
	}

	v.printf("b%s %s\n", strconv.FormatUint(value, 2), vv.id)
}

// Close flushes the dump and closes the file, if the writer opened one.
func (v *VCDWriter) Close() error {
	if v.w == nil {
		return nil
	}

	err := v.w.Flush()
	v.w = nil

	if v.file != nil {
		if closeErr := v.file.Close(); err == nil {
			err = closeErr
		}

		v.file = nil
	}

	return err
}
