package trace

import (
	"github.com/sarchlab/ddr4stim/datarecording"
	"github.com/sarchlab/ddr4stim/dimm/device"
)

// PinSampleTable is the table that holds one row per clock toggle.
const PinSampleTable = "pin_samples"

// pinSample is a row of the pin sample table. Data words are stored as
// signed integers because SQLite has no unsigned 64-bit type.
type pinSample struct {
	Time    uint64
	Clock   bool
	ResetN  bool
	CKE     bool
	CSN     bool
	ActN    bool
	Addr    uint32
	BG      uint8
	BA      uint8
	DQM     uint8
	DQ      int64
	DQOut   int64
	DQValid bool
}

// RecorderSink stores pin samples in a SQLite database.
type RecorderSink struct {
	recorder datarecording.DataRecorder
	owned    bool
}

// NewRecorderSink creates a sink that creates its own database on Open.
func NewRecorderSink() *RecorderSink {
	return &RecorderSink{}
}

// NewRecorderSinkWith creates a sink that shares a data recorder, for
// example with a command recorder. Closing the sink only flushes it.
func NewRecorderSinkWith(recorder datarecording.DataRecorder) *RecorderSink {
	return &RecorderSink{recorder: recorder}
}

// Open creates the sample table. Without a shared recorder it also creates
// the database path + ".sqlite3".
func (s *RecorderSink) Open(path string) error {
	if s.recorder == nil {
		s.recorder = datarecording.New(path)
		s.owned = true
	}

	s.recorder.CreateTable(PinSampleTable, pinSample{})

	return nil
}

// Dump buffers one sample.
func (s *RecorderSink) Dump(
	time uint64,
	in device.Inputs,
	out device.Outputs,
) error {
	s.recorder.InsertData(PinSampleTable, pinSample{
		Time:    time,
		Clock:   in.Clock,
		ResetN:  in.ResetN,
		CKE:     in.CKE,
		CSN:     in.CSN,
		ActN:    in.ActN,
		Addr:    in.Addr,
		BG:      in.BG,
		BA:      in.BA,
		DQM:     in.DQM,
		DQ:      int64(in.DQ),
		DQOut:   int64(out.DQ),
		DQValid: out.DQValid,
	})

	return nil
}

// Close writes buffered samples.
func (s *RecorderSink) Close() error {
	if s.recorder == nil {
		return nil
	}

	if s.owned {
		s.recorder.Close()
	} else {
		s.recorder.Flush()
	}

	return nil
}
