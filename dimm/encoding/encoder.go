package encoding

import (
	"log"

	"github.com/sarchlab/ddr4stim/dimm/signal"
)

// Encoder turns commands into frames. It holds no state besides the bit map,
// so encoding the same command always yields the same frame.
type Encoder struct {
	bitMap BitMap
}

// NewEncoder creates an encoder. It panics if the bit map is not usable.
func NewEncoder(bitMap BitMap) Encoder {
	if err := bitMap.Validate(); err != nil {
		log.Panicf("invalid bit map: %v", err)
	}

	return Encoder{bitMap: bitMap}
}

// BitMap returns the layout used by the encoder.
func (e Encoder) BitMap() BitMap {
	return e.bitMap
}

// Encode returns the frame of a command. Every frame is built from zero, so
// bits that the command kind does not use are always low.
//
// Encode panics on fields that do not fit their width. Callers must validate
// commands first so that a caller bug is not reported as a protocol bug.
func (e Encoder) Encode(cmd signal.Command) signal.Frame {
	if err := cmd.Validate(); err != nil {
		log.Panicf("cannot encode %s: %v", cmd, err)
	}

	m := e.bitMap
	f := signal.Frame{
		ChipSelect: true,
		Address:    m.Opcodes[cmd.Kind],
	}

	if cmd.Kind.IsBankCommand() {
		f.BankGroup = cmd.Bank.BankGroup
		f.Bank = cmd.Bank.Bank
	}

	switch cmd.Kind {
	case signal.CmdKindActivate:
		f.Activate = true
		f.Address |= uint32(cmd.Row) << m.RowShift
	case signal.CmdKindRead, signal.CmdKindWrite:
		f.Address |= uint32(cmd.Column) << m.ColumnShift
		if cmd.AutoPrecharge {
			f.Address |= 1 << m.AutoPrechargeBit
		}
	}

	return f
}

// Deselect returns the frame that leaves the device unselected.
func (e Encoder) Deselect() signal.Frame {
	return signal.Frame{}
}

// Decode recovers the command carried by a frame. It returns false for frames
// that carry no command. Data is never part of a frame.
func (e Encoder) Decode(f signal.Frame) (signal.Command, bool) {
	if !f.ChipSelect {
		return signal.Command{}, false
	}

	m := e.bitMap
	cmd := signal.Command{
		Bank: signal.BankAddress{BankGroup: f.BankGroup, Bank: f.Bank},
	}

	if f.Activate {
		cmd.Kind = signal.CmdKindActivate
		cmd.Row = signal.Row((f.Address >> m.RowShift) & signal.RowMask)

		return cmd, true
	}

	op := f.Address & m.opcodeField()
	for k := signal.CmdKindPrecharge; k < signal.NumCmdKind; k++ {
		if m.Opcodes[k] != op {
			continue
		}

		cmd.Kind = k

		if k.IsColumnCommand() {
			cmd.Column = signal.Column(
				(f.Address >> m.ColumnShift) & signal.ColumnMask)
			cmd.AutoPrecharge = f.Bit(m.AutoPrechargeBit)
		}

		if !k.IsBankCommand() {
			cmd.Bank = signal.BankAddress{}
		}

		return cmd, true
	}

	return signal.Command{}, false
}
