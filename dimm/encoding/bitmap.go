// Package encoding maps logical DIMM commands to the pin-level frames the
// device decodes, and back.
package encoding

import (
	"fmt"

	"github.com/sarchlab/ddr4stim/dimm/signal"
)

// BitMap tells where each logical field lives on the 17-bit address bus. It
// is data rather than code so that it can follow the truth table of the
// device under test.
type BitMap struct {
	// Opcodes holds the fixed address bits of each command kind. Activate is
	// told apart by the activate signal, so its opcode is usually 0.
	Opcodes [signal.NumCmdKind]uint32

	// AutoPrechargeBit is the bit that asks a read or write to precharge the
	// bank after its burst.
	AutoPrechargeBit int

	RowShift    int
	ColumnShift int
}

// DefaultBitMap returns the command layout of the DDR4 DIMM model. Bit 16
// separates the column commands from the row commands, bit 15 picks read over
// write and precharge over activate, and bit 14 marks refresh.
func DefaultBitMap() BitMap {
	m := BitMap{
		AutoPrechargeBit: 10,
	}

	m.Opcodes[signal.CmdKindActivate] = 0
	m.Opcodes[signal.CmdKindPrecharge] = 1 << 15
	m.Opcodes[signal.CmdKindWrite] = 1 << 16
	m.Opcodes[signal.CmdKindRead] = 1<<16 | 1<<15
	m.Opcodes[signal.CmdKindRefresh] = 1 << 14

	return m
}

// LegacyBitMap returns the layout used by the first hand-written testbench of
// the DIMM, where reads are marked with bit 14 instead of bit 15.
func LegacyBitMap() BitMap {
	m := DefaultBitMap()
	m.Opcodes[signal.CmdKindRead] = 1<<16 | 1<<14
	m.Opcodes[signal.CmdKindRefresh] = 1<<15 | 1<<14

	return m
}

func (m BitMap) opcodeField() uint32 {
	var field uint32
	for _, op := range m.Opcodes {
		field |= op
	}

	return field
}

func (m BitMap) rowField() uint32 {
	return signal.RowMask << m.RowShift
}

func (m BitMap) columnField() uint32 {
	return signal.ColumnMask << m.ColumnShift
}

// Validate makes sure that commands encoded with the map can be told apart
// and that no field overlaps another.
func (m BitMap) Validate() error {
	if m.AutoPrechargeBit < 0 || m.AutoPrechargeBit >= signal.AddressBits {
		return fmt.Errorf("auto-precharge bit %d is outside the address bus",
			m.AutoPrechargeBit)
	}

	ap := uint32(1) << m.AutoPrechargeBit
	opField := m.opcodeField()

	if err := m.fieldMustFit("row", m.rowField()); err != nil {
		return err
	}

	if err := m.fieldMustFit("column", m.columnField()); err != nil {
		return err
	}

	if m.rowField()&m.Opcodes[signal.CmdKindActivate] != 0 {
		return fmt.Errorf("row field overlaps the activate opcode")
	}

	if m.columnField()&opField != 0 || m.columnField()&ap != 0 {
		return fmt.Errorf("column field overlaps opcode or auto-precharge bits")
	}

	if opField&ap != 0 {
		return fmt.Errorf("auto-precharge bit %d overlaps an opcode",
			m.AutoPrechargeBit)
	}

	return m.opcodesMustBeDistinct()
}

func (m BitMap) fieldMustFit(name string, field uint32) error {
	if field&^signal.AddressMask != 0 {
		return fmt.Errorf("%s field does not fit in the address bus", name)
	}

	return nil
}

func (m BitMap) opcodesMustBeDistinct() error {
	for k := signal.CmdKindPrecharge; k < signal.NumCmdKind; k++ {
		if m.Opcodes[k] == 0 {
			return fmt.Errorf("%s opcode must not be 0", k)
		}

		if m.Opcodes[k]&^signal.AddressMask != 0 {
			return fmt.Errorf("%s opcode does not fit in the address bus", k)
		}

		for other := k + 1; other < signal.NumCmdKind; other++ {
			if m.Opcodes[k] == m.Opcodes[other] {
				return fmt.Errorf("%s and %s share opcode %#x",
					k, other, m.Opcodes[k])
			}
		}
	}

	return nil
}
