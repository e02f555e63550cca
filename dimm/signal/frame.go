package signal

import "fmt"

// Frame is the pin-level encoding of one command. ChipSelect and Activate are
// logical levels. The device interface turns them into active-low pins.
type Frame struct {
	ChipSelect bool
	Activate   bool
	Address    uint32
	BankGroup  uint8
	Bank       uint8
}

// Bit returns the level of one address bit.
func (f Frame) Bit(i int) bool {
	return f.Address&(1<<i) != 0
}

func (f Frame) String() string {
	return fmt.Sprintf("cs=%t act=%t addr=%017b bg=%d ba=%02b",
		f.ChipSelect, f.Activate, f.Address, f.BankGroup, f.Bank)
}
