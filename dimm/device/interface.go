package device

import "github.com/sarchlab/ddr4stim/dimm/signal"

// Interface is the single owner of the DIMM input pins. Every pin write of
// the stimulus goes through it.
type Interface struct {
	model Model
	pins  Inputs
}

// NewInterface wraps a model. Pins start with the clock low, reset released,
// clock enabled, and the device deselected.
func NewInterface(model Model) *Interface {
	return &Interface{
		model: model,
		pins: Inputs{
			ResetN: true,
			CKE:    true,
			CSN:    true,
			ActN:   true,
		},
	}
}

// ApplyFrame drives every command pin from the frame. Pins not described by
// the frame keep their level.
func (i *Interface) ApplyFrame(f signal.Frame) {
	i.pins.CSN = !f.ChipSelect
	i.pins.ActN = !f.Activate
	i.pins.Addr = f.Address & signal.AddressMask
	i.pins.BG = f.BankGroup
	i.pins.BA = f.Bank
}

// Deselect drives the all-zero frame, which releases chip select and clears
// the address and bank pins.
func (i *Interface) Deselect() {
	i.ApplyFrame(signal.Frame{})
}

// ReleaseChipSelect deasserts chip select and holds every other pin.
func (i *Interface) ReleaseChipSelect() {
	i.pins.CSN = true
	i.pins.ActN = true
}

// SetData drives one word onto the data bus.
func (i *Interface) SetData(word uint64) {
	i.pins.DQ = word
}

// SetDataMask drives the data mask pins.
func (i *Interface) SetDataMask(mask uint8) {
	i.pins.DQM = mask
}

// SetReset asserts or releases the active-low reset pin.
func (i *Interface) SetReset(asserted bool) {
	i.pins.ResetN = !asserted
}

// SetClockEnable drives the clock enable pin.
func (i *Interface) SetClockEnable(enabled bool) {
	i.pins.CKE = enabled
}

// ToggleClock flips the clock pin and settles the model.
func (i *Interface) ToggleClock() {
	i.pins.Clock = !i.pins.Clock
	i.Settle()
}

// ClockHigh tells the current clock level.
func (i *Interface) ClockHigh() bool {
	return i.pins.Clock
}

// Settle applies the pins and evaluates the model twice, which the model
// needs for its combinational logic to settle.
func (i *Interface) Settle() {
	i.model.Apply(i.pins)
	i.model.Eval()
	i.model.Eval()
}

// ReadData returns the word on the data outputs and whether the device drives
// it.
func (i *Interface) ReadData() (uint64, bool) {
	o := i.model.Outputs()
	return o.DQ, o.DQValid
}

// Pins returns the current input levels.
func (i *Interface) Pins() Inputs {
	return i.pins
}

// Outputs returns the output levels after the last settle.
func (i *Interface) Outputs() Outputs {
	return i.model.Outputs()
}
