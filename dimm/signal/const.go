// Package signal defines the logical commands, addresses, and pin-level frames
// exchanged between the stimulus components and the DIMM.
package signal

// Protocol constants of the target DIMM. They are fixed by the device and are
// not configurable at runtime.
const (
	ActivationLatency = 8    // cycles to open a row into the row buffer
	PrechargeLatency  = 5    // cycles to close the row buffer
	RowBits           = 8    // width of a row address
	ColBits           = 4    // width of a column address
	NumBanks          = 8    // bank groups x banks
	RefreshCycle      = 5120 // max cycles between two refresh commands
	BurstLoad         = 8    // data words per read or write burst

	BankGroupBits = 1
	BankBits      = 2
	AddressBits   = 17
)

// Masks of the address fields.
const (
	RowMask     = 1<<RowBits - 1
	ColumnMask  = 1<<ColBits - 1
	AddressMask = 1<<AddressBits - 1
)
