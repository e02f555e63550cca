package signal

import "fmt"

// Row is a row address.
type Row uint32

// Validate returns a RangeError if the row does not fit in RowBits.
func (r Row) Validate() error {
	if r > RowMask {
		return &RangeError{Field: "row", Value: uint64(r), Bits: RowBits}
	}

	return nil
}

// Column is a column address.
type Column uint32

// Validate returns a RangeError if the column does not fit in ColBits.
func (c Column) Validate() error {
	if c > ColumnMask {
		return &RangeError{Field: "column", Value: uint64(c), Bits: ColBits}
	}

	return nil
}

// BankAddress selects one of the NumBanks banks.
type BankAddress struct {
	BankGroup uint8
	Bank      uint8
}

// BankFromIndex splits a flat bank number. The lowest bit selects the bank
// group and the two bits above it select the bank.
func BankFromIndex(i int) BankAddress {
	return BankAddress{
		BankGroup: uint8(i & 0b1),
		Bank:      uint8((i & 0b110) >> 1),
	}
}

// Index returns the flat bank number, in [0, NumBanks).
func (b BankAddress) Index() int {
	return int(b.Bank)<<BankGroupBits | int(b.BankGroup)
}

// Validate returns a RangeError if a field does not fit its width.
func (b BankAddress) Validate() error {
	if b.BankGroup >= 1<<BankGroupBits {
		return &RangeError{
			Field: "bank group", Value: uint64(b.BankGroup), Bits: BankGroupBits,
		}
	}

	if b.Bank >= 1<<BankBits {
		return &RangeError{Field: "bank", Value: uint64(b.Bank), Bits: BankBits}
	}

	return nil
}

func (b BankAddress) String() string {
	return fmt.Sprintf("bg%d.ba%d", b.BankGroup, b.Bank)
}

// AllBanks lists every bank in index order.
func AllBanks() []BankAddress {
	banks := make([]BankAddress, NumBanks)
	for i := range banks {
		banks[i] = BankFromIndex(i)
	}

	return banks
}
