package signal

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BankAddress", func() {
	It("should split the flat bank number", func() {
		Expect(BankFromIndex(0)).To(Equal(BankAddress{0, 0}))
		Expect(BankFromIndex(1)).To(Equal(BankAddress{BankGroup: 1, Bank: 0}))
		Expect(BankFromIndex(6)).To(Equal(BankAddress{BankGroup: 0, Bank: 3}))
		Expect(BankFromIndex(7)).To(Equal(BankAddress{BankGroup: 1, Bank: 3}))
	})

	It("should round trip all banks", func() {
		for i, b := range AllBanks() {
			Expect(b.Index()).To(Equal(i))
			Expect(b.Validate()).To(Succeed())
		}
	})

	It("should reject wide fields", func() {
		var rangeErr *RangeError

		err := BankAddress{BankGroup: 2}.Validate()
		Expect(errors.As(err, &rangeErr)).To(BeTrue())
		Expect(rangeErr.Field).To(Equal("bank group"))

		err = BankAddress{Bank: 4}.Validate()
		Expect(errors.As(err, &rangeErr)).To(BeTrue())
		Expect(rangeErr.Bits).To(Equal(BankBits))
	})
})

var _ = Describe("Command", func() {
	It("should validate the row of an activate", func() {
		cmd := Command{Kind: CmdKindActivate, Row: RowMask}
		Expect(cmd.Validate()).To(Succeed())

		cmd.Row = RowMask + 1
		Expect(cmd.Validate()).To(MatchError(ContainSubstring("row 256")))
	})

	It("should validate the column of a read", func() {
		cmd := Command{Kind: CmdKindRead, Column: 16}
		Expect(cmd.Validate()).To(MatchError(ContainSubstring("column")))
	})

	It("should ignore fields the kind does not use", func() {
		cmd := Command{Kind: CmdKindPrecharge, Row: 1 << 20, Column: 1 << 20}
		Expect(cmd.Validate()).To(Succeed())

		cmd = Command{Kind: CmdKindRefresh, Bank: BankAddress{Bank: 9}}
		Expect(cmd.Validate()).To(Succeed())
	})

	It("should parse kind names", func() {
		for k := CmdKindActivate; k < NumCmdKind; k++ {
			parsed, err := ParseCmdKind(k.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(k))
		}

		_, err := ParseCmdKind("mrs")
		Expect(err).To(HaveOccurred())
	})

	It("should describe commands", func() {
		cmd := Command{
			Kind:          CmdKindWrite,
			Bank:          BankFromIndex(3),
			Column:        2,
			AutoPrecharge: true,
		}
		Expect(cmd.String()).To(Equal("write bg1.ba1 col 2 ap"))
	})
})

var _ = Describe("Errors", func() {
	It("should flag refresh-overdue violations", func() {
		err := &ProtocolViolationError{
			Kind: CmdKindRead, Cycle: 5120, Reason: RefreshOverdue,
		}

		Expect(err.IsRefreshOverdue()).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("cycle 5120"))
	})
})
