package behavioral

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ddr4stim/dimm/device"
	"github.com/sarchlab/ddr4stim/dimm/encoding"
	"github.com/sarchlab/ddr4stim/dimm/signal"
)

var _ = Describe("Model", func() {
	const readLatency = 4

	var (
		enc   encoding.Encoder
		model *Model
		dev   *device.Interface
		bank  signal.BankAddress
	)

	BeforeEach(func() {
		enc = encoding.NewEncoder(encoding.DefaultBitMap())
		model = New(enc.BitMap(), readLatency)
		dev = device.NewInterface(model)
		dev.Settle()
		bank = signal.BankAddress{BankGroup: 1, Bank: 2}
	})

	// command drives one command cycle: selected for the rising edge only.
	command := func(cmd signal.Command) {
		dev.ApplyFrame(enc.Encode(cmd))
		dev.ToggleClock()
		dev.ReleaseChipSelect()
		dev.ToggleClock()
	}

	idle := func(cycles int) {
		dev.Deselect()
		for i := 0; i < 2*cycles; i++ {
			dev.ToggleClock()
		}
	}

	write := func(col signal.Column, data signal.BurstPayload, ap bool) {
		dev.ApplyFrame(enc.Encode(signal.Command{
			Kind: signal.CmdKindWrite, Bank: bank, Column: col, AutoPrecharge: ap,
		}))

		for beat := 0; beat < signal.BurstLoad; beat++ {
			dev.SetData(data[beat])
			dev.ToggleClock()

			if beat == 0 {
				dev.ReleaseChipSelect()
			}
		}
	}

	read := func(col signal.Column) signal.BurstPayload {
		var data signal.BurstPayload

		dev.ApplyFrame(enc.Encode(signal.Command{
			Kind: signal.CmdKindRead, Bank: bank, Column: col,
		}))
		dev.ToggleClock()
		dev.ReleaseChipSelect()

		beat := 0
		for edge := 1; edge <= 2*readLatency+signal.BurstLoad-1; edge++ {
			dev.ToggleClock()

			out := dev.Outputs()
			if edge < 2*readLatency {
				Expect(out.DQValid).To(BeFalse())
				continue
			}

			Expect(out.DQValid).To(BeTrue())
			data[beat] = out.DQ
			beat++
		}

		return data
	}

	payload := signal.BurstPayload{1, 2, 3, 4, 5, 6, 7, 8}

	It("should open a row on activate", func() {
		command(signal.Command{Kind: signal.CmdKindActivate, Bank: bank, Row: 9})

		row, open := model.IsOpen(bank)
		Expect(open).To(BeTrue())
		Expect(row).To(Equal(signal.Row(9)))
	})

	It("should decode once per chip select assertion", func() {
		dev.ApplyFrame(enc.Encode(signal.Command{
			Kind: signal.CmdKindActivate, Bank: bank, Row: 9,
		}))
		dev.ToggleClock()
		dev.ToggleClock()
		dev.ToggleClock()

		Expect(model.Faults()).To(BeEmpty())
	})

	It("should store a write burst", func() {
		command(signal.Command{Kind: signal.CmdKindActivate, Bank: bank, Row: 3})
		write(5, payload, false)
		idle(1)

		Expect(model.Peek(bank, 3, 5)).To(Equal(payload))
		Expect(model.Faults()).To(BeEmpty())
	})

	It("should read back what was written", func() {
		command(signal.Command{Kind: signal.CmdKindActivate, Bank: bank, Row: 3})
		write(5, payload, false)
		idle(1)

		Expect(read(5)).To(Equal(payload))
		Expect(model.Faults()).To(BeEmpty())
	})

	It("should keep masked bytes", func() {
		command(signal.Command{Kind: signal.CmdKindActivate, Bank: bank, Row: 3})
		write(5, payload, false)
		idle(1)

		dev.SetDataMask(0xFE)
		write(5, signal.BurstPayload{0xFFFF, 0xFFFF}, false)
		dev.SetDataMask(0)
		idle(1)

		stored := model.Peek(bank, 3, 5)
		Expect(stored[0]).To(Equal(uint64(0xFF)))
		Expect(stored[1]).To(Equal(uint64(0xFF)))
		Expect(stored[2]).To(Equal(uint64(0)))
	})

	It("should close the row after an auto-precharge burst", func() {
		command(signal.Command{Kind: signal.CmdKindActivate, Bank: bank, Row: 3})
		write(5, payload, true)
		idle(1)

		_, open := model.IsOpen(bank)
		Expect(open).To(BeFalse())
	})

	It("should fault on a second activate", func() {
		command(signal.Command{Kind: signal.CmdKindActivate, Bank: bank, Row: 3})
		command(signal.Command{Kind: signal.CmdKindActivate, Bank: bank, Row: 4})

		Expect(model.Faults()).To(HaveLen(1))
		Expect(model.Faults()[0].Reason).To(Equal("bank already has an open row"))
	})

	It("should fault on a refresh with open rows", func() {
		command(signal.Command{Kind: signal.CmdKindActivate, Bank: bank, Row: 3})
		command(signal.Command{Kind: signal.CmdKindRefresh})

		Expect(model.Faults()).To(HaveLen(1))
	})

	It("should close every row on reset", func() {
		command(signal.Command{Kind: signal.CmdKindActivate, Bank: bank, Row: 3})

		dev.SetReset(true)
		dev.Settle()
		dev.SetReset(false)
		dev.Settle()

		_, open := model.IsOpen(bank)
		Expect(open).To(BeFalse())
	})

	It("should panic on a zero read latency", func() {
		Expect(func() { New(encoding.DefaultBitMap(), 0) }).To(Panic())
	})
})
