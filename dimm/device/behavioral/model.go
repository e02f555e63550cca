// Package behavioral provides a functional model of the DDR4 DIMM. It stands
// in for the cycle-accurate device model when no hardware model is attached.
package behavioral

import (
	"fmt"
	"log"

	"github.com/sarchlab/ddr4stim/dimm/device"
	"github.com/sarchlab/ddr4stim/dimm/encoding"
	"github.com/sarchlab/ddr4stim/dimm/signal"
)

// A Fault is a command the model refused to carry out as requested.
type Fault struct {
	Edge    uint64
	Command signal.Command
	Reason  string
}

func (f Fault) String() string {
	return fmt.Sprintf("edge %d: %s: %s", f.Edge, f.Command, f.Reason)
}

type bankState struct {
	open bool
	row  signal.Row
}

type location struct {
	bank   int
	row    signal.Row
	column signal.Column
}

type burst struct {
	cmd  signal.Command
	row  signal.Row
	wait int
	beat int
	data signal.BurstPayload
}

// Model decodes one command per chip-select assertion on rising clock edges.
// Write data is sampled on the command edge and the next seven edges. Read
// data appears ReadLatency cycles after the command, one word per edge.
type Model struct {
	decoder     encoding.Encoder
	readLatency int

	in        device.Inputs
	out       device.Outputs
	prevClock bool
	armed     bool
	edges     uint64

	banks   [signal.NumBanks]bankState
	storage map[location]signal.BurstPayload
	burst   *burst
	faults  []Fault
}

// New creates a model that decodes frames with the given bit map.
func New(bitMap encoding.BitMap, readLatency int) *Model {
	if readLatency < 1 {
		log.Panicf("read latency must be at least 1 cycle, got %d", readLatency)
	}

	return &Model{
		decoder:     encoding.NewEncoder(bitMap),
		readLatency: readLatency,
		storage:     make(map[location]signal.BurstPayload),
		armed:       true,
	}
}

// Apply latches the input pins.
func (m *Model) Apply(in device.Inputs) {
	m.in = in
}

// Outputs returns the output pins.
func (m *Model) Outputs() device.Outputs {
	return m.out
}

// Faults returns the commands the model refused so far.
func (m *Model) Faults() []Fault {
	return m.faults
}

// IsOpen tells whether a bank holds an open row, and which one.
func (m *Model) IsOpen(bank signal.BankAddress) (signal.Row, bool) {
	b := m.banks[bank.Index()]
	return b.row, b.open
}

// Peek returns the stored burst at a location. Unwritten locations read as
// zero.
func (m *Model) Peek(
	bank signal.BankAddress,
	row signal.Row,
	column signal.Column,
) signal.BurstPayload {
	return m.storage[location{bank.Index(), row, column}]
}

// Eval reacts to the latched pins. Only the first evaluation after a clock
// change sees the edge, so evaluating twice per apply is harmless.
func (m *Model) Eval() {
	if !m.in.ResetN {
		m.reset()
		return
	}

	if m.in.CSN {
		m.armed = true
	}

	if m.in.Clock == m.prevClock {
		return
	}

	m.prevClock = m.in.Clock
	m.edges++

	m.edge(m.in.Clock)
}

func (m *Model) reset() {
	m.banks = [signal.NumBanks]bankState{}
	m.burst = nil
	m.out = device.Outputs{}
	m.armed = true
	m.prevClock = m.in.Clock
}

func (m *Model) edge(rising bool) {
	if m.burst != nil {
		m.continueBurst()
		return
	}

	m.out = device.Outputs{}

	if !rising || !m.in.CKE || m.in.CSN || !m.armed {
		return
	}

	cmd, ok := m.decoder.Decode(signal.Frame{
		ChipSelect: !m.in.CSN,
		Activate:   !m.in.ActN,
		Address:    m.in.Addr,
		BankGroup:  m.in.BG,
		Bank:       m.in.BA,
	})
	if !ok {
		return
	}

	m.armed = false
	m.execute(cmd)
}

func (m *Model) fault(cmd signal.Command, reason string) {
	m.faults = append(m.faults, Fault{Edge: m.edges, Command: cmd, Reason: reason})
}

func (m *Model) execute(cmd signal.Command) {
	bank := &m.banks[cmd.Bank.Index()]

	switch cmd.Kind {
	case signal.CmdKindActivate:
		if bank.open {
			m.fault(cmd, "bank already has an open row")
		}

		bank.open = true
		bank.row = cmd.Row
	case signal.CmdKindPrecharge:
		bank.open = false
	case signal.CmdKindRefresh:
		for i := range m.banks {
			if m.banks[i].open {
				m.fault(cmd, "refresh with open rows")
				break
			}
		}
	case signal.CmdKindWrite:
		m.startBurst(cmd, bank)
		m.continueBurst()
	case signal.CmdKindRead:
		m.startBurst(cmd, bank)
	}
}

func (m *Model) startBurst(cmd signal.Command, bank *bankState) {
	if !bank.open {
		m.fault(cmd, "no open row")
	}

	b := &burst{cmd: cmd, row: bank.row}

	if cmd.Kind == signal.CmdKindRead {
		b.wait = 2 * m.readLatency
		b.data = m.storage[location{cmd.Bank.Index(), bank.row, cmd.Column}]
	} else {
		b.data = m.storage[location{cmd.Bank.Index(), bank.row, cmd.Column}]
	}

	m.burst = b
}

func (m *Model) continueBurst() {
	b := m.burst

	if b.cmd.Kind == signal.CmdKindWrite {
		b.data[b.beat] = mergeMasked(b.data[b.beat], m.in.DQ, m.in.DQM)
		b.beat++
	} else {
		m.out = device.Outputs{}

		if b.wait > 0 {
			b.wait--
		}

		if b.wait == 0 {
			m.out = device.Outputs{DQ: b.data[b.beat], DQValid: true}
			b.beat++
		}
	}

	if b.beat == signal.BurstLoad {
		m.finishBurst()
	}
}

func (m *Model) finishBurst() {
	b := m.burst
	m.burst = nil

	if b.cmd.Kind == signal.CmdKindWrite {
		m.storage[location{b.cmd.Bank.Index(), b.row, b.cmd.Column}] = b.data
	}

	if b.cmd.AutoPrecharge {
		m.banks[b.cmd.Bank.Index()].open = false
	}
}

// mergeMasked keeps the bytes of old whose mask bit is set.
func mergeMasked(old, word uint64, mask uint8) uint64 {
	var keep uint64

	for i := 0; i < 8; i++ {
		if mask&(1<<i) != 0 {
			keep |= 0xff << (8 * i)
		}
	}

	return old&keep | word&^keep
}
