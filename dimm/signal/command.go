package signal

import "fmt"

// CmdKind is the kind of a logical DIMM command.
type CmdKind int

// A list of supported commands.
const (
	CmdKindActivate CmdKind = iota
	CmdKindPrecharge
	CmdKindRead
	CmdKindWrite
	CmdKindRefresh
	NumCmdKind
)

var cmdKindNames = [...]string{
	CmdKindActivate:  "activate",
	CmdKindPrecharge: "precharge",
	CmdKindRead:      "read",
	CmdKindWrite:     "write",
	CmdKindRefresh:   "refresh",
}

func (k CmdKind) String() string {
	if k < 0 || k >= NumCmdKind {
		return fmt.Sprintf("CmdKind(%d)", int(k))
	}

	return cmdKindNames[k]
}

// ParseCmdKind converts a command name back to its kind.
func ParseCmdKind(s string) (CmdKind, error) {
	for k, name := range cmdKindNames {
		if name == s {
			return CmdKind(k), nil
		}
	}

	return 0, fmt.Errorf("unknown command kind %q", s)
}

// IsColumnCommand returns true for commands that move data.
func (k CmdKind) IsColumnCommand() bool {
	return k == CmdKindRead || k == CmdKindWrite
}

// IsBankCommand returns true for commands that target a single bank.
func (k CmdKind) IsBankCommand() bool {
	return k != CmdKindRefresh
}

// BurstPayload is the data moved by one read or write burst.
type BurstPayload [BurstLoad]uint64

// Command is one logical request to the DIMM. Fields that do not apply to
// the kind are ignored.
type Command struct {
	Kind          CmdKind
	Bank          BankAddress
	Row           Row
	Column        Column
	AutoPrecharge bool
	Data          BurstPayload
}

// Validate checks that every field used by the command kind fits its width.
func (c Command) Validate() error {
	if c.Kind < 0 || c.Kind >= NumCmdKind {
		return fmt.Errorf("invalid command kind %d", int(c.Kind))
	}

	if c.Kind.IsBankCommand() {
		if err := c.Bank.Validate(); err != nil {
			return err
		}
	}

	switch c.Kind {
	case CmdKindActivate:
		return c.Row.Validate()
	case CmdKindRead, CmdKindWrite:
		return c.Column.Validate()
	}

	return nil
}

func (c Command) String() string {
	switch c.Kind {
	case CmdKindActivate:
		return fmt.Sprintf("%s %s row %d", c.Kind, c.Bank, c.Row)
	case CmdKindPrecharge:
		return fmt.Sprintf("%s %s", c.Kind, c.Bank)
	case CmdKindRead, CmdKindWrite:
		ap := ""
		if c.AutoPrecharge {
			ap = " ap"
		}

		return fmt.Sprintf("%s %s col %d%s", c.Kind, c.Bank, c.Column, ap)
	default:
		return c.Kind.String()
	}
}
