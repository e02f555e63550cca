package signal

// BankStatus is the state of one bank as seen by the controller.
type BankStatus int

// A list of bank states.
const (
	BankStatusIdle BankStatus = iota
	BankStatusActive
	BankStatusPrecharging
)

func (s BankStatus) String() string {
	switch s {
	case BankStatusIdle:
		return "idle"
	case BankStatusActive:
		return "active"
	case BankStatusPrecharging:
		return "precharging"
	default:
		return "unknown"
	}
}

// MarshalText lets snapshots carry readable states.
func (s BankStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
