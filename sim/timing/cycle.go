package timing

// Cycle counts completed clock periods since the start of the simulation.
type Cycle uint64

// CycleTeller can tell the current cycle.
type CycleTeller interface {
	Now() Cycle
}
