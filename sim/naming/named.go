// Package naming gives components hierarchical names such as "Bench.DIMM[0]".
package naming

// Named describes an object that has a name.
type Named interface {
	// Name returns the name of the object.
	Name() string
}

// NamedBase is a base implementation of Named.
type NamedBase struct {
	name string
}

// Name returns the name.
func (b NamedBase) Name() string {
	return b.name
}

// MakeNamedBase validates the name and creates a new NamedBase.
func MakeNamedBase(name string) NamedBase {
	NameMustBeValid(name)
	return NamedBase{name: name}
}
