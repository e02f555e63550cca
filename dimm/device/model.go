// Package device describes the pins of the DIMM and owns every write to them.
package device

// Inputs are the input pins of the DIMM. Active-low pins carry an N suffix
// and hold the electrical level, so CSN == false means selected.
type Inputs struct {
	Clock  bool
	ResetN bool
	CKE    bool
	CSN    bool
	ActN   bool
	Addr   uint32
	BG     uint8
	BA     uint8
	DQM    uint8
	DQ     uint64
}

// Outputs are the output pins of the DIMM.
type Outputs struct {
	DQ      uint64
	DQValid bool
}

// A Model is a cycle-accurate device model. It is opaque: the stimulus only
// drives its inputs and samples its outputs.
//
// Eval is not idempotent. It must run in edge order and never be batched.
type Model interface {
	// Apply latches new input pin levels.
	Apply(in Inputs)

	// Eval evaluates the logic of the model once.
	Eval()

	// Outputs returns the output pin levels after the last Eval.
	Outputs() Outputs
}
