package model

// Contribution is one installed-length attribution produced by the
// calculator: this much length belongs to that line tag. Contributions are
// transient; they are folded into the pivot and never persisted.
type Contribution struct {
	// TargetLineTag is the pipeline the length is billed to. Empty means
	// the attribution could not be routed; the aggregation layer decides
	// between a material fallback row and an exclusion.
	TargetLineTag string

	// Length is the installed length in model units. The calculator never
	// emits zero or negative lengths.
	Length float64

	// Diameter is the resolved target nominal diameter, valid only when
	// DiameterKnown is true.
	Diameter      float64
	DiameterKnown bool

	// Source identifies the component that produced the contribution.
	Source ComponentID
}
