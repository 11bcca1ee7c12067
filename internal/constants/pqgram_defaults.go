package constants

// PQ-gram shape defaults. P is the length of the ancestor window and Q the
// length of the sibling window of every label tuple.
//
// References:
// - Augsten, N., Böhlen, M., & Gamper, J. (2005). Approximate matching of
//   hierarchical data using pq-grams
const (
	// DefaultP is the number of ancestor labels in a tuple.
	DefaultP = 2

	// DefaultQ is the number of sibling labels in a tuple.
	DefaultQ = 3

	// NullTag marks padding positions in ancestor and sibling windows.
	NullTag = "*"
)

// DefaultExcludedMarkers lists tag fragments that denote bookkeeping nodes.
// A label whose tag contains one of these is never reported as an edit.
var DefaultExcludedMarkers = []string{"Metadata", "Literal", "StrId"}

// Target selection defaults.
const (
	// DefaultMinPercentage is the share of passed tests a reference project
	// needs to qualify as a comparison target.
	DefaultMinPercentage = 90.0

	// MaxPercentage caps the --min-percentage flag.
	MaxPercentage = 100.0
)

// Synthetic labels used by whole-block edits.
const (
	ScriptParentTag    = "Script"
	ProcedureParentTag = "ProcedureDefinitionList"
	ProcedureTag       = "ProcedureDefinition"
	NeverEventTag      = "Never"
)

// IntermediateGroupPolicy names how the synthesizer treats edit groups whose
// size is neither 1 nor q+1.
const (
	IntermediateBestEffort = "best_effort"
	IntermediateStrict     = "strict"
)
