package lineagelog

// VerbosityLevel controls output detail.
type VerbosityLevel int

const (
	// VerbosityDefault shows clean results only (no progress, no statistics).
	VerbosityDefault VerbosityLevel = iota
	// VerbosityVerbose adds statistics and summary info.
	VerbosityVerbose
	// VerbosityDebug adds timestamps and diagnostic messages.
	VerbosityDebug
)

// FormatKind is the serialized report format. lineageflow never emits
// free-text findings, so unlike the teacher's four-way text/json/csv/sarif
// split, only the two structured formats exist here.
type FormatKind string

const (
	FormatJSON  FormatKind = "json"
	FormatSARIF FormatKind = "sarif"
)
