package lineage

import "errors"

// ErrBadEndpoint is returned by ParseEndpoint/ParseSanitizer when the
// input literal does not match the endpoint grammar.
var ErrBadEndpoint = errors.New("lineage: malformed endpoint")

// ErrCorruptSummary is returned while building the Caller Index when a
// summary's dependency set is marked partial/incomplete.
var ErrCorruptSummary = errors.New("lineage: corrupt summary (partial dependency set)")

// ErrMissingProcedureDescription is returned by the Graph Reporter when a
// procedure has a non-empty subgraph but no resolvable description.
var ErrMissingProcedureDescription = errors.New("lineage: missing procedure description")
