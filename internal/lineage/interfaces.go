package lineage

// Summary is what the summary store hands back for one procedure: its
// dependency set (who it calls), its shape payload, and its lineage
// graph. Payloads are lazy by convention of the store implementation,
// not of this type.
type Summary struct {
	Dependencies DependencySet
	Shape        ShapeSummary // nil if the procedure has no shape payload
	Lineage      *Graph       // nil/empty if the procedure has no lineage payload
}

// SummaryStore is the read-only external collaborator that owns
// persisted per-procedure summaries. Construction and maintenance of
// summaries is out of scope for this package.
type SummaryStore interface {
	// Load returns the summary for p, or ok=false if none is recorded.
	Load(p Procedure) (summary *Summary, ok bool)

	// Iterate returns every (procedure, dependency set) pair currently
	// recorded, for building the Caller Index. Called once.
	Iterate() ([]SummaryRecord, error)
}

// SummaryRecord is one entry yielded by SummaryStore.Iterate.
type SummaryRecord struct {
	Procedure    Procedure
	Dependencies DependencySet
}

// DescriptionStore resolves a procedure to a human-readable description,
// used only by the Graph Reporter.
type DescriptionStore interface {
	Resolve(p Procedure) (description string, ok bool)
}

// ShapeSummary answers the four field-path refinement queries of
// spec.md §6. Each Map* method enumerates the finite set of field-path
// refinements of fp known for the given locator and applies f to each,
// collecting the results. Implementations must be pure and must never
// fail; an absent shape payload is represented by a nil ShapeSummary.
// The Expander applies the single-vertex fallback both for a nil
// ShapeSummary and for a query that returns no refinements.
type ShapeSummary interface {
	MapReturn(fp FieldPath, f func(FieldPath) Vertex) []Vertex
	MapReturnOf(callee Procedure, fp FieldPath, f func(FieldPath) Vertex) []Vertex
	MapArgument(index int, fp FieldPath, f func(FieldPath) Vertex) []Vertex
	MapArgumentOf(callee Procedure, index int, fp FieldPath, f func(FieldPath) Vertex) []Vertex
}

// GraphSerializer emits one procedure's subgraph to whatever destination
// the host configures (file, SARIF log, etc). description is empty when
// the procedure could not be resolved but the subgraph was still
// non-empty only in the MissingProcedureDescription case, which the
// Reporter turns into an error before ever calling Serialize.
type GraphSerializer interface {
	Serialize(p Procedure, description string, g *Graph) error
}
