package lineage

import (
	"fmt"
	"sort"
)

// Report emits each per-procedure subgraph in m via serializer, resolving
// descriptions through descriptions. Per spec.md §4.6: a procedure whose
// description cannot be resolved is skipped silently if its subgraph is
// empty (its contribution will already have been reported within its
// callers, as ArgumentOf/ReturnOf vertices), but fails with
// ErrMissingProcedureDescription if its subgraph has edges.
//
// Procedures are visited in a stable, sorted order so that two runs over
// the same inputs produce byte-identical output (the first failing
// procedure, if any, is also deterministic rather than map-order
// dependent).
func Report(m map[Procedure]*Graph, descriptions DescriptionStore, serializer GraphSerializer) error {
	procedures := make([]Procedure, 0, len(m))
	for p := range m {
		procedures = append(procedures, p)
	}
	sort.Slice(procedures, func(i, j int) bool { return procedures[i].String() < procedures[j].String() })

	for _, p := range procedures {
		g := m[p]
		description, ok := descriptions.Resolve(p)
		if !ok {
			if g.IsEmpty() {
				continue
			}
			return fmt.Errorf("%w: %s", ErrMissingProcedureDescription, p)
		}
		if err := serializer.Serialize(p, description, g); err != nil {
			return fmt.Errorf("lineage: serializing %s: %w", p, err)
		}
	}
	return nil
}
