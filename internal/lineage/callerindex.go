package lineage

import "fmt"

// CallerIndex maps a procedure to the (possibly duplicated) sequence of
// its known direct callers. A missing key means "no known callers
// recorded", distinct from a present-but-empty slice.
type CallerIndex map[Procedure][]Procedure

// Callers returns p's callers, tolerating duplicates and a missing
// entry (which yields nil).
func (idx CallerIndex) Callers(p Procedure) []Procedure {
	return idx[p]
}

// BuildCallerIndex scans every persisted summary once via store.Iterate
// and inverts the dependency relation: for each summary with owner o and
// dependency d, d's caller list gains o. Fails with ErrCorruptSummary if
// any dependency set is marked partial.
func BuildCallerIndex(store SummaryStore) (CallerIndex, error) {
	records, err := store.Iterate()
	if err != nil {
		return nil, fmt.Errorf("lineage: building caller index: %w", err)
	}

	idx := make(CallerIndex)
	for _, rec := range records {
		if rec.Dependencies.Partial {
			return nil, fmt.Errorf("%w: %s", ErrCorruptSummary, rec.Procedure)
		}
		for _, dep := range rec.Dependencies.Procedures {
			idx[dep] = append(idx[dep], rec.Procedure)
		}
	}
	return idx, nil
}
