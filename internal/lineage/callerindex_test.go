package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCallerIndex(t *testing.T) {
	store := newFakeStore()
	f := proc("m", "f", 1)
	g := proc("m", "g", 1)
	h := proc("m", "h", 1)

	store.addProcedure(f, nil, NewGraph())
	store.addProcedure(g, []Procedure{f}, NewGraph())
	store.addProcedure(h, []Procedure{f, f}, NewGraph()) // duplicate dependency tolerated

	idx, err := BuildCallerIndex(store)
	require.NoError(t, err)

	callers := idx.Callers(f)
	assert.ElementsMatch(t, []Procedure{g, h, h}, callers)
	assert.Nil(t, idx.Callers(proc("m", "unknown", 0)))
}

func TestBuildCallerIndex_CorruptSummary(t *testing.T) {
	store := newFakeStore()
	f := proc("m", "f", 1)
	store.addProcedure(f, nil, NewGraph())
	store.markPartial(f)

	_, err := BuildCallerIndex(store)
	assert.ErrorIs(t, err, ErrCorruptSummary)
}
