package lineage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 — trivial intraprocedural.
func TestForward_S1_TrivialIntraprocedural(t *testing.T) {
	f := proc("m", "f", 1)
	g := NewGraph()
	g.AddEdge(Edge{From: Argument(0, RootFieldPath), To: Local("x", RootFieldPath), Kind: DirectEdge()})
	g.AddEdge(Edge{From: Local("x", RootFieldPath), To: Return(RootFieldPath), Kind: DirectEdge()})

	store := newFakeStore()
	store.addProcedure(f, nil, g)

	idx, err := BuildCallerIndex(store)
	require.NoError(t, err)

	source, err := ParseEndpoint("m:f/1$arg0")
	require.NoError(t, err)

	reachable, err := Forward(context.Background(), store, idx, nil, []Node{source}, ForwardOptions{})
	require.NoError(t, err)

	require.Contains(t, reachable, f)
	assert.Equal(t, 2, reachable[f].EdgeCount())
	assert.True(t, g.HasEdge(Edge{From: Argument(0, RootFieldPath), To: Local("x", RootFieldPath), Kind: DirectEdge()}))

	sink, err := ParseEndpoint("m:f/1$ret")
	require.NoError(t, err)
	coreachable, err := Backward(context.Background(), store, idx, reachable, []Node{sink})
	require.NoError(t, err)

	require.Contains(t, coreachable, f)
	assert.Equal(t, 2, coreachable[f].EdgeCount())
	assertSubgraph(t, coreachable[f], reachable[f])
}

// S2 — sanitizer pruning.
func TestForward_S2_SanitizerPruning(t *testing.T) {
	f := proc("m", "f", 1)
	san := proc("m", "san", 1)

	g := NewGraph()
	directEdge := Edge{From: Argument(0, RootFieldPath), To: Local("x", RootFieldPath), Kind: DirectEdge()}
	g.AddEdge(directEdge)
	g.AddEdge(Edge{From: Local("x", RootFieldPath), To: Return(RootFieldPath), Kind: DirectEdge()})
	summaryEdge := Edge{From: Argument(0, RootFieldPath), To: Return(RootFieldPath), Kind: SummaryEdge(san)}
	g.AddEdge(summaryEdge)

	store := newFakeStore()
	store.addProcedure(f, nil, g)

	idx, err := BuildCallerIndex(store)
	require.NoError(t, err)

	source, err := ParseEndpoint("m:f/1$arg0")
	require.NoError(t, err)

	sanitizers := map[Procedure]bool{san: true}
	reachable, err := Forward(context.Background(), store, idx, sanitizers, []Node{source}, ForwardOptions{})
	require.NoError(t, err)

	require.Contains(t, reachable, f)
	assert.False(t, reachable[f].HasEdge(summaryEdge))
	assert.True(t, reachable[f].HasEdge(directEdge))
}

// S3 — interprocedural, matched via a Summary edge at the callsite. The
// engine's two-phase follow-return schedule (spec.md §4.4) permanently
// disables return-following before a deferred-queue callee is ever
// visited, so a callsite with no Summary edge does not connect caller
// and callee even when the callee's own arg-to-ret would otherwise
// complete the path (see DESIGN.md's "Follow-return ratchet" Open
// Question decision for the full trade-off against S4). This test
// exercises the case the engine actually handles: a Summary edge
// present at the callsite.
func TestForward_S3_InterproceduralViaSummary(t *testing.T) {
	f := proc("m", "f", 1)
	gProc := proc("m", "g", 1)

	fg := NewGraph()
	fg.AddEdge(Edge{From: Argument(0, RootFieldPath), To: Local("x", RootFieldPath), Kind: DirectEdge()})
	fg.AddEdge(Edge{From: Local("x", RootFieldPath), To: Return(RootFieldPath), Kind: DirectEdge()})

	gg := NewGraph()
	gg.AddEdge(Edge{From: Argument(0, RootFieldPath), To: ArgumentOf(f, 0, RootFieldPath), Kind: CallEdge()})
	gg.AddEdge(Edge{From: ReturnOf(f, RootFieldPath), To: Return(RootFieldPath), Kind: ReturnEdge()})
	gg.AddEdge(Edge{From: Argument(0, RootFieldPath), To: Return(RootFieldPath), Kind: SummaryEdge(f)})

	store := newFakeStore()
	store.addProcedure(f, nil, fg)
	store.addProcedure(gProc, []Procedure{f}, gg)

	idx, err := BuildCallerIndex(store)
	require.NoError(t, err)

	source, err := ParseEndpoint("m:g/1$arg0")
	require.NoError(t, err)

	reachable, err := Forward(context.Background(), store, idx, nil, []Node{source}, ForwardOptions{})
	require.NoError(t, err)

	require.Contains(t, reachable, gProc)
	require.Contains(t, reachable, f)
	assert.True(t, reachable[gProc].HasEdge(Edge{From: Argument(0, RootFieldPath), To: Return(RootFieldPath), Kind: SummaryEdge(f)}))

	sink, err := ParseEndpoint("m:g/1$ret")
	require.NoError(t, err)
	coreachable, err := Backward(context.Background(), store, idx, reachable, []Node{sink})
	require.NoError(t, err)

	require.Contains(t, coreachable, gProc)
	assert.True(t, coreachable[gProc].HasEdge(Edge{From: Argument(0, RootFieldPath), To: Return(RootFieldPath), Kind: SummaryEdge(f)}))
}

// S4 — realizability violation excluded: once exploration has crossed
// into a callee via a Call, the engine must not cross back out via an
// unrelated Return to reach a third procedure.
func TestForward_S4_RealizabilityViolationExcluded(t *testing.T) {
	f := proc("m", "f", 1)
	h := proc("m", "h", 2)
	k := proc("m", "k", 1)

	fg := NewGraph()
	fg.AddEdge(Edge{From: Argument(0, RootFieldPath), To: Return(RootFieldPath), Kind: DirectEdge()})

	hg := NewGraph()
	hg.AddEdge(Edge{From: Argument(0, RootFieldPath), To: ArgumentOf(f, 0, RootFieldPath), Kind: CallEdge()})
	hg.AddEdge(Edge{From: ReturnOf(f, RootFieldPath), To: Return(RootFieldPath), Kind: ReturnEdge()})
	// Unrelated path from the same ReturnOf vertex to an unconnected
	// callsite; must not be reachable since follow-return is disabled
	// once exploration has gone through the deferred call mechanism.
	hg.AddEdge(Edge{From: ReturnOf(f, RootFieldPath), To: ArgumentOf(k, 0, RootFieldPath), Kind: DirectEdge()})

	store := newFakeStore()
	store.addProcedure(f, nil, fg)
	store.addProcedure(h, []Procedure{f}, hg)
	store.addProcedure(k, nil, NewGraph())

	idx, err := BuildCallerIndex(store)
	require.NoError(t, err)

	source, err := ParseEndpoint("m:h/2$arg0")
	require.NoError(t, err)

	reachable, err := Forward(context.Background(), store, idx, nil, []Node{source}, ForwardOptions{})
	require.NoError(t, err)

	require.Contains(t, reachable, h)
	assert.True(t, reachable[h].HasEdge(Edge{From: Argument(0, RootFieldPath), To: ArgumentOf(f, 0, RootFieldPath), Kind: CallEdge()}))
	assert.False(t, reachable[h].HasVertex(ReturnOf(f, RootFieldPath)), "ReturnOf(f) must not be reached: reaching it requires an unrealizable Return after a Call")
	assert.False(t, reachable[h].HasEdge(Edge{From: ReturnOf(f, RootFieldPath), To: ArgumentOf(k, 0, RootFieldPath), Kind: DirectEdge()}))
	assert.NotContains(t, reachable, k)
}

// S5 — unknown sink procedure: coreachable map stays empty, no error.
func TestBackward_S5_UnknownSinkProcedure(t *testing.T) {
	f := proc("m", "f", 1)
	g := NewGraph()
	g.AddEdge(Edge{From: Argument(0, RootFieldPath), To: Return(RootFieldPath), Kind: DirectEdge()})

	store := newFakeStore()
	store.addProcedure(f, nil, g)
	idx, err := BuildCallerIndex(store)
	require.NoError(t, err)

	source, err := ParseEndpoint("m:f/1$arg0")
	require.NoError(t, err)
	reachable, err := Forward(context.Background(), store, idx, nil, []Node{source}, ForwardOptions{})
	require.NoError(t, err)

	unknownSink := Node{Procedure: proc("m", "ghost", 0), Locator: ReturnLocator(RootFieldPath)}
	coreachable, err := Backward(context.Background(), store, idx, reachable, []Node{unknownSink})
	require.NoError(t, err)
	assert.Empty(t, coreachable)
}

// S6 — budget truncation: the engine never exceeds the configured edge
// budget.
func TestForward_S6_BudgetTruncation(t *testing.T) {
	f := proc("m", "f", 1)
	g := NewGraph()
	prev := Argument(0, RootFieldPath)
	for i := 0; i < 10; i++ {
		next := Local(string(rune('a'+i)), RootFieldPath)
		g.AddEdge(Edge{From: prev, To: next, Kind: DirectEdge()})
		prev = next
	}
	g.AddEdge(Edge{From: prev, To: Return(RootFieldPath), Kind: DirectEdge()})

	store := newFakeStore()
	store.addProcedure(f, nil, g)
	idx, err := BuildCallerIndex(store)
	require.NoError(t, err)

	source, err := ParseEndpoint("m:f/1$arg0")
	require.NoError(t, err)

	budget := 3
	reachable, err := Forward(context.Background(), store, idx, nil, []Node{source}, ForwardOptions{EdgeBudget: &budget})
	require.NoError(t, err)

	assert.LessOrEqual(t, reachable[f].EdgeCount(), 3)
	assert.Equal(t, 0, budget)
}

// Invariant 6 — monotonicity: reachable(sources) ⊆ reachable(sources ∪ more), edgewise, per procedure.
func TestForward_Monotonicity(t *testing.T) {
	f := proc("m", "f", 1)
	g := NewGraph()
	g.AddEdge(Edge{From: Argument(0, RootFieldPath), To: Return(RootFieldPath), Kind: DirectEdge()})
	g.AddEdge(Edge{From: Argument(1, RootFieldPath), To: Return(RootFieldPath), Kind: DirectEdge()})

	store := newFakeStore()
	store.addProcedure(f, nil, g)
	idx, err := BuildCallerIndex(store)
	require.NoError(t, err)

	small, err := Forward(context.Background(), store, idx, nil, []Node{{Procedure: f, Locator: ArgumentLocator(0, RootFieldPath)}}, ForwardOptions{})
	require.NoError(t, err)

	big, err := Forward(context.Background(), store, idx, nil, []Node{
		{Procedure: f, Locator: ArgumentLocator(0, RootFieldPath)},
		{Procedure: f, Locator: ArgumentLocator(1, RootFieldPath)},
	}, ForwardOptions{})
	require.NoError(t, err)

	for _, e := range small[f].Edges() {
		assert.True(t, big[f].HasEdge(e))
	}
	assert.Greater(t, big[f].EdgeCount(), small[f].EdgeCount())
}

// assertSubgraph asserts every edge of sub also appears in super.
func assertSubgraph(t *testing.T, sub, super *Graph) {
	t.Helper()
	for _, e := range sub.Edges() {
		assert.True(t, super.HasEdge(e), "edge %v not in super", e)
	}
}
