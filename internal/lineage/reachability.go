package lineage

import "context"

// ReachableMap is the per-procedure subgraph mapping produced by Forward.
type ReachableMap map[Procedure]*Graph

// ForwardOptions configures a Forward run. A nil EdgeBudget means
// unbounded.
type ForwardOptions struct {
	EdgeBudget *int
}

// Forward runs the Forward Reachability Engine of spec.md §4.4: starting
// from sources, it collects, per procedure, the subgraph of edges
// reachable while respecting the realizability rule (no Return edge may
// be followed after a Call edge has been followed on the same path).
//
// sources must be non-empty.
func Forward(ctx context.Context, store SummaryStore, callers CallerIndex, sanitizers map[Procedure]bool, sources []Node, opts ForwardOptions) (ReachableMap, error) {
	f := &forwardRun{
		ctx:         ctx,
		store:       store,
		callers:     callers,
		sanitizers:  sanitizers,
		budget:      opts.EdgeBudget,
		acc:         make(ReachableMap),
		visitedTodo: make(map[Node]bool),
		graphs:      make(map[Procedure]*Graph),
		shapes:      make(map[Procedure]ShapeSummary),
		loaded:      make(map[Procedure]bool),
	}
	return f.run(sources)
}

type forwardRun struct {
	ctx        context.Context
	store      SummaryStore
	callers    CallerIndex
	sanitizers map[Procedure]bool
	budget     *int

	acc         ReachableMap
	visitedTodo map[Node]bool

	graphs map[Procedure]*Graph
	shapes map[Procedure]ShapeSummary
	loaded map[Procedure]bool
}

func (f *forwardRun) run(sources []Node) (ReachableMap, error) {
	primary := append([]Node(nil), sources...)
	var deferredQ []Node
	followReturn := true

	for len(primary) > 0 || len(deferredQ) > 0 {
		if err := f.ctx.Err(); err != nil {
			return nil, err
		}

		if len(primary) == 0 {
			primary, deferredQ = deferredQ, nil
			followReturn = false
			continue
		}

		n := primary[0]
		primary = primary[1:]

		if f.visitedTodo[n] {
			continue
		}
		f.visitedTodo[n] = true

		if f.sanitizers[n.Procedure] {
			continue
		}

		g, shape := f.procedureGraph(n.Procedure)
		v0 := expandLocator(n.Locator, shape)

		contProc, contArg := f.visitIntraprocedural(n.Procedure, g, v0, followReturn)
		for _, c := range contProc {
			if !f.visitedTodo[c] {
				primary = append(primary, c)
			}
		}
		for _, c := range contArg {
			if !f.visitedTodo[c] {
				deferredQ = append(deferredQ, c)
			}
		}
	}

	return f.acc, nil
}

// visitIntraprocedural performs the forward DFS of spec.md §4.4 over
// procedure p's graph starting from v0, accumulating edges into
// f.acc[p]. It returns the interprocedural continuations generated by
// vertices reached during this visit: contProc are ReturnOf
// continuations bound for the primary deque (only generated while
// followReturn is true), contArg are Argument continuations bound for
// the deferred deque (generated regardless of phase, since following a
// Call edge is always realizable).
func (f *forwardRun) visitIntraprocedural(p Procedure, g *Graph, v0 []Vertex, followReturn bool) (contProc, contArg []Node) {
	acc, ok := f.acc[p]
	if !ok {
		acc = NewGraph()
		f.acc[p] = acc
	}

	visited := make(map[Vertex]bool)
	var stack []Vertex

	visit := func(v Vertex) {
		if visited[v] {
			return
		}
		visited[v] = true
		acc.Touch(v)
		stack = append(stack, v)

		switch v.Kind {
		case VertexReturn:
			if followReturn {
				for _, c := range f.callers.Callers(p) {
					contProc = append(contProc, Node{Procedure: c, Locator: ReturnOfLocator(p, v.FieldPath)})
				}
			}
		case VertexArgumentOf:
			contArg = append(contArg, Node{Procedure: v.Callee, Locator: ArgumentLocator(v.Index, v.FieldPath)})
		}
	}

	for _, v := range v0 {
		visit(v)
	}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, e := range g.Successors(v) {
			if e.Kind.Tag == EdgeSummary && f.sanitizers[e.Kind.Callee] {
				continue
			}
			if f.budget != nil && *f.budget <= 0 {
				return contProc, contArg
			}
			if acc.AddEdge(e) && f.budget != nil {
				*f.budget--
			}
			visit(e.To)
		}
	}

	return contProc, contArg
}

// procedureGraph lazily loads (and caches for the remainder of this run)
// the lineage graph and shape summary for p. A procedure with no
// persisted summary is treated as the empty graph.
func (f *forwardRun) procedureGraph(p Procedure) (*Graph, ShapeSummary) {
	if f.loaded[p] {
		return f.graphs[p], f.shapes[p]
	}
	f.loaded[p] = true

	summary, ok := f.store.Load(p)
	if !ok || summary == nil {
		f.graphs[p] = NewGraph()
		return f.graphs[p], nil
	}

	g := summary.Lineage
	if g == nil {
		g = NewGraph()
	}
	f.graphs[p] = g
	f.shapes[p] = summary.Shape
	return g, summary.Shape
}
