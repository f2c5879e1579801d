package lineage

import "context"

// CoreachableMap is the per-procedure subgraph mapping produced by
// Backward. Every edge in CoreachableMap[p] is guaranteed to also appear
// in ReachableMap[p] (the Backward Coreachability Engine reads only shape
// summaries from the summary store, never lineage graphs; it only ever
// walks predecessors already recorded in the reachable map).
type CoreachableMap map[Procedure]*Graph

// Backward runs the Backward Coreachability Engine of spec.md §4.5:
// starting from sinks, restricted to the reachable map produced by
// Forward, it collects the subgraph of edges from which some sink is
// backward-reachable.
//
// The realizability rule is not replayed here: it was already enforced
// while building reachable, so every edge present there may be followed
// freely during the backward walk.
//
// store supplies each sink procedure's ShapeSummary so its locator is
// expanded the same way Forward expanded its own locators. A sink whose
// procedure has a shape that refines a root locator (e.g. Return([])
// into several Return([field]) vertices) only ever has the refined
// vertices present in reachable; expanding with a nil shape would
// produce the unrefined vertex instead, which restrictToGraph then drops
// as absent, silently losing a real flow.
func Backward(ctx context.Context, store SummaryStore, callers CallerIndex, reachable ReachableMap, sinks []Node) (CoreachableMap, error) {
	b := &backwardRun{
		ctx:         ctx,
		store:       store,
		callers:     callers,
		reachable:   reachable,
		acc:         make(CoreachableMap),
		visitedTodo: make(map[Node]bool),
	}
	return b.run(sinks)
}

type backwardRun struct {
	ctx       context.Context
	store     SummaryStore
	callers   CallerIndex
	reachable ReachableMap

	acc         CoreachableMap
	visitedTodo map[Node]bool
}

func (b *backwardRun) run(sinks []Node) (CoreachableMap, error) {
	queue := append([]Node(nil), sinks...)

	for len(queue) > 0 {
		if err := b.ctx.Err(); err != nil {
			return nil, err
		}

		n := queue[0]
		queue = queue[1:]

		if b.visitedTodo[n] {
			continue
		}
		b.visitedTodo[n] = true

		g, ok := b.reachable[n.Procedure]
		if !ok {
			// Missing-procedure tolerance (spec.md §4.5): this caller
			// was recorded globally but never itself reaches the
			// source, so there is nothing to coreach within it.
			continue
		}

		v0 := restrictToGraph(expandLocator(n.Locator, b.shapeOf(n.Procedure)), g)
		queue = append(queue, b.visitIntraprocedural(n.Procedure, g, v0)...)
	}

	return b.acc, nil
}

// shapeOf loads p's ShapeSummary from store, tolerating a nil store (unit
// tests construct backwardRun-free Backward calls against fixed
// ReachableMaps with no store) and a procedure with no summary, both of
// which fall back to expandLocator's shape-absent behavior.
func (b *backwardRun) shapeOf(p Procedure) ShapeSummary {
	if b.store == nil {
		return nil
	}
	summary, ok := b.store.Load(p)
	if !ok || summary == nil {
		return nil
	}
	return summary.Shape
}

// restrictToGraph drops every vertex not present in g, per spec.md §4.5
// ("missing vertices are silently dropped").
func restrictToGraph(vs []Vertex, g *Graph) []Vertex {
	var out []Vertex
	for _, v := range vs {
		if g.HasVertex(v) {
			out = append(out, v)
		}
	}
	return out
}

func (b *backwardRun) visitIntraprocedural(p Procedure, g *Graph, v0 []Vertex) []Node {
	acc, ok := b.acc[p]
	if !ok {
		acc = NewGraph()
		b.acc[p] = acc
	}

	var todos []Node
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
		case VertexArgument:
			for _, c := range b.callers.Callers(p) {
				todos = append(todos, Node{Procedure: c, Locator: ArgumentOfLocator(p, v.Index, v.FieldPath)})
			}
		case VertexReturnOf:
			todos = append(todos, Node{Procedure: v.Callee, Locator: ReturnLocator(v.FieldPath)})
		}
	}

	for _, v := range v0 {
		visit(v)
	}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, e := range g.Predecessors(v) {
			acc.AddEdge(e)
			visit(e.From)
		}
	}

	return todos
}
