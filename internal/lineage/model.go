// Package lineage implements the interprocedural taint-flow extractor:
// forward reachability from a source, backward coreachability to a sink,
// over a persisted per-procedure lineage graph.
package lineage

import (
	"fmt"
	"sort"
	"strings"
)

// Procedure identifies a procedure by module, function name, and arity.
// An empty Module denotes the default module.
type Procedure struct {
	Module   string
	Function string
	Arity    int
}

func (p Procedure) String() string {
	if p.Module == "" {
		return fmt.Sprintf("%s/%d", p.Function, p.Arity)
	}
	return fmt.Sprintf("%s:%s/%d", p.Module, p.Function, p.Arity)
}

// fieldPathSep cannot appear in a field selector; used to keep FieldPath
// comparable (and thus usable as a map/struct key) without resorting to
// slices.
const fieldPathSep = "\x1f"

// FieldPath is an ordered sequence of record-field selectors, canonically
// encoded so it remains a comparable value. The empty FieldPath denotes
// the whole value.
type FieldPath string

// RootFieldPath is the empty field path (the whole value).
const RootFieldPath FieldPath = ""

// NewFieldPath builds a FieldPath from its selector parts.
func NewFieldPath(parts ...string) FieldPath {
	if len(parts) == 0 {
		return RootFieldPath
	}
	return FieldPath(strings.Join(parts, fieldPathSep))
}

// Parts decomposes the FieldPath back into its selectors.
func (fp FieldPath) Parts() []string {
	if fp == RootFieldPath {
		return nil
	}
	return strings.Split(string(fp), fieldPathSep)
}

// VertexKind tags the variant of a Vertex.
type VertexKind uint8

const (
	VertexLocal VertexKind = iota
	VertexArgument
	VertexReturn
	VertexArgumentOf
	VertexReturnOf
	VertexCaptured
	VertexCapturedBy
	VertexSelf
	VertexFunction
)

// Vertex is a tagged value over one procedure's lineage graph. Only the
// fields relevant to Kind are meaningful; it stays a single comparable
// struct (rather than an interface) so it can be used directly as a map
// key by Graph.
type Vertex struct {
	Kind      VertexKind
	Name      string    // Local
	Index     int       // Argument, Captured, ArgumentOf, CapturedBy
	FieldPath FieldPath // Local, Argument, Return, ArgumentOf, ReturnOf
	Callee    Procedure // ArgumentOf, ReturnOf, CapturedBy
	Function  Procedure // Function
}

func Local(name string, fp FieldPath) Vertex {
	return Vertex{Kind: VertexLocal, Name: name, FieldPath: fp}
}

func Argument(index int, fp FieldPath) Vertex {
	return Vertex{Kind: VertexArgument, Index: index, FieldPath: fp}
}

func Return(fp FieldPath) Vertex {
	return Vertex{Kind: VertexReturn, FieldPath: fp}
}

func ArgumentOf(callee Procedure, index int, fp FieldPath) Vertex {
	return Vertex{Kind: VertexArgumentOf, Callee: callee, Index: index, FieldPath: fp}
}

func ReturnOf(callee Procedure, fp FieldPath) Vertex {
	return Vertex{Kind: VertexReturnOf, Callee: callee, FieldPath: fp}
}

func Captured(index int) Vertex {
	return Vertex{Kind: VertexCaptured, Index: index}
}

func CapturedBy(callee Procedure, index int) Vertex {
	return Vertex{Kind: VertexCapturedBy, Callee: callee, Index: index}
}

func Self() Vertex {
	return Vertex{Kind: VertexSelf}
}

func FunctionVertex(p Procedure) Vertex {
	return Vertex{Kind: VertexFunction, Function: p}
}

func (v Vertex) String() string {
	switch v.Kind {
	case VertexLocal:
		return fmt.Sprintf("Local(%s, %v)", v.Name, v.FieldPath.Parts())
	case VertexArgument:
		return fmt.Sprintf("Argument(%d, %v)", v.Index, v.FieldPath.Parts())
	case VertexReturn:
		return fmt.Sprintf("Return(%v)", v.FieldPath.Parts())
	case VertexArgumentOf:
		return fmt.Sprintf("ArgumentOf(%s, %d, %v)", v.Callee, v.Index, v.FieldPath.Parts())
	case VertexReturnOf:
		return fmt.Sprintf("ReturnOf(%s, %v)", v.Callee, v.FieldPath.Parts())
	case VertexCaptured:
		return fmt.Sprintf("Captured(%d)", v.Index)
	case VertexCapturedBy:
		return fmt.Sprintf("CapturedBy(%s, %d)", v.Callee, v.Index)
	case VertexSelf:
		return "Self"
	case VertexFunction:
		return fmt.Sprintf("Function(%s)", v.Function)
	default:
		return "Vertex(?)"
	}
}

// EdgeTag labels the semantic nature of an Edge.
type EdgeTag uint8

const (
	EdgeDirect EdgeTag = iota
	EdgeCall
	EdgeReturn
	EdgeCapture
	EdgeSummary
	EdgeBuiltin
	EdgeDynamicCallFunction
	EdgeDynamicCallModule
)

// EdgeKind is the tag plus the extra data Summary edges carry.
type EdgeKind struct {
	Tag    EdgeTag
	Callee Procedure // meaningful only when Tag == EdgeSummary
}

func DirectEdge() EdgeKind  { return EdgeKind{Tag: EdgeDirect} }
func CallEdge() EdgeKind    { return EdgeKind{Tag: EdgeCall} }
func ReturnEdge() EdgeKind  { return EdgeKind{Tag: EdgeReturn} }
func CaptureEdge() EdgeKind { return EdgeKind{Tag: EdgeCapture} }
func SummaryEdge(callee Procedure) EdgeKind {
	return EdgeKind{Tag: EdgeSummary, Callee: callee}
}
func BuiltinEdge() EdgeKind             { return EdgeKind{Tag: EdgeBuiltin} }
func DynamicCallFunctionEdge() EdgeKind { return EdgeKind{Tag: EdgeDynamicCallFunction} }
func DynamicCallModuleEdge() EdgeKind   { return EdgeKind{Tag: EdgeDynamicCallModule} }

// Edge is a directed, kinded edge of a per-procedure lineage graph.
type Edge struct {
	From Vertex
	To   Vertex
	Kind EdgeKind
}

// String renders e as a stable sort key; not meant for display.
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s [%d %s]", e.From, e.To, e.Kind.Tag, e.Kind.Callee)
}

// Graph is a per-procedure directed multigraph. The zero value is not
// usable; construct with NewGraph.
type Graph struct {
	out map[Vertex][]Edge
	in  map[Vertex][]Edge
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{out: make(map[Vertex][]Edge), in: make(map[Vertex][]Edge)}
}

// Successors returns the outgoing edges of v, in insertion order.
func (g *Graph) Successors(v Vertex) []Edge { return g.out[v] }

// Predecessors returns the incoming edges of v, in insertion order.
func (g *Graph) Predecessors(v Vertex) []Edge { return g.in[v] }

// HasVertex reports whether v appears as the endpoint of any edge, or was
// explicitly touched via Touch.
func (g *Graph) HasVertex(v Vertex) bool {
	if _, ok := g.out[v]; ok {
		return true
	}
	if _, ok := g.in[v]; ok {
		return true
	}
	return false
}

// Touch records v as present in the graph even if it has no incident
// edges yet (e.g. a source vertex reached in a procedure with no
// lineage summary).
func (g *Graph) Touch(v Vertex) {
	if _, ok := g.out[v]; !ok {
		g.out[v] = nil
	}
}

// HasEdge reports whether an edge equal to e is already present.
func (g *Graph) HasEdge(e Edge) bool {
	for _, existing := range g.out[e.From] {
		if existing == e {
			return true
		}
	}
	return false
}

// AddEdge inserts e if not already present, returning true if it was
// newly added.
func (g *Graph) AddEdge(e Edge) bool {
	if g.HasEdge(e) {
		return false
	}
	g.out[e.From] = append(g.out[e.From], e)
	g.in[e.To] = append(g.in[e.To], e)
	if _, ok := g.out[e.To]; !ok {
		g.out[e.To] = nil
	}
	return true
}

// EdgeCount returns the total number of distinct edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.out {
		n += len(edges)
	}
	return n
}

// IsEmpty reports whether the graph has no edges.
func (g *Graph) IsEmpty() bool { return g.EdgeCount() == 0 }

// Vertices returns every vertex known to the graph (source or
// destination of some edge, or explicitly touched), sorted by String()
// so that repeated calls over equal inputs yield byte-identical output.
func (g *Graph) Vertices() []Vertex {
	seen := make(map[Vertex]bool, len(g.out))
	var vs []Vertex
	for v := range g.out {
		if !seen[v] {
			seen[v] = true
			vs = append(vs, v)
		}
	}
	for v := range g.in {
		if !seen[v] {
			seen[v] = true
			vs = append(vs, v)
		}
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].String() < vs[j].String() })
	return vs
}

// Edges returns every edge in the graph, sorted by String() so that
// repeated calls over equal inputs yield byte-identical output.
func (g *Graph) Edges() []Edge {
	var es []Edge
	for _, edges := range g.out {
		es = append(es, edges...)
	}
	sort.Slice(es, func(i, j int) bool { return es[i].String() < es[j].String() })
	return es
}

// Union merges other's edges and touched vertices into g.
func (g *Graph) Union(other *Graph) {
	if other == nil {
		return
	}
	for v := range other.out {
		g.Touch(v)
	}
	for _, e := range other.Edges() {
		g.AddEdge(e)
	}
}

// LocatorKind tags the variant of a Locator.
type LocatorKind uint8

const (
	LocatorReturn LocatorKind = iota
	LocatorArgument
	LocatorReturnOf
	LocatorArgumentOf
)

// Locator names a position within a procedure's signature, to be
// expanded into concrete vertices via shape information. It is the
// second half of an interprocedural Node.
type Locator struct {
	Kind      LocatorKind
	Index     int       // Argument, ArgumentOf
	FieldPath FieldPath
	Callee    Procedure // ReturnOf, ArgumentOf
}

func ReturnLocator(fp FieldPath) Locator {
	return Locator{Kind: LocatorReturn, FieldPath: fp}
}

func ArgumentLocator(index int, fp FieldPath) Locator {
	return Locator{Kind: LocatorArgument, Index: index, FieldPath: fp}
}

func ReturnOfLocator(callee Procedure, fp FieldPath) Locator {
	return Locator{Kind: LocatorReturnOf, Callee: callee, FieldPath: fp}
}

func ArgumentOfLocator(callee Procedure, index int, fp FieldPath) Locator {
	return Locator{Kind: LocatorArgumentOf, Callee: callee, Index: index, FieldPath: fp}
}

// Node is an interprocedural "todo": a procedure paired with a locator
// within it.
type Node struct {
	Procedure Procedure
	Locator   Locator
}

// DependencySet is the set of procedures a summary's owner called or
// otherwise referenced. Partial marks an incomplete scan (e.g. the
// upstream analysis bailed out on this procedure), which the Caller
// Index treats as fatal.
type DependencySet struct {
	Procedures []Procedure
	Partial    bool
}
