package store

import (
	"fmt"

	"github.com/shivasurya/lineageflow/internal/lineage"
)

// vertexJSON is the wire representation of a lineage.Vertex. Only the
// fields relevant to Kind are populated by the upstream lineage-graph
// builder; the rest are left zero.
type vertexJSON struct {
	Kind      string   `json:"kind"`
	Name      string   `json:"name,omitempty"`
	Index     int      `json:"index,omitempty"`
	FieldPath []string `json:"fieldPath,omitempty"`
	Callee    string   `json:"callee,omitempty"`
	Function  string   `json:"function,omitempty"`
}

func decodeVertex(v vertexJSON) (lineage.Vertex, error) {
	fp := lineage.NewFieldPath(v.FieldPath...)

	switch v.Kind {
	case "local":
		return lineage.Local(v.Name, fp), nil
	case "argument":
		return lineage.Argument(v.Index, fp), nil
	case "return":
		return lineage.Return(fp), nil
	case "argumentOf":
		callee, err := lineage.ParseSanitizer(v.Callee)
		if err != nil {
			return lineage.Vertex{}, fmt.Errorf("vertex argumentOf: %w", err)
		}
		return lineage.ArgumentOf(callee, v.Index, fp), nil
	case "returnOf":
		callee, err := lineage.ParseSanitizer(v.Callee)
		if err != nil {
			return lineage.Vertex{}, fmt.Errorf("vertex returnOf: %w", err)
		}
		return lineage.ReturnOf(callee, fp), nil
	case "captured":
		return lineage.Captured(v.Index), nil
	case "capturedBy":
		callee, err := lineage.ParseSanitizer(v.Callee)
		if err != nil {
			return lineage.Vertex{}, fmt.Errorf("vertex capturedBy: %w", err)
		}
		return lineage.CapturedBy(callee, v.Index), nil
	case "self":
		return lineage.Self(), nil
	case "function":
		fn, err := lineage.ParseSanitizer(v.Function)
		if err != nil {
			return lineage.Vertex{}, fmt.Errorf("vertex function: %w", err)
		}
		return lineage.FunctionVertex(fn), nil
	default:
		return lineage.Vertex{}, fmt.Errorf("vertex: unknown kind %q", v.Kind)
	}
}

// edgeJSON is the wire representation of one lineage.Edge.
type edgeJSON struct {
	From   vertexJSON `json:"from"`
	To     vertexJSON `json:"to"`
	Kind   string     `json:"kind"`
	Callee string     `json:"callee,omitempty"` // meaningful only when Kind == "summary"
}

func decodeEdge(e edgeJSON) (lineage.Edge, error) {
	from, err := decodeVertex(e.From)
	if err != nil {
		return lineage.Edge{}, fmt.Errorf("edge.from: %w", err)
	}
	to, err := decodeVertex(e.To)
	if err != nil {
		return lineage.Edge{}, fmt.Errorf("edge.to: %w", err)
	}

	var kind lineage.EdgeKind
	switch e.Kind {
	case "direct":
		kind = lineage.DirectEdge()
	case "call":
		kind = lineage.CallEdge()
	case "return":
		kind = lineage.ReturnEdge()
	case "capture":
		kind = lineage.CaptureEdge()
	case "summary":
		callee, err := lineage.ParseSanitizer(e.Callee)
		if err != nil {
			return lineage.Edge{}, fmt.Errorf("edge: summary callee: %w", err)
		}
		kind = lineage.SummaryEdge(callee)
	case "builtin":
		kind = lineage.BuiltinEdge()
	case "dynamicCallFunction":
		kind = lineage.DynamicCallFunctionEdge()
	case "dynamicCallModule":
		kind = lineage.DynamicCallModuleEdge()
	default:
		return lineage.Edge{}, fmt.Errorf("edge: unknown kind %q", e.Kind)
	}

	return lineage.Edge{From: from, To: to, Kind: kind}, nil
}

func decodeGraph(edges []edgeJSON) (*lineage.Graph, error) {
	g := lineage.NewGraph()
	for i, e := range edges {
		edge, err := decodeEdge(e)
		if err != nil {
			return nil, fmt.Errorf("lineage[%d]: %w", i, err)
		}
		g.AddEdge(edge)
	}
	return g, nil
}
