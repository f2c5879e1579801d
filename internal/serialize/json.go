// Package serialize implements lineage.GraphSerializer: writing a
// per-procedure subgraph to a concrete destination format.
package serialize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shivasurya/lineageflow/internal/lineage"
)

// JSONSerializer writes one indented JSON file per procedure under a
// results directory; the flow command uses it for the taint result in
// json format. The reachable map is not written by the flow command.
type JSONSerializer struct {
	dir string
}

// NewJSONSerializer returns a serializer rooted at dir. The directory is
// created lazily on the first Serialize call.
func NewJSONSerializer(dir string) *JSONSerializer {
	return &JSONSerializer{dir: dir}
}

type jsonGraph struct {
	Procedure   string     `json:"procedure"`
	Description string     `json:"description"`
	Edges       []jsonEdge `json:"edges"`
}

type jsonVertex struct {
	Kind      string   `json:"kind"`
	Name      string   `json:"name,omitempty"`
	Index     int      `json:"index,omitempty"`
	FieldPath []string `json:"fieldPath,omitempty"`
	Callee    string   `json:"callee,omitempty"`
	Function  string   `json:"function,omitempty"`
}

type jsonEdge struct {
	From   jsonVertex `json:"from"`
	To     jsonVertex `json:"to"`
	Kind   string     `json:"kind"`
	Callee string     `json:"callee,omitempty"`
}

// Serialize implements lineage.GraphSerializer.
func (s *JSONSerializer) Serialize(p lineage.Procedure, description string, g *lineage.Graph) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("serialize: creating %s: %w", s.dir, err)
	}

	out := jsonGraph{Procedure: p.String(), Description: description}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edgeToJSON(e))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize: marshaling %s: %w", p, err)
	}

	path := filepath.Join(s.dir, fileNameFor(p))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("serialize: writing %s: %w", path, err)
	}
	return nil
}

func fileNameFor(p lineage.Procedure) string {
	module := p.Module
	if module == "" {
		module = "_"
	}
	return fmt.Sprintf("%s__%s_%d.json", module, p.Function, p.Arity)
}

func vertexToJSON(v lineage.Vertex) jsonVertex {
	out := jsonVertex{FieldPath: v.FieldPath.Parts()}
	switch v.Kind {
	case lineage.VertexLocal:
		out.Kind = "local"
		out.Name = v.Name
	case lineage.VertexArgument:
		out.Kind = "argument"
		out.Index = v.Index
	case lineage.VertexReturn:
		out.Kind = "return"
	case lineage.VertexArgumentOf:
		out.Kind = "argumentOf"
		out.Index = v.Index
		out.Callee = v.Callee.String()
	case lineage.VertexReturnOf:
		out.Kind = "returnOf"
		out.Callee = v.Callee.String()
	case lineage.VertexCaptured:
		out.Kind = "captured"
		out.Index = v.Index
	case lineage.VertexCapturedBy:
		out.Kind = "capturedBy"
		out.Index = v.Index
		out.Callee = v.Callee.String()
	case lineage.VertexSelf:
		out.Kind = "self"
	case lineage.VertexFunction:
		out.Kind = "function"
		out.Function = v.Function.String()
	}
	return out
}

func edgeToJSON(e lineage.Edge) jsonEdge {
	out := jsonEdge{From: vertexToJSON(e.From), To: vertexToJSON(e.To)}
	switch e.Kind.Tag {
	case lineage.EdgeDirect:
		out.Kind = "direct"
	case lineage.EdgeCall:
		out.Kind = "call"
	case lineage.EdgeReturn:
		out.Kind = "return"
	case lineage.EdgeCapture:
		out.Kind = "capture"
	case lineage.EdgeSummary:
		out.Kind = "summary"
		out.Callee = e.Kind.Callee.String()
	case lineage.EdgeBuiltin:
		out.Kind = "builtin"
	case lineage.EdgeDynamicCallFunction:
		out.Kind = "dynamicCallFunction"
	case lineage.EdgeDynamicCallModule:
		out.Kind = "dynamicCallModule"
	}
	return out
}
