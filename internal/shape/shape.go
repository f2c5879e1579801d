// Package shape implements lineage.ShapeSummary over a field-path
// refinement table decoded from a procedure's JSON summary payload.
package shape

import (
	"strconv"

	"github.com/shivasurya/lineageflow/internal/lineage"
)

// Payload is the on-disk field-path refinement table for one procedure.
// Each entry maps a locator's canonical field path to the list of
// refined sub-paths known for it; refinements are selector sequences,
// e.g. [["user","id"],["user","name"]].
type Payload struct {
	Return     map[string][][]string                       `json:"return,omitempty"`
	ReturnOf   map[string]map[string][][]string             `json:"returnOf,omitempty"`
	Argument   map[string]map[string][][]string             `json:"argument,omitempty"`
	ArgumentOf map[string]map[string]map[string][][]string  `json:"argumentOf,omitempty"`
}

type summary struct {
	payload Payload
}

// New wraps a decoded Payload as a lineage.ShapeSummary.
func New(payload Payload) lineage.ShapeSummary {
	return summary{payload: payload}
}

func (s summary) MapReturn(fp lineage.FieldPath, f func(lineage.FieldPath) lineage.Vertex) []lineage.Vertex {
	return mapRefinements(s.payload.Return[string(fp)], f)
}

func (s summary) MapReturnOf(callee lineage.Procedure, fp lineage.FieldPath, f func(lineage.FieldPath) lineage.Vertex) []lineage.Vertex {
	byFieldPath := s.payload.ReturnOf[callee.String()]
	if byFieldPath == nil {
		return nil
	}
	return mapRefinements(byFieldPath[string(fp)], f)
}

func (s summary) MapArgument(index int, fp lineage.FieldPath, f func(lineage.FieldPath) lineage.Vertex) []lineage.Vertex {
	byFieldPath := s.payload.Argument[strconv.Itoa(index)]
	if byFieldPath == nil {
		return nil
	}
	return mapRefinements(byFieldPath[string(fp)], f)
}

func (s summary) MapArgumentOf(callee lineage.Procedure, index int, fp lineage.FieldPath, f func(lineage.FieldPath) lineage.Vertex) []lineage.Vertex {
	byIndex := s.payload.ArgumentOf[callee.String()]
	if byIndex == nil {
		return nil
	}
	byFieldPath := byIndex[strconv.Itoa(index)]
	if byFieldPath == nil {
		return nil
	}
	return mapRefinements(byFieldPath[string(fp)], f)
}

func mapRefinements(refinements [][]string, f func(lineage.FieldPath) lineage.Vertex) []lineage.Vertex {
	if len(refinements) == 0 {
		return nil
	}
	vs := make([]lineage.Vertex, 0, len(refinements))
	for _, parts := range refinements {
		vs = append(vs, f(lineage.NewFieldPath(parts...)))
	}
	return vs
}
