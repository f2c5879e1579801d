package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandLocator_NilShapeFallback(t *testing.T) {
	got := expandLocator(ArgumentLocator(0, RootFieldPath), nil)
	assert.Equal(t, []Vertex{Argument(0, RootFieldPath)}, got)

	got = expandLocator(ReturnLocator(RootFieldPath), nil)
	assert.Equal(t, []Vertex{Return(RootFieldPath)}, got)
}

// fakeShape refines one known field path of "Argument(0)" into two
// sub-fields, and answers every other query with no refinements
// (forcing the expander's own fallback).
type fakeShape struct{}

func (fakeShape) MapReturn(fp FieldPath, f func(FieldPath) Vertex) []Vertex { return nil }
func (fakeShape) MapReturnOf(callee Procedure, fp FieldPath, f func(FieldPath) Vertex) []Vertex {
	return nil
}

func (fakeShape) MapArgument(index int, fp FieldPath, f func(FieldPath) Vertex) []Vertex {
	if index == 0 && fp == RootFieldPath {
		return []Vertex{
			f(NewFieldPath("a")),
			f(NewFieldPath("b")),
		}
	}
	return nil
}

func (fakeShape) MapArgumentOf(callee Procedure, index int, fp FieldPath, f func(FieldPath) Vertex) []Vertex {
	return nil
}

func TestExpandLocator_ShapeRefinement(t *testing.T) {
	got := expandLocator(ArgumentLocator(0, RootFieldPath), fakeShape{})
	assert.ElementsMatch(t, []Vertex{
		Argument(0, NewFieldPath("a")),
		Argument(0, NewFieldPath("b")),
	}, got)
}

func TestExpandLocator_ShapePresentButEmpty_FallsBack(t *testing.T) {
	got := expandLocator(ReturnLocator(RootFieldPath), fakeShape{})
	assert.Equal(t, []Vertex{Return(RootFieldPath)}, got)
}
