package lineage

// expandLocator enumerates the concrete vertices a Locator denotes in
// one procedure's graph, using shape (which may be nil if the procedure
// has no shape payload). Pure and never fails, per spec.md §4.3.
//
// When shape is nil, the single-vertex fallback (the unrefined vertex at
// the locator's own field path, RootFieldPath for a parsed endpoint) is
// returned — this is what lets a source/sink resolve to something even
// when its procedure has no summary at all (spec.md §9, "Shape expansion
// absence").
func expandLocator(loc Locator, shape ShapeSummary) []Vertex {
	if shape == nil {
		return []Vertex{fallbackVertex(loc)}
	}

	switch loc.Kind {
	case LocatorReturn:
		vs := shape.MapReturn(loc.FieldPath, Return)
		return nonNilOrFallback(vs, loc)
	case LocatorReturnOf:
		callee := loc.Callee
		vs := shape.MapReturnOf(callee, loc.FieldPath, func(fp FieldPath) Vertex {
			return ReturnOf(callee, fp)
		})
		return nonNilOrFallback(vs, loc)
	case LocatorArgument:
		index := loc.Index
		vs := shape.MapArgument(index, loc.FieldPath, func(fp FieldPath) Vertex {
			return Argument(index, fp)
		})
		return nonNilOrFallback(vs, loc)
	case LocatorArgumentOf:
		callee, index := loc.Callee, loc.Index
		vs := shape.MapArgumentOf(callee, index, loc.FieldPath, func(fp FieldPath) Vertex {
			return ArgumentOf(callee, index, fp)
		})
		return nonNilOrFallback(vs, loc)
	default:
		return []Vertex{fallbackVertex(loc)}
	}
}

// nonNilOrFallback preserves the single-vertex fallback even when a
// present shape summary has nothing to say about this particular
// locator (an empty refinement list, as opposed to no shape payload at
// all, still must not silently drop the endpoint).
func nonNilOrFallback(vs []Vertex, loc Locator) []Vertex {
	if len(vs) == 0 {
		return []Vertex{fallbackVertex(loc)}
	}
	return vs
}

func fallbackVertex(loc Locator) Vertex {
	switch loc.Kind {
	case LocatorReturn:
		return Return(loc.FieldPath)
	case LocatorReturnOf:
		return ReturnOf(loc.Callee, loc.FieldPath)
	case LocatorArgument:
		return Argument(loc.Index, loc.FieldPath)
	case LocatorArgumentOf:
		return ArgumentOf(loc.Callee, loc.Index, loc.FieldPath)
	default:
		return Vertex{}
	}
}
