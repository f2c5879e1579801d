package lineage

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseEndpoint parses a source/sink literal of the form
// "[module:]function/arity$(ret|argN)" into an interprocedural Node.
// Returns ErrBadEndpoint on any deviation from the grammar.
func ParseEndpoint(s string) (Node, error) {
	proc, rest, err := parseProcedurePrefix(s)
	if err != nil {
		return Node{}, err
	}
	if len(rest) == 0 || rest[0] != '$' {
		return Node{}, fmt.Errorf("%w: %q: expected \"$ret\" or \"$argN\"", ErrBadEndpoint, s)
	}
	location := rest[1:]

	var loc Locator
	switch {
	case location == "ret":
		loc = ReturnLocator(RootFieldPath)
	case strings.HasPrefix(location, "arg"):
		n, err := strconv.Atoi(location[len("arg"):])
		if err != nil || n < 0 {
			return Node{}, fmt.Errorf("%w: %q: bad argument index", ErrBadEndpoint, s)
		}
		loc = ArgumentLocator(n, RootFieldPath)
	default:
		return Node{}, fmt.Errorf("%w: %q: unknown location %q", ErrBadEndpoint, s, location)
	}

	return Node{Procedure: proc, Locator: loc}, nil
}

// ParseSanitizer parses a sanitizer literal of the form
// "[module:]function/arity" into a bare Procedure.
func ParseSanitizer(s string) (Procedure, error) {
	proc, rest, err := parseProcedurePrefix(s)
	if err != nil {
		return Procedure{}, err
	}
	if rest != "" {
		return Procedure{}, fmt.Errorf("%w: %q: sanitizer must not have a $location suffix", ErrBadEndpoint, s)
	}
	return proc, nil
}

// parseProcedurePrefix consumes "[module:]function/arity" off the front
// of s and returns the Procedure plus whatever remains (e.g. "$ret").
func parseProcedurePrefix(s string) (Procedure, string, error) {
	module := ""
	rest := s
	if idx := strings.IndexByte(rest, ':'); idx > 0 {
		// Only treat ':' as a module separator if it precedes the '/'
		// that separates function from arity, and the module name is
		// non-empty; otherwise there is no module prefix in this
		// literal at all.
		if slash := strings.IndexByte(rest, '/'); slash < 0 || idx < slash {
			module = rest[:idx]
			rest = rest[idx+1:]
		}
	}

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return Procedure{}, "", fmt.Errorf("%w: %q: missing \"/arity\"", ErrBadEndpoint, s)
	}
	function := rest[:slash]
	rest = rest[slash+1:]
	if function == "" || strings.ContainsRune(function, ':') {
		return Procedure{}, "", fmt.Errorf("%w: %q: invalid function name", ErrBadEndpoint, s)
	}

	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return Procedure{}, "", fmt.Errorf("%w: %q: missing arity", ErrBadEndpoint, s)
	}
	arity, err := strconv.Atoi(rest[:i])
	if err != nil {
		return Procedure{}, "", fmt.Errorf("%w: %q: bad arity", ErrBadEndpoint, s)
	}

	return Procedure{Module: module, Function: function, Arity: arity}, rest[i:], nil
}

// FormatEndpoint re-serializes a Node produced by ParseEndpoint back into
// endpoint syntax. Only Return and Argument locators are meaningful
// here; other Locator kinds are an internal detail of interprocedural
// continuations and have no endpoint surface syntax.
func FormatEndpoint(n Node) string {
	switch n.Locator.Kind {
	case LocatorReturn:
		return n.Procedure.String() + "$ret"
	case LocatorArgument:
		return fmt.Sprintf("%s$arg%d", n.Procedure.String(), n.Locator.Index)
	default:
		return n.Procedure.String()
	}
}

// FormatSanitizer re-serializes a Procedure produced by ParseSanitizer
// back into sanitizer syntax.
func FormatSanitizer(p Procedure) string {
	return p.String()
}
