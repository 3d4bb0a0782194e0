// Package query compiles OData-style $filter and $orderby expressions
// against a Go struct shape and applies them to an in-memory slice. It
// provides no HTTP or CLI surface and performs no I/O: callers own getting
// the raw query strings and the []T to transform.
package query

import (
	"strings"

	"github.com/go-recordquery/recordquery/internal/ast"
	"github.com/go-recordquery/recordquery/internal/compile"
	"github.com/go-recordquery/recordquery/internal/parse"
	"github.com/go-recordquery/recordquery/internal/shape"
)

var shapes = shape.New()

// Filter parses filterString as a $filter expression and returns the
// subset of source for which it evaluates true, preserving source's
// relative order. An empty or whitespace-only filterString is a no-op:
// source is returned unchanged (as a new slice header over the same
// elements, per convention with OrderBy).
func Filter[T any](source []T, filterString string) ([]T, error) {
	if strings.TrimSpace(filterString) == "" {
		return source, nil
	}

	tree, err := parse.Filter(filterString)
	if err != nil {
		return nil, err
	}

	predicate, err := compile.Predicate[T](tree, shapes)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(source))
	for _, record := range source {
		if predicate(record) {
			out = append(out, record)
		}
	}
	return out, nil
}

// OrderBy parses orderingString as a comma-separated $orderby clause list
// and returns a new slice containing source's elements in that order,
// sorted stably on each key in turn. An empty or whitespace-only
// orderingString is a no-op.
func OrderBy[T any](source []T, orderingString string) ([]T, error) {
	if strings.TrimSpace(orderingString) == "" {
		return source, nil
	}

	clauses, err := parse.Ordering(orderingString)
	if err != nil {
		return nil, err
	}
	if len(clauses) == 0 {
		return source, nil
	}

	sortFn, err := compile.Ordering[T](clauses, shapes)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(source))
	copy(out, source)
	sortFn(out)
	return out, nil
}

// CompileFilter is the lower-level entry point used when a caller wants to
// reuse a single compiled predicate across many Filter calls instead of
// re-parsing filterString every time.
func CompileFilter[T any](filterString string) (func(T) bool, error) {
	tree, err := parse.Filter(filterString)
	if err != nil {
		return nil, err
	}
	return compile.Predicate[T](tree, shapes)
}

// CompileOrdering mirrors CompileFilter for $orderby clause lists.
func CompileOrdering[T any](orderingString string) (func([]T), error) {
	clauses, err := parse.Ordering(orderingString)
	if err != nil {
		return nil, err
	}
	return compile.Ordering[T](clauses, shapes)
}

// ParseFilter exposes the parsed tree directly, for callers that want to
// inspect or re-render an expression without compiling it.
func ParseFilter(filterString string) (ast.Node, error) {
	return parse.Filter(filterString)
}

// ParseOrdering exposes the parsed clause list directly.
func ParseOrdering(orderingString string) ([]ast.OrderingClause, error) {
	return parse.Ordering(orderingString)
}
