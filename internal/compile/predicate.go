// Package compile turns a parsed ast.Node into a reentrant, side-effect-
// free predicate closure, and a parsed ordering clause list into a stable
// multi-key sort function. Compilation resolves every property path and
// coerces every literal exactly once; the returned closures never touch
// the shape cache or the coercer again, so evaluating a compiled predicate
// over a long sequence costs only the comparisons themselves.
package compile

import (
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-recordquery/recordquery/internal/ast"
	"github.com/go-recordquery/recordquery/internal/coerce"
	"github.com/go-recordquery/recordquery/internal/queryerr"
	"github.com/go-recordquery/recordquery/internal/shape"
)

// Predicate compiles tree into a closure over T, resolving all property
// paths and literals against shapes up front. The returned function is
// pure: calling it never mutates tree, the cache, or T itself.
func Predicate[T any](tree ast.Node, shapes *shape.Cache) (func(T) bool, error) {
	var zero T
	rootType := reflect.TypeOf(zero)

	eval, err := compileNode(tree, rootType, shapes)
	if err != nil {
		return nil, err
	}

	return func(record T) bool {
		return eval(reflect.ValueOf(record))
	}, nil
}

type evalFunc func(reflect.Value) bool

func compileNode(n ast.Node, rootType reflect.Type, shapes *shape.Cache) (evalFunc, error) {
	switch node := n.(type) {
	case *ast.Logical:
		left, err := compileNode(node.Left, rootType, shapes)
		if err != nil {
			return nil, err
		}
		right, err := compileNode(node.Right, rootType, shapes)
		if err != nil {
			return nil, err
		}
		if node.Op == ast.Or {
			return func(v reflect.Value) bool { return left(v) || right(v) }, nil
		}
		return func(v reflect.Value) bool { return left(v) && right(v) }, nil

	case *ast.Not:
		inner, err := compileNode(node.Inner, rootType, shapes)
		if err != nil {
			return nil, err
		}
		return func(v reflect.Value) bool { return !inner(v) }, nil

	case *ast.Function:
		fn, ok := stringPredicate(node.Fn)
		if !ok {
			return nil, queryerr.NewInvalidSyntax(node.Fn.String(), node.Pos)
		}
		return compileStringPredicate(node.Path, node.Arg, fn, rootType, shapes)

	case *ast.Comparison:
		return compileComparison(node, rootType, shapes)

	default:
		return nil, queryerr.NewInvalidSyntax("", 0)
	}
}

func stringPredicate(fn ast.StringFn) (func(haystack, needle string) bool, bool) {
	switch fn {
	case ast.FnContains:
		return strings.Contains, true
	case ast.FnStartsWith:
		return strings.HasPrefix, true
	case ast.FnEndsWith:
		return strings.HasSuffix, true
	default:
		return nil, false
	}
}

func compileStringPredicate(pathStr, arg string, fn func(string, string) bool, rootType reflect.Type, shapes *shape.Cache) (evalFunc, error) {
	path, err := shapes.Resolve(rootType, pathStr)
	if err != nil {
		return nil, err
	}
	if path.Type.Kind() != reflect.String {
		return nil, queryerr.NewTypeMismatch(pathStr, "string")
	}
	return func(v reflect.Value) bool {
		fieldVal, ok := path.Get(v)
		if !ok {
			return false
		}
		return fn(fieldVal.String(), arg)
	}, nil
}

func compileComparison(node *ast.Comparison, rootType reflect.Type, shapes *shape.Cache) (evalFunc, error) {
	if node.Op.IsStringOp() {
		fn, _ := node.Op.AsStringFn()
		predicate, _ := stringPredicate(fn)
		return compileStringPredicate(node.Path, node.ValueLexeme, predicate, rootType, shapes)
	}

	path, err := shapes.Resolve(rootType, node.Path)
	if err != nil {
		return nil, err
	}

	if node.ValueIsPath {
		return compilePathComparison(node, path, rootType, shapes)
	}
	return compileLiteralComparison(node, path)
}

func compileLiteralComparison(node *ast.Comparison, path *shape.Path) (evalFunc, error) {
	if node.ValueLexeme == "null" {
		if !path.Nullable {
			return nil, queryerr.NewNullNotAssignable(path.Type.String())
		}
		return func(v reflect.Value) bool {
			_, ok := path.Get(v)
			present := ok
			if node.Op == ast.Eq {
				return !present
			}
			return present
		}, nil
	}

	literal, err := coerce.Value(node.ValueLexeme, path.Type)
	if err != nil {
		return nil, err
	}

	cmp := comparatorFor(path.Type)
	op := node.Op
	return func(v reflect.Value) bool {
		fieldVal, ok := path.Get(v)
		if !ok {
			return false
		}
		return evalOp(op, cmp(fieldVal, literal))
	}, nil
}

func compilePathComparison(node *ast.Comparison, leftPath *shape.Path, rootType reflect.Type, shapes *shape.Cache) (evalFunc, error) {
	rightPath, err := shapes.Resolve(rootType, node.ValueLexeme)
	if err != nil {
		return nil, err
	}
	if leftPath.Type != rightPath.Type {
		return nil, queryerr.NewTypeMismatch(node.Path+" "+node.Op.String()+" "+node.ValueLexeme, "matching types on both sides")
	}

	cmp := comparatorFor(leftPath.Type)
	op := node.Op
	return func(v reflect.Value) bool {
		leftVal, leftOK := leftPath.Get(v)
		rightVal, rightOK := rightPath.Get(v)
		if !leftOK || !rightOK {
			return op == ast.Ne && leftOK != rightOK
		}
		return evalOp(op, cmp(leftVal, rightVal))
	}, nil
}

func evalOp(op ast.ComparisonOp, cmp int) bool {
	switch op {
	case ast.Eq:
		return cmp == 0
	case ast.Ne:
		return cmp != 0
	case ast.Gt:
		return cmp > 0
	case ast.Ge:
		return cmp >= 0
	case ast.Lt:
		return cmp < 0
	case ast.Le:
		return cmp <= 0
	default:
		return false
	}
}

// comparatorFor returns a three-way comparator for t. Every type the
// coercer can produce is covered; a type that reaches here uncovered is a
// programming error in the coercer, not a user-facing condition.
func comparatorFor(t reflect.Type) func(a, b reflect.Value) int {
	switch {
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64:
		return func(a, b reflect.Value) int { return cmpInt64(a.Int(), b.Int()) }
	case t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uintptr:
		return func(a, b reflect.Value) int { return cmpUint64(a.Uint(), b.Uint()) }
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		return func(a, b reflect.Value) int { return cmpFloat64(a.Float(), b.Float()) }
	case t.Kind() == reflect.Bool:
		return func(a, b reflect.Value) int { return cmpBool(a.Bool(), b.Bool()) }
	case t.Kind() == reflect.String:
		return func(a, b reflect.Value) int { return strings.Compare(a.String(), b.String()) }
	case t == reflect.TypeOf(decimal.Decimal{}):
		return func(a, b reflect.Value) int {
			return a.Interface().(decimal.Decimal).Cmp(b.Interface().(decimal.Decimal))
		}
	case t == reflect.TypeOf(time.Time{}):
		return func(a, b reflect.Value) int {
			return a.Interface().(time.Time).Compare(b.Interface().(time.Time))
		}
	default:
		return func(a, b reflect.Value) int {
			return strings.Compare(asString(a), asString(b))
		}
	}
}

func asString(v reflect.Value) string {
	if s, ok := v.Interface().(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
