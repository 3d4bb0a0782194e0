package compile

import (
	"reflect"
	"sort"

	"github.com/go-recordquery/recordquery/internal/ast"
	"github.com/go-recordquery/recordquery/internal/shape"
)

// Ordering compiles a list of ordering clauses into a stable multi-key sort
// over a slice of T. Absent (null) values compare lower than any present
// value, so they come first under an ascending clause and last under a
// descending one, consistent with the predicate compiler's uniform null
// representation.
func Ordering[T any](clauses []ast.OrderingClause, shapes *shape.Cache) (func([]T), error) {
	var zero T
	rootType := reflect.TypeOf(zero)

	type key struct {
		path       *shape.Path
		cmp        func(a, b reflect.Value) int
		descending bool
	}

	keys := make([]key, 0, len(clauses))
	for _, c := range clauses {
		path, err := shapes.Resolve(rootType, c.PropertyPath)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key{path: path, cmp: comparatorFor(path.Type), descending: c.Descending})
	}

	return func(records []T) {
		sort.SliceStable(records, func(i, j int) bool {
			vi := reflect.ValueOf(records[i])
			vj := reflect.ValueOf(records[j])

			for _, k := range keys {
				a, aOK := k.path.Get(vi)
				b, bOK := k.path.Get(vj)

				var cmp int
				switch {
				case !aOK && !bOK:
					cmp = 0
				case !aOK:
					cmp = -1
				case !bOK:
					cmp = 1
				default:
					cmp = k.cmp(a, b)
				}

				if k.descending {
					cmp = -cmp
				}
				if cmp != 0 {
					return cmp < 0
				}
			}
			return false
		})
	}, nil
}
