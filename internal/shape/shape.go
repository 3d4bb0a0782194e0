// Package shape resolves dotted property paths against a Go struct type
// via reflection and caches the result keyed by (root type, path), so that
// repeated evaluation of a compiled predicate over many records never pays
// the field-lookup cost more than once per distinct path.
package shape

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"

	"github.com/go-recordquery/recordquery/internal/queryerr"
)

var fold = cases.Fold()

// shardCount is fixed rather than derived from GOMAXPROCS: contention
// between unrelated paths is already rare (paths are resolved once and
// cached), so a small fixed fan-out is enough to keep the rare concurrent
// miss from serializing unrelated keys.
const shardCount = 32

type shard struct {
	mu    sync.RWMutex
	paths map[string]*Path
	group singleflight.Group
}

// Cache resolves and memoizes property paths. The zero value is not usable;
// construct one with New. A Cache is safe for concurrent use and never
// evicts: the key space is bounded by the set of (type, path) pairs an
// application actually queries with, which is small and fixed at startup in
// practice.
type Cache struct {
	shards [shardCount]*shard
}

// New returns an empty Cache.
func New() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i] = &shard{paths: make(map[string]*Path)}
	}
	return c
}

func (c *Cache) shardFor(key string) *shard {
	h := xxhash.Sum64String(key)
	return c.shards[h%uint64(shardCount)]
}

// Resolve returns the cached Path for (t, path), computing and publishing
// it on first use. Concurrent first-time requests for the same (t, path)
// coalesce onto a single computation via singleflight; requests for
// unrelated keys never block on each other.
func (c *Cache) Resolve(t reflect.Type, path string) (*Path, error) {
	// %p renders the type's unique runtime descriptor address, so two
	// distinct types that print the same name never share an entry.
	key := fmt.Sprintf("%p\x00%s", t, path)
	sh := c.shardFor(key)

	sh.mu.RLock()
	if p, ok := sh.paths[key]; ok {
		sh.mu.RUnlock()
		return p, nil
	}
	sh.mu.RUnlock()

	v, err, _ := sh.group.Do(key, func() (interface{}, error) {
		sh.mu.RLock()
		if p, ok := sh.paths[key]; ok {
			sh.mu.RUnlock()
			return p, nil
		}
		sh.mu.RUnlock()

		p, err := resolvePath(t, path)
		if err != nil {
			return nil, err
		}

		sh.mu.Lock()
		sh.paths[key] = p
		sh.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Path), nil
}

// step is one segment of a resolved path: the field index reflect.Value's
// FieldByIndex needs to walk directly into the containing struct at that
// level.
type step struct {
	index []int
}

// Path is a resolved, reusable route from a root struct type down to a
// single field, possibly crossing pointer-to-struct boundaries. Once
// resolved it never needs the property name again; Get walks reflect
// values directly by field index.
type Path struct {
	steps    []step
	Type     reflect.Type
	Nullable bool
}

// Get walks root along p, returning the final field's value and whether it
// was present. ok is false whenever root itself, or any pointer segment
// along the way, is nil — this is the sole representation of "null" used
// by the coercion and compilation layers.
func (p *Path) Get(root reflect.Value) (reflect.Value, bool) {
	v := root
	for _, st := range p.steps {
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.FieldByIndex(st.index)
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, true
}

func resolvePath(t reflect.Type, path string) (*Path, error) {
	root := t
	if root.Kind() == reflect.Ptr {
		root = root.Elem()
	}

	segments := strings.Split(path, ".")
	p := &Path{}
	cur := root
	nullable := false

	for _, seg := range segments {
		if cur.Kind() != reflect.Struct {
			return nil, queryerr.NewPropertyNotFound(seg, shapeName(t))
		}
		field, idx, ok := findField(cur, seg)
		if !ok {
			return nil, queryerr.NewPropertyNotFound(seg, shapeName(t))
		}
		p.steps = append(p.steps, step{index: idx})

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			nullable = true
			ft = ft.Elem()
		}
		cur = ft
	}

	p.Type = cur
	p.Nullable = nullable
	return p, nil
}

// findField looks up seg on t case-insensitively, trying the struct field
// name first and falling back to the json tag name, mirroring how the
// record's wire representation and its Go representation can disagree in
// casing only.
func findField(t reflect.Type, seg string) (reflect.StructField, []int, bool) {
	target := fold.String(seg)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && fold.String(f.Name) == target {
			return f, f.Index, true
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name := jsonName(f); name != "" && fold.String(name) == target {
			return f, f.Index, true
		}
	}
	return reflect.StructField{}, nil, false
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return ""
	}
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

func shapeName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
