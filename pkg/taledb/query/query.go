package query

import (
	"encoding/json"
	"time"

	"github.com/taledb/taledb-go/pkg/taledb/values"
)

// Expr is a wire encodable query expression.
type Expr = values.Expr

// fn is a function call expression. Its arguments are wrapped at
// construction time, so marshaling is plain JSON encoding of the map.
type fn map[string]any

func (f fn) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(f))
}

// objectExpr keeps a literal object distinct from a function call on the
// wire by nesting it under an object key.
type objectExpr map[string]any

func (o objectExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"object": map[string]any(o)})
}

type arrayExpr []any

func (a arrayExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any(a))
}

// wrap converts a native Go value into its wire encodable form. Protocol
// values and expressions pass through, times become timestamps, maps become
// literal objects and slices are wrapped element-wise.
func wrap(v any) any {
	switch typed := v.(type) {
	// time.Time implements json.Marshaler, so it has to be matched before
	// the Expr case grabs it
	case time.Time:
		return values.TimestampFromTime(typed)
	case Expr:
		return typed
	case map[string]any:
		return objectExpr(wrapMap(typed))
	case []any:
		return arrayExpr(wrapSlice(typed))
	default:
		return v
	}
}

func wrapMap(m map[string]any) map[string]any {
	wrapped := make(map[string]any, len(m))
	for k, v := range m {
		wrapped[k] = wrap(v)
	}
	return wrapped
}

func wrapSlice(s []any) []any {
	wrapped := make([]any, len(s))
	for i, v := range s {
		wrapped[i] = wrap(v)
	}
	return wrapped
}

// Database returns a ref expression for a database by name.
func Database(name string) Expr {
	return fn{"database": name}
}

// Class returns a ref expression for a document class by name.
func Class(name string) Expr {
	return fn{"class": name}
}

// Index returns a ref expression for an index by name.
func Index(name string) Expr {
	return fn{"index": name}
}

// Match returns the set of entries in the given index, optionally narrowed
// by terms.
func Match(index any, terms ...any) Expr {
	if len(terms) == 0 {
		return fn{"match": wrap(index)}
	}

	return fn{"match": wrap(index), "terms": arrayExpr(wrapSlice(terms))}
}

// Union returns the set of elements present in any of the given sets.
func Union(sets ...any) Expr {
	return fn{"union": arrayExpr(wrapSlice(sets))}
}

// Intersection returns the set of elements present in all of the given sets.
func Intersection(sets ...any) Expr {
	return fn{"intersection": arrayExpr(wrapSlice(sets))}
}

// Difference returns the set of elements of the first set that are present
// in none of the others.
func Difference(sets ...any) Expr {
	return fn{"difference": arrayExpr(wrapSlice(sets))}
}

// Join derives a set by applying target to each element of source.
func Join(source any, target any) Expr {
	return fn{"join": wrap(source), "with": wrap(target)}
}

// Get retrieves the document identified by ref.
func Get(ref any) Expr {
	return fn{"get": wrap(ref)}
}

// Create stores a new document in the given class. params carries the
// document under a data key.
func Create(class any, params any) Expr {
	return fn{"create": wrap(class), "params": wrap(params)}
}

// Delete removes the document identified by ref and returns it.
func Delete(ref any) Expr {
	return fn{"delete": wrap(ref)}
}

// Map applies lambda to each element of collection.
func Map(collection any, lambda any) Expr {
	return fn{"map": wrap(lambda), "collection": wrap(collection)}
}

// Lambda is an anonymous function of one parameter.
func Lambda(param string, expr any) Expr {
	return fn{"lambda": param, "expr": wrap(expr)}
}

// Var references a lambda parameter by name.
func Var(name string) Expr {
	return fn{"var": name}
}

// Obj is a literal object expression.
func Obj(pairs map[string]any) Expr {
	return objectExpr(wrapMap(pairs))
}

// Arr is a literal array expression.
func Arr(items ...any) Expr {
	return arrayExpr(wrapSlice(items))
}
