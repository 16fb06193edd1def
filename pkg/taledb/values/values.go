package values

import (
	"encoding/json"
	"strings"

	"github.com/taledb/taledb-go/pkg/taledb/errors"
)

// Wire tags used by the query protocol. Tagged objects are the only places
// where the encoding is not plain JSON.
const (
	TagRef  string = "@ref"
	TagSet  string = "@set"
	TagTime string = "@ts"
	TagDate string = "@date"
)

// Value is a protocol value with a tagged wire representation. Ref, SetRef,
// Timestamp and Date are the full set of implementations.
type Value interface {
	json.Marshaler
	Tag() string
}

// Expr is an opaque, recursively wire encodable query expression. The query
// package provides the expression constructors; this package only carries
// expressions to and from the wire without interpreting them.
type Expr interface {
	json.Marshaler
}

// RawExpr wraps an expression that has already been decoded from the wire,
// so that it can be carried by a SetRef and re-encoded unchanged.
type RawExpr struct {
	Value any
}

func (r RawExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}

// Ref identifies a database resource (collection, document, index, ...) by
// its slash delimited path.
type Ref struct {
	value string
}

// NewRef joins one or more path segments into a Ref. Segments are stored as
// given, with no normalization or validation; a ref used as a segment is
// passed via its String form.
func NewRef(first string, rest ...string) Ref {
	if len(rest) == 0 {
		return Ref{value: first}
	}

	return Ref{value: first + "/" + strings.Join(rest, "/")}
}

// Child returns a ref for a resource nested under r.
func (r Ref) Child(segments ...string) Ref {
	if len(segments) == 0 {
		return r
	}

	return Ref{value: r.value + "/" + strings.Join(segments, "/")}
}

func (r Ref) Value() string {
	return r.value
}

func (r Ref) String() string {
	return r.value
}

// Class returns the ref with its last path segment removed. A ref with a
// single segment is its own class and is returned unchanged.
func (r Ref) Class() Ref {
	idx := strings.LastIndex(r.value, "/")
	if idx < 0 {
		return r
	}

	return Ref{value: r.value[:idx]}
}

// ID returns the last path segment of the ref. A ref with a single segment
// is a bare class and has no id portion.
func (r Ref) ID() (string, error) {
	idx := strings.LastIndex(r.value, "/")
	if idx < 0 {
		return "", errors.NewInvalidValueError("ref " + r.value + " has no id portion")
	}

	return r.value[idx+1:], nil
}

// Equal reports whether other is a Ref with an identical path. Any other
// value compares unequal, even when its wire form would match.
func (r Ref) Equal(other Value) bool {
	o, ok := other.(Ref)
	return ok && o.value == r.value
}

func (r Ref) Tag() string {
	return TagRef
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{TagRef: r.value})
}

// SetRef carries the un-evaluated query expression that defines a set. The
// expression is opaque to this package and is serialized with the same wire
// encoding rules as the rest of a query.
type SetRef struct {
	query Expr
}

func NewSetRef(query Expr) SetRef {
	return SetRef{query: query}
}

func (s SetRef) Query() Expr {
	return s.query
}

func (s SetRef) Tag() string {
	return TagSet
}

func (s SetRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Expr{TagSet: s.query})
}
