package mockdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/taledb/taledb-go/pkg/taledb/errors"
	"github.com/taledb/taledb-go/pkg/taledb/values"
)

const DefaultPageSize int = 64

// MockDB evaluates a small subset of the query protocol against a document
// store. It is a test double for development and integration testing, not
// a database.
type MockDB struct {
	store   DocumentStore
	indexes map[string]values.Ref
}

func New(cfg *Config, store DocumentStore) *MockDB {
	db := &MockDB{
		store:   store,
		indexes: map[string]values.Ref{},
	}

	for _, database := range cfg.Databases {
		for _, index := range database.Indexes {
			indexRef := values.NewRef("indexes", index.Name)
			db.indexes[indexRef.Value()] = values.NewRef("classes", index.Class)
		}
	}

	return db
}

// Execute evaluates a decoded query expression and returns its resource.
func (db *MockDB) Execute(ctx context.Context, expr any) (any, error) {
	switch typed := expr.(type) {
	case map[string]any:
		return db.call(ctx, typed)
	default:
		// literals and already typed values evaluate to themselves
		return typed, nil
	}
}

func (db *MockDB) call(ctx context.Context, expr map[string]any) (any, error) {
	if name, ok := expr["database"].(string); ok {
		return values.NewRef("databases", name), nil
	}

	if name, ok := expr["class"].(string); ok {
		return values.NewRef("classes", name), nil
	}

	if name, ok := expr["index"].(string); ok {
		return values.NewRef("indexes", name), nil
	}

	if literal, ok := expr["object"].(map[string]any); ok {
		return db.evalObject(ctx, literal)
	}

	if _, ok := expr["get"]; ok {
		return db.get(ctx, expr)
	}

	if _, ok := expr["create"]; ok {
		return db.create(ctx, expr)
	}

	if _, ok := expr["delete"]; ok {
		return db.delete(ctx, expr)
	}

	if _, ok := expr["paginate"]; ok {
		return db.paginate(ctx, expr)
	}

	// set defining expressions are not materialized until they are
	// paginated, they evaluate to a set ref carrying the expression
	for _, setFn := range []string{"match", "union", "intersection", "difference"} {
		if _, ok := expr[setFn]; ok {
			return values.NewSetRef(values.RawExpr{Value: expr}), nil
		}
	}

	return nil, errors.NewBadRequestError("unsupported expression")
}

func (db *MockDB) evalObject(ctx context.Context, literal map[string]any) (map[string]any, error) {
	evaluated := make(map[string]any, len(literal))

	for k, v := range literal {
		value, err := db.Execute(ctx, v)
		if err != nil {
			return nil, err
		}
		evaluated[k] = value
	}

	return evaluated, nil
}

func (db *MockDB) evalRef(ctx context.Context, arg any) (values.Ref, error) {
	value, err := db.Execute(ctx, arg)
	if err != nil {
		return values.Ref{}, err
	}

	ref, ok := value.(values.Ref)
	if !ok {
		return values.Ref{}, errors.NewBadRequestError("argument is not a ref")
	}

	return ref, nil
}

func (db *MockDB) get(ctx context.Context, expr map[string]any) (any, error) {
	ref, err := db.evalRef(ctx, expr["get"])
	if err != nil {
		return nil, err
	}

	body, err := db.store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	return document(ref, body), nil
}

func (db *MockDB) create(ctx context.Context, expr map[string]any) (any, error) {
	class, err := db.evalRef(ctx, expr["create"])
	if err != nil {
		return nil, err
	}

	params, err := db.Execute(ctx, expr["params"])
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	if p, ok := params.(map[string]any); ok {
		if d, ok := p["data"].(map[string]any); ok {
			data = d
		}
	}

	ref := class.Child(uuid.NewString())
	body := map[string]any{
		"ts":   values.TimestampFromTime(time.Now()).Value(),
		"data": data,
	}

	err = db.store.Put(ctx, ref, body)
	if err != nil {
		return nil, err
	}

	return document(ref, body), nil
}

func (db *MockDB) delete(ctx context.Context, expr map[string]any) (any, error) {
	ref, err := db.evalRef(ctx, expr["delete"])
	if err != nil {
		return nil, err
	}

	body, err := db.store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	err = db.store.Delete(ctx, ref)
	if err != nil {
		return nil, err
	}

	return document(ref, body), nil
}

func (db *MockDB) paginate(ctx context.Context, expr map[string]any) (any, error) {
	set, err := db.Execute(ctx, expr["paginate"])
	if err != nil {
		return nil, err
	}

	size := DefaultPageSize
	if s, ok := expr["size"].(float64); ok && s > 0 {
		size = int(s)
	}

	after := ""
	if a, ok := expr["after"].(values.Ref); ok {
		after = a.Value()
	}

	// fetch one extra ref to know whether another page exists
	refs, err := db.resolveSet(ctx, set, after, size+1)
	if err != nil {
		return nil, err
	}

	page := map[string]any{}

	if len(refs) > size {
		refs = refs[:size]
		page["after"] = refs[size-1]
	}

	data := make([]any, len(refs))
	for i, ref := range refs {
		data[i] = ref
	}
	page["data"] = data

	return page, nil
}

func (db *MockDB) resolveSet(ctx context.Context, set any, after string, limit int) ([]values.Ref, error) {
	switch typed := set.(type) {
	case values.Ref:
		// a class ref paginates to the documents of that class
		return db.store.List(ctx, typed, after, limit)
	case values.SetRef:
		raw, ok := typed.Query().(values.RawExpr)
		if !ok {
			return nil, errors.NewBadRequestError("set ref carries an unresolvable query")
		}
		return db.resolveSet(ctx, raw.Value, after, limit)
	case map[string]any:
		return db.resolveSetExpr(ctx, typed, after, limit)
	default:
		return nil, errors.NewBadRequestError("expression does not define a set")
	}
}

func (db *MockDB) resolveSetExpr(ctx context.Context, expr map[string]any, after string, limit int) ([]values.Ref, error) {
	if _, ok := expr["match"]; ok {
		index, err := db.evalRef(ctx, expr["match"])
		if err != nil {
			return nil, err
		}

		class, ok := db.indexes[index.Value()]
		if !ok {
			return nil, errors.NewNotFoundError("index not found: " + index.Value())
		}

		return db.store.List(ctx, class, after, limit)
	}

	if members, ok := expr["union"].([]any); ok {
		return db.combine(ctx, members, after, limit, unionOf)
	}

	if members, ok := expr["intersection"].([]any); ok {
		return db.combine(ctx, members, after, limit, intersectionOf)
	}

	if members, ok := expr["difference"].([]any); ok {
		return db.combine(ctx, members, after, limit, differenceOf)
	}

	return nil, errors.NewBadRequestError("expression does not define a set")
}

func (db *MockDB) combine(ctx context.Context, members []any, after string, limit int, merge func([][]values.Ref) []values.Ref) ([]values.Ref, error) {
	resolved := make([][]values.Ref, 0, len(members))

	for _, member := range members {
		set, err := db.Execute(ctx, member)
		if err != nil {
			return nil, err
		}

		refs, err := db.resolveSet(ctx, set, after, limit)
		if err != nil {
			return nil, err
		}

		resolved = append(resolved, refs)
	}

	merged := merge(resolved)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	return merged, nil
}

func unionOf(sets [][]values.Ref) []values.Ref {
	seen := map[string]bool{}
	all := []values.Ref{}

	for _, set := range sets {
		for _, ref := range set {
			if !seen[ref.Value()] {
				seen[ref.Value()] = true
				all = append(all, ref)
			}
		}
	}

	sortRefs(all)
	return all
}

func intersectionOf(sets [][]values.Ref) []values.Ref {
	if len(sets) == 0 {
		return []values.Ref{}
	}

	common := []values.Ref{}

	for _, ref := range sets[0] {
		inAll := true
		for _, other := range sets[1:] {
			if !containsRef(other, ref) {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, ref)
		}
	}

	return common
}

func differenceOf(sets [][]values.Ref) []values.Ref {
	if len(sets) == 0 {
		return []values.Ref{}
	}

	remaining := []values.Ref{}

	for _, ref := range sets[0] {
		excluded := false
		for _, other := range sets[1:] {
			if containsRef(other, ref) {
				excluded = true
				break
			}
		}
		if !excluded {
			remaining = append(remaining, ref)
		}
	}

	return remaining
}

func sortRefs(refs []values.Ref) {
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Value() < refs[j].Value()
	})
}

func containsRef(refs []values.Ref, ref values.Ref) bool {
	for _, candidate := range refs {
		if candidate.Equal(ref) {
			return true
		}
	}
	return false
}

func document(ref values.Ref, body map[string]any) map[string]any {
	doc := map[string]any{
		"ref":   ref,
		"class": ref.Class(),
	}

	if ts, ok := body["ts"].(string); ok {
		if t, err := values.TimestampFromString(ts); err == nil {
			doc["ts"] = t
		}
	}

	if data, ok := body["data"]; ok {
		doc["data"] = data
	}

	return doc
}
