package mockdb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/taledb/taledb-go/pkg/taledb/errors"
	"github.com/taledb/taledb-go/pkg/taledb/values"
)

// DocumentStore persists documents keyed by their refs.
type DocumentStore interface {
	Put(ctx context.Context, ref values.Ref, data map[string]any) error
	Get(ctx context.Context, ref values.Ref) (map[string]any, error)
	Delete(ctx context.Context, ref values.Ref) error
	// List returns at most limit document refs of the given class, in ref
	// order, starting after the given ref value (empty means the start).
	List(ctx context.Context, class values.Ref, after string, limit int) ([]values.Ref, error)
}

func NewMemoryStore() DocumentStore {
	return &memoryStore{
		docs: map[string]map[string]any{},
	}
}

type memoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
}

func (s *memoryStore) Put(ctx context.Context, ref values.Ref, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[ref.Value()] = data
	return nil
}

func (s *memoryStore) Get(ctx context.Context, ref values.Ref) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[ref.Value()]
	if !ok {
		return nil, errors.NewNotFoundError("document not found: " + ref.Value())
	}

	return data, nil
}

func (s *memoryStore) Delete(ctx context.Context, ref values.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[ref.Value()]; !ok {
		return errors.NewNotFoundError("document not found: " + ref.Value())
	}

	delete(s.docs, ref.Value())
	return nil
}

func (s *memoryStore) List(ctx context.Context, class values.Ref, after string, limit int) ([]values.Ref, error) {
	s.mu.RLock()

	prefix := class.Value() + "/"
	matching := make([]string, 0, limit)

	for key := range s.docs {
		if strings.HasPrefix(key, prefix) && key > after {
			matching = append(matching, key)
		}
	}

	s.mu.RUnlock()

	sort.Strings(matching)

	if len(matching) > limit {
		matching = matching[:limit]
	}

	refs := make([]values.Ref, len(matching))
	for i, key := range matching {
		refs[i] = values.NewRef(key)
	}

	return refs, nil
}
