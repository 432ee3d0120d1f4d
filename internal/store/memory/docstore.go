// Package memory is the in-process twin of the postgres docstore, used by
// tests and store-less dev runs.
package memory

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/prodsmart/backend/internal/store"
)

type DocStore struct {
	mu    sync.RWMutex
	items map[string]map[string]store.Document // collection -> id -> doc
}

func New() *DocStore {
	return &DocStore{
		items: make(map[string]map[string]store.Document),
	}
}

func (s *DocStore) FindMany(ctx context.Context, collection string, filter store.Filter) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Document, 0)

	for id, doc := range s.items[collection] {
		if matches(id, doc, filter) {
			out = append(out, clone(id, doc))
		}
	}

	// map order is random; keep results stable for callers and tests
	sort.Slice(out, func(i, j int) bool {
		return out[i]["id"].(string) < out[j]["id"].(string)
	})

	return out, nil
}

func (s *DocStore) FindOne(ctx context.Context, collection string, filter store.Filter) (store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, doc := range s.items[collection] {
		if matches(id, doc, filter) {
			return clone(id, doc), nil
		}
	}

	return nil, store.ErrNotFound
}

func (s *DocStore) Insert(ctx context.Context, collection string, doc store.Document) (string, error) {
	id := uuid.NewString()

	stored := store.Document{}

	for k, v := range doc {
		if k == "id" {
			continue
		}
		stored[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items[collection] == nil {
		s.items[collection] = make(map[string]store.Document)
	}

	s.items[collection][id] = stored

	return id, nil
}

func (s *DocStore) Update(ctx context.Context, collection string, filter store.Filter, fields map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched int64

	for id, doc := range s.items[collection] {
		if !matches(id, doc, filter) {
			continue
		}

		for k, v := range fields {
			doc[k] = v
		}

		matched++
	}

	return matched, nil
}

func (s *DocStore) Delete(ctx context.Context, collection string, filter store.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, doc := range s.items[collection] {
		if matches(id, doc, filter) {
			delete(s.items[collection], id)
			return nil
		}
	}

	return store.ErrNotFound
}

func (s *DocStore) DeleteMany(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64

	for id, doc := range s.items[collection] {
		if matches(id, doc, filter) {
			delete(s.items[collection], id)
			deleted++
		}
	}

	return deleted, nil
}

func matches(id string, doc store.Document, filter store.Filter) bool {
	for k, want := range filter {
		if k == "id" {
			if id != want {
				return false
			}
			continue
		}

		got, ok := doc[k]

		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}

	return true
}

// clone hands out a copy so callers cannot alias stored state.
func clone(id string, doc store.Document) store.Document {
	out := store.Document{"id": id}

	for k, v := range doc {
		out[k] = v
	}

	return out
}
