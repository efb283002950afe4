// Package memory provides an in-process vector store used in tests and
// single-node development setups.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/thebtf/venuerank/internal/embedding"
	"github.com/thebtf/venuerank/internal/vector"
)

type entry struct {
	vec     []float32
	payload map[string]string
}

// Store keeps all vectors in memory, partitioned by namespace.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]entry
}

var _ vector.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]map[string]entry)}
}

func (s *Store) Upsert(_ context.Context, namespace, id string, vec []float32, payload map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string]entry)
		s.data[namespace] = ns
	}

	copied := make([]float32, len(vec))
	copy(copied, vec)
	ns[id] = entry{vec: copied, payload: payload}
	return nil
}

func (s *Store) Fetch(_ context.Context, namespace, id string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[namespace][id]
	if !ok {
		return nil, vector.ErrNotFound
	}
	out := make([]float32, len(e.vec))
	copy(out, e.vec)
	return out, nil
}

func (s *Store) Search(_ context.Context, namespace string, vec []float32, limit int, filter map[string]string) ([]vector.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []vector.SearchResult
	for id, e := range s.data[namespace] {
		if !matchesFilter(e.payload, filter) {
			continue
		}
		sim, err := embedding.CosineSimilarity(vec, e.vec)
		if err != nil {
			return nil, err
		}
		if sim < 0 {
			sim = 0
		}
		results = append(results, vector.SearchResult{
			ID:      id,
			Score:   sim,
			Payload: e.payload,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) Delete(_ context.Context, namespace, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[namespace], id)
	return nil
}

func (s *Store) Count(_ context.Context, namespace string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data[namespace])), nil
}

func (s *Store) Close() error { return nil }

func matchesFilter(payload, filter map[string]string) bool {
	for k, v := range filter {
		if payload[k] != v {
			return false
		}
	}
	return true
}
