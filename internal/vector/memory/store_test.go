package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/thebtf/venuerank/internal/vector"
)

// StoreSuite covers the in-memory vector store.
type StoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.store = NewStore()
	s.ctx = context.Background()
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

// =============================================================================
// GOOD SCENARIOS - Expected normal operations
// =============================================================================

func (s *StoreSuite) TestUpsertFetch_GoodScenarios_RoundTrip() {
	err := s.store.Upsert(s.ctx, vector.NamespaceEvents, "ev-1", []float32{1, 0, 0}, nil)
	s.Require().NoError(err)

	vec, err := s.store.Fetch(s.ctx, vector.NamespaceEvents, "ev-1")
	s.Require().NoError(err)
	s.Equal([]float32{1, 0, 0}, vec)
}

func (s *StoreSuite) TestSearch_GoodScenarios_OrderedBySimilarity() {
	s.Require().NoError(s.store.Upsert(s.ctx, vector.NamespaceHotels, "close", []float32{1, 0.1}, nil))
	s.Require().NoError(s.store.Upsert(s.ctx, vector.NamespaceHotels, "far", []float32{0, 1}, nil))

	results, err := s.store.Search(s.ctx, vector.NamespaceHotels, []float32{1, 0}, 10, nil)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal("close", results[0].ID)
	s.Greater(results[0].Score, results[1].Score)
}

func (s *StoreSuite) TestSearch_GoodScenarios_PayloadFilter() {
	s.Require().NoError(s.store.Upsert(s.ctx, vector.NamespaceHotels, "in", []float32{1, 0},
		map[string]string{"country": "India"}))
	s.Require().NoError(s.store.Upsert(s.ctx, vector.NamespaceHotels, "out", []float32{1, 0},
		map[string]string{"country": "France"}))

	results, err := s.store.Search(s.ctx, vector.NamespaceHotels, []float32{1, 0}, 10,
		map[string]string{"country": "India"})
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("in", results[0].ID)
}

func (s *StoreSuite) TestSearch_GoodScenarios_LimitApplied() {
	for _, id := range []string{"a", "b", "c"} {
		s.Require().NoError(s.store.Upsert(s.ctx, vector.NamespaceUsers, id, []float32{1, 0}, nil))
	}

	results, err := s.store.Search(s.ctx, vector.NamespaceUsers, []float32{1, 0}, 2, nil)
	s.Require().NoError(err)
	s.Len(results, 2)
}

func (s *StoreSuite) TestNamespaces_GoodScenarios_Isolated() {
	s.Require().NoError(s.store.Upsert(s.ctx, vector.NamespaceEvents, "x", []float32{1}, nil))

	_, err := s.store.Fetch(s.ctx, vector.NamespaceHotels, "x")
	s.ErrorIs(err, vector.ErrNotFound)
}

// =============================================================================
// BAD SCENARIOS - Error handling and edge cases
// =============================================================================

func (s *StoreSuite) TestFetch_BadScenarios_Missing() {
	_, err := s.store.Fetch(s.ctx, vector.NamespaceUsers, "nobody")
	s.ErrorIs(err, vector.ErrNotFound)
}

func (s *StoreSuite) TestDelete_BadScenarios_MissingIsNoop() {
	s.NoError(s.store.Delete(s.ctx, vector.NamespaceUsers, "nobody"))
}

func (s *StoreSuite) TestUpsert_GoodScenarios_Replace() {
	s.Require().NoError(s.store.Upsert(s.ctx, vector.NamespaceEvents, "ev", []float32{1, 0}, nil))
	s.Require().NoError(s.store.Upsert(s.ctx, vector.NamespaceEvents, "ev", []float32{0, 1}, nil))

	vec, err := s.store.Fetch(s.ctx, vector.NamespaceEvents, "ev")
	s.Require().NoError(err)
	s.Equal([]float32{0, 1}, vec)

	count, err := s.store.Count(s.ctx, vector.NamespaceEvents)
	s.Require().NoError(err)
	s.EqualValues(1, count)
}
