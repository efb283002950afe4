package embedding

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

// stubProvider returns deterministic vectors and counts calls.
type stubProvider struct {
	mu    sync.Mutex
	calls int
	dim   int
}

func (p *stubProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	v := make([]float32, p.dim)
	for i := range v {
		v[i] = float32(len(text))
	}
	return v, nil
}

func (p *stubProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (p *stubProvider) Dimensions() int { return p.dim }

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// ServiceSuite covers caching and coalescing in the embedding service.
type ServiceSuite struct {
	suite.Suite
	provider *stubProvider
	svc      *Service
}

func (s *ServiceSuite) SetupTest() {
	s.provider = &stubProvider{dim: 4}
	s.svc = NewService(s.provider, NewCache(3))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// =============================================================================
// GOOD SCENARIOS - Expected normal operations
// =============================================================================

func (s *ServiceSuite) TestEmbed_GoodScenarios_CacheHit() {
	ctx := context.Background()

	first, err := s.svc.Embed(ctx, "grand plaza hotel")
	s.Require().NoError(err)

	second, err := s.svc.Embed(ctx, "grand plaza hotel")
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1, s.provider.callCount(), "identical text should hit the cache")
}

func (s *ServiceSuite) TestEmbed_GoodScenarios_DistinctTexts() {
	ctx := context.Background()

	_, err := s.svc.Embed(ctx, "alpha")
	s.Require().NoError(err)
	_, err = s.svc.Embed(ctx, "beta")
	s.Require().NoError(err)

	s.Equal(2, s.provider.callCount())
	s.Equal(2, s.svc.Cache().Len())
}

func (s *ServiceSuite) TestEmbedBatch_GoodScenarios_PartialHits() {
	ctx := context.Background()

	_, err := s.svc.Embed(ctx, "alpha")
	s.Require().NoError(err)

	vecs, err := s.svc.EmbedBatch(ctx, []string{"alpha", "beta"})
	s.Require().NoError(err)
	s.Require().Len(vecs, 2)

	s.Equal(2, s.provider.callCount(), "only the miss should reach the provider")
}

func (s *ServiceSuite) TestEmbed_GoodScenarios_ConcurrentCoalesce() {
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Embed(ctx, "same text")
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.LessOrEqual(s.provider.callCount(), 2, "concurrent identical requests should coalesce")
}

// =============================================================================
// BAD SCENARIOS - Error handling and edge cases
// =============================================================================

func (s *ServiceSuite) TestCache_BadScenarios_FIFOEviction() {
	cache := NewCache(2)
	cache.Put("a", []float32{1})
	cache.Put("b", []float32{2})
	cache.Put("c", []float32{3})

	_, ok := cache.Get("a")
	s.False(ok, "oldest entry should be evicted first")
	_, ok = cache.Get("b")
	s.True(ok)
	_, ok = cache.Get("c")
	s.True(ok)
}

func (s *ServiceSuite) TestCache_BadScenarios_Reset() {
	cache := NewCache(2)
	cache.Put("a", []float32{1})
	cache.Reset()
	s.Zero(cache.Len())
}
