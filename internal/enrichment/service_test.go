package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/thebtf/venuerank/pkg/models"
)

// stubDetailsProvider serves canned details and counts batch calls.
type stubDetailsProvider struct {
	details map[string]Details
	calls   int
	err     error
}

func (p *stubDetailsProvider) GetDetails(_ context.Context, codes []string) (map[string]Details, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make(map[string]Details)
	for _, c := range codes {
		if d, ok := p.details[c]; ok {
			out[c] = d
		}
	}
	return out, nil
}

// EnrichmentSuite covers the provider merge and caching behavior.
type EnrichmentSuite struct {
	suite.Suite
	provider *stubDetailsProvider
	svc      *Service
	ctx      context.Context
}

func (s *EnrichmentSuite) SetupTest() {
	s.provider = &stubDetailsProvider{
		details: map[string]Details{
			"HC1": {
				HotelCode:   "HC1",
				Facilities:  []string{"spa", "wifi"},
				Description: "Provider description",
				Rating:      4.6,
			},
		},
	}
	s.svc = NewService(s.provider, NewMemoryCache(time.Hour))
	s.ctx = context.Background()
}

func TestEnrichmentSuite(t *testing.T) {
	suite.Run(t, new(EnrichmentSuite))
}

// =============================================================================
// GOOD SCENARIOS - Expected normal operations
// =============================================================================

func (s *EnrichmentSuite) TestEnrich_GoodScenarios_MergesProviderData() {
	hotels := []models.Hotel{{
		ID: "h1", Name: "Grand", Source: "provider", ProviderCode: "HC1",
		Facilities: []string{"Pool"}, Rating: 3.9,
	}}

	out := s.svc.Enrich(s.ctx, hotels)

	s.Require().Len(out, 1)
	s.True(out[0].Enriched)
	s.Equal([]string{"spa", "wifi"}, out[0].ProviderFacilities)
	s.InDelta(4.6, out[0].EffectiveRating(), 0.001)
	s.Equal("Provider description", out[0].EffectiveDescription())
	s.Equal([]string{"spa", "wifi", "pool"}, out[0].MergedFacilities())
}

func (s *EnrichmentSuite) TestEnrich_GoodScenarios_LocalHotelsPassThrough() {
	hotels := []models.Hotel{{ID: "h1", Name: "Local Inn", Source: "local"}}

	out := s.svc.Enrich(s.ctx, hotels)

	s.False(out[0].Enriched)
	s.Zero(s.provider.calls, "local hotels should not trigger a provider call")
}

func (s *EnrichmentSuite) TestEnrich_GoodScenarios_CacheSkipsSecondFetch() {
	hotels := []models.Hotel{{ID: "h1", Source: "provider", ProviderCode: "HC1"}}

	s.svc.Enrich(s.ctx, hotels)
	s.svc.Enrich(s.ctx, hotels)

	s.Equal(1, s.provider.calls, "second pass should be served from cache")
}

func (s *EnrichmentSuite) TestEnrich_GoodScenarios_PreservesOrder() {
	hotels := []models.Hotel{
		{ID: "a", Source: "local"},
		{ID: "b", Source: "provider", ProviderCode: "HC1"},
		{ID: "c", Source: "local"},
	}

	out := s.svc.Enrich(s.ctx, hotels)

	s.Equal([]string{"a", "b", "c"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

// =============================================================================
// BAD SCENARIOS - Error handling and edge cases
// =============================================================================

func (s *EnrichmentSuite) TestEnrich_BadScenarios_NegativeCaching() {
	hotels := []models.Hotel{{ID: "h1", Source: "provider", ProviderCode: "UNKNOWN"}}

	out := s.svc.Enrich(s.ctx, hotels)
	s.False(out[0].Enriched)

	s.svc.Enrich(s.ctx, hotels)
	s.Equal(1, s.provider.calls, "a known-empty code should not be re-fetched")
}

func (s *EnrichmentSuite) TestEnrich_BadScenarios_ProviderFailureDegrades() {
	s.provider.err = errors.New("provider down")
	hotels := []models.Hotel{{ID: "h1", Source: "provider", ProviderCode: "HC1", Rating: 3.9}}

	out := s.svc.Enrich(s.ctx, hotels)

	s.Require().Len(out, 1)
	s.False(out[0].Enriched, "failure must fall back to local data")
	s.InDelta(3.9, out[0].EffectiveRating(), 0.001)
}

func (s *EnrichmentSuite) TestMemoryCache_BadScenarios_TTLExpiry() {
	cache := NewMemoryCache(time.Minute)
	base := time.Now()
	cache.now = func() time.Time { return base }

	cache.Put("HC1", Details{HotelCode: "HC1"})
	_, ok := cache.Get("HC1")
	s.True(ok)

	cache.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok = cache.Get("HC1")
	s.False(ok, "expired entries should miss")
}
