package enrichment

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/venuerank/internal/telemetry"
	"github.com/thebtf/venuerank/pkg/models"
)

// Service enriches hotels with provider details ahead of scoring.
type Service struct {
	provider DetailsProvider
	cache    Cache
	metrics  *telemetry.Metrics
}

// NewService creates an enrichment service. A nil cache gets an in-memory
// one with the default TTL.
func NewService(provider DetailsProvider, cache Cache) *Service {
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	return &Service{provider: provider, cache: cache}
}

// SetMetrics attaches the optional telemetry counters.
func (s *Service) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

// Enrich returns the hotels with provider details merged in, preserving
// input order. Hotels without a provider code pass through unchanged.
// Provider failures degrade to unenriched hotels; scoring proceeds on
// local data.
func (s *Service) Enrich(ctx context.Context, hotels []models.Hotel) []models.Hotel {
	if len(hotels) == 0 {
		return hotels
	}

	out := make([]models.Hotel, len(hotels))
	copy(out, hotels)

	// Resolve from cache first; collect cold codes for one batched fetch.
	var missCodes []string
	missSeen := make(map[string]struct{})
	cached := make(map[string]*Details)

	var hits int64
	for i := range out {
		code := providerCode(&out[i])
		if code == "" {
			continue
		}
		if d, ok := s.cache.Get(code); ok {
			cached[code] = d
			hits++
			continue
		}
		if _, dup := missSeen[code]; !dup {
			missSeen[code] = struct{}{}
			missCodes = append(missCodes, code)
		}
	}
	s.metrics.EnrichmentCacheHit(ctx, hits)

	if len(missCodes) > 0 && s.provider != nil {
		fetched, err := s.provider.GetDetails(ctx, missCodes)
		if err != nil {
			log.Warn().Err(err).Int("codes", len(missCodes)).Msg("Hotel enrichment fetch failed")
		} else {
			for _, code := range missCodes {
				if d, ok := fetched[code]; ok {
					s.cache.Put(code, d)
					cached[code] = &d
				} else {
					s.cache.PutNegative(code)
					cached[code] = nil
				}
			}
		}
	}

	for i := range out {
		code := providerCode(&out[i])
		if code == "" {
			continue
		}
		d, ok := cached[code]
		if !ok || d == nil {
			continue
		}
		applyDetails(&out[i], d)
	}
	return out
}

func providerCode(h *models.Hotel) string {
	if h.Source != "provider" {
		return ""
	}
	return h.ProviderCode
}

func applyDetails(h *models.Hotel, d *Details) {
	h.Enriched = true
	h.ProviderFacilities = d.Facilities
	h.ProviderDescription = d.Description
	h.ProviderRating = d.Rating
	h.ProviderImages = d.Images
}
