package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thebtf/venuerank/internal/embedding"
	"github.com/thebtf/venuerank/internal/scoring"
	"github.com/thebtf/venuerank/internal/vector"
	"github.com/thebtf/venuerank/pkg/models"
)

// Search vector blend when the planner has a preference vector: the
// event's requirements dominate, the planner's taste nudges.
const (
	eventVectorWeight   = 0.7
	plannerVectorWeight = 0.3
)

// Rule-based fallback thresholds.
const (
	ruleScoreThreshold = 30
	ruleResultCap      = 10
)

// GetHotelRecommendationsForEvent ranks candidate hotels for a planner's
// event. The semantic path needs an event vector; without one the
// deterministic attribute scorer serves the request.
func (s *Service) GetHotelRecommendationsForEvent(ctx context.Context, eventID, plannerID string, limit int) ([]models.RecommendationResult, error) {
	if limit <= 0 {
		limit = 10
	}

	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	eventVec, err := s.vectors.Fetch(ctx, vector.NamespaceEvents, eventID)
	if err != nil {
		// Missing vector and degraded store both take the deterministic
		// path; a vector outage must not fail the request.
		if !errors.Is(err, vector.ErrNotFound) {
			log.Warn().Err(err).Str("event", eventID).Msg("Event vector fetch failed, using rule scoring")
		}
		return s.ruleBasedHotelRecommendations(ctx, event, limit)
	}

	searchVec := eventVec
	if plannerID != "" {
		if plannerVec, err := s.vectors.Fetch(ctx, vector.NamespacePlanners, plannerID); err == nil {
			if combined, err := embedding.Combine(eventVec, plannerVec, eventVectorWeight, plannerVectorWeight); err == nil {
				searchVec = combined
			}
		}
	}

	var filter map[string]string
	if event.Location.Country != "" {
		filter = map[string]string{"country": event.Location.Country}
	}

	matches, err := s.vectors.Search(ctx, vector.NamespaceHotels, searchVec, s.candidateLimit, filter)
	if err != nil {
		log.Warn().Err(err).Str("event", eventID).Msg("Hotel vector search failed, using rule scoring")
		return s.ruleBasedHotelRecommendations(ctx, event, limit)
	}
	if len(matches) == 0 {
		return s.ruleBasedHotelRecommendations(ctx, event, limit)
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	hotels, err := s.catalog.ListHotelsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	hotels = filterActive(hotels)
	if len(hotels) == 0 {
		return nil, nil
	}

	hotels = s.enrich(ctx, hotels)
	scores := s.facilityScores(ctx, event, hotels, nil)
	activityVecs := s.fetchActivityVectors(ctx, hotels)

	results := make([]models.RecommendationResult, 0, len(hotels))
	for i := range hotels {
		hotel := &hotels[i]

		facilityScore, ok := scores.EventScore(hotel.ID)
		breakdown := models.ScoreBreakdown{
			FacilityFit:     scoring.FacilityComponent(facilityScore, ok),
			ActivityHistory: scoring.ActivityComponent(eventVec, activityVecs[hotel.ID]),
			Capacity:        scoring.CapacityComponent(hotel.TotalRooms, event.ExpectedGuests),
			Location:        scoring.LocationComponent(hotel.Location.City, event.Location.City, scoring.PlannerSearch),
		}

		reasons := topReasons(facilityScore.Reasons, 2)
		if breakdown.Capacity.Score == 100 && !breakdown.Capacity.Neutral {
			reasons = append(reasons, "Sufficient capacity for expected guests")
		}

		results = append(results, models.RecommendationResult{
			HotelID:   hotel.ID,
			EventID:   event.ID,
			Name:      hotel.Name,
			Score:     scoring.Blend(scoring.PlannerSearch, breakdown),
			Breakdown: breakdown,
			Reasons:   reasons,
			Hotel:     hotel,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ruleBasedHotelRecommendations scores hotels on structured attributes
// alone. Used before any embeddings exist for the event.
func (s *Service) ruleBasedHotelRecommendations(ctx context.Context, event *models.Event, limit int) ([]models.RecommendationResult, error) {
	hotels, err := s.catalog.ListActiveHotels(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.RecommendationResult, 0, len(hotels))
	for i := range hotels {
		hotel := &hotels[i]
		score, reasons := ruleBasedHotelScore(hotel, event)
		if score <= ruleScoreThreshold {
			continue
		}
		results = append(results, models.RecommendationResult{
			HotelID: hotel.ID,
			EventID: event.ID,
			Name:    hotel.Name,
			Score:   score,
			Reasons: reasons,
			Hotel:   hotel,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	max := limit
	if max > ruleResultCap {
		max = ruleResultCap
	}
	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}

// ruleBasedHotelScore rates one hotel on location, budget alignment,
// specialization, capacity, and planner preference.
func ruleBasedHotelScore(hotel *models.Hotel, event *models.Event) (int, []string) {
	score := 0
	var reasons []string

	if hotel.Location.City != "" && event.Location.City != "" {
		if strings.EqualFold(hotel.Location.City, event.Location.City) {
			score += 40
			reasons = append(reasons, "Same city location")
		} else if strings.EqualFold(hotel.Location.Country, event.Location.Country) && hotel.Location.Country != "" {
			score += 20
			reasons = append(reasons, "Same country")
		}
	}

	if event.Budget > 0 && event.ExpectedGuests > 0 {
		budgetPerGuest := event.Budget / float64(event.ExpectedGuests)
		avgPrice := hotel.PriceRange.Average()
		if avgPrice > 0 {
			diff := math.Abs(avgPrice - budgetPerGuest)
			if diff <= budgetPerGuest*0.2 {
				score += 30
				reasons = append(reasons, "Budget perfectly aligned")
			} else if diff <= budgetPerGuest*0.5 {
				score += 15
				reasons = append(reasons, "Budget within range")
			}
		}
	}

	for _, spec := range hotel.Specialization {
		if strings.EqualFold(spec, event.Type) {
			score += 15
			reasons = append(reasons, fmt.Sprintf("Specialized in %s events", event.Type))
			break
		}
	}

	if hotel.TotalRooms > 0 && event.RequiredRooms > 0 {
		if hotel.TotalRooms >= event.RequiredRooms {
			score += 15
			reasons = append(reasons, "Sufficient room capacity")
		} else if float64(hotel.TotalRooms) >= float64(event.RequiredRooms)*0.7 {
			score += 8
			reasons = append(reasons, "Near sufficient capacity")
		}
	}

	for _, preferred := range event.PreferredHotels {
		if preferred != "" && strings.Contains(strings.ToLower(hotel.Name), strings.ToLower(preferred)) {
			score += 5
			reasons = append(reasons, "Preferred by planner")
			break
		}
	}

	return score, reasons
}

// fetchActivityVectors loads hosting-history vectors for all hotels
// concurrently. Missing vectors are simply absent from the map.
func (s *Service) fetchActivityVectors(ctx context.Context, hotels []models.Hotel) map[string][]float32 {
	var mu sync.Mutex
	vecs := make(map[string][]float32, len(hotels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range hotels {
		id := hotels[i].ID
		g.Go(func() error {
			vec, err := s.vectors.Fetch(gctx, vector.NamespaceHotelActivities, id)
			if err != nil {
				return nil
			}
			mu.Lock()
			vecs[id] = vec
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return vecs
}

func filterActive(hotels []models.Hotel) []models.Hotel {
	out := hotels[:0]
	for _, h := range hotels {
		if h.Active {
			out = append(out, h)
		}
	}
	return out
}

func topReasons(reasons []string, n int) []string {
	if len(reasons) <= n {
		return append([]string(nil), reasons...)
	}
	return append([]string(nil), reasons[:n]...)
}
