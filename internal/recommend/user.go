package recommend

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/thebtf/venuerank/internal/vector"
	"github.com/thebtf/venuerank/pkg/models"
)

// User recommendation blend. Vector similarity dominates; popularity and
// recency keep stale lookalikes out of the top slots.
const (
	userVectorWeight     = 0.6
	userPopularityWeight = 0.2
	userRecencyWeight    = 0.2
	recencyDecayPerDay   = 2.0
)

// GetUserRecommendations returns personalized events for a user, or the
// trending list when the user has no preference vector yet.
func (s *Service) GetUserRecommendations(ctx context.Context, userID string, limit int) (*models.UserRecommendations, error) {
	if limit <= 0 {
		limit = s.trendingLimit
	}

	userVec, err := s.vectors.Fetch(ctx, vector.NamespaceUsers, userID)
	if err != nil {
		// Cold start covers both "never computed" and a degraded vector
		// store: trending is always servable.
		return s.trendingRecommendations(ctx, limit)
	}

	results, err := s.vectors.Search(ctx, vector.NamespaceEvents, userVec, s.candidateLimit, nil)
	if err != nil {
		return s.trendingRecommendations(ctx, limit)
	}
	if len(results) == 0 {
		return s.trendingRecommendations(ctx, limit)
	}

	ids := make([]string, len(results))
	simByID := make(map[string]float64, len(results))
	for i, r := range results {
		ids[i] = r.ID
		simByID[r.ID] = r.Score
	}

	events, err := s.catalog.ListEventsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	recs := make([]models.RecommendationResult, 0, len(events))
	for i := range events {
		event := &events[i]
		if event.IsPrivate || event.Status != "active" {
			continue
		}

		vectorScore := simByID[event.ID] * 100
		popularity := math.Min(event.PopularityScore, 100)
		recency := recencyScore(event.CreatedAt, now)

		score := userVectorWeight*vectorScore +
			userPopularityWeight*popularity +
			userRecencyWeight*recency

		recs = append(recs, models.RecommendationResult{
			EventID: event.ID,
			Name:    event.Name,
			Score:   int(math.Round(score)),
			EventBreakdown: &models.EventScoreBreakdown{
				Vector:     vectorScore,
				Popularity: popularity,
				Recency:    recency,
			},
			Event: event,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}

	return &models.UserRecommendations{ColdStart: false, Results: recs}, nil
}

// trendingRecommendations is the cold-start path: public active events by
// popularity, views, then recency.
func (s *Service) trendingRecommendations(ctx context.Context, limit int) (*models.UserRecommendations, error) {
	events, err := s.catalog.TrendingEvents(ctx, limit)
	if err != nil {
		return nil, err
	}

	recs := make([]models.RecommendationResult, len(events))
	for i := range events {
		event := &events[i]
		recs[i] = models.RecommendationResult{
			EventID: event.ID,
			Name:    event.Name,
			Score:   int(math.Round(math.Min(event.PopularityScore, 100))),
			Event:   event,
		}
	}
	s.metrics.ColdStart(ctx)
	return &models.UserRecommendations{ColdStart: true, Results: recs}, nil
}

func recencyScore(createdAt time.Time, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Max(0, 100-ageDays*recencyDecayPerDay)
}
