// Package recommend orchestrates the recommendation surfaces: activity
// ingestion, preference vector upkeep, and the user, planner, group, and
// guest rankings.
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/venuerank/internal/embedding"
	"github.com/thebtf/venuerank/internal/facility"
	"github.com/thebtf/venuerank/internal/telemetry"
	"github.com/thebtf/venuerank/internal/vector"
	"github.com/thebtf/venuerank/pkg/models"
)

// Catalog is the slice of the database layer the recommender reads.
type Catalog interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEventsByIDs(ctx context.Context, ids []string) ([]models.Event, error)
	TrendingEvents(ctx context.Context, limit int) ([]models.Event, error)
	IncrementEventViews(ctx context.Context, id string) error
	GetHotel(ctx context.Context, id string) (*models.Hotel, error)
	ListActiveHotels(ctx context.Context) ([]models.Hotel, error)
	ListHotelsByIDs(ctx context.Context, ids []string) ([]models.Hotel, error)
	GetGroup(ctx context.Context, id string) (*models.GuestGroup, error)
	GroupsForEvent(ctx context.Context, eventID string) ([]models.GuestGroup, error)
	BookingsForGuest(ctx context.Context, email string) ([]models.Booking, error)
}

// ActivityLog is the slice of the database layer that stores signals.
type ActivityLog interface {
	Record(ctx context.Context, rec *models.ActivityRecord) error
	ListRecent(ctx context.Context, actorID string, role models.ActorRole, limit int) ([]models.ActivityRecord, error)
	UpsertHotelActivity(ctx context.Context, rec *models.HotelActivityRecord) error
	ListHotelActivities(ctx context.Context, hotelID string, limit int) ([]models.HotelActivityRecord, error)
}

// Embedder produces embedding vectors for entity texts.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Enricher merges provider details onto hotels before scoring.
type Enricher interface {
	Enrich(ctx context.Context, hotels []models.Hotel) []models.Hotel
}

// FacilityScorer scores hotels against an event and its groups.
type FacilityScorer interface {
	Score(ctx context.Context, event *models.Event, hotels []models.Hotel, groups []models.GuestGroup) *facility.ScoreSet
}

// How many recent activities feed a preference vector rebuild.
const recomputeActivityLimit = 50

// Config tunes the recommendation service.
type Config struct {
	CandidateLimit     int // vector search breadth (default 50)
	TrendingLimit      int // cold-start list size (default 10)
	RecomputeQueueSize int // pending vector rebuild capacity (default 256)
}

// Service is the recommendation engine facade.
type Service struct {
	catalog    Catalog
	activities ActivityLog
	vectors    vector.Store
	embedder   Embedder
	enricher   Enricher
	scorer     FacilityScorer

	candidateLimit int
	trendingLimit  int
	tasks          *taskQueue
	metrics        *telemetry.Metrics
}

// NewService wires the recommendation service. All dependencies are
// required except the enricher and scorer, which degrade gracefully.
func NewService(cfg Config, catalog Catalog, activities ActivityLog, vectors vector.Store, embedder Embedder, enricher Enricher, scorer FacilityScorer) (*Service, error) {
	if catalog == nil || activities == nil || vectors == nil || embedder == nil {
		return nil, fmt.Errorf("catalog, activities, vectors, and embedder are required")
	}
	candidateLimit := cfg.CandidateLimit
	if candidateLimit <= 0 {
		candidateLimit = 50
	}
	trendingLimit := cfg.TrendingLimit
	if trendingLimit <= 0 {
		trendingLimit = 10
	}

	s := &Service{
		catalog:        catalog,
		activities:     activities,
		vectors:        vectors,
		embedder:       embedder,
		enricher:       enricher,
		scorer:         scorer,
		candidateLimit: candidateLimit,
		trendingLimit:  trendingLimit,
	}
	s.tasks = newTaskQueue(cfg.RecomputeQueueSize, s.runTask)
	return s, nil
}

// SetMetrics attaches the optional telemetry counters. All record
// methods are nil-safe, so leaving this unset costs nothing.
func (s *Service) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

// Start launches the background vector-rebuild worker.
func (s *Service) Start(ctx context.Context) {
	s.tasks.Start(ctx)
}

// Stop drains the background worker.
func (s *Service) Stop() {
	s.tasks.Stop()
}

// RecordActivity validates and persists one user or planner signal, then
// schedules the actor's preference vector rebuild. The write is the only
// synchronous part; vector upkeep happens in the background.
func (s *Service) RecordActivity(ctx context.Context, rec *models.ActivityRecord) error {
	weight, err := models.ActionWeight(rec.ActorRole, rec.Action)
	if err != nil {
		return err
	}
	rec.Weight = weight

	if err := s.activities.Record(ctx, rec); err != nil {
		return err
	}

	if rec.ActorRole == models.RoleUser && rec.Action == models.ActionView && rec.TargetType == models.EntityEvent {
		if err := s.catalog.IncrementEventViews(ctx, rec.TargetID); err != nil {
			log.Warn().Err(err).Str("event", rec.TargetID).Msg("View count bump failed")
		}
	}

	s.metrics.ActivityRecorded(ctx, string(rec.ActorRole))
	s.tasks.Enqueue(task{kind: taskRecomputeActor, actorID: rec.ActorID, role: rec.ActorRole})
	return nil
}

// RecordHotelActivity upserts a hotel's participation in an event and
// schedules its history embedding rebuild.
func (s *Service) RecordHotelActivity(ctx context.Context, rec *models.HotelActivityRecord) error {
	if err := s.activities.UpsertHotelActivity(ctx, rec); err != nil {
		return err
	}
	s.tasks.Enqueue(task{kind: taskRebuildHotelHistory, hotelID: rec.HotelID})
	return nil
}

// IndexEvent embeds an event and upserts it into the events namespace.
func (s *Service) IndexEvent(ctx context.Context, event *models.Event) error {
	vec, err := s.embedder.Embed(ctx, embedding.EventText(event))
	if err != nil {
		return fmt.Errorf("embed event %s: %w", event.ID, err)
	}
	payload := map[string]string{"country": event.Location.Country}
	if err := s.vectors.Upsert(ctx, vector.NamespaceEvents, event.ID, vec, payload); err != nil {
		return fmt.Errorf("index event %s: %w", event.ID, err)
	}
	return nil
}

// IndexHotel enriches and embeds a hotel and upserts it into the hotels
// namespace. The country payload backs the planner search hard filter.
func (s *Service) IndexHotel(ctx context.Context, hotel *models.Hotel) error {
	h := *hotel
	if s.enricher != nil {
		enriched := s.enricher.Enrich(ctx, []models.Hotel{h})
		h = enriched[0]
	}

	vec, err := s.embedder.Embed(ctx, embedding.HotelText(&h))
	if err != nil {
		return fmt.Errorf("embed hotel %s: %w", h.ID, err)
	}
	payload := map[string]string{"country": h.Location.Country}
	if err := s.vectors.Upsert(ctx, vector.NamespaceHotels, h.ID, vec, payload); err != nil {
		return fmt.Errorf("index hotel %s: %w", h.ID, err)
	}
	return nil
}

// RebuildHotelHistoryVector re-embeds a hotel's hosting history from its
// most recent activity records.
func (s *Service) RebuildHotelHistoryVector(ctx context.Context, hotelID string) error {
	hotel, err := s.catalog.GetHotel(ctx, hotelID)
	if err != nil {
		return err
	}
	records, err := s.activities.ListHotelActivities(ctx, hotelID, embedding.ActivityHistoryLimit)
	if err != nil {
		return err
	}

	vec, err := s.embedder.Embed(ctx, embedding.HotelActivityText(hotel, records))
	if err != nil {
		return fmt.Errorf("embed hotel history %s: %w", hotelID, err)
	}
	if err := s.vectors.Upsert(ctx, vector.NamespaceHotelActivities, hotelID, vec, nil); err != nil {
		return fmt.Errorf("index hotel history %s: %w", hotelID, err)
	}
	return nil
}

// RecomputeActorVector rebuilds a user's or planner's preference vector
// from their recent decayed activity. No usable signal leaves any
// existing vector untouched.
func (s *Service) RecomputeActorVector(ctx context.Context, actorID string, role models.ActorRole) error {
	records, err := s.activities.ListRecent(ctx, actorID, role, recomputeActivityLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	items := make([]embedding.WeightedVector, 0, len(records))
	for i := range records {
		rec := &records[i]
		ns, ok := targetNamespace(rec.TargetType)
		if !ok {
			continue
		}
		vec, err := s.vectors.Fetch(ctx, ns, rec.TargetID)
		if err != nil {
			// Targets without vectors (not yet indexed, deleted) are
			// silently skipped; the remaining signal still counts.
			continue
		}
		items = append(items, embedding.WeightedVector{Vector: vec, Weight: rec.EffectiveWeight(now)})
	}

	avg := embedding.WeightedAverage(items)
	if avg == nil {
		return nil
	}

	ns := vector.NamespaceUsers
	if role == models.RolePlanner {
		ns = vector.NamespacePlanners
	}
	if err := s.vectors.Upsert(ctx, ns, actorID, avg, nil); err != nil {
		return fmt.Errorf("upsert %s vector for %s: %w", role, actorID, err)
	}
	return nil
}

func targetNamespace(t models.EntityType) (string, bool) {
	switch t {
	case models.EntityEvent:
		return vector.NamespaceEvents, true
	case models.EntityHotel:
		return vector.NamespaceHotels, true
	default:
		// Proposals are not separately embedded; proposal signals only
		// shape the decayed weights of their hotel/event counterparts.
		return "", false
	}
}

// enrich applies the enricher when configured.
func (s *Service) enrich(ctx context.Context, hotels []models.Hotel) []models.Hotel {
	if s.enricher == nil {
		return hotels
	}
	return s.enricher.Enrich(ctx, hotels)
}

// facilityScores runs the facility scorer, defaulting to rule scores
// when no scorer is configured.
func (s *Service) facilityScores(ctx context.Context, event *models.Event, hotels []models.Hotel, groups []models.GuestGroup) *facility.ScoreSet {
	var scores *facility.ScoreSet
	if s.scorer == nil {
		scores = facility.BuildFallbackScores(hotels, event, groups)
	} else {
		scores = s.scorer.Score(ctx, event, hotels, groups)
	}
	if scores != nil && scores.Fallback {
		s.metrics.ScoringFallback(ctx)
	}
	return scores
}
