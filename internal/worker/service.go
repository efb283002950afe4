// Package worker provides the HTTP service for venuerank.
package worker

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/venuerank/internal/config"
	"github.com/thebtf/venuerank/internal/telemetry"
	"github.com/thebtf/venuerank/pkg/models"
)

// Service configuration constants
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRateLimit is the allowed requests per second per client.
	DefaultRateLimit = 50.0

	// DefaultRateBurst is the allowed request burst per client.
	DefaultRateBurst = 100
)

// Recommender is the slice of the recommendation engine the HTTP layer
// drives.
type Recommender interface {
	RecordActivity(ctx context.Context, rec *models.ActivityRecord) error
	RecordHotelActivity(ctx context.Context, rec *models.HotelActivityRecord) error
	IndexEvent(ctx context.Context, event *models.Event) error
	IndexHotel(ctx context.Context, hotel *models.Hotel) error
	GetUserRecommendations(ctx context.Context, userID string, limit int) (*models.UserRecommendations, error)
	GetHotelRecommendationsForEvent(ctx context.Context, eventID, plannerID string, limit int) ([]models.RecommendationResult, error)
	GetGroupRecommendations(ctx context.Context, eventID string) ([]models.GroupRecommendation, error)
	GetGuestRecommendations(ctx context.Context, eventID, guestEmail string) ([]models.RecommendationResult, error)
}

// CatalogWriter persists catalog entities arriving over HTTP.
type CatalogWriter interface {
	UpsertEvent(ctx context.Context, event *models.Event) error
	UpsertHotel(ctx context.Context, hotel *models.Hotel) error
	UpsertGroup(ctx context.Context, group *models.GuestGroup) error
}

// Pinger reports backing-store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service is the HTTP service orchestrator.
type Service struct {
	version string
	config  *config.Config

	recommender Recommender
	catalog     CatalogWriter
	db          Pinger
	metrics     *telemetry.Metrics

	router    *chi.Mux
	server    *http.Server
	startTime time.Time

	wg    sync.WaitGroup
	ready atomic.Bool

	served atomic.Int64
}

// NewService creates the HTTP service and wires its routes.
func NewService(version string, cfg *config.Config, recommender Recommender, catalog CatalogWriter, db Pinger) *Service {
	svc := &Service{
		version:     version,
		config:      cfg,
		recommender: recommender,
		catalog:     catalog,
		db:          db,
		router:      chi.NewRouter(),
		startTime:   time.Now(),
	}

	svc.setupMiddleware()
	svc.setupRoutes()
	svc.ready.Store(true)
	return svc
}

// SetMetrics attaches the optional telemetry counters.
func (s *Service) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

// setupMiddleware configures HTTP middleware.
func (s *Service) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(DefaultHTTPTimeout))
	s.router.Use(middleware.RealIP)
	s.router.Use(RateLimitMiddleware(NewPerClientRateLimiter(DefaultRateLimit, DefaultRateBurst)))
}

// setupRoutes configures HTTP routes.
func (s *Service) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/ready", s.handleReady)
	s.router.Get("/api/stats", s.handleStats)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireReady)

		// Catalog ingestion (upsert + reindex)
		r.Post("/api/events", s.handleUpsertEvent)
		r.Post("/api/hotels", s.handleUpsertHotel)
		r.Post("/api/groups", s.handleUpsertGroup)

		// Activity signals
		r.Post("/api/activities", s.handleRecordActivity)
		r.Post("/api/hotels/{id}/activities", s.handleRecordHotelActivity)

		// Recommendation surfaces
		r.Get("/api/recommendations/users/{id}", s.handleUserRecommendations)
		r.Get("/api/events/{id}/hotels", s.handlePlannerRecommendations)
		r.Get("/api/events/{id}/groups", s.handleGroupRecommendations)
		r.Get("/api/events/{id}/guests", s.handleGuestRecommendations)
	})
}

// Start starts the HTTP server.
func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	log.Info().
		Int("port", s.config.Port).
		Str("version", s.version).
		Msg("HTTP server started")
	return nil
}

// Shutdown gracefully shuts down the service.
func (s *Service) Shutdown(ctx context.Context) error {
	s.ready.Store(false)

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}

	s.wg.Wait()
	log.Info().Msg("HTTP service shutdown complete")
	return nil
}

// Router exposes the handler tree, used by tests.
func (s *Service) Router() http.Handler {
	return s.router
}

// requireReady is middleware that returns 503 if the service isn't ready.
func (s *Service) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}
