// Package maintenance provides scheduled maintenance tasks for venuerank.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/thebtf/venuerank/internal/config"
	"github.com/thebtf/venuerank/pkg/models"
)

// ActivitySweeper deletes activity records past their retention window.
type ActivitySweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// HotelLister enumerates the hotels whose history vectors need upkeep.
type HotelLister interface {
	ListActiveHotels(ctx context.Context) ([]models.Hotel, error)
}

// HistoryRebuilder re-embeds one hotel's hosting history.
type HistoryRebuilder interface {
	RebuildHotelHistoryVector(ctx context.Context, hotelID string) error
}

// Service handles scheduled maintenance tasks.
type Service struct {
	log             zerolog.Logger
	sweeper         ActivitySweeper
	hotels          HotelLister
	rebuilder       HistoryRebuilder
	config          *config.Config
	stopCh          chan struct{}
	doneCh          chan struct{}
	lastRunTime     time.Time
	lastRunDuration time.Duration
	totalSwept      int64
	totalRebuilt    int64
	mu              sync.Mutex
	running         bool
}

// NewService creates a new maintenance service.
func NewService(sweeper ActivitySweeper, hotels HotelLister, rebuilder HistoryRebuilder, cfg *config.Config, log zerolog.Logger) *Service {
	return &Service{
		sweeper:   sweeper,
		hotels:    hotels,
		rebuilder: rebuilder,
		config:    cfg,
		log:       log.With().Str("component", "maintenance").Logger(),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the maintenance loop.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(s.doneCh)
	}()

	if !s.config.MaintenanceEnabled {
		s.log.Info().Msg("Maintenance disabled, not starting scheduler")
		return
	}

	interval := max(time.Duration(s.config.MaintenanceIntervalHours)*time.Hour, time.Hour)

	s.log.Info().
		Dur("interval", interval).
		Msg("Starting maintenance scheduler")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Maintenance shutting down due to context cancellation")
			return
		case <-s.stopCh:
			s.log.Info().Msg("Maintenance shutting down due to stop signal")
			return
		case <-ticker.C:
			s.runMaintenance(ctx)
		}
	}
}

// Stop signals the maintenance service to stop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopCh)
}

// Wait waits for the maintenance service to finish.
func (s *Service) Wait() {
	<-s.doneCh
}

// runMaintenance executes all maintenance tasks.
func (s *Service) runMaintenance(ctx context.Context) {
	start := time.Now()
	s.log.Info().Msg("Starting maintenance run")

	// Task 1: Sweep activity records past retention
	swept, err := s.sweeper.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to sweep expired activities")
	} else if swept > 0 {
		s.log.Info().Int64("swept", swept).Msg("Swept expired activities")
	}

	// Task 2: Refresh hotel history vectors
	rebuilt, err := s.refreshHotelHistories(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to refresh hotel history vectors")
	} else if rebuilt > 0 {
		s.log.Info().Int64("rebuilt", rebuilt).Msg("Refreshed hotel history vectors")
	}

	s.mu.Lock()
	s.lastRunTime = time.Now()
	s.lastRunDuration = time.Since(start)
	s.totalSwept += swept
	s.totalRebuilt += rebuilt
	s.mu.Unlock()

	s.log.Info().
		Dur("duration", time.Since(start)).
		Int64("swept", swept).
		Int64("rebuilt", rebuilt).
		Msg("Maintenance run completed")
}

// refreshHotelHistories re-embeds every active hotel's hosting history,
// pacing calls so the embedding provider is not hammered.
func (s *Service) refreshHotelHistories(ctx context.Context) (int64, error) {
	hotels, err := s.hotels.ListActiveHotels(ctx)
	if err != nil {
		return 0, err
	}

	delay := time.Duration(s.config.BatchDelayMillis) * time.Millisecond
	var rebuilt int64
	for i := range hotels {
		if ctx.Err() != nil {
			return rebuilt, ctx.Err()
		}
		if err := s.rebuilder.RebuildHotelHistoryVector(ctx, hotels[i].ID); err != nil {
			s.log.Warn().Err(err).Str("hotel", hotels[i].ID).Msg("History vector rebuild failed")
			continue
		}
		rebuilt++

		if delay > 0 && i < len(hotels)-1 {
			select {
			case <-ctx.Done():
				return rebuilt, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return rebuilt, nil
}

// Stats returns maintenance statistics.
func (s *Service) Stats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":          s.config.MaintenanceEnabled,
		"interval_hours":   s.config.MaintenanceIntervalHours,
		"last_run":         s.lastRunTime,
		"last_duration_ms": s.lastRunDuration.Milliseconds(),
		"total_swept":      s.totalSwept,
		"total_rebuilt":    s.totalRebuilt,
		"running":          s.running,
	}
}

// RunNow triggers an immediate maintenance run.
func (s *Service) RunNow(ctx context.Context) {
	go s.runMaintenance(ctx)
}
