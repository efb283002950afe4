package maintenance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/thebtf/venuerank/internal/config"
	"github.com/thebtf/venuerank/pkg/models"
)

type fakeSweeper struct {
	swept int64
	err   error
}

func (f *fakeSweeper) SweepExpired(context.Context, time.Time) (int64, error) {
	return f.swept, f.err
}

type fakeHotelLister struct {
	hotels []models.Hotel
}

func (f *fakeHotelLister) ListActiveHotels(context.Context) ([]models.Hotel, error) {
	return f.hotels, nil
}

type fakeRebuilder struct {
	rebuilt []string
	failFor map[string]bool
}

func (f *fakeRebuilder) RebuildHotelHistoryVector(_ context.Context, hotelID string) error {
	if f.failFor[hotelID] {
		return fmt.Errorf("rebuild %s failed", hotelID)
	}
	f.rebuilt = append(f.rebuilt, hotelID)
	return nil
}

type MaintenanceSuite struct {
	suite.Suite
	sweeper   *fakeSweeper
	hotels    *fakeHotelLister
	rebuilder *fakeRebuilder
	service   *Service
}

func TestMaintenanceSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceSuite))
}

func (s *MaintenanceSuite) SetupTest() {
	s.sweeper = &fakeSweeper{}
	s.hotels = &fakeHotelLister{}
	s.rebuilder = &fakeRebuilder{failFor: make(map[string]bool)}

	cfg := config.Default()
	cfg.MaintenanceEnabled = true
	cfg.BatchDelayMillis = 0
	s.service = NewService(s.sweeper, s.hotels, s.rebuilder, cfg, zerolog.Nop())
}

// ===== GOOD SCENARIOS - Expected normal operations =====

func (s *MaintenanceSuite) TestRunSweepsAndRebuilds() {
	s.sweeper.swept = 7
	s.hotels.hotels = []models.Hotel{{ID: "h1"}, {ID: "h2"}}

	s.service.runMaintenance(context.Background())

	s.Equal([]string{"h1", "h2"}, s.rebuilder.rebuilt)
	stats := s.service.Stats()
	s.Equal(int64(7), stats["total_swept"])
	s.Equal(int64(2), stats["total_rebuilt"])
}

func (s *MaintenanceSuite) TestRebuildFailureSkipsHotel() {
	s.hotels.hotels = []models.Hotel{{ID: "h1"}, {ID: "h2"}, {ID: "h3"}}
	s.rebuilder.failFor["h2"] = true

	s.service.runMaintenance(context.Background())

	s.Equal([]string{"h1", "h3"}, s.rebuilder.rebuilt)
}

// ===== BAD SCENARIOS - Error conditions and edge cases =====

func (s *MaintenanceSuite) TestSweepErrorDoesNotBlockRebuild() {
	s.sweeper.err = fmt.Errorf("db down")
	s.hotels.hotels = []models.Hotel{{ID: "h1"}}

	s.service.runMaintenance(context.Background())

	s.Equal([]string{"h1"}, s.rebuilder.rebuilt)
}

func (s *MaintenanceSuite) TestDisabledSchedulerExitsImmediately() {
	cfg := config.Default()
	cfg.MaintenanceEnabled = false
	svc := NewService(s.sweeper, s.hotels, s.rebuilder, cfg, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		svc.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("scheduler did not exit when disabled")
	}
	s.Empty(s.rebuilder.rebuilt)
}
