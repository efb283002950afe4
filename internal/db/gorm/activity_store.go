// Package gorm provides GORM-based database operations for venuerank.
package gorm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thebtf/venuerank/pkg/models"
)

// ActivityStore persists user, planner, and hotel activity signals.
type ActivityStore struct {
	db *gorm.DB
}

// NewActivityStore creates a new activity store.
func NewActivityStore(store *Store) *ActivityStore {
	return &ActivityStore{db: store.DB}
}

// Record persists one activity. A missing ID gets a fresh UUID; a missing
// timestamp is stamped by the BeforeCreate hook.
func (s *ActivityStore) Record(ctx context.Context, rec *models.ActivityRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := activityRowFromModel(rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	rec.Timestamp = row.Timestamp
	return nil
}

// ListRecent returns an actor's activities within the role's retention
// window, most recent first, capped at limit. Expired rows are excluded
// even if the sweep has not yet deleted them.
func (s *ActivityStore) ListRecent(ctx context.Context, actorID string, role models.ActorRole, limit int) ([]models.ActivityRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	cutoff := time.Now().UTC().Add(-models.Retention(role))

	var rows []ActivityRow
	err := s.db.WithContext(ctx).
		Where("actor_id = ? AND actor_role = ? AND timestamp >= ?", actorID, string(role), cutoff).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list activities for %s: %w", actorID, err)
	}

	records := make([]models.ActivityRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toModel()
	}
	return records, nil
}

// SweepExpired hard-deletes activities older than their role's retention.
// Returns the number of rows removed.
func (s *ActivityStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for _, role := range []models.ActorRole{models.RoleUser, models.RolePlanner} {
		cutoff := now.Add(-models.Retention(role))
		res := s.db.WithContext(ctx).
			Where("actor_role = ? AND timestamp < ?", string(role), cutoff).
			Delete(&ActivityRow{})
		if res.Error != nil {
			return total, fmt.Errorf("sweep %s activities: %w", role, res.Error)
		}
		total += res.RowsAffected
	}
	if total > 0 {
		log.Debug().Int64("deleted", total).Msg("Expired activities swept")
	}
	return total, nil
}

// UpsertHotelActivity records a hotel's participation in an event. The
// hotel/event pair is unique; re-recording updates the outcome and scale.
func (s *ActivityStore) UpsertHotelActivity(ctx context.Context, rec *models.HotelActivityRecord) error {
	if rec.EventDate.IsZero() {
		rec.EventDate = time.Now().UTC()
	}
	if rec.EventScale == "" {
		rec.EventScale = models.ScaleForGuests(rec.GuestCount)
	}

	row := hotelActivityRowFromModel(rec)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "hotel_id"}, {Name: "event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"event_name", "event_type", "event_scale", "guest_count",
				"location_city", "event_date", "outcome",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert hotel activity %s/%s: %w", rec.HotelID, rec.EventID, err)
	}
	return nil
}

// ListHotelActivities returns a hotel's hosted events, most recent first.
func (s *ActivityStore) ListHotelActivities(ctx context.Context, hotelID string, limit int) ([]models.HotelActivityRecord, error) {
	if limit <= 0 {
		limit = 30
	}

	var rows []HotelActivityRow
	err := s.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("event_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list hotel activities for %s: %w", hotelID, err)
	}

	records := make([]models.HotelActivityRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toModel()
	}
	return records, nil
}
