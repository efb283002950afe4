// Package gorm provides GORM-based database operations for venuerank.
package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thebtf/venuerank/pkg/models"
)

// ErrNotFound is returned when a catalog entity does not exist.
var ErrNotFound = errors.New("not found")

// CatalogStore provides read/write access to events, hotels, groups, and
// bookings.
type CatalogStore struct {
	db *gorm.DB
}

// NewCatalogStore creates a new catalog store.
func NewCatalogStore(store *Store) *CatalogStore {
	return &CatalogStore{db: store.DB}
}

// GetEvent returns one event by ID.
func (s *CatalogStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var row EventRow
	if err := s.db.WithContext(ctx).Take(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	event := row.toModel()
	return &event, nil
}

// ListEventsByIDs returns the events that exist among the given IDs,
// preserving no particular order.
func (s *CatalogStore) ListEventsByIDs(ctx context.Context, ids []string) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []EventRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]models.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toModel()
	}
	return events, nil
}

// TrendingEvents returns public active events ranked by popularity, then
// views, then recency.
func (s *CatalogStore) TrendingEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []EventRow
	err := s.db.WithContext(ctx).
		Where("is_private = ? AND status = ?", false, "active").
		Order("popularity_score DESC").
		Order("view_count DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("trending events: %w", err)
	}
	events := make([]models.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toModel()
	}
	return events, nil
}

// UpsertEvent creates or replaces an event. A missing ID gets a UUID.
func (s *CatalogStore) UpsertEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	row := eventRowFromModel(event)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", event.ID, err)
	}
	return nil
}

// IncrementEventViews bumps an event's view counter.
func (s *CatalogStore) IncrementEventViews(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&EventRow{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// GetHotel returns one hotel by ID.
func (s *CatalogStore) GetHotel(ctx context.Context, id string) (*models.Hotel, error) {
	var row HotelRow
	if err := s.db.WithContext(ctx).Take(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("hotel %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get hotel %s: %w", id, err)
	}
	hotel := row.toModel()
	return &hotel, nil
}

// ListActiveHotels returns all active hotels.
func (s *CatalogStore) ListActiveHotels(ctx context.Context) ([]models.Hotel, error) {
	var rows []HotelRow
	if err := s.db.WithContext(ctx).Where("active = ?", true).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list active hotels: %w", err)
	}
	hotels := make([]models.Hotel, len(rows))
	for i := range rows {
		hotels[i] = rows[i].toModel()
	}
	return hotels, nil
}

// ListHotelsByIDs returns the hotels that exist among the given IDs.
func (s *CatalogStore) ListHotelsByIDs(ctx context.Context, ids []string) ([]models.Hotel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []HotelRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	hotels := make([]models.Hotel, len(rows))
	for i := range rows {
		hotels[i] = rows[i].toModel()
	}
	return hotels, nil
}

// UpsertHotel creates or replaces a hotel. A missing ID gets a UUID.
func (s *CatalogStore) UpsertHotel(ctx context.Context, hotel *models.Hotel) error {
	if hotel.ID == "" {
		hotel.ID = uuid.NewString()
	}
	row := hotelRowFromModel(hotel)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert hotel %s: %w", hotel.ID, err)
	}
	return nil
}

// GetGroup returns one guest group by ID.
func (s *CatalogStore) GetGroup(ctx context.Context, id string) (*models.GuestGroup, error) {
	var row GroupRow
	if err := s.db.WithContext(ctx).Take(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get group %s: %w", id, err)
	}
	group, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GroupsForEvent returns all guest groups attached to an event.
func (s *CatalogStore) GroupsForEvent(ctx context.Context, eventID string) ([]models.GuestGroup, error) {
	var rows []GroupRow
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list groups for event %s: %w", eventID, err)
	}
	groups := make([]models.GuestGroup, 0, len(rows))
	for i := range rows {
		group, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// UpsertGroup creates or replaces a guest group. A missing ID gets a UUID.
func (s *CatalogStore) UpsertGroup(ctx context.Context, group *models.GuestGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	row, err := groupRowFromModel(group)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert group %s: %w", group.ID, err)
	}
	return nil
}

// BookingsForGuest returns a guest's past stays by email.
func (s *CatalogStore) BookingsForGuest(ctx context.Context, email string) ([]models.Booking, error) {
	var rows []BookingRow
	err := s.db.WithContext(ctx).
		Where("guest_email = ?", email).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s: %w", email, err)
	}
	bookings := make([]models.Booking, len(rows))
	for i := range rows {
		bookings[i] = rows[i].toModel()
	}
	return bookings, nil
}
