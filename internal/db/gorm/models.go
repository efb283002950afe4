// Package gorm provides GORM-based database operations for venuerank.
package gorm

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/thebtf/venuerank/pkg/models"
)

// GORM Models
//
// Rows mirror the pkg/models domain types; toModel/fromModel helpers keep
// the mapping in one place so handlers and services only see domain types.

// ActivityRow is one recorded user or planner action.
type ActivityRow struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	ActorID     string    `gorm:"index:idx_activities_actor,priority:1;not null"`
	ActorRole   string    `gorm:"index:idx_activities_actor,priority:2;not null"`
	Action      string    `gorm:"not null"`
	TargetID    string    `gorm:"index;not null"`
	TargetType  string    `gorm:"not null"`
	Weight      float64   `gorm:"not null"`
	SearchQuery string    `gorm:"type:text"`
	Timestamp   time.Time `gorm:"index:idx_activities_ts,sort:desc;not null"`
}

func (ActivityRow) TableName() string { return "activities" }

// BeforeCreate stamps the activity time when the caller left it unset.
func (a *ActivityRow) BeforeCreate(tx *gorm.DB) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}

func (a *ActivityRow) toModel() models.ActivityRecord {
	return models.ActivityRecord{
		ID:          a.ID,
		ActorID:     a.ActorID,
		ActorRole:   models.ActorRole(a.ActorRole),
		Action:      models.ActionType(a.Action),
		TargetID:    a.TargetID,
		TargetType:  models.EntityType(a.TargetType),
		Weight:      a.Weight,
		SearchQuery: a.SearchQuery,
		Timestamp:   a.Timestamp,
	}
}

func activityRowFromModel(r *models.ActivityRecord) ActivityRow {
	return ActivityRow{
		ID:          r.ID,
		ActorID:     r.ActorID,
		ActorRole:   string(r.ActorRole),
		Action:      string(r.Action),
		TargetID:    r.TargetID,
		TargetType:  string(r.TargetType),
		Weight:      r.Weight,
		SearchQuery: r.SearchQuery,
		Timestamp:   r.Timestamp,
	}
}

// HotelActivityRow is one hosted event in a hotel's history, unique per
// hotel/event pair.
type HotelActivityRow struct {
	HotelID      string    `gorm:"primaryKey"`
	EventID      string    `gorm:"primaryKey"`
	EventName    string    `gorm:"not null"`
	EventType    string    `gorm:"index"`
	EventScale   string    `gorm:"not null"`
	GuestCount   int       `gorm:"not null"`
	LocationCity string    ``
	EventDate    time.Time `gorm:"index:idx_hotel_activities_date,sort:desc"`
	Outcome      string    `gorm:"not null"`
}

func (HotelActivityRow) TableName() string { return "hotel_activities" }

func (h *HotelActivityRow) toModel() models.HotelActivityRecord {
	return models.HotelActivityRecord{
		HotelID:       h.HotelID,
		EventID:       h.EventID,
		EventName:     h.EventName,
		EventType:     h.EventType,
		EventScale:    models.EventScale(h.EventScale),
		GuestCount:    h.GuestCount,
		EventLocation: models.Location{City: h.LocationCity},
		EventDate:     h.EventDate,
		Outcome:       models.ActivityOutcome(h.Outcome),
	}
}

func hotelActivityRowFromModel(r *models.HotelActivityRecord) HotelActivityRow {
	return HotelActivityRow{
		HotelID:      r.HotelID,
		EventID:      r.EventID,
		EventName:    r.EventName,
		EventType:    r.EventType,
		EventScale:   string(r.EventScale),
		GuestCount:   r.GuestCount,
		LocationCity: r.EventLocation.City,
		EventDate:    r.EventDate,
		Outcome:      string(r.Outcome),
	}
}

// HotelRow is a candidate venue.
type HotelRow struct {
	ID              string                 `gorm:"primaryKey;type:uuid"`
	Name            string                 `gorm:"not null"`
	City            string                 `gorm:"index"`
	Country         string                 `gorm:"index"`
	Facilities      models.JSONStringArray `gorm:"type:jsonb"`
	Description     string                 `gorm:"type:text"`
	Rating          float64                ``
	TotalRooms      int                    ``
	PriceMin        float64                ``
	PriceMax        float64                ``
	Specialization  models.JSONStringArray `gorm:"type:jsonb"`
	Source          string                 `gorm:"default:'local'"`
	ProviderCode    string                 `gorm:"index"`
	Active          bool                   `gorm:"default:true;index"`
}

func (HotelRow) TableName() string { return "hotels" }

func (h *HotelRow) toModel() models.Hotel {
	return models.Hotel{
		ID:             h.ID,
		Name:           h.Name,
		Location:       models.Location{City: h.City, Country: h.Country},
		Facilities:     h.Facilities,
		Description:    h.Description,
		Rating:         h.Rating,
		TotalRooms:     h.TotalRooms,
		PriceRange:     models.PriceRange{Min: h.PriceMin, Max: h.PriceMax},
		Specialization: h.Specialization,
		Source:         h.Source,
		ProviderCode:   h.ProviderCode,
		Active:         h.Active,
	}
}

func hotelRowFromModel(h *models.Hotel) HotelRow {
	return HotelRow{
		ID:             h.ID,
		Name:           h.Name,
		City:           h.Location.City,
		Country:        h.Location.Country,
		Facilities:     h.Facilities,
		Description:    h.Description,
		Rating:         h.Rating,
		TotalRooms:     h.TotalRooms,
		PriceMin:       h.PriceRange.Min,
		PriceMax:       h.PriceRange.Max,
		Specialization: h.Specialization,
		Source:         h.Source,
		ProviderCode:   h.ProviderCode,
		Active:         h.Active,
	}
}

// EventRow is a planned event.
type EventRow struct {
	ID               string                 `gorm:"primaryKey;type:uuid"`
	Name             string                 `gorm:"not null"`
	Type             string                 `gorm:"index"`
	Description      string                 `gorm:"type:text"`
	City             string                 ``
	Country          string                 `gorm:"index"`
	Budget           float64                ``
	ExpectedGuests   int                    ``
	StartDate        time.Time              ``
	EndDate          time.Time              ``
	Status           string                 `gorm:"default:'active';index"`
	IsPrivate        bool                   `gorm:"default:false;index"`
	PopularityScore  float64                `gorm:"index:idx_events_popularity,sort:desc"`
	ViewCount        int                    ``
	CreatedAt        time.Time              ``
	SelectedHotelIDs models.JSONStringArray `gorm:"type:jsonb"`
	PreferredHotels  models.JSONStringArray `gorm:"type:jsonb"`
	RequiredRooms    int                    ``
}

func (EventRow) TableName() string { return "events" }

func (e *EventRow) toModel() models.Event {
	return models.Event{
		ID:               e.ID,
		Name:             e.Name,
		Type:             e.Type,
		Description:      e.Description,
		Location:         models.Location{City: e.City, Country: e.Country},
		Budget:           e.Budget,
		ExpectedGuests:   e.ExpectedGuests,
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		Status:           e.Status,
		IsPrivate:        e.IsPrivate,
		PopularityScore:  e.PopularityScore,
		ViewCount:        e.ViewCount,
		CreatedAt:        e.CreatedAt,
		SelectedHotelIDs: e.SelectedHotelIDs,
		PreferredHotels:  e.PreferredHotels,
		RequiredRooms:    e.RequiredRooms,
	}
}

func eventRowFromModel(e *models.Event) EventRow {
	return EventRow{
		ID:               e.ID,
		Name:             e.Name,
		Type:             e.Type,
		Description:      e.Description,
		City:             e.Location.City,
		Country:          e.Location.Country,
		Budget:           e.Budget,
		ExpectedGuests:   e.ExpectedGuests,
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		Status:           e.Status,
		IsPrivate:        e.IsPrivate,
		PopularityScore:  e.PopularityScore,
		ViewCount:        e.ViewCount,
		CreatedAt:        e.CreatedAt,
		SelectedHotelIDs: e.SelectedHotelIDs,
		PreferredHotels:  e.PreferredHotels,
		RequiredRooms:    e.RequiredRooms,
	}
}

// GroupRow is a guest group attached to an event.
type GroupRow struct {
	ID               string `gorm:"primaryKey;type:uuid"`
	EventID          string `gorm:"index;not null"`
	Name             string `gorm:"not null"`
	RelationshipType string ``
	Size             int    ``
	Description      string `gorm:"type:text"`
	Members          []byte `gorm:"type:jsonb"`
}

func (GroupRow) TableName() string { return "guest_groups" }

func (g *GroupRow) toModel() (models.GuestGroup, error) {
	group := models.GuestGroup{
		ID:               g.ID,
		EventID:          g.EventID,
		Name:             g.Name,
		RelationshipType: g.RelationshipType,
		Size:             g.Size,
		Description:      g.Description,
	}
	if len(g.Members) > 0 {
		if err := json.Unmarshal(g.Members, &group.Members); err != nil {
			return group, fmt.Errorf("unmarshal members for group %s: %w", g.ID, err)
		}
	}
	return group, nil
}

func groupRowFromModel(g *models.GuestGroup) (GroupRow, error) {
	row := GroupRow{
		ID:               g.ID,
		EventID:          g.EventID,
		Name:             g.Name,
		RelationshipType: g.RelationshipType,
		Size:             g.Size,
		Description:      g.Description,
	}
	if len(g.Members) > 0 {
		members, err := json.Marshal(g.Members)
		if err != nil {
			return row, fmt.Errorf("marshal members for group %s: %w", g.ID, err)
		}
		row.Members = members
	}
	return row, nil
}

// BookingRow is a guest's past stay.
type BookingRow struct {
	ID            string    `gorm:"primaryKey;type:uuid"`
	GuestEmail    string    `gorm:"index;not null"`
	HotelName     string    `gorm:"not null"`
	PricePerNight float64   ``
	Status        string    `gorm:"index"`
	CreatedAt     time.Time ``
}

func (BookingRow) TableName() string { return "bookings" }

func (b *BookingRow) toModel() models.Booking {
	return models.Booking{
		ID:            b.ID,
		GuestEmail:    b.GuestEmail,
		HotelName:     b.HotelName,
		PricePerNight: b.PricePerNight,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
}
