package models

import (
	"strings"
	"time"
)

// Location is a city/country pair used for location-fit scoring.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// PriceRange is a per-room-per-night price band.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Average returns the midpoint of the range, or Min when Max is unset.
func (p PriceRange) Average() float64 {
	if p.Min <= 0 {
		return 0
	}
	max := p.Max
	if max <= 0 {
		max = p.Min
	}
	return (p.Min + max) / 2
}

// Hotel is a candidate venue. Provider* fields are populated by the
// enrichment adapter when the hotel is externally sourced; Enriched marks
// that the merge happened so downstream scoring prefers provider data.
type Hotel struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Location       Location   `json:"location"`
	Facilities     []string   `json:"facilities"`
	Description    string     `json:"description"`
	Rating         float64    `json:"rating"`
	TotalRooms     int        `json:"total_rooms"`
	PriceRange     PriceRange `json:"price_range"`
	Specialization []string   `json:"specialization"`
	Source         string     `json:"source"`        // "local" or "provider"
	ProviderCode   string     `json:"provider_code"` // inventory provider hotel code
	Active         bool       `json:"active"`

	// Enrichment results (not persisted locally).
	Enriched            bool     `json:"enriched,omitempty"`
	ProviderFacilities  []string `json:"provider_facilities,omitempty"`
	ProviderDescription string   `json:"provider_description,omitempty"`
	ProviderRating      float64  `json:"provider_rating,omitempty"`
	ProviderImages      []string `json:"provider_images,omitempty"`
}

// EffectiveRating prefers the provider rating once enriched.
func (h *Hotel) EffectiveRating() float64 {
	if h.Enriched && h.ProviderRating > 0 {
		return h.ProviderRating
	}
	return h.Rating
}

// MergedFacilities returns the lowercase union of provider and local
// facilities, provider entries first, duplicates removed. Unenriched
// hotels get their local list unchanged except for casing.
func (h *Hotel) MergedFacilities() []string {
	seen := make(map[string]struct{}, len(h.ProviderFacilities)+len(h.Facilities))
	merged := make([]string, 0, len(h.ProviderFacilities)+len(h.Facilities))
	add := func(list []string) {
		for _, f := range list {
			f = strings.ToLower(strings.TrimSpace(f))
			if f == "" {
				continue
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			merged = append(merged, f)
		}
	}
	if h.Enriched {
		add(h.ProviderFacilities)
	}
	add(h.Facilities)
	return merged
}

// EffectiveDescription prefers the provider description once enriched.
func (h *Hotel) EffectiveDescription() string {
	if h.Enriched && h.ProviderDescription != "" {
		return h.ProviderDescription
	}
	return h.Description
}

// Event is the thing being planned.
type Event struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"` // conference, wedding, corporate, ...
	Description    string    `json:"description"`
	Location       Location  `json:"location"`
	Budget         float64   `json:"budget"`
	ExpectedGuests int       `json:"expected_guests"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"` // active, completed, cancelled
	IsPrivate      bool      `json:"is_private"`
	PopularityScore float64  `json:"popularity_score"`
	ViewCount       int      `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`

	// Planner selections consumed by group ranking (3-6 hotels).
	SelectedHotelIDs []string `json:"selected_hotel_ids,omitempty"`
	PreferredHotels  []string `json:"preferred_hotels,omitempty"`
	RequiredRooms    int      `json:"required_rooms,omitempty"`
}

// GuestGroup is a cluster of invited guests sharing accommodation needs.
type GuestGroup struct {
	ID               string        `json:"id"`
	EventID          string        `json:"event_id"`
	Name             string        `json:"name"`
	RelationshipType string        `json:"relationship_type"` // explicit classification, may be "manual"
	Size             int           `json:"size"`
	Description      string        `json:"description"`
	Members          []GroupMember `json:"members,omitempty"`
}

// MemberCount returns the declared size, falling back to the member list.
func (g *GuestGroup) MemberCount() int {
	if g.Size > 0 {
		return g.Size
	}
	return len(g.Members)
}

// GroupMember is one invited guest.
type GroupMember struct {
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
}

// Booking is a guest's past stay, consumed read-only for personal-history
// bonuses.
type Booking struct {
	ID            string    `json:"id"`
	GuestEmail    string    `json:"guest_email"`
	HotelName     string    `json:"hotel_name"`
	PricePerNight float64   `json:"price_per_night"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventScale buckets an event by guest count for history aggregation.
type EventScale string

const (
	ScaleSmall  EventScale = "small"  // < 100 guests
	ScaleMedium EventScale = "medium" // 100-500 guests
	ScaleLarge  EventScale = "large"  // > 500 guests
)

// ScaleForGuests buckets a guest count.
func ScaleForGuests(guests int) EventScale {
	switch {
	case guests > 500:
		return ScaleLarge
	case guests >= 100:
		return ScaleMedium
	default:
		return ScaleSmall
	}
}

// ActivityOutcome is the lifecycle state of a hosted event.
type ActivityOutcome string

const (
	OutcomeSelected  ActivityOutcome = "selected"
	OutcomeOngoing   ActivityOutcome = "ongoing"
	OutcomeCompleted ActivityOutcome = "completed"
	OutcomeCancelled ActivityOutcome = "cancelled"
)

// HotelActivityRecord captures one event a hotel participated in,
// denormalized so the history embedding can be built without joins.
// Unique per (HotelID, EventID).
type HotelActivityRecord struct {
	HotelID       string          `json:"hotel_id"`
	EventID       string          `json:"event_id"`
	EventName     string          `json:"event_name"`
	EventType     string          `json:"event_type"`
	EventScale    EventScale      `json:"event_scale"`
	GuestCount    int             `json:"guest_count"`
	EventLocation Location        `json:"event_location"`
	EventDate     time.Time       `json:"event_date"`
	Outcome       ActivityOutcome `json:"outcome"`
}
