package embedding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thebtf/venuerank/pkg/models"
)

// Canonical text templates for entity embeddings. Keeping these in one
// place guarantees that an unchanged entity always re-embeds to the same
// vector (and hits the content-hash cache).

// EventText renders the embedding input for an event.
func EventText(e *models.Event) string {
	eventType := e.Type
	if eventType == "" {
		eventType = "general"
	}
	description := e.Description
	if description == "" {
		description = "No description"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", e.Name)
	fmt.Fprintf(&b, "Type: %s\n", eventType)
	fmt.Fprintf(&b, "Description: %s\n", description)
	fmt.Fprintf(&b, "Location: %s, %s\n", e.Location.City, e.Location.Country)
	fmt.Fprintf(&b, "Budget: %.0f INR\n", e.Budget)
	fmt.Fprintf(&b, "Attendees: %d\n", e.ExpectedGuests)
	fmt.Fprintf(&b, "Event Category: %s", eventType)
	if !e.StartDate.IsZero() && !e.EndDate.IsZero() {
		fmt.Fprintf(&b, "\nDuration: %s to %s",
			e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"))
	}
	return b.String()
}

// HotelText renders the embedding input for a hotel. Enriched provider
// data, when present, takes precedence over locally entered fields.
func HotelText(h *models.Hotel) string {
	facilities := h.MergedFacilities()
	facilityLine := "Standard hotel amenities"
	if len(facilities) > 0 {
		facilityLine = strings.Join(facilities, ", ")
	}

	specialization := "All types of events"
	if len(h.Specialization) > 0 {
		specialization = strings.Join(h.Specialization, ", ")
	}

	description := h.EffectiveDescription()
	if description == "" {
		description = "Professional hotel services for events and gatherings"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hotel Name: %s\n", h.Name)
	fmt.Fprintf(&b, "Location: %s, %s\n", h.Location.City, h.Location.Country)
	fmt.Fprintf(&b, "Star Rating: %.1f out of 5\n", h.EffectiveRating())
	fmt.Fprintf(&b, "Capacity: %d rooms, can host %d guests\n", h.TotalRooms, h.TotalRooms*2)
	fmt.Fprintf(&b, "Event Specialization: %s\n", specialization)
	fmt.Fprintf(&b, "Price Range: %.0f to %.0f INR per room per night\n", h.PriceRange.Min, h.PriceRange.Max)
	fmt.Fprintf(&b, "Facilities & Amenities: %s\n", facilityLine)
	fmt.Fprintf(&b, "Description: %s", description)
	return b.String()
}

// Most recent activities considered for a hotel's history embedding, and
// how many of those get individual lines in the text.
const (
	ActivityHistoryLimit = 30
	historyDetailLimit   = 15
)

// HotelActivityText renders a hotel's hosting history as embedding input.
// Records are expected most recent first and capped at ActivityHistoryLimit
// by the caller. An empty history still yields a profile stub so the
// activity namespace stays populated.
func HotelActivityText(h *models.Hotel, records []models.HotelActivityRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("Hotel: %s | No event history yet", h.Name)
	}

	typeCounts := make(map[string]int)
	totalGuests := 0
	for _, r := range records {
		typeCounts[r.EventType]++
		totalGuests += r.GuestCount
	}

	types := make([]string, 0, len(typeCounts))
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if typeCounts[types[i]] != typeCounts[types[j]] {
			return typeCounts[types[i]] > typeCounts[types[j]]
		}
		return types[i] < types[j]
	})
	dominant := make([]string, len(types))
	for i, t := range types {
		dominant[i] = fmt.Sprintf("%s (%dx)", t, typeCounts[t])
	}

	avgScale := totalGuests / len(records)

	detail := records
	if len(detail) > historyDetailLimit {
		detail = detail[:historyDetailLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hotel: %s in %s\n", h.Name, h.Location.City)
	b.WriteString("Event History (most recent first):\n")
	for i, r := range detail {
		eventType := r.EventType
		if eventType == "" {
			eventType = "general"
		}
		fmt.Fprintf(&b, "%d. %s - Type: %s - %d guests - %s - %s\n",
			i+1, r.EventName, eventType, r.GuestCount, r.EventLocation.City, r.Outcome)
	}
	fmt.Fprintf(&b, "Event Type Expertise: %s\n", strings.Join(dominant, ", "))
	fmt.Fprintf(&b, "Total Events Hosted: %d\n", len(records))
	fmt.Fprintf(&b, "Average Event Scale: %d guests", avgScale)
	return b.String()
}
