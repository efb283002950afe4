package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/thebtf/venuerank/internal/scoring"
	"github.com/thebtf/venuerank/internal/vector"
	"github.com/thebtf/venuerank/pkg/models"
)

// Both guest-facing lists show at most the three best hotels.
const (
	groupResultCap = 3
	guestResultCap = 3
)

// ErrNoSelectedHotels means the planner has not shortlisted hotels for
// the event yet. Group and guest rankings only cover the shortlist, so
// callers should treat this as missing caller state, not a server fault.
var ErrNoSelectedHotels = errors.New("event has no selected hotels")

// GetGroupRecommendations ranks the planner's selected hotels for each
// guest group of an event. One facility-scoring pass covers every group
// so the LLM is consulted at most once per call.
func (s *Service) GetGroupRecommendations(ctx context.Context, eventID string) ([]models.GroupRecommendation, error) {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(event.SelectedHotelIDs) == 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNoSelectedHotels)
	}

	groups, err := s.catalog.GroupsForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
	}

	hotels, err := s.catalog.ListHotelsByIDs(ctx, event.SelectedHotelIDs)
	if err != nil {
		return nil, err
	}
	if len(hotels) == 0 {
		return nil, fmt.Errorf("no hotels found for event %s selection", eventID)
	}

	hotels = s.enrich(ctx, hotels)
	scores := s.facilityScores(ctx, event, hotels, groups)
	eventVec := s.eventVector(ctx, eventID)
	activityVecs := s.fetchActivityVectors(ctx, hotels)

	recommendations := make([]models.GroupRecommendation, 0, len(groups))
	for gi := range groups {
		group := &groups[gi]

		ranked := make([]models.RecommendationResult, 0, len(hotels))
		for hi := range hotels {
			hotel := &hotels[hi]

			facilityScore, ok := scores.GroupScore(group.ID, hotel.ID)
			breakdown := models.ScoreBreakdown{
				FacilityFit:     scoring.FacilityComponent(facilityScore, ok),
				ActivityHistory: scoring.ActivityComponent(eventVec, activityVecs[hotel.ID]),
				Capacity:        scoring.CapacityComponent(hotel.TotalRooms, group.MemberCount()),
				Location:        scoring.LocationComponent(hotel.Location.City, event.Location.City, scoring.GroupRanking),
			}

			ranked = append(ranked, models.RecommendationResult{
				HotelID:   hotel.ID,
				EventID:   event.ID,
				Name:      hotel.Name,
				Score:     scoring.Blend(scoring.GroupRanking, breakdown),
				Breakdown: breakdown,
				Reasons:   topReasons(facilityScore.Reasons, 2),
				Hotel:     hotel,
			})
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
		if len(ranked) > groupResultCap {
			ranked = ranked[:groupResultCap]
		}

		recommendations = append(recommendations, models.GroupRecommendation{
			GroupID:   group.ID,
			GroupName: group.Name,
			GroupType: models.ClassifyGroup(group.RelationshipType, group.Name),
			Hotels:    ranked,
		})
	}
	return recommendations, nil
}

// GetGuestRecommendations personalizes the selected hotels for one
// invited guest, folding in their past stays and amenity preferences.
func (s *Service) GetGuestRecommendations(ctx context.Context, eventID, guestEmail string) ([]models.RecommendationResult, error) {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(event.SelectedHotelIDs) == 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNoSelectedHotels)
	}

	hotels, err := s.catalog.ListHotelsByIDs(ctx, event.SelectedHotelIDs)
	if err != nil {
		return nil, err
	}
	if len(hotels) == 0 {
		return nil, nil
	}

	hotels = s.enrich(ctx, hotels)
	scores := s.facilityScores(ctx, event, hotels, nil)
	eventVec := s.eventVector(ctx, eventID)
	activityVecs := s.fetchActivityVectors(ctx, hotels)

	bookings, err := s.catalog.BookingsForGuest(ctx, guestEmail)
	if err != nil {
		// Booking history is a bonus signal, not a prerequisite.
		bookings = nil
	}
	stays := previousStays(bookings)

	results := make([]models.RecommendationResult, 0, len(hotels))
	for i := range hotels {
		hotel := &hotels[i]

		facilityScore, ok := scores.EventScore(hotel.ID)
		facilityComp := scoring.FacilityComponent(facilityScore, ok)
		activityComp := scoring.ActivityComponent(eventVec, activityVecs[hotel.ID])

		stayCount := stays[strings.ToLower(hotel.Name)]
		matches := scoring.AmenityMatches(hotel.MergedFacilities())

		score, breakdown := scoring.GuestScore(facilityComp, activityComp, stayCount, matches)

		reasons := topReasons(facilityScore.Reasons, 2)
		if stayCount > 0 {
			reasons = append(reasons, fmt.Sprintf("You've stayed here %d time(s) before", stayCount))
		}
		if matches > 2 {
			reasons = append(reasons, fmt.Sprintf("%d preferred amenities available", matches))
		}

		results = append(results, models.RecommendationResult{
			HotelID:   hotel.ID,
			EventID:   event.ID,
			Name:      hotel.Name,
			Score:     score,
			Breakdown: breakdown,
			Reasons:   reasons,
			Hotel:     hotel,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > guestResultCap {
		results = results[:guestResultCap]
	}
	return results, nil
}

// eventVector fetches the event embedding, tolerating its absence.
func (s *Service) eventVector(ctx context.Context, eventID string) []float32 {
	vec, err := s.vectors.Fetch(ctx, vector.NamespaceEvents, eventID)
	if err != nil {
		return nil
	}
	return vec
}

// previousStays counts completed or confirmed bookings per lowercase
// hotel name.
func previousStays(bookings []models.Booking) map[string]int {
	counts := make(map[string]int, len(bookings))
	for _, b := range bookings {
		if b.Status != "completed" && b.Status != "confirmed" {
			continue
		}
		counts[strings.ToLower(b.HotelName)]++
	}
	return counts
}
