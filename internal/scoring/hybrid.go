// Package scoring blends pre-normalized [0,100] signals into final
// recommendation scores. All functions are pure; signal gathering lives
// in the recommend service.
package scoring

import (
	"math"
	"strings"

	"github.com/thebtf/venuerank/internal/embedding"
	"github.com/thebtf/venuerank/pkg/models"
)

// Context selects the weight vector for a hybrid blend.
type Context int

const (
	// PlannerSearch weighs event-level facility fit and hosting history
	// for a planner browsing candidate hotels.
	PlannerSearch Context = iota
	// GroupRanking weighs group-level facility fit when ordering the
	// planner's selected hotels per guest group.
	GroupRanking
)

// Weights is one context's blend over the four hybrid components. Each
// vector sums to 1 so a blend of [0,100] inputs stays in [0,100].
type Weights struct {
	FacilityFit     float64
	ActivityHistory float64
	Capacity        float64
	Location        float64
}

var contextWeights = map[Context]Weights{
	PlannerSearch: {FacilityFit: 0.45, ActivityHistory: 0.40, Capacity: 0.10, Location: 0.05},
	GroupRanking:  {FacilityFit: 0.50, ActivityHistory: 0.35, Capacity: 0.10, Location: 0.05},
}

// WeightsFor returns the blend weights for a context.
func WeightsFor(ctx Context) Weights {
	return contextWeights[ctx]
}

// CapacityComponent rates room capacity against required guests at two
// guests per room. Unknown rooms or guests yield the neutral stand-in.
func CapacityComponent(totalRooms, requiredGuests int) models.Component {
	if totalRooms <= 0 || requiredGuests <= 0 {
		return models.NeutralComponent()
	}
	roomsNeeded := int(math.Ceil(float64(requiredGuests) / 2))
	switch {
	case totalRooms >= roomsNeeded:
		return models.Real(100)
	case float64(totalRooms) >= float64(roomsNeeded)*0.7:
		return models.Real(70)
	default:
		return models.Real(30)
	}
}

// LocationComponent rates the hotel city against the event city. A blank
// city on either side is the neutral stand-in. A mismatch scores 50 in
// planner search, where candidates are already country-filtered, and 30
// in group ranking, where the selected set may span cities.
func LocationComponent(hotelCity, eventCity string, ctx Context) models.Component {
	h := strings.ToLower(strings.TrimSpace(hotelCity))
	e := strings.ToLower(strings.TrimSpace(eventCity))
	if h == "" || e == "" {
		return models.NeutralComponent()
	}
	switch {
	case h == e:
		return models.Real(100)
	case strings.Contains(h, e) || strings.Contains(e, h):
		return models.Real(80)
	case ctx == PlannerSearch:
		return models.Real(50)
	default:
		return models.Real(30)
	}
}

// ActivityComponent rates how similar a hotel's hosting history is to
// the event. Either vector missing yields the neutral stand-in; a
// dimension mismatch degrades to neutral rather than failing the blend.
func ActivityComponent(eventVec, activityVec []float32) models.Component {
	if len(eventVec) == 0 || len(activityVec) == 0 {
		return models.NeutralComponent()
	}
	sim, err := embedding.CosineSimilarity(eventVec, activityVec)
	if err != nil {
		return models.NeutralComponent()
	}
	return models.Real(models.Clamp100(sim * 100))
}

// FacilityComponent converts a facility-fit score into a blend component.
// A fallback rule score is still a real signal; only a missing score is
// neutral.
func FacilityComponent(score models.FacilityFitScore, ok bool) models.Component {
	if !ok {
		return models.NeutralComponent()
	}
	return models.Real(score.Score)
}

// Blend combines a breakdown under a context's weights into the final
// integer score.
func Blend(ctx Context, b models.ScoreBreakdown) int {
	w := contextWeights[ctx]
	total := w.FacilityFit*b.FacilityFit.Score +
		w.ActivityHistory*b.ActivityHistory.Score +
		w.Capacity*b.Capacity.Score +
		w.Location*b.Location.Score
	return int(math.Round(models.Clamp100(total)))
}

// preferredAmenities are the guest-surface amenity keywords.
var preferredAmenities = []string{"wifi", "pool", "gym", "spa", "restaurant", "bar"}

// AmenityMatches counts facilities containing a preferred amenity keyword.
func AmenityMatches(facilities []string) int {
	count := 0
	for _, f := range facilities {
		for _, p := range preferredAmenities {
			if strings.Contains(f, p) {
				count++
				break
			}
		}
	}
	return count
}

// Guest-surface bonus caps.
const (
	historyBonusPerStay = 10.0
	historyBonusCap     = 20.0
	amenityBonusPer     = 2.0
	amenityBonusCap     = 10.0
)

// HistoryBonus rewards repeat stays, capped.
func HistoryBonus(previousStays int) float64 {
	return math.Min(float64(previousStays)*historyBonusPerStay, historyBonusCap)
}

// AmenityBonus rewards preferred amenities, capped.
func AmenityBonus(matches int) float64 {
	return math.Min(float64(matches)*amenityBonusPer, amenityBonusCap)
}

// GuestScore blends the guest-personalization signals: event-level
// facility fit (40%), hosting-history similarity (30%), plus the capped
// stay and amenity bonuses. Capped at 100.
func GuestScore(facility, activity models.Component, previousStays, amenityMatches int) (int, models.ScoreBreakdown) {
	breakdown := models.ScoreBreakdown{
		FacilityFit:     facility,
		ActivityHistory: activity,
		HistoryBonus:    HistoryBonus(previousStays),
		AmenityBonus:    AmenityBonus(amenityMatches),
	}
	total := 0.40*facility.Score + 0.30*activity.Score + breakdown.HistoryBonus + breakdown.AmenityBonus
	score := math.Round(total)
	if score > 100 {
		score = 100
	}
	return int(score), breakdown
}
