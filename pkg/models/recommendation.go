package models

// Component is one pre-normalized [0,100] signal entering the hybrid
// blend. Neutral marks a score that is the documented stand-in for a
// missing signal (no activity vector, unknown capacity, LLM fallback
// default) rather than a genuinely computed midpoint. The numeric value
// is still blended either way; the flag exists so diagnostics can tell
// "no history" apart from "neutral history".
type Component struct {
	Score   float64 `json:"score"`
	Neutral bool    `json:"neutral,omitempty"`
}

// Real returns a computed component.
func Real(score float64) Component { return Component{Score: score} }

// NeutralComponent returns the stand-in for a missing signal.
func NeutralComponent() Component { return Component{Score: 50, Neutral: true} }

// ScoreBreakdown explains how a final score was assembled.
type ScoreBreakdown struct {
	FacilityFit     Component `json:"facility_fit"`
	ActivityHistory Component `json:"activity_history"`
	Capacity        Component `json:"capacity"`
	Location        Component `json:"location"`

	// Guest-personalization replaces capacity/location with capped bonuses.
	HistoryBonus float64 `json:"history_bonus,omitempty"`
	AmenityBonus float64 `json:"amenity_bonus,omitempty"`
}

// FacilityFitScore is the ephemeral per-(hotel,event) or per-(hotel,group)
// output of the facility-fit scorer. Never persisted.
type FacilityFitScore struct {
	Score              float64  `json:"score"` // clamped [0,100]
	Reasons            []string `json:"reasons"`
	FacilityHighlights []string `json:"facility_highlights,omitempty"`
	// Fallback marks a score produced by the deterministic rule scorer
	// rather than the LLM.
	Fallback bool `json:"fallback,omitempty"`
}

// EventScoreBreakdown explains a user-surface event score.
type EventScoreBreakdown struct {
	Vector     float64 `json:"vector"`
	Popularity float64 `json:"popularity"`
	Recency    float64 `json:"recency"`
}

// RecommendationResult is one ranked candidate with its explanation.
type RecommendationResult struct {
	HotelID        string               `json:"hotel_id,omitempty"`
	EventID        string               `json:"event_id,omitempty"`
	Name           string               `json:"name"`
	Score          int                  `json:"score"`
	Breakdown      ScoreBreakdown       `json:"breakdown"`
	EventBreakdown *EventScoreBreakdown `json:"event_breakdown,omitempty"`
	Reasons        []string             `json:"reasons"`
	Hotel          *Hotel               `json:"hotel,omitempty"`
	Event          *Event               `json:"event,omitempty"`
}

// GroupRecommendation is the per-group ranking over the selected hotels.
type GroupRecommendation struct {
	GroupID   string                 `json:"group_id"`
	GroupName string                 `json:"group_name"`
	GroupType RelationshipType       `json:"group_type"`
	Hotels    []RecommendationResult `json:"hotels"`
}

// GuestRecommendation is the per-guest personalized ranking.
type GuestRecommendation struct {
	GuestName string                 `json:"guest_name"`
	GroupID   string                 `json:"group_id"`
	GroupName string                 `json:"group_name"`
	Hotels    []RecommendationResult `json:"hotels"`
}

// UserRecommendations is the response of the end-user surface. ColdStart
// signals that the list is popularity-ranked, not personalized, so the
// presentation layer can label it "Trending".
type UserRecommendations struct {
	ColdStart bool                   `json:"cold_start"`
	Results   []RecommendationResult `json:"results"`
}

// Clamp100 clamps a score to [0,100].
func Clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
