// Package models contains domain models for venuerank.
package models

import (
	"fmt"
	"math"
	"time"
)

// ActorRole identifies who produced an activity record.
type ActorRole string

const (
	RoleUser    ActorRole = "user"
	RolePlanner ActorRole = "planner"
	RoleHotel   ActorRole = "hotel"
)

// ActionType represents a tracked interaction.
type ActionType string

// End-user actions.
const (
	ActionSearch    ActionType = "search"
	ActionView      ActionType = "view"
	ActionBookmark  ActionType = "bookmark"
	ActionAddToCart ActionType = "add_to_cart"
	ActionBook      ActionType = "book"
)

// Planner actions. Rejections carry negative weight so that explicitly
// dismissed hotels pull the preference vector away from similar candidates.
const (
	ActionHotelViewed      ActionType = "hotel_viewed"
	ActionHotelSelected    ActionType = "hotel_selected"
	ActionHotelRejected    ActionType = "hotel_rejected"
	ActionProposalViewed   ActionType = "proposal_viewed"
	ActionProposalSelected ActionType = "proposal_selected"
	ActionProposalRejected ActionType = "proposal_rejected"
)

// EntityType identifies what an activity targeted.
type EntityType string

const (
	EntityEvent    EntityType = "event"
	EntityHotel    EntityType = "hotel"
	EntityProposal EntityType = "proposal"
)

// UserActionWeights are the static weights for end-user actions.
var UserActionWeights = map[ActionType]float64{
	ActionSearch:    0.2,
	ActionView:      0.4,
	ActionBookmark:  0.6,
	ActionAddToCart: 0.7,
	ActionBook:      1.0,
}

// PlannerActionWeights are the static weights for planner actions.
var PlannerActionWeights = map[ActionType]float64{
	ActionHotelViewed:      0.3,
	ActionHotelSelected:    1.0,
	ActionHotelRejected:    -0.5,
	ActionProposalViewed:   0.2,
	ActionProposalSelected: 1.0,
	ActionProposalRejected: -0.3,
}

// Decay half-lives per actor role. Planner activity decays slower because
// planners interact far less frequently than end users.
const (
	UserHalfLifeDays    = 30.0
	PlannerHalfLifeDays = 60.0
)

// Retention windows per actor role. Records past retention are excluded
// from every aggregation and hard-deleted by the maintenance sweep.
const (
	UserRetention    = 90 * 24 * time.Hour
	PlannerRetention = 365 * 24 * time.Hour
)

// ActivityRecord is one append-only ledger entry. Immutable once created.
type ActivityRecord struct {
	ID          string     `json:"id"`
	ActorID     string     `json:"actor_id"`
	ActorRole   ActorRole  `json:"actor_role"`
	Action      ActionType `json:"action"`
	TargetID    string     `json:"target_id"`
	TargetType  EntityType `json:"target_type"`
	Weight      float64    `json:"weight"`
	SearchQuery string     `json:"search_query,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// ActionWeight resolves the static weight for an action under a role.
// An unknown (role, action) pair is a caller contract violation.
func ActionWeight(role ActorRole, action ActionType) (float64, error) {
	var table map[ActionType]float64
	switch role {
	case RoleUser:
		table = UserActionWeights
	case RolePlanner:
		table = PlannerActionWeights
	default:
		return 0, fmt.Errorf("no action weights defined for role %q", role)
	}
	w, ok := table[action]
	if !ok {
		return 0, fmt.Errorf("unknown action %q for role %q", action, role)
	}
	return w, nil
}

// HalfLifeDays returns the decay half-life for a role.
func HalfLifeDays(role ActorRole) float64 {
	if role == RolePlanner {
		return PlannerHalfLifeDays
	}
	return UserHalfLifeDays
}

// Retention returns the retention window for a role.
func Retention(role ActorRole) time.Duration {
	if role == RolePlanner {
		return PlannerRetention
	}
	return UserRetention
}

// DecayFactor returns the age-based multiplier for this record at the
// given time: exp(-ageDays / halfLife). Strictly decreasing with age,
// 1.0 at age zero. Future timestamps are treated as age zero.
func (r *ActivityRecord) DecayFactor(now time.Time) float64 {
	ageDays := now.Sub(r.Timestamp).Hours() / 24.0
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / HalfLifeDays(r.ActorRole))
}

// EffectiveWeight is the static weight scaled by the decay factor.
func (r *ActivityRecord) EffectiveWeight(now time.Time) float64 {
	return r.Weight * r.DecayFactor(now)
}

// Expired reports whether the record is past its retention window.
func (r *ActivityRecord) Expired(now time.Time) bool {
	return now.Sub(r.Timestamp) > Retention(r.ActorRole)
}
