package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// ActivitySuite covers the ledger record's weight, decay, and retention
// rules.
type ActivitySuite struct {
	suite.Suite
	now time.Time
}

func TestActivitySuite(t *testing.T) {
	suite.Run(t, new(ActivitySuite))
}

func (s *ActivitySuite) SetupTest() {
	s.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ActivitySuite) record(role ActorRole, age time.Duration) *ActivityRecord {
	return &ActivityRecord{
		ActorRole: role,
		Weight:    1.0,
		Timestamp: s.now.Add(-age),
	}
}

// =============================================================================
// GOOD SCENARIOS - Expected normal operations
// =============================================================================

func (s *ActivitySuite) TestDecayFactor_GoodScenarios_FreshRecordIsOne() {
	s.InDelta(1.0, s.record(RoleUser, 0).DecayFactor(s.now), 1e-9)
	// A clock-skewed future timestamp must not inflate the weight.
	s.InDelta(1.0, s.record(RoleUser, -time.Hour).DecayFactor(s.now), 1e-9)
}

func (s *ActivitySuite) TestDecayFactor_GoodScenarios_StrictlyDecreasing() {
	ages := []time.Duration{0, 24 * time.Hour, 7 * 24 * time.Hour, 30 * 24 * time.Hour, 90 * 24 * time.Hour}
	for _, role := range []ActorRole{RoleUser, RolePlanner} {
		prev := math.Inf(1)
		for _, age := range ages {
			d := s.record(role, age).DecayFactor(s.now)
			s.Less(d, prev, "decay must strictly decrease with age for role %s", role)
			s.Greater(d, 0.0)
			prev = d
		}
	}
}

func (s *ActivitySuite) TestDecayFactor_GoodScenarios_HalfLivesPerRole() {
	// At exactly one half-life the factor is e^-1 for either role.
	s.InDelta(math.Exp(-1), s.record(RoleUser, 30*24*time.Hour).DecayFactor(s.now), 1e-9)
	s.InDelta(math.Exp(-1), s.record(RolePlanner, 60*24*time.Hour).DecayFactor(s.now), 1e-9)

	// Same age, slower planner decay.
	age := 30 * 24 * time.Hour
	s.Greater(s.record(RolePlanner, age).DecayFactor(s.now), s.record(RoleUser, age).DecayFactor(s.now))
}

func (s *ActivitySuite) TestEffectiveWeight_GoodScenarios_ScalesStaticWeight() {
	rec := s.record(RoleUser, 30*24*time.Hour)
	rec.Weight = 0.6
	s.InDelta(0.6*math.Exp(-1), rec.EffectiveWeight(s.now), 1e-9)

	// Negative planner weights decay toward zero, never flip sign.
	rej := s.record(RolePlanner, 60*24*time.Hour)
	rej.Weight = -0.5
	s.InDelta(-0.5*math.Exp(-1), rej.EffectiveWeight(s.now), 1e-9)
}

func (s *ActivitySuite) TestExpired_GoodScenarios_RetentionBoundaries() {
	// Strictly past the window expires; exactly at it does not.
	s.False(s.record(RoleUser, UserRetention).Expired(s.now))
	s.True(s.record(RoleUser, UserRetention+time.Second).Expired(s.now))

	s.False(s.record(RolePlanner, PlannerRetention).Expired(s.now))
	s.True(s.record(RolePlanner, PlannerRetention+time.Second).Expired(s.now))

	// A user-aged record a planner would keep.
	s.True(s.record(RoleUser, 180*24*time.Hour).Expired(s.now))
	s.False(s.record(RolePlanner, 180*24*time.Hour).Expired(s.now))
}

func (s *ActivitySuite) TestActionWeight_GoodScenarios_StaticTables() {
	w, err := ActionWeight(RoleUser, ActionSearch)
	s.Require().NoError(err)
	s.InDelta(0.2, w, 1e-9)

	w, err = ActionWeight(RoleUser, ActionBook)
	s.Require().NoError(err)
	s.InDelta(1.0, w, 1e-9)

	w, err = ActionWeight(RolePlanner, ActionHotelRejected)
	s.Require().NoError(err)
	s.InDelta(-0.5, w, 1e-9)
}

// =============================================================================
// BAD SCENARIOS - Error conditions and edge cases
// =============================================================================

func (s *ActivitySuite) TestActionWeight_BadScenarios_UnknownAction() {
	_, err := ActionWeight(RoleUser, "teleport")
	s.Error(err)
}

func (s *ActivitySuite) TestActionWeight_BadScenarios_ActionFromWrongRole() {
	// Planner actions are not valid for users and vice versa.
	_, err := ActionWeight(RoleUser, ActionHotelSelected)
	s.Error(err)

	_, err = ActionWeight(RolePlanner, ActionBookmark)
	s.Error(err)
}

func (s *ActivitySuite) TestActionWeight_BadScenarios_UnknownRole() {
	_, err := ActionWeight(RoleHotel, ActionView)
	s.Error(err)

	_, err = ActionWeight("ghost", ActionView)
	s.Error(err)
}
