package facility

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/thebtf/venuerank/pkg/models"
)

// FallbackSuite covers the deterministic rule scorer.
type FallbackSuite struct {
	suite.Suite
}

func TestFallbackSuite(t *testing.T) {
	suite.Run(t, new(FallbackSuite))
}

// =============================================================================
// GOOD SCENARIOS - Expected normal operations
// =============================================================================

func (s *FallbackSuite) TestGroupRuleScore_GoodScenarios_VIPLuxuryHotel() {
	hotel := &models.Hotel{
		Name:       "The Imperial",
		Facilities: []string{"concierge", "spa", "suite"},
		Rating:     4.7,
		TotalRooms: 80,
		PriceRange: models.PriceRange{Min: 9000, Max: 12000},
	}
	group := &models.GuestGroup{Name: "VIP Delegates", RelationshipType: "vip", Size: 12}

	result := GroupRuleScore(hotel, group)

	// 50 + 22 (rating) + 10 (price) + 10 (luxury facilities) + 5 (small
	// group) + 8 (small-group quality) = 105, clamped to 100.
	s.InDelta(100, result.Score, 0.001)
	s.True(result.Fallback)
	s.NotEmpty(result.Reasons)
}

func (s *FallbackSuite) TestGroupRuleScore_GoodScenarios_DifferentGroupsDiverge() {
	hotel := &models.Hotel{
		Name:       "Business Tower",
		Facilities: []string{"conference center", "wifi", "boardroom"},
		Rating:     3.8,
		TotalRooms: 150,
	}
	vip := &models.GuestGroup{Name: "VIP Guests", RelationshipType: "vip", Size: 10}
	staff := &models.GuestGroup{Name: "Conference Staff", RelationshipType: "manual", Size: 40}

	vipScore := GroupRuleScore(hotel, vip)
	staffScore := GroupRuleScore(hotel, staff)

	// Conference facilities move the corporate group, not the VIP group.
	s.Greater(staffScore.Score, vipScore.Score,
		"a business hotel should rank higher for staff than for VIPs")
}

func (s *FallbackSuite) TestGroupRuleScore_GoodScenarios_LargeGroupCapacity() {
	big := &models.Hotel{Name: "Mega Resort", TotalRooms: 200}
	small := &models.Hotel{Name: "Tiny Inn", TotalRooms: 10}
	group := &models.GuestGroup{Name: "Company Offsite", RelationshipType: "corporate", Size: 120}

	bigScore := GroupRuleScore(big, group)
	smallScore := GroupRuleScore(small, group)

	s.Greater(bigScore.Score, smallScore.Score)
	s.Less(smallScore.Score, 50.0, "insufficient capacity should drop below the baseline")
}

func (s *FallbackSuite) TestGroupRuleScore_GoodScenarios_ManualTypeInferredFromName() {
	hotel := &models.Hotel{
		Name:       "Aqua Resort",
		Facilities: []string{"pool", "kids club", "restaurant"},
		TotalRooms: 60,
		PriceRange: models.PriceRange{Min: 3000, Max: 5000},
	}
	group := &models.GuestGroup{Name: "Bride's Family", RelationshipType: "manual", Size: 15}

	result := GroupRuleScore(hotel, group)

	// 50 + 18 (pool/kids) + 8 (restaurant) + 7 (budget) + 3 (no-op small)
	// actually small group with rooms, rating < 4 gives nothing extra.
	s.InDelta(83, result.Score, 0.001)
}

func (s *FallbackSuite) TestEventRuleScore_GoodScenarios_ConferenceMatch() {
	equipped := &models.Hotel{
		Name:       "Hotel A",
		Facilities: []string{"conference center", "wifi"},
		Rating:     4.2,
	}
	bare := &models.Hotel{
		Name:       "Hotel B",
		Facilities: []string{"pool", "bar"},
		Rating:     4.2,
	}
	event := &models.Event{Name: "DevCon", Type: "conference"}

	a := EventRuleScore(equipped, event)
	b := EventRuleScore(bare, event)

	// 50 + 20 + 8 + 7 = 85 vs 50 + 7 = 57.
	s.InDelta(85, a.Score, 0.001)
	s.InDelta(57, b.Score, 0.001)
}

func (s *FallbackSuite) TestEventRuleScore_GoodScenarios_WeddingMatch() {
	hotel := &models.Hotel{
		Name:       "Palace Banquets",
		Facilities: []string{"ballroom", "catering"},
		Rating:     4.6,
	}
	event := &models.Event{Name: "Sharma Wedding", Type: "wedding"}

	result := EventRuleScore(hotel, event)

	// 50 + 20 + 8 + 12 = 90.
	s.InDelta(90, result.Score, 0.001)
}

func (s *FallbackSuite) TestBuildFallbackScores_GoodScenarios_FullCoverage() {
	hotels := []models.Hotel{{ID: "h1", Name: "A"}, {ID: "h2", Name: "B"}}
	groups := []models.GuestGroup{{ID: "g1", Name: "Friends", RelationshipType: "friend", Size: 8}}
	event := &models.Event{ID: "e1", Type: "conference"}

	set := BuildFallbackScores(hotels, event, groups)

	s.True(set.Fallback)
	s.Len(set.Event, 2)
	s.Require().Contains(set.Groups, "g1")
	s.Len(set.Groups["g1"], 2)
}

// =============================================================================
// BAD SCENARIOS - Error handling and edge cases
// =============================================================================

func (s *FallbackSuite) TestGroupRuleScore_BadScenarios_NoDataStaysNearBaseline() {
	result := GroupRuleScore(&models.Hotel{Name: "Mystery"}, &models.GuestGroup{Name: "Guests"})
	s.InDelta(50, result.Score, 0.001)
}

func (s *FallbackSuite) TestGroupRuleScore_BadScenarios_UnknownRoomsLargeGroup() {
	hotel := &models.Hotel{Name: "No Rooms Listed"}
	group := &models.GuestGroup{Name: "Attendees", RelationshipType: "general", Size: 150}

	result := GroupRuleScore(hotel, group)

	s.Less(result.Score, 50.0, "unknown capacity is a risk for very large groups")
}

func (s *FallbackSuite) TestGroupRuleScore_BadScenarios_NeverBelowZero() {
	hotel := &models.Hotel{Name: "Tiny", TotalRooms: 2}
	group := &models.GuestGroup{Name: "Everyone", Size: 400}

	result := GroupRuleScore(hotel, group)

	s.GreaterOrEqual(result.Score, 0.0)
	s.LessOrEqual(result.Score, 100.0)
}
