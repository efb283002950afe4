package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// RelationshipSuite covers explicit classification and keyword inference
// for guest groups.
type RelationshipSuite struct {
	suite.Suite
}

func TestRelationshipSuite(t *testing.T) {
	suite.Run(t, new(RelationshipSuite))
}

// =============================================================================
// GOOD SCENARIOS - Expected normal operations
// =============================================================================

func (s *RelationshipSuite) TestClassifyGroup_GoodScenarios_ExplicitWins() {
	// An explicit type beats whatever the name suggests.
	s.Equal(RelVendor, ClassifyGroup("vendor", "VIP Guests"))
	s.Equal(RelVIP, ClassifyGroup("  VIP  ", "random name"))
	s.Equal(RelCorporate, ClassifyGroup("Colleague", ""))
}

func (s *RelationshipSuite) TestClassifyGroup_GoodScenarios_PlaceholdersInfer() {
	for _, placeholder := range []string{"", "manual", "general", "other", "Manual"} {
		s.Equal(RelFamily, ClassifyGroup(placeholder, "Bride's Family"),
			"placeholder %q must fall through to the name", placeholder)
	}
}

func (s *RelationshipSuite) TestClassifyGroup_GoodScenarios_KeywordBuckets() {
	cases := map[string]RelationshipType{
		"VIP Guests":         RelVIP,
		"Executive Suite":    RelVIP,
		"Office Team":        RelCorporate,
		"Staff & Coworkers":  RelCorporate,
		"Bride's Family":     RelFamily,
		"College Friends":    RelFriend,
		"Leisure travellers": RelFriend,
		"Keynote Speakers":   RelSpeaker,
		"Catering Vendors":   RelVendor,
	}
	for name, want := range cases {
		s.Equal(want, ClassifyGroup("", name), "name %q", name)
	}
}

func (s *RelationshipSuite) TestClassifyGroup_GoodScenarios_VIPOutranksCorporate() {
	// "VIP staff" matches both buckets; the VIP bucket is checked first.
	s.Equal(RelVIP, ClassifyGroup("", "VIP staff"))
	s.Equal(RelVIP, ClassifyGroup("", "Premium Team"))
}

// =============================================================================
// BAD SCENARIOS - Error conditions and edge cases
// =============================================================================

func (s *RelationshipSuite) TestClassifyGroup_BadScenarios_NoSignalIsGeneral() {
	s.Equal(RelGeneral, ClassifyGroup("", ""))
	s.Equal(RelGeneral, ClassifyGroup("", "Table 7"))
	s.Equal(RelGeneral, ClassifyGroup("spaceship", "Table 7"))
}
