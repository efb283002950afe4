package models

import "strings"

// RelationshipType classifies a guest group for facility-fit scoring.
type RelationshipType string

const (
	RelVIP       RelationshipType = "vip"
	RelCorporate RelationshipType = "corporate"
	RelFamily    RelationshipType = "family"
	RelFriend    RelationshipType = "friend"
	RelSpeaker   RelationshipType = "speaker"
	RelVendor    RelationshipType = "vendor"
	RelGeneral   RelationshipType = "general"
)

// relationshipKeywords maps name fragments to inferred types. Order
// matters: the first matching bucket wins, so VIP outranks corporate for
// a name like "VIP staff".
var relationshipKeywords = []struct {
	rel      RelationshipType
	keywords []string
}{
	{RelVIP, []string{"vip", "executive", "premium"}},
	{RelCorporate, []string{"colleague", "collegue", "staff", "team", "employee", "corporate", "coworker", "co-worker"}},
	{RelFamily, []string{"family", "families", "spouse", "child"}},
	{RelFriend, []string{"friend", "social", "leisure"}},
	{RelSpeaker, []string{"speaker", "presenter", "keynote"}},
	{RelVendor, []string{"vendor", "supplier", "partner"}},
}

// ClassifyGroup resolves a group's effective relationship type. An
// explicit classification wins; placeholder types ("manual", "general",
// "other", empty) fall back to keyword inference on the group name.
func ClassifyGroup(explicit, name string) RelationshipType {
	rel := strings.ToLower(strings.TrimSpace(explicit))
	switch rel {
	case "", "manual", "general", "other":
		return inferFromName(name)
	case "colleague":
		return RelCorporate
	case string(RelVIP), string(RelCorporate), string(RelFamily),
		string(RelFriend), string(RelSpeaker), string(RelVendor):
		return RelationshipType(rel)
	default:
		return inferFromName(name)
	}
}

func inferFromName(name string) RelationshipType {
	lower := strings.ToLower(name)
	for _, bucket := range relationshipKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				return bucket.rel
			}
		}
	}
	return RelGeneral
}
