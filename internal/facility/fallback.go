// Package facility scores hotels against events and guest groups on
// facilities, description, and rating. The primary path is a batched LLM
// call; a deterministic rule scorer covers every LLM failure mode.
package facility

import (
	"fmt"
	"math"
	"strings"

	"github.com/thebtf/venuerank/pkg/models"
)

// hasFacility reports whether any facility contains any of the keywords
// as a substring. Facilities arrive lowercased from MergedFacilities.
func hasFacility(facilities []string, keywords ...string) bool {
	for _, f := range facilities {
		for _, kw := range keywords {
			if strings.Contains(f, kw) {
				return true
			}
		}
	}
	return false
}

// GroupRuleScore scores a hotel for a guest group without the LLM. The
// baseline is 50; relationship-specific bonuses and a group-size capacity
// block move it within [0,100].
func GroupRuleScore(hotel *models.Hotel, group *models.GuestGroup) models.FacilityFitScore {
	rel := models.ClassifyGroup(group.RelationshipType, group.Name)
	facilities := hotel.MergedFacilities()
	rating := hotel.EffectiveRating()
	priceAvg := hotel.PriceRange.Average()
	groupSize := group.MemberCount()
	has := func(kws ...string) bool { return hasFacility(facilities, kws...) }

	score := 50.0
	var reasons []string
	add := func(delta float64, reason string) {
		score += delta
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	switch rel {
	case models.RelVIP:
		if rating >= 4.5 {
			add(22, "Top-rated luxury property for VIP guests")
		} else if rating >= 4.0 {
			add(14, "Highly rated for VIPs")
		} else if rating >= 3.5 {
			add(6, "Decent rating for VIP group")
		}
		if priceAvg > 8000 {
			add(10, "Premium tier pricing suits VIP expectations")
		}
		if has("concierge", "butler", "executive", "suite", "spa") {
			add(10, "Premium concierge & luxury facilities")
		}
		if groupSize > 0 && groupSize <= 20 {
			add(5, "Boutique scale ideal for exclusive VIP group")
		}
	case models.RelCorporate:
		if has("conference", "conference center", "meeting", "boardroom", "business center", "business centre") {
			add(22, "Conference & business center available")
		}
		if has("wifi", "free wifi") {
			add(8, "High-speed WiFi for corporate needs")
		}
		if has("projector", "av", "audio visual") {
			add(5, "AV equipment on-site")
		}
		if groupSize >= 100 && hotel.TotalRooms >= groupSize/2 {
			add(8, fmt.Sprintf("Large capacity hotel confirmed for %d colleagues", groupSize))
		}
	case models.RelFamily:
		if has("pool", "swimming pool", "kids", "children", "playground") {
			add(18, "Family-friendly pool & kid amenities")
		}
		if has("restaurant", "dining") {
			add(8, "In-house dining for families")
		}
		if priceAvg > 0 && priceAvg < 6000 {
			add(7, "Family-budget friendly pricing")
		}
	case models.RelFriend:
		if has("bar", "pool", "rooftop", "lounge", "entertainment", "nightclub") {
			add(20, "Leisure & entertainment facilities")
		}
		if has("gym", "fitness", "spa") {
			add(8, "Recreation facilities")
		}
	case models.RelSpeaker:
		if has("wifi", "business center", "workspace", "desk") {
			add(15, "Work-friendly environment for speakers")
		}
		if rating >= 4.0 {
			add(12, "High quality property for speakers")
		}
	case models.RelVendor:
		if priceAvg > 0 && priceAvg < 4000 {
			add(20, "Budget-friendly for vendors")
		}
		if has("parking", "free parking") {
			add(10, "Parking for vendor logistics")
		}
	default:
		if rating >= 4.0 {
			add(10, "Well-rated property")
		}
		if has("wifi", "restaurant", "gym") {
			add(8, "Core amenities available")
		}
	}

	// Group-size capacity scoring differentiates hotels by group scale.
	if groupSize > 0 {
		roomsNeeded := int(math.Ceil(float64(groupSize) / 2))
		if hotel.TotalRooms > 0 {
			if groupSize <= 20 {
				if rating >= 4.5 {
					add(8, "Premium quality rating for small exclusive group")
				} else if rating >= 4.0 {
					add(4, "Good quality property for small group")
				}
			} else if groupSize >= 50 {
				switch {
				case hotel.TotalRooms >= roomsNeeded:
					add(10, fmt.Sprintf("%d rooms are sufficient for %d guests", hotel.TotalRooms, groupSize))
				case float64(hotel.TotalRooms) >= float64(roomsNeeded)*0.7:
					add(3, "Partially sufficient capacity")
				default:
					add(-15, "Insufficient room capacity for group size")
				}
			}
		} else {
			if groupSize <= 20 {
				add(3, "")
			} else if groupSize >= 100 {
				add(-5, "Room count unknown, risky for large group")
			}
		}
	}

	return models.FacilityFitScore{
		Score:    models.Clamp100(score),
		Reasons:  reasons,
		Fallback: true,
	}
}

// EventRuleScore scores a hotel for the event overall without the LLM.
func EventRuleScore(hotel *models.Hotel, event *models.Event) models.FacilityFitScore {
	facilities := hotel.MergedFacilities()
	rating := hotel.EffectiveRating()
	eventType := strings.ToLower(event.Type)
	has := func(kws ...string) bool { return hasFacility(facilities, kws...) }
	typeIs := func(types ...string) bool {
		for _, t := range types {
			if strings.Contains(eventType, t) {
				return true
			}
		}
		return false
	}

	score := 50.0
	var reasons []string
	add := func(delta float64, reason string) {
		score += delta
		reasons = append(reasons, reason)
	}

	switch {
	case typeIs("conference", "corporate", "summit", "seminar", "workshop"):
		if has("conference", "conference center", "meeting", "boardroom") {
			add(20, "Conference facilities match event type")
		}
		if has("wifi", "free wifi") {
			add(8, "WiFi infrastructure for tech events")
		}
	case typeIs("wedding", "gala", "celebration", "social"):
		if has("banquet", "ballroom", "wedding", "event hall") {
			add(20, "Banquet/event hall for weddings")
		}
		if has("catering", "restaurant", "bar") {
			add(8, "Catering & bar services")
		}
	case typeIs("concert", "festival", "entertainment"):
		if has("auditorium", "stage", "entertainment", "large hall") {
			add(20, "Entertainment venue capabilities")
		}
	}

	if rating >= 4.5 {
		add(12, "Top-tier hotel rating")
	} else if rating >= 4.0 {
		add(7, "High hotel rating")
	}

	if score > 100 {
		score = 100
	}
	return models.FacilityFitScore{
		Score:    score,
		Reasons:  reasons,
		Fallback: true,
	}
}

// BuildFallbackScores produces rule-based scores in the exact shape of an
// LLM scoring pass, for every hotel and hotel/group pair.
func BuildFallbackScores(hotels []models.Hotel, event *models.Event, groups []models.GuestGroup) *ScoreSet {
	set := &ScoreSet{
		Event:    make(map[string]models.FacilityFitScore, len(hotels)),
		Groups:   make(map[string]map[string]models.FacilityFitScore, len(groups)),
		Fallback: true,
	}
	for i := range hotels {
		hotel := &hotels[i]
		set.Event[hotel.ID] = EventRuleScore(hotel, event)
		for j := range groups {
			group := &groups[j]
			if set.Groups[group.ID] == nil {
				set.Groups[group.ID] = make(map[string]models.FacilityFitScore, len(hotels))
			}
			set.Groups[group.ID][hotel.ID] = GroupRuleScore(hotel, group)
		}
	}
	return set
}
