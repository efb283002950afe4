package facility

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"

	"github.com/thebtf/venuerank/pkg/models"
)

// Prompt size caps. Descriptions shrink first when the token budget is
// tight; facility lists are the signal the scorer exists for and go last.
const (
	maxPromptFacilities  = 40
	maxHotelDescription  = 400
	maxEventDescription  = 300
	defaultTokenBudget   = 16000
	minHotelDescription  = 0
	descriptionShrinkDiv = 2
)

// ScoreSet is one scoring pass over an event, its candidate hotels, and
// optionally its guest groups. Fallback marks a set produced entirely by
// the rule scorer.
type ScoreSet struct {
	Event    map[string]models.FacilityFitScore            // hotelID -> score
	Groups   map[string]map[string]models.FacilityFitScore // groupID -> hotelID -> score
	Fallback bool
}

// EventScore returns the event-level score for a hotel.
func (s *ScoreSet) EventScore(hotelID string) (models.FacilityFitScore, bool) {
	sc, ok := s.Event[hotelID]
	return sc, ok
}

// GroupScore returns the group-level score for a hotel.
func (s *ScoreSet) GroupScore(groupID, hotelID string) (models.FacilityFitScore, bool) {
	sc, ok := s.Groups[groupID][hotelID]
	return sc, ok
}

// Scorer batches all hotels and groups of one request into a single LLM
// call. Any failure in the call or its response flips the whole pass to
// rule-based scores; LLM and rule scores never mix within one pass.
type Scorer struct {
	chat        ChatClient
	codec       tokenizer.Codec
	tokenBudget int
}

// NewScorer creates a facility scorer. A nil chat client means every pass
// uses the rule scorer.
func NewScorer(chat ChatClient, tokenBudget int) (*Scorer, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	if tokenBudget <= 0 {
		tokenBudget = defaultTokenBudget
	}
	return &Scorer{chat: chat, codec: codec, tokenBudget: tokenBudget}, nil
}

// Score produces facility-fit scores for every hotel and hotel/group
// pair. It never returns an error: the rule scorer is the floor.
func (s *Scorer) Score(ctx context.Context, event *models.Event, hotels []models.Hotel, groups []models.GuestGroup) *ScoreSet {
	if s.chat == nil {
		return BuildFallbackScores(hotels, event, groups)
	}

	prompt, err := s.buildPrompt(event, hotels, groups)
	if err != nil {
		log.Warn().Err(err).Str("event", event.ID).Msg("Prompt build failed, using rule scores")
		return BuildFallbackScores(hotels, event, groups)
	}

	raw, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("event", event.ID).Msg("LLM scoring failed, using rule scores")
		return BuildFallbackScores(hotels, event, groups)
	}

	set, err := parseScoreResponse(raw)
	if err != nil {
		log.Warn().Err(err).Str("event", event.ID).Msg("LLM response rejected, using rule scores")
		return BuildFallbackScores(hotels, event, groups)
	}

	log.Debug().
		Str("event", event.ID).
		Int("hotels", len(set.Event)).
		Int("groups", len(set.Groups)).
		Msg("LLM facility scores accepted")
	return set
}

type hotelSummary struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Rating         float64           `json:"rating"`
	Facilities     []string          `json:"facilities"`
	Description    string            `json:"description"`
	PriceRange     models.PriceRange `json:"priceRange"`
	TotalRooms     int               `json:"totalRooms"`
	Specialization []string          `json:"specialization"`
}

type groupSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Size        int    `json:"size"`
	Description string `json:"description"`
}

// buildPrompt renders the scoring prompt, shrinking hotel descriptions
// until the prompt fits the token budget.
func (s *Scorer) buildPrompt(event *models.Event, hotels []models.Hotel, groups []models.GuestGroup) (string, error) {
	descCap := maxHotelDescription
	for {
		prompt, err := s.renderPrompt(event, hotels, groups, descCap)
		if err != nil {
			return "", err
		}
		count, err := s.codec.Count(prompt)
		if err != nil {
			return "", fmt.Errorf("count prompt tokens: %w", err)
		}
		if count <= s.tokenBudget {
			return prompt, nil
		}
		if descCap == minHotelDescription {
			return "", fmt.Errorf("prompt exceeds token budget: %d > %d with descriptions stripped", count, s.tokenBudget)
		}
		descCap /= descriptionShrinkDiv
		if descCap < 50 {
			descCap = minHotelDescription
		}
	}
}

func (s *Scorer) renderPrompt(event *models.Event, hotels []models.Hotel, groups []models.GuestGroup, descCap int) (string, error) {
	hotelSummaries := make([]hotelSummary, len(hotels))
	for i := range hotels {
		h := &hotels[i]
		facilities := h.MergedFacilities()
		if len(facilities) > maxPromptFacilities {
			facilities = facilities[:maxPromptFacilities]
		}
		hotelSummaries[i] = hotelSummary{
			ID:             h.ID,
			Name:           h.Name,
			Rating:         h.EffectiveRating(),
			Facilities:     facilities,
			Description:    truncate(h.EffectiveDescription(), descCap),
			PriceRange:     h.PriceRange,
			TotalRooms:     h.TotalRooms,
			Specialization: h.Specialization,
		}
	}

	groupSummaries := make([]groupSummary, len(groups))
	for i := range groups {
		g := &groups[i]
		groupSummaries[i] = groupSummary{
			ID:          g.ID,
			Name:        g.Name,
			Type:        string(models.ClassifyGroup(g.RelationshipType, g.Name)),
			Size:        g.MemberCount(),
			Description: g.Description,
		}
	}

	hotelsJSON, err := json.MarshalIndent(hotelSummaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal hotel summaries: %w", err)
	}

	eventType := event.Type
	if eventType == "" {
		eventType = "general"
	}

	var b strings.Builder
	b.WriteString("You are a hotel recommendation engine for event planning.\n\n")
	fmt.Fprintf(&b, "EVENT:\n- Name: %s\n- Type: %s\n- Scale: %d total guests\n- Location: %s, %s\n- Description: %s\n\n",
		event.Name, eventType, event.ExpectedGuests,
		event.Location.City, event.Location.Country,
		truncate(event.Description, maxEventDescription))
	fmt.Fprintf(&b, "HOTELS (%d):\n%s\n\n", len(hotelSummaries), hotelsJSON)

	if len(groups) > 0 {
		groupsJSON, err := json.MarshalIndent(groupSummaries, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal group summaries: %w", err)
		}
		fmt.Fprintf(&b, "GUEST GROUPS (%d):\n%s\n\n", len(groupSummaries), groupsJSON)
	}

	b.WriteString("TASK:\n1. For each hotel, score it 0-100 for how well it fits this EVENT overall.\n")
	if len(groups) > 0 {
		b.WriteString("2. For each hotel x group combination, score 0-100 for how well the hotel fits that SPECIFIC GROUP (different groups should get different scores based on their type and needs).\n\n")
	} else {
		b.WriteString("2. No groups provided, only event scores needed.\n\n")
	}

	b.WriteString(`SCORING RULES:
- VIP/executive groups need luxury, concierge, high rating (4.5+), premium price
- Corporate/colleague groups need conference rooms, meeting facilities, business center, wifi
- Family groups need pool, kids amenities, restaurant, affordable price
- Friend groups need bar, pool, leisure amenities, entertainment
- Speaker groups need wifi, workspace, quiet environment, high quality
- Vendor groups need parking, affordable price, practical amenities
- Always check actual facility list, do not assume facilities that are not listed
- Give specific reason strings mentioning actual facility names from the hotel

OUTPUT: Respond ONLY with valid JSON in this exact format:
{
  "eventScores": [
    {
      "hotelId": "<id>",
      "score": <0-100>,
      "facilityHighlights": ["<actual facility name>", ...],
      "reasons": ["<specific reason mentioning actual facilities>", ...]
    }
  ],
  "groupScores": [
    {
      "groupId": "<id>",
      "hotels": [
        {
          "hotelId": "<id>",
          "score": <0-100>,
          "reasons": ["<specific reason>", ...]
        }
      ]
    }
  ]
}`)

	return b.String(), nil
}

type scoreResponse struct {
	EventScores []struct {
		HotelID            string   `json:"hotelId"`
		Score              float64  `json:"score"`
		FacilityHighlights []string `json:"facilityHighlights"`
		Reasons            []string `json:"reasons"`
	} `json:"eventScores"`
	GroupScores []struct {
		GroupID string `json:"groupId"`
		Hotels  []struct {
			HotelID string   `json:"hotelId"`
			Score   float64  `json:"score"`
			Reasons []string `json:"reasons"`
		} `json:"hotels"`
	} `json:"groupScores"`
}

// parseScoreResponse extracts and validates the JSON object from a model
// response, tolerating markdown fences around it.
func parseScoreResponse(raw string) (*ScoreSet, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("parse score response: %w", err)
	}
	if len(parsed.EventScores) == 0 {
		return nil, fmt.Errorf("response contains no event scores")
	}

	set := &ScoreSet{
		Event:  make(map[string]models.FacilityFitScore, len(parsed.EventScores)),
		Groups: make(map[string]map[string]models.FacilityFitScore, len(parsed.GroupScores)),
	}

	for _, item := range parsed.EventScores {
		if item.HotelID == "" {
			return nil, fmt.Errorf("event score with empty hotelId")
		}
		set.Event[item.HotelID] = models.FacilityFitScore{
			Score:              models.Clamp100(item.Score),
			Reasons:            item.Reasons,
			FacilityHighlights: item.FacilityHighlights,
		}
	}

	for _, g := range parsed.GroupScores {
		if g.GroupID == "" {
			return nil, fmt.Errorf("group score with empty groupId")
		}
		byHotel := make(map[string]models.FacilityFitScore, len(g.Hotels))
		for _, h := range g.Hotels {
			if h.HotelID == "" {
				return nil, fmt.Errorf("group %s score with empty hotelId", g.GroupID)
			}
			byHotel[h.HotelID] = models.FacilityFitScore{
				Score:   models.Clamp100(h.Score),
				Reasons: h.Reasons,
			}
		}
		set.Groups[g.GroupID] = byHotel
	}

	return set, nil
}

// truncate cuts s to at most n bytes without splitting a rune, so the
// prompt JSON stays valid UTF-8 for non-ASCII descriptions.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
