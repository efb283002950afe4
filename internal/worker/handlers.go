package worker

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	gormstore "github.com/thebtf/venuerank/internal/db/gorm"
	"github.com/thebtf/venuerank/internal/recommend"
	"github.com/thebtf/venuerank/pkg/models"
)

// Handler configuration constants
const (
	// DefaultRecommendationLimit is the default list size for the user
	// and planner surfaces.
	DefaultRecommendationLimit = 10
)

// writeJSON writes a JSON response with proper error handling.
func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError maps store and recommendation errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gormstore.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, recommend.ErrNoSelectedHotels):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleHealth handles health check requests.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	if !s.ready.Load() {
		status = "starting"
	}
	writeJSON(w, map[string]interface{}{
		"status":  status,
		"version": s.version,
	})
}

// handleReady returns 200 only when the backing store answers.
func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			http.Error(w, "database unreachable: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, map[string]string{"status": "ready"})
}

// handleStats returns service statistics.
func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"served":         s.served.Load(),
	})
}

// handleUpsertEvent persists an event and refreshes its embedding.
func (s *Service) handleUpsertEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if event.ID == "" {
		http.Error(w, "event id is required", http.StatusBadRequest)
		return
	}

	if err := s.catalog.UpsertEvent(r.Context(), &event); err != nil {
		writeError(w, err)
		return
	}
	if err := s.recommender.IndexEvent(r.Context(), &event); err != nil {
		// The row is saved; searches just won't see the event until the
		// next successful reindex.
		log.Warn().Err(err).Str("event", event.ID).Msg("Event indexing failed")
	}

	writeJSON(w, map[string]string{"id": event.ID, "status": "ok"})
}

// handleUpsertHotel persists a hotel and refreshes its embedding.
func (s *Service) handleUpsertHotel(w http.ResponseWriter, r *http.Request) {
	var hotel models.Hotel
	if err := json.NewDecoder(r.Body).Decode(&hotel); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if hotel.ID == "" {
		http.Error(w, "hotel id is required", http.StatusBadRequest)
		return
	}

	if err := s.catalog.UpsertHotel(r.Context(), &hotel); err != nil {
		writeError(w, err)
		return
	}
	if err := s.recommender.IndexHotel(r.Context(), &hotel); err != nil {
		log.Warn().Err(err).Str("hotel", hotel.ID).Msg("Hotel indexing failed")
	}

	writeJSON(w, map[string]string{"id": hotel.ID, "status": "ok"})
}

// handleUpsertGroup persists a guest group.
func (s *Service) handleUpsertGroup(w http.ResponseWriter, r *http.Request) {
	var group models.GuestGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if group.ID == "" || group.EventID == "" {
		http.Error(w, "group id and event_id are required", http.StatusBadRequest)
		return
	}

	if err := s.catalog.UpsertGroup(r.Context(), &group); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"id": group.ID, "status": "ok"})
}

// handleRecordActivity records one user or planner signal.
func (s *Service) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var rec models.ActivityRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if rec.ActorID == "" || rec.TargetID == "" {
		http.Error(w, "actor_id and target_id are required", http.StatusBadRequest)
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if err := s.recommender.RecordActivity(r.Context(), &rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]interface{}{"id": rec.ID, "weight": rec.Weight})
}

// handleRecordHotelActivity records a hotel's participation in an event.
func (s *Service) handleRecordHotelActivity(w http.ResponseWriter, r *http.Request) {
	hotelID := chi.URLParam(r, "id")

	var rec models.HotelActivityRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec.HotelID = hotelID
	if rec.EventID == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}

	if err := s.recommender.RecordHotelActivity(r.Context(), &rec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"hotel_id": hotelID, "event_id": rec.EventID, "status": "ok"})
}

// handleUserRecommendations serves the end-user event surface.
func (s *Service) handleUserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	limit := queryInt(r, "limit", DefaultRecommendationLimit)

	recs, err := s.recommender.GetUserRecommendations(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	s.served.Add(1)
	s.metrics.RecommendationServed(r.Context(), "user")
	writeJSON(w, recs)
}

// handlePlannerRecommendations serves candidate hotels for an event.
func (s *Service) handlePlannerRecommendations(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	plannerID := r.URL.Query().Get("planner_id")
	limit := queryInt(r, "limit", DefaultRecommendationLimit)

	results, err := s.recommender.GetHotelRecommendationsForEvent(r.Context(), eventID, plannerID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	s.served.Add(1)
	s.metrics.RecommendationServed(r.Context(), "planner")
	writeJSON(w, map[string]interface{}{"event_id": eventID, "results": results})
}

// handleGroupRecommendations serves per-group rankings of the selected
// hotels.
func (s *Service) handleGroupRecommendations(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	recs, err := s.recommender.GetGroupRecommendations(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.served.Add(1)
	s.metrics.RecommendationServed(r.Context(), "group")
	writeJSON(w, map[string]interface{}{"event_id": eventID, "groups": recs})
}

// handleGuestRecommendations serves the personalized guest surface.
func (s *Service) handleGuestRecommendations(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email query parameter is required", http.StatusBadRequest)
		return
	}

	results, err := s.recommender.GetGuestRecommendations(r.Context(), eventID, email)
	if err != nil {
		writeError(w, err)
		return
	}

	s.served.Add(1)
	s.metrics.RecommendationServed(r.Context(), "guest")
	writeJSON(w, map[string]interface{}{"event_id": eventID, "results": results})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
