package worker

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"

	"github.com/thebtf/venuerank/internal/config"
	gormstore "github.com/thebtf/venuerank/internal/db/gorm"
	"github.com/thebtf/venuerank/internal/recommend"
	"github.com/thebtf/venuerank/pkg/models"
)

type fakeRecommender struct {
	activities      []models.ActivityRecord
	hotelActivities []models.HotelActivityRecord
	indexedEvents   []string
	indexedHotels   []string
	indexErr        error

	userRecs    *models.UserRecommendations
	plannerRecs []models.RecommendationResult
	groupRecs   []models.GroupRecommendation
	guestRecs   []models.RecommendationResult
	err         error
}

func (f *fakeRecommender) RecordActivity(_ context.Context, rec *models.ActivityRecord) error {
	w, err := models.ActionWeight(rec.ActorRole, rec.Action)
	if err != nil {
		return err
	}
	rec.Weight = w
	f.activities = append(f.activities, *rec)
	return nil
}

func (f *fakeRecommender) RecordHotelActivity(_ context.Context, rec *models.HotelActivityRecord) error {
	f.hotelActivities = append(f.hotelActivities, *rec)
	return nil
}

func (f *fakeRecommender) IndexEvent(_ context.Context, event *models.Event) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexedEvents = append(f.indexedEvents, event.ID)
	return nil
}

func (f *fakeRecommender) IndexHotel(_ context.Context, hotel *models.Hotel) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexedHotels = append(f.indexedHotels, hotel.ID)
	return nil
}

func (f *fakeRecommender) GetUserRecommendations(context.Context, string, int) (*models.UserRecommendations, error) {
	return f.userRecs, f.err
}

func (f *fakeRecommender) GetHotelRecommendationsForEvent(context.Context, string, string, int) ([]models.RecommendationResult, error) {
	return f.plannerRecs, f.err
}

func (f *fakeRecommender) GetGroupRecommendations(context.Context, string) ([]models.GroupRecommendation, error) {
	return f.groupRecs, f.err
}

func (f *fakeRecommender) GetGuestRecommendations(context.Context, string, string) ([]models.RecommendationResult, error) {
	return f.guestRecs, f.err
}

type fakeCatalogWriter struct {
	events []models.Event
	hotels []models.Hotel
	groups []models.GuestGroup
	err    error
}

func (f *fakeCatalogWriter) UpsertEvent(_ context.Context, e *models.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeCatalogWriter) UpsertHotel(_ context.Context, h *models.Hotel) error {
	if f.err != nil {
		return f.err
	}
	f.hotels = append(f.hotels, *h)
	return nil
}

func (f *fakeCatalogWriter) UpsertGroup(_ context.Context, g *models.GuestGroup) error {
	if f.err != nil {
		return f.err
	}
	f.groups = append(f.groups, *g)
	return nil
}

type HandlersSuite struct {
	suite.Suite
	recommender *fakeRecommender
	catalog     *fakeCatalogWriter
	service     *Service
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	s.recommender = &fakeRecommender{}
	s.catalog = &fakeCatalogWriter{}
	s.service = NewService("test", config.Default(), s.recommender, s.catalog, nil)
}

func (s *HandlersSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.service.Router().ServeHTTP(rec, req)
	return rec
}

// ===== GOOD SCENARIOS - Expected normal operations =====

func (s *HandlersSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/api/health", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "ready")
}

func (s *HandlersSuite) TestUpsertEventPersistsAndIndexes() {
	rec := s.do(http.MethodPost, "/api/events", models.Event{ID: "ev1", Name: "Gala"})

	s.Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.catalog.events, 1)
	s.Equal([]string{"ev1"}, s.recommender.indexedEvents)
}

func (s *HandlersSuite) TestUpsertEventSurvivesIndexFailure() {
	s.recommender.indexErr = fmt.Errorf("embedding provider down")

	rec := s.do(http.MethodPost, "/api/events", models.Event{ID: "ev1"})

	s.Equal(http.StatusOK, rec.Code)
	s.Len(s.catalog.events, 1)
}

func (s *HandlersSuite) TestUpsertHotel() {
	rec := s.do(http.MethodPost, "/api/hotels", models.Hotel{ID: "h1", Name: "Grand"})

	s.Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.catalog.hotels, 1)
	s.Equal([]string{"h1"}, s.recommender.indexedHotels)
}

func (s *HandlersSuite) TestUpsertGroup() {
	rec := s.do(http.MethodPost, "/api/groups", models.GuestGroup{ID: "g1", EventID: "ev1", Name: "VIP"})

	s.Equal(http.StatusOK, rec.Code)
	s.Len(s.catalog.groups, 1)
}

func (s *HandlersSuite) TestRecordActivityStampsWeight() {
	rec := s.do(http.MethodPost, "/api/activities", models.ActivityRecord{
		ActorID:    "u1",
		ActorRole:  models.RoleUser,
		Action:     models.ActionBook,
		TargetID:   "ev1",
		TargetType: models.EntityEvent,
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.recommender.activities, 1)
	s.InDelta(1.0, s.recommender.activities[0].Weight, 0.001)
	s.False(s.recommender.activities[0].Timestamp.IsZero())
}

func (s *HandlersSuite) TestRecordHotelActivityTakesIDFromPath() {
	rec := s.do(http.MethodPost, "/api/hotels/h1/activities", models.HotelActivityRecord{
		EventID:   "ev1",
		EventName: "Gala",
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.recommender.hotelActivities, 1)
	s.Equal("h1", s.recommender.hotelActivities[0].HotelID)
}

func (s *HandlersSuite) TestUserRecommendations() {
	s.recommender.userRecs = &models.UserRecommendations{
		ColdStart: true,
		Results:   []models.RecommendationResult{{EventID: "ev1", Name: "Gala", Score: 80}},
	}

	rec := s.do(http.MethodGet, "/api/recommendations/users/u1?limit=5", nil)

	s.Equal(http.StatusOK, rec.Code)
	var resp models.UserRecommendations
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.ColdStart)
	s.Require().Len(resp.Results, 1)
	s.Equal(80, resp.Results[0].Score)
}

func (s *HandlersSuite) TestPlannerRecommendations() {
	s.recommender.plannerRecs = []models.RecommendationResult{{HotelID: "h1", Score: 90}}

	rec := s.do(http.MethodGet, "/api/events/ev1/hotels?planner_id=p1", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "h1")
}

func (s *HandlersSuite) TestGroupRecommendations() {
	s.recommender.groupRecs = []models.GroupRecommendation{{GroupID: "g1", GroupName: "VIP"}}

	rec := s.do(http.MethodGet, "/api/events/ev1/groups", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "VIP")
}

func (s *HandlersSuite) TestGuestRecommendations() {
	s.recommender.guestRecs = []models.RecommendationResult{{HotelID: "h1", Score: 70}}

	rec := s.do(http.MethodGet, "/api/events/ev1/guests?email=a@b.com", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "h1")
}

// ===== BAD SCENARIOS - Error conditions and edge cases =====

func (s *HandlersSuite) TestUpsertEventWithoutIDFails() {
	rec := s.do(http.MethodPost, "/api/events", models.Event{Name: "No ID"})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.catalog.events)
}

func (s *HandlersSuite) TestUpsertEventMalformedBodyFails() {
	req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.service.Router().ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestRecordActivityUnknownActionFails() {
	rec := s.do(http.MethodPost, "/api/activities", models.ActivityRecord{
		ActorID:   "u1",
		ActorRole: models.RoleUser,
		Action:    "teleport",
		TargetID:  "ev1",
	})

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestRecordActivityMissingActorFails() {
	rec := s.do(http.MethodPost, "/api/activities", models.ActivityRecord{
		Action:   models.ActionView,
		TargetID: "ev1",
	})

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestGuestRecommendationsRequireEmail() {
	rec := s.do(http.MethodGet, "/api/events/ev1/guests", nil)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestMissingEventMapsToNotFound() {
	s.recommender.err = fmt.Errorf("load event: %w", gormstore.ErrNotFound)

	rec := s.do(http.MethodGet, "/api/events/nope/groups", nil)

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlersSuite) TestNoSelectedHotelsMapsToConflict() {
	s.recommender.err = fmt.Errorf("event ev1: %w", recommend.ErrNoSelectedHotels)

	rec := s.do(http.MethodGet, "/api/events/ev1/groups", nil)

	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlersSuite) TestNotReadyReturns503() {
	s.service.ready.Store(false)

	rec := s.do(http.MethodGet, "/api/events/ev1/groups", nil)

	s.Equal(http.StatusServiceUnavailable, rec.Code)
}
