package recommend

import (
	"context"

	"github.com/thebtf/venuerank/pkg/models"
)

// Named entry points for the tracked user actions. Each one builds the
// ledger entry and defers weight resolution to RecordActivity so the
// static weight tables stay the single source of truth.

func (s *Service) RecordSearch(ctx context.Context, userID, eventID, query string) error {
	return s.RecordActivity(ctx, &models.ActivityRecord{
		ActorID:     userID,
		ActorRole:   models.RoleUser,
		Action:      models.ActionSearch,
		TargetID:    eventID,
		TargetType:  models.EntityEvent,
		SearchQuery: query,
	})
}

func (s *Service) RecordView(ctx context.Context, userID, eventID string) error {
	return s.recordUserAction(ctx, userID, models.ActionView, eventID)
}

func (s *Service) RecordBookmark(ctx context.Context, userID, eventID string) error {
	return s.recordUserAction(ctx, userID, models.ActionBookmark, eventID)
}

func (s *Service) RecordAddToCart(ctx context.Context, userID, eventID string) error {
	return s.recordUserAction(ctx, userID, models.ActionAddToCart, eventID)
}

func (s *Service) RecordBook(ctx context.Context, userID, eventID string) error {
	return s.recordUserAction(ctx, userID, models.ActionBook, eventID)
}

func (s *Service) recordUserAction(ctx context.Context, userID string, action models.ActionType, eventID string) error {
	return s.RecordActivity(ctx, &models.ActivityRecord{
		ActorID:    userID,
		ActorRole:  models.RoleUser,
		Action:     action,
		TargetID:   eventID,
		TargetType: models.EntityEvent,
	})
}

// Planner analogues target hotels and proposals instead of events.

func (s *Service) RecordHotelViewed(ctx context.Context, plannerID, hotelID string) error {
	return s.recordPlannerAction(ctx, plannerID, models.ActionHotelViewed, hotelID, models.EntityHotel)
}

func (s *Service) RecordHotelSelected(ctx context.Context, plannerID, hotelID string) error {
	return s.recordPlannerAction(ctx, plannerID, models.ActionHotelSelected, hotelID, models.EntityHotel)
}

func (s *Service) RecordHotelRejected(ctx context.Context, plannerID, hotelID string) error {
	return s.recordPlannerAction(ctx, plannerID, models.ActionHotelRejected, hotelID, models.EntityHotel)
}

func (s *Service) RecordProposalViewed(ctx context.Context, plannerID, proposalID string) error {
	return s.recordPlannerAction(ctx, plannerID, models.ActionProposalViewed, proposalID, models.EntityProposal)
}

func (s *Service) RecordProposalSelected(ctx context.Context, plannerID, proposalID string) error {
	return s.recordPlannerAction(ctx, plannerID, models.ActionProposalSelected, proposalID, models.EntityProposal)
}

func (s *Service) RecordProposalRejected(ctx context.Context, plannerID, proposalID string) error {
	return s.recordPlannerAction(ctx, plannerID, models.ActionProposalRejected, proposalID, models.EntityProposal)
}

func (s *Service) recordPlannerAction(ctx context.Context, plannerID string, action models.ActionType, targetID string, targetType models.EntityType) error {
	return s.RecordActivity(ctx, &models.ActivityRecord{
		ActorID:    plannerID,
		ActorRole:  models.RolePlanner,
		Action:     action,
		TargetID:   targetID,
		TargetType: targetType,
	})
}
