package intake

import (
	"github.com/spec-kit/intake-service/internal/domain"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// Requests at or below this many story points route to a ticket.
const ticketPointCeiling = 8

// RecommendRouting decides whether a request should become a ticket or a
// full project. Change requests always route to a ticket regardless of
// size; unestimated requests default to a ticket.
func RecommendRouting(storyPoints *int, requestType domain.RequestType) domain.RoutingDestination {
	if requestType == domain.RequestTypeChangeRequest {
		return domain.RouteToTicket
	}
	if storyPoints == nil || *storyPoints <= ticketPointCeiling {
		return domain.RouteToTicket
	}
	return domain.RouteToProject
}

const (
	minStoryPoints = 1
	maxStoryPoints = 100
)

// ValidateEstimate checks story points and confidence before they are
// recorded on a request.
func ValidateEstimate(storyPoints int, confidence domain.EstimateConfidence) error {
	if storyPoints < minStoryPoints || storyPoints > maxStoryPoints {
		return apperrors.NewValidationError("story points must be between 1 and 100", map[string]any{
			"story_points": storyPoints,
		})
	}
	switch confidence {
	case domain.ConfidenceLow, domain.ConfidenceMedium, domain.ConfidenceHigh:
	default:
		return apperrors.NewValidationError("confidence must be low, medium or high", map[string]any{
			"confidence": confidence,
		})
	}
	return nil
}
