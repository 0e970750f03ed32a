package events

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated      EventType = "request_created"
	EventRequestStageChanged EventType = "request_stage_changed"
	EventRequestEstimated    EventType = "request_estimated"
	EventRequestConverted    EventType = "request_converted"
	EventRequestCancelled    EventType = "request_cancelled"
	EventRequestPmAssigned   EventType = "request_pm_assigned"
	EventRequestCommented    EventType = "request_commented"
	EventTicketCreated       EventType = "ticket_created"
	EventProjectCreated      EventType = "project_created"
)

// Event represents a domain event emitted by services. The payload is the
// event contract consumed by the notification layer; transport beyond the
// dispatcher is out of scope.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	RequestNumber string                 `json:"request_number"`
	Type          domain.RequestType     `json:"type"`
	Priority      domain.RequestPriority `json:"priority"`
	ClientID      *string                `json:"client_id,omitempty"`
	Title         string                 `json:"title"`
}

// StageChangedPayload payload.
type StageChangedPayload struct {
	OldStage   domain.RequestStage `json:"old_stage"`
	NewStage   domain.RequestStage `json:"new_stage"`
	HoldReason *string             `json:"hold_reason,omitempty"`
}

// EstimatedPayload payload.
type EstimatedPayload struct {
	StoryPoints int                       `json:"story_points"`
	Confidence  domain.EstimateConfidence `json:"confidence"`
	Recommended domain.RoutingDestination `json:"recommended_routing"`
}

// ConvertedPayload payload.
type ConvertedPayload struct {
	Destination domain.RoutingDestination `json:"destination"`
	TargetID    string                    `json:"target_id"`
	Overridden  bool                      `json:"overridden"`
}

// PmAssignedPayload payload.
type PmAssignedPayload struct {
	OldPmID *string `json:"old_pm_id,omitempty"`
	NewPmID string  `json:"new_pm_id"`
}

// CommentedPayload payload.
type CommentedPayload struct {
	CommentID   string `json:"comment_id"`
	IsInternal  bool   `json:"is_internal"`
	BodyPreview string `json:"body_preview"`
}
