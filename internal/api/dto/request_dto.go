package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/intake"
)

// CreateRequestRequest payload.
type CreateRequestRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Type        domain.RequestType     `json:"type"`
	Priority    domain.RequestPriority `json:"priority"`
	ClientID    *string                `json:"client_id"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Stage domain.RequestStage `json:"stage"`
}

// HoldRequest payload.
type HoldRequest struct {
	Reason string `json:"reason"`
}

// EstimateRequest payload.
type EstimateRequest struct {
	StoryPoints int                       `json:"story_points"`
	Confidence  domain.EstimateConfidence `json:"confidence"`
	Notes       *string                   `json:"notes,omitempty"`
}

// ConvertRequest payload.
type ConvertRequest struct {
	Destination     domain.RoutingDestination `json:"destination"`
	ProjectID       *string                   `json:"project_id,omitempty"`
	OverrideRouting bool                      `json:"override_routing"`
	OverrideReason  string                    `json:"override_reason,omitempty"`
}

// AssignPmRequest payload.
type AssignPmRequest struct {
	PmID string `json:"pm_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

// RequestSummary response row; aging is computed per read, never stored.
type RequestSummary struct {
	ID             string                     `json:"id"`
	RequestNumber  string                     `json:"request_number"`
	Title          string                     `json:"title"`
	Type           domain.RequestType         `json:"type"`
	Priority       domain.RequestPriority     `json:"priority"`
	Stage          domain.RequestStage        `json:"stage"`
	StageEnteredAt time.Time                  `json:"stage_entered_at"`
	Aging          intake.AgingLevel          `json:"aging"`
	HoldReason     *string                    `json:"hold_reason,omitempty"`
	StoryPoints    *int                       `json:"story_points,omitempty"`
	ClientID       *string                    `json:"client_id,omitempty"`
	AssignedPmID   *string                    `json:"assigned_pm_id,omitempty"`
	IsConverted    bool                       `json:"is_converted"`
	IsCancelled    bool                       `json:"is_cancelled"`
	ConvertedTo    *domain.RoutingDestination `json:"converted_to,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// RequestDetailResponse provides full request info.
type RequestDetailResponse struct {
	RequestSummary
	Description     string                     `json:"description"`
	Confidence      *domain.EstimateConfidence `json:"confidence,omitempty"`
	EstimationNotes *string                    `json:"estimation_notes,omitempty"`
	EstimatedAt     *time.Time                 `json:"estimated_at,omitempty"`
	Recommended     domain.RoutingDestination  `json:"recommended_routing"`
	Comments        []CommentResponse          `json:"comments"`
	History         []HistoryResponse          `json:"history"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	Body       string    `json:"body"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryResponse represents an audit entry.
type HistoryResponse struct {
	ID          string                   `json:"id"`
	ChangeType  domain.RequestChangeType `json:"change_type"`
	ChangedByID *string                  `json:"changed_by_id,omitempty"`
	OldValue    map[string]any           `json:"old_value,omitempty"`
	NewValue    map[string]any           `json:"new_value,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// ConvertResponse reports the conversion target.
type ConvertResponse struct {
	Request     RequestSummary            `json:"request"`
	Destination domain.RoutingDestination `json:"destination"`
	TargetID    string                    `json:"target_id"`
}
