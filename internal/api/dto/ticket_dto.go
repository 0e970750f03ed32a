package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// TicketRequest payload for create/update.
type TicketRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	ClientID    *string                `json:"client_id"`
	ProjectID   *string                `json:"project_id"`
	AssigneeID  *string                `json:"assignee_id"`
	Priority    domain.RequestPriority `json:"priority"`
}

// TicketStatusRequest payload.
type TicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketResponse representation.
type TicketResponse struct {
	ID            string                 `json:"id"`
	TicketNumber  string                 `json:"ticket_number"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	ClientID      *string                `json:"client_id,omitempty"`
	ProjectID     *string                `json:"project_id,omitempty"`
	AssigneeID    *string                `json:"assignee_id,omitempty"`
	Status        domain.TicketStatus    `json:"status"`
	Priority      domain.RequestPriority `json:"priority"`
	SourceRequest *string                `json:"source_request,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	ClosedAt      *time.Time             `json:"closed_at,omitempty"`
}
