package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// SprintRequest payload for create/update.
type SprintRequest struct {
	Name      string              `json:"name"`
	Goal      string              `json:"goal"`
	Status    domain.SprintStatus `json:"status,omitempty"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
}

// SprintResponse representation.
type SprintResponse struct {
	ID        string              `json:"id"`
	ProjectID string              `json:"project_id"`
	Name      string              `json:"name"`
	Goal      string              `json:"goal"`
	Status    domain.SprintStatus `json:"status"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// MilestoneRequest payload for create/update.
type MilestoneRequest struct {
	SprintID    *string   `json:"sprint_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	IsDone      bool      `json:"is_done"`
}

// MilestoneResponse representation.
type MilestoneResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	SprintID    *string   `json:"sprint_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	IsDone      bool      `json:"is_done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
