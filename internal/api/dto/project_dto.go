package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// ProjectRequest payload for create/update.
type ProjectRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	ClientID    *string              `json:"client_id"`
	PmID        *string              `json:"pm_id"`
	Status      domain.ProjectStatus `json:"status,omitempty"`
	StartDate   *time.Time           `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
}

// ProjectResponse representation.
type ProjectResponse struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	ClientID      *string              `json:"client_id,omitempty"`
	PmID          *string              `json:"pm_id,omitempty"`
	Status        domain.ProjectStatus `json:"status"`
	StoryPoints   *int                 `json:"story_points,omitempty"`
	SourceRequest *string              `json:"source_request,omitempty"`
	StartDate     *time.Time           `json:"start_date,omitempty"`
	EndDate       *time.Time           `json:"end_date,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
