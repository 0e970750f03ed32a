package domain

import "time"

// SprintStatus enumerates sprint lifecycle states.
type SprintStatus string

const (
	SprintStatusPlanned   SprintStatus = "planned"
	SprintStatusActive    SprintStatus = "active"
	SprintStatusCompleted SprintStatus = "completed"
)

// Sprint is a time-boxed iteration within a project.
type Sprint struct {
	ID        string
	ProjectID string
	Name      string
	Goal      string
	Status    SprintStatus
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Milestone marks a dated deliverable within a project.
type Milestone struct {
	ID          string
	ProjectID   string
	SprintID    *string
	Name        string
	Description string
	DueDate     time.Time
	IsDone      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
