package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// SprintService manages sprints and milestones under a project.
type SprintService struct {
	sprints  repository.SprintRepository
	projects repository.ProjectRepository
}

// NewSprintService constructs the service.
func NewSprintService(sprints repository.SprintRepository, projects repository.ProjectRepository) *SprintService {
	return &SprintService{sprints: sprints, projects: projects}
}

// SprintInput describes create/update payloads for sprints.
type SprintInput struct {
	Name      string
	Goal      string
	Status    domain.SprintStatus
	StartDate time.Time
	EndDate   time.Time
}

// MilestoneInput describes create/update payloads for milestones.
type MilestoneInput struct {
	SprintID    *string
	Name        string
	Description string
	DueDate     time.Time
	IsDone      bool
}

// CreateSprint adds a planned sprint to a project.
func (s *SprintService) CreateSprint(ctx context.Context, projectID string, input SprintInput) (*domain.Sprint, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}
	if err := validateSprintInput(input); err != nil {
		return nil, err
	}
	sprint := &domain.Sprint{
		ProjectID: projectID,
		Name:      strings.TrimSpace(input.Name),
		Goal:      strings.TrimSpace(input.Goal),
		Status:    domain.SprintStatusPlanned,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.sprints.CreateSprint(ctx, sprint); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sprint, nil
}

// UpdateSprint edits a sprint, including its status.
func (s *SprintService) UpdateSprint(ctx context.Context, sprintID string, input SprintInput) (*domain.Sprint, error) {
	sprint, err := s.sprints.GetSprintByID(ctx, sprintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := validateSprintInput(input); err != nil {
		return nil, err
	}
	sprint.Name = strings.TrimSpace(input.Name)
	sprint.Goal = strings.TrimSpace(input.Goal)
	sprint.StartDate = input.StartDate
	sprint.EndDate = input.EndDate
	if input.Status != "" {
		if !validSprintStatus(input.Status) {
			return nil, apperrors.NewValidationError("invalid sprint status", map[string]any{"status": input.Status})
		}
		sprint.Status = input.Status
	}
	if err := s.sprints.UpdateSprint(ctx, sprint); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sprint, nil
}

// ListSprints returns the sprints of a project ordered by start date.
func (s *SprintService) ListSprints(ctx context.Context, projectID string) ([]domain.Sprint, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}
	sprints, err := s.sprints.ListSprintsByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return sprints, nil
}

// CreateMilestone adds a milestone to a project, optionally bound to a sprint.
func (s *SprintService) CreateMilestone(ctx context.Context, projectID string, input MilestoneInput) (*domain.Milestone, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if input.SprintID != nil {
		sprint, err := s.sprints.GetSprintByID(ctx, *input.SprintID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if sprint.ProjectID != projectID {
			return nil, apperrors.NewConflict("sprint belongs to another project", map[string]any{"sprint_id": *input.SprintID})
		}
	}
	milestone := &domain.Milestone{
		ProjectID:   projectID,
		SprintID:    input.SprintID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		DueDate:     input.DueDate,
	}
	if err := s.sprints.CreateMilestone(ctx, milestone); err != nil {
		return nil, apperrors.MapError(err)
	}
	return milestone, nil
}

// CreateMilestoneForSprint adds a milestone bound to the given sprint.
func (s *SprintService) CreateMilestoneForSprint(ctx context.Context, sprintID string, input MilestoneInput) (*domain.Milestone, error) {
	sprint, err := s.sprints.GetSprintByID(ctx, sprintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	input.SprintID = &sprint.ID
	return s.CreateMilestone(ctx, sprint.ProjectID, input)
}

// UpdateMilestone edits a milestone, including marking it done.
func (s *SprintService) UpdateMilestone(ctx context.Context, milestoneID string, input MilestoneInput) (*domain.Milestone, error) {
	milestone, err := s.sprints.GetMilestoneByID(ctx, milestoneID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		milestone.Name = name
	}
	milestone.Description = strings.TrimSpace(input.Description)
	if !input.DueDate.IsZero() {
		milestone.DueDate = input.DueDate
	}
	milestone.SprintID = input.SprintID
	milestone.IsDone = input.IsDone
	if err := s.sprints.UpdateMilestone(ctx, milestone); err != nil {
		return nil, apperrors.MapError(err)
	}
	return milestone, nil
}

// ListMilestones returns the milestones of a project ordered by due date.
func (s *SprintService) ListMilestones(ctx context.Context, projectID string) ([]domain.Milestone, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}
	milestones, err := s.sprints.ListMilestonesByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return milestones, nil
}

func (s *SprintService) checkProject(ctx context.Context, projectID string) error {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func validateSprintInput(input SprintInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if !input.EndDate.After(input.StartDate) {
		return apperrors.NewValidationError("end date must follow start date", nil)
	}
	return nil
}

func validSprintStatus(status domain.SprintStatus) bool {
	switch status {
	case domain.SprintStatusPlanned, domain.SprintStatusActive, domain.SprintStatusCompleted:
		return true
	}
	return false
}
