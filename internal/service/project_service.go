package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// ProjectService manages projects outside the conversion path.
type ProjectService struct {
	projects repository.ProjectRepository
	clients  repository.ClientRepository
	users    repository.UserRepository
}

// ProjectDependencies bundles repositories.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	ClientRepo  repository.ClientRepository
	UserRepo    repository.UserRepository
}

// NewProjectService constructs the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	return &ProjectService{
		projects: deps.ProjectRepo,
		clients:  deps.ClientRepo,
		users:    deps.UserRepo,
	}
}

// ProjectInput describes create/update payloads.
type ProjectInput struct {
	Name        string
	Description string
	ClientID    *string
	PmID        *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// CreateProject creates a project in planning.
func (s *ProjectService) CreateProject(ctx context.Context, input ProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if input.ClientID != nil {
		client, err := s.clients.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !client.IsActive {
			return nil, apperrors.NewConflict("client inactive", map[string]any{"client_id": *input.ClientID})
		}
	}
	if err := s.validatePm(ctx, input.PmID); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:        name,
		Description: input.Description,
		ClientID:    input.ClientID,
		PmID:        input.PmID,
		Status:      domain.ProjectStatusPlanning,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// UpdateProject updates project metadata and status.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, input ProjectInput, status domain.ProjectStatus) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.validatePm(ctx, input.PmID); err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		project.Name = name
	}
	project.Description = input.Description
	if input.ClientID != nil {
		project.ClientID = input.ClientID
	}
	if input.PmID != nil {
		project.PmID = input.PmID
	}
	if status != "" {
		project.Status = status
	}
	project.StartDate = input.StartDate
	project.EndDate = input.EndDate
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// GetProject fetches a project; external callers are scoped to their client.
func (s *ProjectService) GetProject(ctx context.Context, actor *domain.User, id string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.IsInternal {
		if actor.ClientID == nil || project.ClientID == nil || *actor.ClientID != *project.ClientID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	return project, nil
}

// ListProjects returns filtered projects; external callers see only their
// client's projects.
func (s *ProjectService) ListProjects(ctx context.Context, actor *domain.User, filter repository.ProjectFilter) ([]domain.Project, error) {
	if !actor.IsInternal {
		if actor.ClientID == nil {
			return nil, apperrors.NewForbidden("no client scope")
		}
		filter.ClientID = actor.ClientID
	}
	projects, err := s.projects.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

func (s *ProjectService) validatePm(ctx context.Context, pmID *string) error {
	if pmID == nil {
		return nil
	}
	pm, err := s.users.GetByID(ctx, *pmID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !pm.IsInternal {
		return apperrors.NewConflict("project manager must be internal staff", map[string]any{"user_id": *pmID})
	}
	return nil
}
