package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// ProjectsHandler manages project endpoints.
type ProjectsHandler struct {
	service *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{service: projectService}
}

// CreateProject POST /projects.
func (h *ProjectsHandler) CreateProject(c *fiber.Ctx) error {
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.CreateProject(c.Context(), projectInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// ListProjects GET /projects.
func (h *ProjectsHandler) ListProjects(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	filter := repository.ProjectFilter{}
	if clientID := c.Query("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if pmID := c.Query("pm_id"); pmID != "" {
		filter.PmID = &pmID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ProjectStatus(strings.TrimSpace(part)))
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	projects, err := h.service.ListProjects(c.Context(), principal.User, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetProject GET /projects/:id.
func (h *ProjectsHandler) GetProject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	project, err := h.service.GetProject(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// UpdateProject PATCH /projects/:id.
func (h *ProjectsHandler) UpdateProject(c *fiber.Ctx) error {
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.UpdateProject(c.Context(), c.Params("id"), projectInput(req), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

func projectInput(req dto.ProjectRequest) service.ProjectInput {
	return service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		ClientID:    req.ClientID,
		PmID:        req.PmID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:            project.ID,
		Name:          project.Name,
		Description:   project.Description,
		ClientID:      project.ClientID,
		PmID:          project.PmID,
		Status:        project.Status,
		StoryPoints:   project.StoryPoints,
		SourceRequest: project.SourceRequest,
		StartDate:     project.StartDate,
		EndDate:       project.EndDate,
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
	}
}
