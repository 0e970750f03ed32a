package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// SprintsHandler manages sprint and milestone endpoints.
type SprintsHandler struct {
	service *service.SprintService
}

// NewSprintsHandler constructs handler.
func NewSprintsHandler(sprintService *service.SprintService) *SprintsHandler {
	return &SprintsHandler{service: sprintService}
}

// CreateSprint POST /projects/:id/sprints.
func (h *SprintsHandler) CreateSprint(c *fiber.Ctx) error {
	var req dto.SprintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sprint, err := h.service.CreateSprint(c.Context(), c.Params("id"), sprintInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sprintResponse(sprint)})
}

// ListSprints GET /projects/:id/sprints.
func (h *SprintsHandler) ListSprints(c *fiber.Ctx) error {
	sprints, err := h.service.ListSprints(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.SprintResponse, 0, len(sprints))
	for i := range sprints {
		items = append(items, sprintResponse(&sprints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateSprint PATCH /sprints/:id.
func (h *SprintsHandler) UpdateSprint(c *fiber.Ctx) error {
	var req dto.SprintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sprint, err := h.service.UpdateSprint(c.Context(), c.Params("id"), sprintInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sprintResponse(sprint)})
}

// CreateMilestone POST /sprints/:id/milestones.
func (h *SprintsHandler) CreateMilestone(c *fiber.Ctx) error {
	var req dto.MilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	milestone, err := h.service.CreateMilestoneForSprint(c.Context(), c.Params("id"), milestoneInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": milestoneResponse(milestone)})
}

// ListMilestones GET /projects/:id/milestones.
func (h *SprintsHandler) ListMilestones(c *fiber.Ctx) error {
	milestones, err := h.service.ListMilestones(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.MilestoneResponse, 0, len(milestones))
	for i := range milestones {
		items = append(items, milestoneResponse(&milestones[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateMilestone PATCH /milestones/:id.
func (h *SprintsHandler) UpdateMilestone(c *fiber.Ctx) error {
	var req dto.MilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	milestone, err := h.service.UpdateMilestone(c.Context(), c.Params("id"), milestoneInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": milestoneResponse(milestone)})
}

func sprintInput(req dto.SprintRequest) service.SprintInput {
	return service.SprintInput{
		Name:      req.Name,
		Goal:      req.Goal,
		Status:    req.Status,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
}

func milestoneInput(req dto.MilestoneRequest) service.MilestoneInput {
	return service.MilestoneInput{
		SprintID:    req.SprintID,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		IsDone:      req.IsDone,
	}
}

func sprintResponse(sprint *domain.Sprint) dto.SprintResponse {
	return dto.SprintResponse{
		ID:        sprint.ID,
		ProjectID: sprint.ProjectID,
		Name:      sprint.Name,
		Goal:      sprint.Goal,
		Status:    sprint.Status,
		StartDate: sprint.StartDate,
		EndDate:   sprint.EndDate,
		CreatedAt: sprint.CreatedAt,
		UpdatedAt: sprint.UpdatedAt,
	}
}

func milestoneResponse(milestone *domain.Milestone) dto.MilestoneResponse {
	return dto.MilestoneResponse{
		ID:          milestone.ID,
		ProjectID:   milestone.ProjectID,
		SprintID:    milestone.SprintID,
		Name:        milestone.Name,
		Description: milestone.Description,
		DueDate:     milestone.DueDate,
		IsDone:      milestone.IsDone,
		CreatedAt:   milestone.CreatedAt,
		UpdatedAt:   milestone.UpdatedAt,
	}
}
