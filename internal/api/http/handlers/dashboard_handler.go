package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// DashboardHandler round-trips per-user widget layouts.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// GetLayout GET /dashboard/layout.
func (h *DashboardHandler) GetLayout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	layout, err := h.service.GetLayout(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardLayoutResponse{
		Layout:    layout.Layout,
		UpdatedAt: layout.UpdatedAt,
	}})
}

// SaveLayout PUT /dashboard/layout.
func (h *DashboardHandler) SaveLayout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.DashboardLayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	layout, err := h.service.SaveLayout(c.Context(), principal.User.ID, req.Layout)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardLayoutResponse{
		Layout:    layout.Layout,
		UpdatedAt: layout.UpdatedAt,
	}})
}
