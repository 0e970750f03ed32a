package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// PermissionsHandler exposes the permission lookup and grant admin endpoints.
type PermissionsHandler struct {
	service *service.PermissionService
}

// NewPermissionsHandler constructs handler.
func NewPermissionsHandler(permissionService *service.PermissionService) *PermissionsHandler {
	return &PermissionsHandler{service: permissionService}
}

// GetUserPermissions GET /users/:id/permissions.
func (h *PermissionsHandler) GetUserPermissions(c *fiber.Ctx) error {
	permissions, err := h.service.GetUserPermissions(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.PermissionsResponse{Permissions: permissions})
}

// ReplacePermissions PUT /users/:id/permissions.
func (h *PermissionsHandler) ReplacePermissions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.PermissionsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ReplacePermissions(c.Context(), principal.User, c.Params("id"), req.Permissions); err != nil {
		return err
	}
	return c.JSON(dto.PermissionsResponse{Permissions: req.Permissions})
}

// GrantPermission POST /users/:id/permissions.
func (h *PermissionsHandler) GrantPermission(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.PermissionGrantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Grant(c.Context(), principal.User, c.Params("id"), req.Permission); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"status": "granted"}})
}

// RevokePermission DELETE /users/:id/permissions.
func (h *PermissionsHandler) RevokePermission(c *fiber.Ctx) error {
	var req dto.PermissionGrantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Revoke(c.Context(), c.Params("id"), req.Permission); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "revoked"}})
}
