package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// ClientsHandler manages client account endpoints.
type ClientsHandler struct {
	service *service.ClientService
}

// NewClientsHandler constructs handler.
func NewClientsHandler(clientService *service.ClientService) *ClientsHandler {
	return &ClientsHandler{service: clientService}
}

// CreateClient POST /clients.
func (h *ClientsHandler) CreateClient(c *fiber.Ctx) error {
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	client, err := h.service.CreateClient(c.Context(), service.ClientInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": clientResponse(client)})
}

// ListClients GET /clients.
func (h *ClientsHandler) ListClients(c *fiber.Ctx) error {
	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))
	clients, err := h.service.ListClients(c.Context(), includeInactive)
	if err != nil {
		return err
	}
	items := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, clientResponse(&clients[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetClient GET /clients/:id.
func (h *ClientsHandler) GetClient(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	client, err := h.service.GetClient(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

// UpdateClient PATCH /clients/:id.
func (h *ClientsHandler) UpdateClient(c *fiber.Ctx) error {
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	client, err := h.service.UpdateClient(c.Context(), c.Params("id"), service.ClientInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Notes:        req.Notes,
	}, active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

func clientResponse(client *domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:           client.ID,
		Name:         client.Name,
		ContactEmail: client.ContactEmail,
		Notes:        client.Notes,
		IsActive:     client.IsActive,
		CreatedAt:    client.CreatedAt,
		UpdatedAt:    client.UpdatedAt,
	}
}
