package service

import (
	"context"
	"strings"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// ClientService manages customer organizations.
type ClientService struct {
	clients repository.ClientRepository
}

// NewClientService constructs the service.
func NewClientService(clients repository.ClientRepository) *ClientService {
	return &ClientService{clients: clients}
}

// ClientInput describes create/update payloads.
type ClientInput struct {
	Name         string
	ContactEmail string
	Notes        string
}

// CreateClient creates an active client.
func (s *ClientService) CreateClient(ctx context.Context, input ClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	client := &domain.Client{
		Name:         name,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Notes:        input.Notes,
		IsActive:     true,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, apperrors.MapError(err)
	}
	return client, nil
}

// UpdateClient modifies client metadata and the active flag.
func (s *ClientService) UpdateClient(ctx context.Context, id string, input ClientInput, active bool) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		client.Name = name
	}
	client.ContactEmail = strings.TrimSpace(input.ContactEmail)
	client.Notes = input.Notes
	client.IsActive = active
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, apperrors.MapError(err)
	}
	return client, nil
}

// GetClient fetches a client. An external caller may only read their own.
func (s *ClientService) GetClient(ctx context.Context, actor *domain.User, id string) (*domain.Client, error) {
	if !actor.IsInternal && (actor.ClientID == nil || *actor.ClientID != id) {
		return nil, apperrors.NewForbidden("access denied")
	}
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return client, nil
}

// ListClients lists clients, optionally including inactive ones.
func (s *ClientService) ListClients(ctx context.Context, includeInactive bool) ([]domain.Client, error) {
	clients, err := s.clients.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return clients, nil
}
