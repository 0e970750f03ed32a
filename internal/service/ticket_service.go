package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// TicketService manages tickets outside the conversion path.
type TicketService struct {
	tickets repository.TicketRepository
	clients repository.ClientRepository
	now     func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, clients repository.ClientRepository) *TicketService {
	return &TicketService{tickets: tickets, clients: clients, now: time.Now}
}

// TicketInput describes create/update payloads.
type TicketInput struct {
	Title       string
	Description string
	ClientID    *string
	ProjectID   *string
	AssigneeID  *string
	Priority    domain.RequestPriority
}

var allowedTicketTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusOpen, domain.TicketStatusResolved},
	domain.TicketStatusResolved:   {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

// CreateTicket creates an open ticket directly (not via intake conversion).
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	clientID := input.ClientID
	if !actor.IsInternal {
		// client accounts can only file against their own client
		clientID = actor.ClientID
	}
	if clientID != nil {
		client, err := s.clients.GetByID(ctx, *clientID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !client.IsActive {
			return nil, apperrors.NewConflict("client inactive", map[string]any{"client_id": *clientID})
		}
	}

	ticket := &domain.Ticket{
		TicketNumber: generateTicketNumber(),
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		ClientID:     clientID,
		ProjectID:    input.ProjectID,
		AssigneeID:   input.AssigneeID,
		Status:       domain.TicketStatusOpen,
		Priority:     input.Priority,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.RequestPriorityMedium
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// UpdateStatus moves a ticket along its own small lifecycle.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.loadScoped(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticketTransitionAllowed(ticket.Status, status) {
		return nil, apperrors.NewInvalidTransition(ticket.Status, status, "")
	}
	ticket.Status = status
	if status == domain.TicketStatusClosed {
		now := s.now()
		ticket.ClosedAt = &now
	} else {
		ticket.ClosedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// UpdateTicket edits ticket fields.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketInput) (*domain.Ticket, error) {
	ticket, err := s.loadScoped(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(input.Title); title != "" {
		ticket.Title = title
	}
	ticket.Description = strings.TrimSpace(input.Description)
	if input.AssigneeID != nil {
		ticket.AssigneeID = input.AssigneeID
	}
	if input.ProjectID != nil {
		ticket.ProjectID = input.ProjectID
	}
	if input.Priority != "" {
		ticket.Priority = input.Priority
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// GetTicket fetches a ticket with client scoping.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.loadScoped(ctx, actor, ticketID)
}

// ListTickets returns filtered tickets; external callers are scoped to
// their client.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if !actor.IsInternal {
		if actor.ClientID == nil {
			return nil, apperrors.NewForbidden("no client scope")
		}
		filter.ClientID = actor.ClientID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) loadScoped(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.IsInternal {
		if actor.ClientID == nil || ticket.ClientID == nil || *actor.ClientID != *ticket.ClientID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	return ticket, nil
}

func ticketTransitionAllowed(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTicketTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
