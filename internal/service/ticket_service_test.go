package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
)

func newTicketFixture() (*TicketService, *memTicketRepo) {
	tickets := newMemTicketRepo()
	clients := &memClientRepo{clients: map[string]domain.Client{
		"client-1": {ID: "client-1", Name: "Acme", IsActive: true},
		"client-2": {ID: "client-2", Name: "Globex", IsActive: true},
	}}
	return NewTicketService(tickets, clients), tickets
}

func TestCreateTicketScopesClientAccounts(t *testing.T) {
	service, _ := newTicketFixture()

	// a client account cannot file tickets for another client
	ticket, err := service.CreateTicket(context.Background(), clientActor(), TicketInput{
		Title:    "Broken login",
		ClientID: strPtr("client-2"),
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.ClientID)
	require.Equal(t, "client-1", *ticket.ClientID)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.Equal(t, domain.RequestPriorityMedium, ticket.Priority)
}

func TestTicketLifecycle(t *testing.T) {
	service, _ := newTicketFixture()
	ticket, err := service.CreateTicket(context.Background(), staffActor(), TicketInput{Title: "Crash"})
	require.NoError(t, err)

	// resolved straight from open is not a legal move
	_, err = service.UpdateStatus(context.Background(), staffActor(), ticket.ID, domain.TicketStatusResolved)
	require.Error(t, err)

	inProgress, err := service.UpdateStatus(context.Background(), staffActor(), ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, inProgress.Status)

	resolved, err := service.UpdateStatus(context.Background(), staffActor(), ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.Nil(t, resolved.ClosedAt)

	closed, err := service.UpdateStatus(context.Background(), staffActor(), ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)

	_, err = service.UpdateStatus(context.Background(), staffActor(), ticket.ID, domain.TicketStatusOpen)
	require.Error(t, err)
}

func TestListTicketsScoped(t *testing.T) {
	service, _ := newTicketFixture()
	_, err := service.CreateTicket(context.Background(), staffActor(), TicketInput{Title: "Mine", ClientID: strPtr("client-1")})
	require.NoError(t, err)
	_, err = service.CreateTicket(context.Background(), staffActor(), TicketInput{Title: "Theirs", ClientID: strPtr("client-2")})
	require.NoError(t, err)

	all, err := service.ListTickets(context.Background(), staffActor(), repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestGetTicketForeignClientDenied(t *testing.T) {
	service, _ := newTicketFixture()
	ticket, err := service.CreateTicket(context.Background(), staffActor(), TicketInput{Title: "Theirs", ClientID: strPtr("client-2")})
	require.NoError(t, err)

	_, err = service.GetTicket(context.Background(), clientActor(), ticket.ID)
	require.Error(t, err)
}
