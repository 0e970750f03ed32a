package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Ticket is a lightweight work item, the small-side outcome of intake
// routing (or created directly).
type Ticket struct {
	ID            string
	TicketNumber  string
	Title         string
	Description   string
	ClientID      *string
	ProjectID     *string
	AssigneeID    *string
	Status        TicketStatus
	Priority      RequestPriority
	SourceRequest *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ClosedAt      *time.Time
}
