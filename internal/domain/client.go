package domain

import "time"

// Client represents a customer organization that requests, projects and
// tickets are billed against.
type Client struct {
	ID           string
	Name         string
	ContactEmail string
	Notes        string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
