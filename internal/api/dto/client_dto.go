package dto

import "time"

// ClientRequest payload for create/update.
type ClientRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	Notes        string `json:"notes"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// ClientResponse representation.
type ClientResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	Notes        string    `json:"notes"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
