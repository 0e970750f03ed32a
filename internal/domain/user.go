package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for anyone who signs in. Internal staff carry
// IsInternal=true and bypass fine-grained permission checks; client accounts
// are tied to a client and checked against explicit grants.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         RoleName
	IsInternal   bool
	ClientID     *string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
