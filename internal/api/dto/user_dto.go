package dto

import (
	"time"

	"github.com/spec-kit/intake-service/internal/domain"
)

// UserRegisterRequest payload for new client users.
type UserRegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	ClientID *string `json:"client_id"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse representation.
type UserResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Role       domain.RoleName   `json:"role"`
	IsInternal bool              `json:"is_internal"`
	ClientID   *string           `json:"client_id,omitempty"`
	Status     domain.UserStatus `json:"status"`
}

// PermissionsResponse is the contract consumed by permission checks.
type PermissionsResponse struct {
	Permissions []domain.Permission `json:"permissions"`
}

// PermissionsUpdateRequest replaces a user's permission set.
type PermissionsUpdateRequest struct {
	Permissions []domain.Permission `json:"permissions"`
}

// PermissionGrantRequest grants or revokes a single permission.
type PermissionGrantRequest struct {
	Permission domain.Permission `json:"permission"`
}
