package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/domain"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

const permissionsKey = "auth_permissions"

// PermissionSource resolves a user's effective permission set.
type PermissionSource interface {
	GetUserPermissions(ctx context.Context, userID string) ([]domain.Permission, error)
}

// Gate decides whether a caller may perform an action before it reaches any
// service mutation. Internal staff bypass fine-grained checks entirely; for
// everyone else the permission source is consulted and any resolution
// failure denies (fail closed).
type Gate struct {
	source PermissionSource
}

// NewGate constructs the authorization gate.
func NewGate(source PermissionSource) *Gate {
	return &Gate{source: source}
}

// Require checks a single permission against the principal. The permission
// source is never consulted for internal staff.
func (g *Gate) Require(ctx context.Context, principal *Principal, permission domain.Permission) error {
	if principal == nil || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if principal.IsInternal() {
		return nil
	}
	permissions, err := g.source.GetUserPermissions(ctx, principal.User.ID)
	if err != nil {
		return apperrors.NewPermissionDenied(string(permission))
	}
	if !hasPermission(permissions, permission) {
		return apperrors.NewPermissionDenied(string(permission))
	}
	return nil
}

// RequireAny succeeds when the principal holds at least one of the given
// permissions (OR semantics).
func (g *Gate) RequireAny(ctx context.Context, principal *Principal, permissions ...domain.Permission) error {
	if principal == nil || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if principal.IsInternal() {
		return nil
	}
	held, err := g.source.GetUserPermissions(ctx, principal.User.ID)
	if err != nil {
		return apperrors.NewPermissionDenied(joinPermissions(permissions))
	}
	for _, permission := range permissions {
		if hasPermission(held, permission) {
			return nil
		}
	}
	return apperrors.NewPermissionDenied(joinPermissions(permissions))
}

// RequireAll succeeds only when the principal holds every given permission
// (AND semantics).
func (g *Gate) RequireAll(ctx context.Context, principal *Principal, permissions ...domain.Permission) error {
	if principal == nil || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if principal.IsInternal() {
		return nil
	}
	held, err := g.source.GetUserPermissions(ctx, principal.User.ID)
	if err != nil {
		return apperrors.NewPermissionDenied(joinPermissions(permissions))
	}
	for _, permission := range permissions {
		if !hasPermission(held, permission) {
			return apperrors.NewPermissionDenied(string(permission))
		}
	}
	return nil
}

// RequireInternal returns middleware that only admits internal staff.
func RequireInternal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.IsInternal() {
			return apperrors.NewForbidden("internal staff required")
		}
		return c.Next()
	}
}

// RequirePermission returns middleware gating a route on one permission.
// Resolved permission sets are memoized in the request locals so stacked
// permission middlewares hit the source at most once per request.
func (g *Gate) RequirePermission(permission domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.IsInternal() {
			return c.Next()
		}
		held, err := g.permissionsForRequest(c, principal)
		if err != nil || !hasPermission(held, permission) {
			return apperrors.NewPermissionDenied(string(permission))
		}
		return c.Next()
	}
}

// RequireAnyPermission returns middleware with OR semantics over permissions.
func (g *Gate) RequireAnyPermission(permissions ...domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.IsInternal() {
			return c.Next()
		}
		held, err := g.permissionsForRequest(c, principal)
		if err == nil {
			for _, permission := range permissions {
				if hasPermission(held, permission) {
					return c.Next()
				}
			}
		}
		return apperrors.NewPermissionDenied(joinPermissions(permissions))
	}
}

func (g *Gate) permissionsForRequest(c *fiber.Ctx, principal *Principal) ([]domain.Permission, error) {
	if cached, ok := c.Locals(permissionsKey).([]domain.Permission); ok {
		return cached, nil
	}
	permissions, err := g.source.GetUserPermissions(c.Context(), principal.User.ID)
	if err != nil {
		return nil, err
	}
	c.Locals(permissionsKey, permissions)
	return permissions, nil
}

func hasPermission(held []domain.Permission, permission domain.Permission) bool {
	for _, candidate := range held {
		if candidate == permission {
			return true
		}
	}
	return false
}

func joinPermissions(permissions []domain.Permission) string {
	out := ""
	for i, permission := range permissions {
		if i > 0 {
			out += ", "
		}
		out += string(permission)
	}
	return out
}
