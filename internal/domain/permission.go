package domain

import "regexp"

// Permission is an entity:action token, e.g. "ticket:create".
type Permission string

var permissionPattern = regexp.MustCompile(`^[a-z]+:[a-z_]+$`)

// Valid reports whether the token matches the entity:action form.
func (p Permission) Valid() bool {
	return permissionPattern.MatchString(string(p))
}

// RoleName enumerates built-in roles. Roles only supply a default permission
// set; explicit per-user grants take precedence.
type RoleName string

const (
	RoleAdmin  RoleName = "admin"
	RoleEditor RoleName = "editor"
	RoleViewer RoleName = "viewer"
	RoleClient RoleName = "client"
)

var rolePermissions = map[RoleName][]Permission{
	RoleAdmin: {
		"request:create", "request:update", "request:transition", "request:estimate",
		"request:convert", "request:cancel", "request:assign",
		"client:create", "client:update", "client:view",
		"project:create", "project:update", "project:view",
		"ticket:create", "ticket:update", "ticket:view",
		"sprint:create", "sprint:update", "sprint:view",
		"user:manage", "permission:manage",
	},
	RoleEditor: {
		"request:create", "request:update", "request:transition", "request:estimate",
		"client:view",
		"project:update", "project:view",
		"ticket:create", "ticket:update", "ticket:view",
		"sprint:create", "sprint:update", "sprint:view",
	},
	RoleViewer: {
		"client:view", "project:view", "ticket:view", "sprint:view",
	},
	RoleClient: {
		"request:create", "ticket:create", "ticket:view", "project:view",
	},
}

// DefaultPermissions returns the fallback permission set for a role. The
// returned slice is a copy.
func DefaultPermissions(role RoleName) []Permission {
	defaults := rolePermissions[role]
	out := make([]Permission, len(defaults))
	copy(out, defaults)
	return out
}
