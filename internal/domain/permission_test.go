package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissionValid(t *testing.T) {
	tests := []struct {
		permission Permission
		want       bool
	}{
		{"ticket:create", true},
		{"request:assign_pm", true},
		{"a:b", true},
		{"", false},
		{"ticket", false},
		{"ticket:", false},
		{":create", false},
		{"Ticket:create", false},
		{"ticket:Create", false},
		{"ticket:create:extra", false},
		{"ticket:create ", false},
		{"ticket-admin:create", false},
	}
	for _, tc := range tests {
		t.Run(string(tc.permission), func(t *testing.T) {
			require.Equal(t, tc.want, tc.permission.Valid())
		})
	}
}

func TestDefaultPermissionsReturnsCopy(t *testing.T) {
	first := DefaultPermissions(RoleViewer)
	require.NotEmpty(t, first)
	first[0] = "tampered:entry"

	second := DefaultPermissions(RoleViewer)
	require.NotEqual(t, first[0], second[0])
}

func TestDefaultPermissionsUnknownRole(t *testing.T) {
	require.Empty(t, DefaultPermissions(RoleName("ghost")))
}

func TestDefaultPermissionsAreWellFormed(t *testing.T) {
	for _, role := range []RoleName{RoleAdmin, RoleEditor, RoleViewer, RoleClient} {
		for _, permission := range DefaultPermissions(role) {
			require.Truef(t, permission.Valid(), "role %s has malformed permission %q", role, permission)
		}
	}
}
