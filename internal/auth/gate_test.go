package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-service/internal/domain"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

type fakePermissionSource struct {
	permissions []domain.Permission
	err         error
	calls       int
}

func (f *fakePermissionSource) GetUserPermissions(ctx context.Context, userID string) ([]domain.Permission, error) {
	f.calls++
	return f.permissions, f.err
}

func internalPrincipal() *Principal {
	return &Principal{User: &domain.User{ID: "staff-1", Role: domain.RoleAdmin, IsInternal: true}}
}

func clientPrincipal() *Principal {
	clientID := "client-1"
	return &Principal{User: &domain.User{ID: "user-1", Role: domain.RoleClient, ClientID: &clientID}}
}

func TestRequireInternalBypassesSource(t *testing.T) {
	source := &fakePermissionSource{err: errors.New("must not be called")}
	gate := NewGate(source)

	require.NoError(t, gate.Require(context.Background(), internalPrincipal(), "request:convert"))
	require.NoError(t, gate.RequireAny(context.Background(), internalPrincipal(), "a:b", "c:d"))
	require.NoError(t, gate.RequireAll(context.Background(), internalPrincipal(), "a:b", "c:d"))
	require.Zero(t, source.calls)
}

func TestRequireGrantedPermission(t *testing.T) {
	source := &fakePermissionSource{permissions: []domain.Permission{"request:create", "ticket:view"}}
	gate := NewGate(source)

	require.NoError(t, gate.Require(context.Background(), clientPrincipal(), "request:create"))
	require.Equal(t, 1, source.calls)
}

func TestRequireMissingPermission(t *testing.T) {
	source := &fakePermissionSource{permissions: []domain.Permission{"ticket:view"}}
	gate := NewGate(source)

	err := gate.Require(context.Background(), clientPrincipal(), "request:convert")
	require.Error(t, err)
	require.True(t, apperrors.IsPermissionDenied(err))
	require.Contains(t, err.Error(), "Permission denied: request:convert")
}

func TestRequireFailsClosedOnSourceError(t *testing.T) {
	source := &fakePermissionSource{err: errors.New("store unavailable")}
	gate := NewGate(source)

	err := gate.Require(context.Background(), clientPrincipal(), "request:create")
	require.Error(t, err)
	require.True(t, apperrors.IsPermissionDenied(err))
}

func TestRequireNilPrincipal(t *testing.T) {
	gate := NewGate(&fakePermissionSource{})

	err := gate.Require(context.Background(), nil, "request:create")
	require.Error(t, err)
	require.False(t, apperrors.IsPermissionDenied(err))
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "UNAUTHORIZED", domainErr.Code)
}

func TestRequireAny(t *testing.T) {
	source := &fakePermissionSource{permissions: []domain.Permission{"ticket:view"}}
	gate := NewGate(source)

	require.NoError(t, gate.RequireAny(context.Background(), clientPrincipal(), "request:create", "ticket:view"))

	err := gate.RequireAny(context.Background(), clientPrincipal(), "request:create", "request:convert")
	require.Error(t, err)
	require.Contains(t, err.Error(), "request:create, request:convert")
}

func TestRequireAll(t *testing.T) {
	source := &fakePermissionSource{permissions: []domain.Permission{"ticket:view", "ticket:update"}}
	gate := NewGate(source)

	require.NoError(t, gate.RequireAll(context.Background(), clientPrincipal(), "ticket:view", "ticket:update"))

	err := gate.RequireAll(context.Background(), clientPrincipal(), "ticket:view", "ticket:create")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Permission denied: ticket:create")
}
