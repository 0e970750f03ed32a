package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
)

type memPermissionRepo struct {
	grants map[string][]domain.Permission
	err    error
}

func (m *memPermissionRepo) ListByUser(ctx context.Context, userID string) ([]domain.Permission, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.grants[userID], nil
}

func (m *memPermissionRepo) Grant(ctx context.Context, userID string, permission domain.Permission, grantedBy *string) error {
	m.grants[userID] = append(m.grants[userID], permission)
	return nil
}

func (m *memPermissionRepo) Revoke(ctx context.Context, userID string, permission domain.Permission) error {
	kept := m.grants[userID][:0]
	for _, candidate := range m.grants[userID] {
		if candidate != permission {
			kept = append(kept, candidate)
		}
	}
	m.grants[userID] = kept
	return nil
}

func (m *memPermissionRepo) ReplaceAll(ctx context.Context, userID string, permissions []domain.Permission, grantedBy *string) error {
	m.grants[userID] = append([]domain.Permission{}, permissions...)
	return nil
}

func newPermissionFixture(grants *memPermissionRepo) *PermissionService {
	users := &memUserRepo{users: map[string]domain.User{
		"user-1":  {ID: "user-1", Role: domain.RoleClient, Status: domain.UserStatusActive},
		"staff-1": {ID: "staff-1", Role: domain.RoleAdmin, IsInternal: true, Status: domain.UserStatusActive},
	}}
	return NewPermissionService(PermissionDependencies{
		UserRepo:       users,
		PermissionRepo: grants,
		Cache:          nil,
		Logger:         zap.NewNop(),
	})
}

func TestGetUserPermissionsExplicitGrantsWin(t *testing.T) {
	grants := &memPermissionRepo{grants: map[string][]domain.Permission{
		"user-1": {"request:convert"},
	}}
	service := newPermissionFixture(grants)

	permissions, err := service.GetUserPermissions(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, []domain.Permission{"request:convert"}, permissions)
}

func TestGetUserPermissionsFallsBackToRoleDefaults(t *testing.T) {
	grants := &memPermissionRepo{grants: map[string][]domain.Permission{}}
	service := newPermissionFixture(grants)

	permissions, err := service.GetUserPermissions(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, domain.DefaultPermissions(domain.RoleClient), permissions)
}

func TestGetUserPermissionsStoreErrorPropagates(t *testing.T) {
	grants := &memPermissionRepo{err: errors.New("store down")}
	service := newPermissionFixture(grants)

	_, err := service.GetUserPermissions(context.Background(), "user-1")
	require.Error(t, err)
}

func TestGrantRejectsMalformedPermission(t *testing.T) {
	grants := &memPermissionRepo{grants: map[string][]domain.Permission{}}
	service := newPermissionFixture(grants)
	actor := &domain.User{ID: "staff-1", IsInternal: true}

	err := service.Grant(context.Background(), actor, "user-1", "Not-Valid")
	require.Error(t, err)
	require.Empty(t, grants.grants["user-1"])

	require.NoError(t, service.Grant(context.Background(), actor, "user-1", "report:export"))
	require.Equal(t, []domain.Permission{"report:export"}, grants.grants["user-1"])
}

func TestReplacePermissionsValidatesWholeSet(t *testing.T) {
	grants := &memPermissionRepo{grants: map[string][]domain.Permission{
		"user-1": {"ticket:view"},
	}}
	service := newPermissionFixture(grants)
	actor := &domain.User{ID: "staff-1", IsInternal: true}

	err := service.ReplacePermissions(context.Background(), actor, "user-1", []domain.Permission{"ticket:view", "bad token"})
	require.Error(t, err)
	require.Equal(t, []domain.Permission{"ticket:view"}, grants.grants["user-1"])

	require.NoError(t, service.ReplacePermissions(context.Background(), actor, "user-1",
		[]domain.Permission{"ticket:view", "request:create"}))
	require.Equal(t, []domain.Permission{"ticket:view", "request:create"}, grants.grants["user-1"])
}
