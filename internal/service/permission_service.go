package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/cache"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// PermissionService resolves and manages per-user permissions. It is the
// permission source behind the authorization gate: explicit grants win, the
// role's default set applies when a user has none. Resolution errors
// propagate so the gate can fail closed.
type PermissionService struct {
	users  repository.UserRepository
	grants repository.PermissionRepository
	cache  *cache.PermissionCache
	logger *zap.Logger
}

// PermissionDependencies bundles requirements for the service.
type PermissionDependencies struct {
	UserRepo       repository.UserRepository
	PermissionRepo repository.PermissionRepository
	Cache          *cache.PermissionCache
	Logger         *zap.Logger
}

// NewPermissionService constructs the service.
func NewPermissionService(deps PermissionDependencies) *PermissionService {
	return &PermissionService{
		users:  deps.UserRepo,
		grants: deps.PermissionRepo,
		cache:  deps.Cache,
		logger: deps.Logger,
	}
}

// GetUserPermissions returns the effective permission set for a user. A cache
// read error downgrades to a miss; a grant-store error propagates and the
// gate denies.
func (s *PermissionService) GetUserPermissions(ctx context.Context, userID string) ([]domain.Permission, error) {
	cached, found, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("permission cache read failed", zap.String("user_id", userID), zap.Error(err))
	} else if found {
		return cached, nil
	}

	granted, err := s.grants.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	permissions := granted
	if len(permissions) == 0 {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		permissions = domain.DefaultPermissions(user.Role)
	}

	if err := s.cache.Set(ctx, userID, permissions); err != nil {
		s.logger.Warn("permission cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return permissions, nil
}

// Grant adds a permission to a user and invalidates the cache entry.
func (s *PermissionService) Grant(ctx context.Context, actor *domain.User, userID string, permission domain.Permission) error {
	if !permission.Valid() {
		return apperrors.NewValidationError("permission must match entity:action", map[string]any{
			"permission": permission,
		})
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	var grantedBy *string
	if actor != nil {
		grantedBy = &actor.ID
	}
	if err := s.grants.Grant(ctx, userID, permission, grantedBy); err != nil {
		return apperrors.MapError(err)
	}
	return s.invalidate(ctx, userID)
}

// Revoke removes a permission grant and invalidates the cache entry.
func (s *PermissionService) Revoke(ctx context.Context, userID string, permission domain.Permission) error {
	if err := s.grants.Revoke(ctx, userID, permission); err != nil {
		return apperrors.MapError(err)
	}
	return s.invalidate(ctx, userID)
}

// ReplacePermissions swaps a user's full grant set.
func (s *PermissionService) ReplacePermissions(ctx context.Context, actor *domain.User, userID string, permissions []domain.Permission) error {
	for _, permission := range permissions {
		if !permission.Valid() {
			return apperrors.NewValidationError("permission must match entity:action", map[string]any{
				"permission": permission,
			})
		}
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	var grantedBy *string
	if actor != nil {
		grantedBy = &actor.ID
	}
	if err := s.grants.ReplaceAll(ctx, userID, permissions, grantedBy); err != nil {
		return apperrors.MapError(err)
	}
	return s.invalidate(ctx, userID)
}

func (s *PermissionService) invalidate(ctx context.Context, userID string) error {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("permission cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}
