package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-service/internal/domain"
)

// PermissionRepository stores explicit per-user permission grants.
type PermissionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Permission, error)
	Grant(ctx context.Context, userID string, permission domain.Permission, grantedBy *string) error
	Revoke(ctx context.Context, userID string, permission domain.Permission) error
	ReplaceAll(ctx context.Context, userID string, permissions []domain.Permission, grantedBy *string) error
}

type permissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository builds repository.
func NewPermissionRepository(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepository{pool: pool}
}

func (r *permissionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Permission, error) {
	const query = `
        SELECT permission FROM user_permissions WHERE user_id=$1 ORDER BY permission ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Permission
	for rows.Next() {
		var permission domain.Permission
		if err := rows.Scan(&permission); err != nil {
			return nil, err
		}
		result = append(result, permission)
	}
	return result, rows.Err()
}

func (r *permissionRepository) Grant(ctx context.Context, userID string, permission domain.Permission, grantedBy *string) error {
	const query = `
        INSERT INTO user_permissions (user_id, permission, granted_by)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, permission) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, userID, permission, grantedBy)
	return err
}

func (r *permissionRepository) Revoke(ctx context.Context, userID string, permission domain.Permission) error {
	const query = `
        DELETE FROM user_permissions WHERE user_id=$1 AND permission=$2`
	_, err := r.pool.Exec(ctx, query, userID, permission)
	return err
}

// ReplaceAll swaps a user's grant set in one transaction.
func (r *permissionRepository) ReplaceAll(ctx context.Context, userID string, permissions []domain.Permission, grantedBy *string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id=$1`, userID); err != nil {
		return err
	}
	for _, permission := range permissions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_permissions (user_id, permission, granted_by) VALUES ($1,$2,$3)`,
			userID, permission, grantedBy,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
