package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-service/internal/domain"
)

// DashboardRepository persists per-user widget layouts.
type DashboardRepository interface {
	Get(ctx context.Context, userID string) (*domain.DashboardLayout, error)
	Save(ctx context.Context, layout *domain.DashboardLayout) error
}

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository builds repository.
func NewDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepository{pool: pool}
}

func (r *dashboardRepository) Get(ctx context.Context, userID string) (*domain.DashboardLayout, error) {
	const query = `
        SELECT user_id, layout, updated_at FROM dashboard_layouts WHERE user_id=$1`
	var layout domain.DashboardLayout
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&layout.UserID,
		&layout.Layout,
		&layout.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return &domain.DashboardLayout{UserID: userID, Layout: map[string]any{}}, nil
		}
		return nil, err
	}
	return &layout, nil
}

func (r *dashboardRepository) Save(ctx context.Context, layout *domain.DashboardLayout) error {
	const query = `
        INSERT INTO dashboard_layouts (user_id, layout, updated_at)
        VALUES ($1,$2,NOW())
        ON CONFLICT (user_id) DO UPDATE SET layout=EXCLUDED.layout, updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, layout.UserID, layout.Layout).Scan(&layout.UpdatedAt)
}
