package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-service/internal/domain"
)

// ProjectFilter defines project listing parameters.
type ProjectFilter struct {
	ClientID *string
	PmID     *string
	Statuses []domain.ProjectStatus
	Limit    int
	Offset   int
}

// ProjectRepository encapsulates project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListWithFilter(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `id, name, description, client_id, pm_id, status, story_points, source_request,
       start_date, end_date, created_at, updated_at`

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (name, description, client_id, pm_id, status, story_points, source_request, start_date, end_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		project.Name,
		project.Description,
		project.ClientID,
		project.PmID,
		project.Status,
		project.StoryPoints,
		project.SourceRequest,
		project.StartDate,
		project.EndDate,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects SET name=$1, description=$2, client_id=$3, pm_id=$4, status=$5,
            story_points=$6, start_date=$7, end_date=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		project.Name,
		project.Description,
		project.ClientID,
		project.PmID,
		project.Status,
		project.StoryPoints,
		project.StartDate,
		project.EndDate,
		project.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id=$1`
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, id).Scan(projectScanTargets(&project)...); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListWithFilter(ctx context.Context, filter ProjectFilter) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE 1=1`
	args := []any{}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id=$%d", len(args))
	}
	if filter.PmID != nil {
		args = append(args, *filter.PmID)
		query += fmt.Sprintf(" AND pm_id=$%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		placeholders := ""
		for i, status := range filter.Statuses {
			args = append(args, status)
			if i > 0 {
				placeholders += ","
			}
			placeholders += fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND status IN (%s)", placeholders)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(projectScanTargets(&project)...); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}

func projectScanTargets(project *domain.Project) []any {
	return []any{
		&project.ID,
		&project.Name,
		&project.Description,
		&project.ClientID,
		&project.PmID,
		&project.Status,
		&project.StoryPoints,
		&project.SourceRequest,
		&project.StartDate,
		&project.EndDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	}
}
