package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-service/internal/domain"
)

// SprintRepository encapsulates sprint and milestone persistence.
type SprintRepository interface {
	CreateSprint(ctx context.Context, sprint *domain.Sprint) error
	UpdateSprint(ctx context.Context, sprint *domain.Sprint) error
	GetSprintByID(ctx context.Context, id string) (*domain.Sprint, error)
	ListSprintsByProject(ctx context.Context, projectID string) ([]domain.Sprint, error)
	CreateMilestone(ctx context.Context, milestone *domain.Milestone) error
	UpdateMilestone(ctx context.Context, milestone *domain.Milestone) error
	GetMilestoneByID(ctx context.Context, id string) (*domain.Milestone, error)
	ListMilestonesByProject(ctx context.Context, projectID string) ([]domain.Milestone, error)
}

type sprintRepository struct {
	pool *pgxpool.Pool
}

// NewSprintRepository instantiates repository.
func NewSprintRepository(pool *pgxpool.Pool) SprintRepository {
	return &sprintRepository{pool: pool}
}

func (r *sprintRepository) CreateSprint(ctx context.Context, sprint *domain.Sprint) error {
	const query = `
        INSERT INTO sprints (project_id, name, goal, status, start_date, end_date)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		sprint.ProjectID,
		sprint.Name,
		sprint.Goal,
		sprint.Status,
		sprint.StartDate,
		sprint.EndDate,
	).Scan(&sprint.ID, &sprint.CreatedAt, &sprint.UpdatedAt)
}

func (r *sprintRepository) UpdateSprint(ctx context.Context, sprint *domain.Sprint) error {
	const query = `
        UPDATE sprints SET name=$1, goal=$2, status=$3, start_date=$4, end_date=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		sprint.Name,
		sprint.Goal,
		sprint.Status,
		sprint.StartDate,
		sprint.EndDate,
		sprint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sprintRepository) GetSprintByID(ctx context.Context, id string) (*domain.Sprint, error) {
	const query = `
        SELECT id, project_id, name, goal, status, start_date, end_date, created_at, updated_at
        FROM sprints WHERE id=$1`
	var sprint domain.Sprint
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&sprint.ID,
		&sprint.ProjectID,
		&sprint.Name,
		&sprint.Goal,
		&sprint.Status,
		&sprint.StartDate,
		&sprint.EndDate,
		&sprint.CreatedAt,
		&sprint.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (r *sprintRepository) ListSprintsByProject(ctx context.Context, projectID string) ([]domain.Sprint, error) {
	const query = `
        SELECT id, project_id, name, goal, status, start_date, end_date, created_at, updated_at
        FROM sprints WHERE project_id=$1 ORDER BY start_date ASC`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Sprint
	for rows.Next() {
		var sprint domain.Sprint
		if err := rows.Scan(
			&sprint.ID,
			&sprint.ProjectID,
			&sprint.Name,
			&sprint.Goal,
			&sprint.Status,
			&sprint.StartDate,
			&sprint.EndDate,
			&sprint.CreatedAt,
			&sprint.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sprint)
	}
	return result, rows.Err()
}

func (r *sprintRepository) CreateMilestone(ctx context.Context, milestone *domain.Milestone) error {
	const query = `
        INSERT INTO milestones (project_id, sprint_id, name, description, due_date, is_done)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		milestone.ProjectID,
		milestone.SprintID,
		milestone.Name,
		milestone.Description,
		milestone.DueDate,
		milestone.IsDone,
	).Scan(&milestone.ID, &milestone.CreatedAt, &milestone.UpdatedAt)
}

func (r *sprintRepository) UpdateMilestone(ctx context.Context, milestone *domain.Milestone) error {
	const query = `
        UPDATE milestones SET sprint_id=$1, name=$2, description=$3, due_date=$4, is_done=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		milestone.SprintID,
		milestone.Name,
		milestone.Description,
		milestone.DueDate,
		milestone.IsDone,
		milestone.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sprintRepository) GetMilestoneByID(ctx context.Context, id string) (*domain.Milestone, error) {
	const query = `
        SELECT id, project_id, sprint_id, name, description, due_date, is_done, created_at, updated_at
        FROM milestones WHERE id=$1`
	var milestone domain.Milestone
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&milestone.ID,
		&milestone.ProjectID,
		&milestone.SprintID,
		&milestone.Name,
		&milestone.Description,
		&milestone.DueDate,
		&milestone.IsDone,
		&milestone.CreatedAt,
		&milestone.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (r *sprintRepository) ListMilestonesByProject(ctx context.Context, projectID string) ([]domain.Milestone, error) {
	const query = `
        SELECT id, project_id, sprint_id, name, description, due_date, is_done, created_at, updated_at
        FROM milestones WHERE project_id=$1 ORDER BY due_date ASC`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Milestone
	for rows.Next() {
		var milestone domain.Milestone
		if err := rows.Scan(
			&milestone.ID,
			&milestone.ProjectID,
			&milestone.SprintID,
			&milestone.Name,
			&milestone.Description,
			&milestone.DueDate,
			&milestone.IsDone,
			&milestone.CreatedAt,
			&milestone.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, milestone)
	}
	return result, rows.Err()
}
