package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intake-service/internal/domain"
)

// RequestFilter captures intake listing parameters.
type RequestFilter struct {
	Stages      []domain.RequestStage
	Types       []domain.RequestType
	Priorities  []domain.RequestPriority
	ClientID    *string
	AssignedPm  *string
	Converted   *bool
	Cancelled   *bool
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// RequestRepository encapsulates intake request persistence.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.Request) error
	Update(ctx context.Context, request *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	GetByNumber(ctx context.Context, number string) (*domain.Request, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `id, request_number, title, description, type, priority, stage, stage_entered_at,
       hold_reason, story_points, confidence, estimation_notes, estimated_at,
       client_id, related_project_id, assigned_pm_id, is_converted, is_cancelled, converted_to,
       created_by_id, created_at, updated_at`

func (r *requestRepository) Create(ctx context.Context, request *domain.Request) error {
	const query = `
        INSERT INTO requests (request_number, title, description, type, priority, stage, stage_entered_at,
                              client_id, related_project_id, assigned_pm_id, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,NOW(),$7,$8,$9,$10)
        RETURNING id, stage_entered_at, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.RequestNumber,
		request.Title,
		request.Description,
		request.Type,
		request.Priority,
		request.Stage,
		request.ClientID,
		request.RelatedProjectID,
		request.AssignedPmID,
		request.CreatedByID,
	).Scan(&request.ID, &request.StageEnteredAt, &request.CreatedAt, &request.UpdatedAt)
}

// Update persists all mutable request fields. Stage and stage_entered_at are
// written in the same statement so they can never drift apart.
func (r *requestRepository) Update(ctx context.Context, request *domain.Request) error {
	const query = `
        UPDATE requests SET title=$1, description=$2, type=$3, priority=$4, stage=$5, stage_entered_at=$6,
            hold_reason=$7, story_points=$8, confidence=$9, estimation_notes=$10, estimated_at=$11,
            client_id=$12, related_project_id=$13, assigned_pm_id=$14,
            is_converted=$15, is_cancelled=$16, converted_to=$17, updated_at=NOW()
        WHERE id=$18`
	cmd, err := r.pool.Exec(ctx, query,
		request.Title,
		request.Description,
		request.Type,
		request.Priority,
		request.Stage,
		request.StageEnteredAt,
		request.HoldReason,
		request.StoryPoints,
		request.Confidence,
		request.EstimationNotes,
		request.EstimatedAt,
		request.ClientID,
		request.RelatedProjectID,
		request.AssignedPmID,
		request.IsConverted,
		request.IsCancelled,
		request.ConvertedTo,
		request.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id=$1`, requestColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *requestRepository) GetByNumber(ctx context.Context, number string) (*domain.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE request_number=$1`, requestColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *requestRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Request, error) {
	var request domain.Request
	if err := r.pool.QueryRow(ctx, query, arg).Scan(requestScanTargets(&request)...); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	base := fmt.Sprintf(`SELECT %s FROM requests`, requestColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Stages) > 0 {
		placeholders := make([]string, len(filter.Stages))
		for i, stage := range filter.Stages {
			args = append(args, stage)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("stage IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			args = append(args, t)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if filter.AssignedPm != nil {
		args = append(args, *filter.AssignedPm)
		clauses = append(clauses, fmt.Sprintf("assigned_pm_id=$%d", len(args)))
	}
	if filter.Converted != nil {
		args = append(args, *filter.Converted)
		clauses = append(clauses, fmt.Sprintf("is_converted=$%d", len(args)))
	}
	if filter.Cancelled != nil {
		args = append(args, *filter.Cancelled)
		clauses = append(clauses, fmt.Sprintf("is_cancelled=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(request_number) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY stage_entered_at ASC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Request
	for rows.Next() {
		var request domain.Request
		if err := rows.Scan(requestScanTargets(&request)...); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}

func requestScanTargets(request *domain.Request) []any {
	return []any{
		&request.ID,
		&request.RequestNumber,
		&request.Title,
		&request.Description,
		&request.Type,
		&request.Priority,
		&request.Stage,
		&request.StageEnteredAt,
		&request.HoldReason,
		&request.StoryPoints,
		&request.Confidence,
		&request.EstimationNotes,
		&request.EstimatedAt,
		&request.ClientID,
		&request.RelatedProjectID,
		&request.AssignedPmID,
		&request.IsConverted,
		&request.IsCancelled,
		&request.ConvertedTo,
		&request.CreatedByID,
		&request.CreatedAt,
		&request.UpdatedAt,
	}
}
