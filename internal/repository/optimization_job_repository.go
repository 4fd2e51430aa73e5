package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

const optimizationJobColumns = `id, name, status, progress, snapshot, seed, best_score, error_message, created_at, started_at, finished_at`

// OptimizationJobRepository persists optimization job metadata.
type OptimizationJobRepository struct {
	db *sqlx.DB
}

// NewOptimizationJobRepository constructs the repository.
func NewOptimizationJobRepository(db *sqlx.DB) *OptimizationJobRepository {
	return &OptimizationJobRepository{db: db}
}

// Create inserts a new job row with generated defaults.
func (r *OptimizationJobRepository) Create(ctx context.Context, job *models.OptimizationJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.OptimizationStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO optimization_jobs (id, name, status, progress, snapshot, seed, best_score, error_message, created_at, started_at, finished_at)
VALUES (:id, :name, :status, :progress, :snapshot, :seed, :best_score, :error_message, :created_at, :started_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create optimization job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier. A missing row wraps sql.ErrNoRows.
func (r *OptimizationJobRepository) GetByID(ctx context.Context, id string) (*models.OptimizationJob, error) {
	query := `SELECT ` + optimizationJobColumns + ` FROM optimization_jobs WHERE id = $1`
	var job models.OptimizationJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get optimization job: %w", err)
	}
	return &job, nil
}

// UpdateOptimizationJobParams defines the mutable fields.
type UpdateOptimizationJobParams struct {
	Status       *models.OptimizationStatus
	Progress     *float64
	BestScore    *float64
	ErrorMessage *string
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *OptimizationJobRepository) Update(ctx context.Context, id string, params UpdateOptimizationJobParams) error {
	if _, err := r.update(ctx, id, nil, params); err != nil {
		return err
	}
	return nil
}

// Transition applies params only while the job is in one of the from states.
// It reports whether a row changed.
func (r *OptimizationJobRepository) Transition(ctx context.Context, id string, from []models.OptimizationStatus, params UpdateOptimizationJobParams) (bool, error) {
	return r.update(ctx, id, from, params)
}

func (r *OptimizationJobRepository) update(ctx context.Context, id string, from []models.OptimizationStatus, params UpdateOptimizationJobParams) (bool, error) {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 8)
	argPos := 1

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Progress != nil {
		add("progress", *params.Progress)
	}
	if params.BestScore != nil {
		add("best_score", *params.BestScore)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if params.StartedAt != nil {
		add("started_at", *params.StartedAt)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}

	if len(set) == 0 {
		return false, nil
	}

	query := fmt.Sprintf("UPDATE optimization_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)
	argPos++
	if len(from) > 0 {
		statuses := make([]string, len(from))
		for i, status := range from {
			statuses[i] = string(status)
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", argPos)
		args = append(args, pq.Array(statuses))
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update optimization job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update optimization job rows: %w", err)
	}
	return affected > 0, nil
}

// ListByStatus fetches jobs in the given states, oldest first (used for cold start recovery).
func (r *OptimizationJobRepository) ListByStatus(ctx context.Context, statuses []models.OptimizationStatus, limit int) ([]models.OptimizationJob, error) {
	if limit <= 0 {
		limit = 20
	}
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}
	query := `SELECT ` + optimizationJobColumns + ` FROM optimization_jobs WHERE status = ANY($1) ORDER BY created_at ASC LIMIT $2`
	var jobs []models.OptimizationJob
	if err := r.db.SelectContext(ctx, &jobs, query, pq.Array(values), limit); err != nil {
		return nil, fmt.Errorf("list optimization jobs: %w", err)
	}
	return jobs, nil
}
