package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

// OptimizationResultRepository persists the ranked results of finished jobs.
type OptimizationResultRepository struct {
	db *sqlx.DB
}

// NewOptimizationResultRepository constructs the repository.
func NewOptimizationResultRepository(db *sqlx.DB) *OptimizationResultRepository {
	return &OptimizationResultRepository{db: db}
}

// ReplaceForJob swaps the stored results of a job in one transaction. Results are
// ranked in slice order starting at 1.
func (r *OptimizationResultRepository) ReplaceForJob(ctx context.Context, jobID string, results []models.OptimizationResult) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace optimization results: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM optimization_results WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("delete optimization results: %w", err)
	}

	const insert = `INSERT INTO optimization_results (id, job_id, rank, score, payload, created_at)
VALUES (:id, :job_id, :rank, :score, :payload, :created_at)`
	now := time.Now().UTC()
	for i, result := range results {
		record := models.OptimizationResultRecord{
			ID:        result.ID,
			JobID:     jobID,
			Rank:      i + 1,
			Score:     result.Score,
			Payload:   models.ResultPayload(result),
			CreatedAt: now,
		}
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if _, err = tx.NamedExecContext(ctx, insert, record); err != nil {
			return fmt.Errorf("insert optimization result %d: %w", record.Rank, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit optimization results: %w", err)
	}
	return nil
}

// ListByJob returns the stored results of a job, best first.
func (r *OptimizationResultRepository) ListByJob(ctx context.Context, jobID string) ([]models.OptimizationResult, error) {
	const query = `SELECT id, job_id, rank, score, payload, created_at FROM optimization_results WHERE job_id = $1 ORDER BY rank ASC`
	var records []models.OptimizationResultRecord
	if err := r.db.SelectContext(ctx, &records, query, jobID); err != nil {
		return nil, fmt.Errorf("list optimization results: %w", err)
	}
	results := make([]models.OptimizationResult, len(records))
	for i, record := range records {
		results[i] = models.OptimizationResult(record.Payload)
	}
	return results, nil
}
