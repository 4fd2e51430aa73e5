package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

func TestOptimizationResultRepositoryReplaceForJob(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOptimizationResultRepository(db)

	results := []models.OptimizationResult{
		{ID: "res-1", Name: "Optimized Timetable 2", Score: 99500},
		{ID: "res-2", Name: "Optimized Timetable 1", Score: 98000},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM optimization_results WHERE job_id = $1")).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO optimization_results")).
		WithArgs("res-1", "job-1", 1, 99500.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO optimization_results")).
		WithArgs("res-2", "job-1", 2, 98000.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceForJob(context.Background(), "job-1", results))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimizationResultRepositoryReplaceRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOptimizationResultRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM optimization_results")).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO optimization_results")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.ReplaceForJob(context.Background(), "job-1", []models.OptimizationResult{{ID: "res-1"}})
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimizationResultRepositoryListByJob(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOptimizationResultRepository(db)

	rows := sqlmock.NewRows([]string{"id", "job_id", "rank", "score", "payload", "created_at"}).
		AddRow("res-1", "job-1", 1, 99500.0, `{"id":"res-1","name":"Optimized Timetable 2","score":99500,"conflicts":[],"metrics":{"conflictCount":0}}`, time.Now()).
		AddRow("res-2", "job-1", 2, 98000.0, `{"id":"res-2","name":"Optimized Timetable 1","score":98000,"conflicts":[{"type":"ROOM_CAPACITY","message":"x","entities":["r-1"],"severity":"high"}],"metrics":{"conflictCount":1}}`, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM optimization_results WHERE job_id = $1 ORDER BY rank ASC")).
		WithArgs("job-1").
		WillReturnRows(rows)

	results, err := repo.ListByJob(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "res-1", results[0].ID)
	assert.Equal(t, 99500.0, results[0].Score)
	require.Len(t, results[1].Conflicts, 1)
	assert.Equal(t, models.ConflictRoomCapacity, results[1].Conflicts[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}
