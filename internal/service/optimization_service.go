package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sakthi0701/SIH2025-sub000/internal/dto"
	"github.com/sakthi0701/SIH2025-sub000/internal/models"
	"github.com/sakthi0701/SIH2025-sub000/internal/optimizer"
	"github.com/sakthi0701/SIH2025-sub000/internal/repository"
	appErrors "github.com/sakthi0701/SIH2025-sub000/pkg/errors"
	"github.com/sakthi0701/SIH2025-sub000/pkg/events"
	"github.com/sakthi0701/SIH2025-sub000/pkg/export"
	"github.com/sakthi0701/SIH2025-sub000/pkg/jobs"
)

// JobTypeOptimize tags queue entries that run a timetable optimization.
const JobTypeOptimize = "timetable.optimize"

type optimizationJobStore interface {
	Create(ctx context.Context, job *models.OptimizationJob) error
	GetByID(ctx context.Context, id string) (*models.OptimizationJob, error)
	Update(ctx context.Context, id string, params repository.UpdateOptimizationJobParams) error
	Transition(ctx context.Context, id string, from []models.OptimizationStatus, params repository.UpdateOptimizationJobParams) (bool, error)
	ListByStatus(ctx context.Context, statuses []models.OptimizationStatus, limit int) ([]models.OptimizationJob, error)
}

type optimizationResultStore interface {
	ReplaceForJob(ctx context.Context, jobID string, results []models.OptimizationResult) error
	ListByJob(ctx context.Context, jobID string) ([]models.OptimizationResult, error)
}

type optimizationDispatcher interface {
	Enqueue(job jobs.Job) error
	Cancel(id string) bool
}

// OptimizationServiceConfig carries the default tuning and recovery limits.
type OptimizationServiceConfig struct {
	Parameters    optimizer.Parameters
	RecoveryLimit int
	CacheTTL      time.Duration
}

// OptimizationService accepts optimization requests and exposes their lifecycle.
type OptimizationService struct {
	repo      optimizationJobStore
	results   optimizationResultStore
	queue     optimizationDispatcher
	cache     *CacheService
	publisher events.Publisher
	validator *validator.Validate
	logger    *zap.Logger
	cfg       OptimizationServiceConfig
	now       func() time.Time
}

// NewOptimizationService constructs the service.
func NewOptimizationService(
	repo optimizationJobStore,
	results optimizationResultStore,
	queue optimizationDispatcher,
	cache *CacheService,
	publisher events.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg OptimizationServiceConfig,
) *OptimizationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.Parameters.PopulationSize == 0 {
		cfg.Parameters = optimizer.DefaultParameters()
	}
	if cfg.RecoveryLimit <= 0 {
		cfg.RecoveryLimit = 50
	}
	return &OptimizationService{
		repo:      repo,
		results:   results,
		queue:     queue,
		cache:     cache,
		publisher: publisher,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates the request, checks that a timetable can be built from it and queues the search.
func (s *OptimizationService) Submit(ctx context.Context, req dto.OptimizeTimetableRequest) (*dto.OptimizationJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.With(err, "invalid optimization payload")
	}
	params, err := s.resolveParameters(req.Parameters)
	if err != nil {
		return nil, err
	}
	input := optimizer.Input{
		Name:           req.Name,
		Departments:    req.Departments,
		Rooms:          req.Rooms,
		SemesterNumber: req.SemesterNumber,
		Academic:       req.Academic,
	}
	if err := optimizer.CheckInput(input); err != nil {
		return nil, mapOptimizerError(err)
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to encode parameters")
	}

	job := &models.OptimizationJob{
		Name:   req.Name,
		Status: models.OptimizationStatusQueued,
		Snapshot: models.OptimizationSnapshot{
			SemesterNumber: req.SemesterNumber,
			Departments:    req.Departments,
			Rooms:          req.Rooms,
			Academic:       req.Academic,
			Parameters:     rawParams,
		},
		Seed:      req.Seed,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to create optimization job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeOptimize}); err != nil {
		status := models.OptimizationStatusFailed
		msg := "failed to enqueue job"
		finished := s.now()
		if uerr := s.repo.Update(ctx, job.ID, repository.UpdateOptimizationJobParams{
			Status:       &status,
			ErrorMessage: &msg,
			FinishedAt:   &finished,
		}); uerr != nil {
			s.logger.Warn("failed to mark unqueued job failed", zap.String("job_id", job.ID), zap.Error(uerr))
		}
		return nil, appErrors.ErrUnavailable.With(err, "failed to enqueue optimization job")
	}

	resp := toJobResponse(job)
	_ = s.cache.Set(ctx, jobCacheKey(job.ID), resp, s.cfg.CacheTTL)
	s.logger.Info("optimization queued",
		zap.String("job_id", job.ID),
		zap.Int("semester", req.SemesterNumber),
		zap.Int("departments", len(req.Departments)),
		zap.Int("rooms", len(req.Rooms)),
	)
	return &resp, nil
}

// Status returns job progress, preferring the live cache mirror over the database.
func (s *OptimizationService) Status(ctx context.Context, id string) (*dto.OptimizationJobResponse, error) {
	var cached dto.OptimizationJobResponse
	if hit, _ := s.cache.Get(ctx, jobCacheKey(id), &cached); hit {
		return &cached, nil
	}
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toJobResponse(job)
	_ = s.cache.Set(ctx, jobCacheKey(id), resp, s.cfg.CacheTTL)
	return &resp, nil
}

// Results returns the ranked results of a finished job.
func (s *OptimizationService) Results(ctx context.Context, id string) (*dto.OptimizationResultsResponse, error) {
	var cached dto.OptimizationResultsResponse
	if hit, _ := s.cache.Get(ctx, resultsCacheKey(id), &cached); hit {
		return &cached, nil
	}
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != models.OptimizationStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("optimization is %s", job.Status))
	}
	results, err := s.results.ListByJob(ctx, id)
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to load optimization results")
	}
	resp := dto.OptimizationResultsResponse{JobID: id, Results: results}
	_ = s.cache.Set(ctx, resultsCacheKey(id), resp, s.cfg.CacheTTL)
	return &resp, nil
}

var exportHeaders = []string{"day", "slot", "department", "batch", "course", "faculty", "room", "session"}

// ExportResult renders the result at the given 1-based rank as CSV, one row per
// assignment ordered by day, period and batch.
func (s *OptimizationService) ExportResult(ctx context.Context, id string, rank int) ([]byte, error) {
	resp, err := s.Results(ctx, id)
	if err != nil {
		return nil, err
	}
	if rank < 1 || rank > len(resp.Results) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("optimization has no result ranked %d", rank))
	}
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	result := resp.Results[rank-1]
	periods := optimizer.SchedulableSlots(job.Snapshot.Academic)

	table := export.Table{Headers: exportHeaders}
	for _, day := range optimizer.Days {
		for _, slot := range orderedSlots(result.Timetable[day], periods) {
			cell := append([]models.Assignment(nil), result.Timetable[day][slot]...)
			sort.SliceStable(cell, func(i, j int) bool {
				if cell[i].BatchID != cell[j].BatchID {
					return cell[i].BatchID < cell[j].BatchID
				}
				return cell[i].CourseID < cell[j].CourseID
			})
			for _, a := range cell {
				table.Rows = append(table.Rows, map[string]string{
					"day":        day,
					"slot":       slot,
					"department": a.DepartmentID,
					"batch":      a.BatchID,
					"course":     a.CourseID,
					"faculty":    derefString(a.FacultyID),
					"room":       derefString(a.RoomID),
					"session":    a.SessionID,
				})
			}
		}
	}
	out, err := export.CSV(table)
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to render timetable export")
	}
	return out, nil
}

// orderedSlots lists the slot labels of one day in period order. Labels missing from
// periods follow, sorted by label.
func orderedSlots(day map[string][]models.Assignment, periods []models.Period) []string {
	slots := make([]string, 0, len(day))
	known := make(map[string]struct{}, len(periods))
	for _, period := range periods {
		label := period.Label()
		known[label] = struct{}{}
		if _, ok := day[label]; ok {
			slots = append(slots, label)
		}
	}
	var extra []string
	for label := range day {
		if _, ok := known[label]; !ok {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	return append(slots, extra...)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// Cancel stops a queued or running job. Jobs already in a terminal state are a conflict.
func (s *OptimizationService) Cancel(ctx context.Context, id string) (*dto.OptimizationJobResponse, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("optimization already %s", job.Status))
	}

	status := models.OptimizationStatusCancelled
	finished := s.now()
	changed, err := s.repo.Transition(ctx, id,
		[]models.OptimizationStatus{models.OptimizationStatusQueued, models.OptimizationStatusRunning},
		repository.UpdateOptimizationJobParams{Status: &status, FinishedAt: &finished},
	)
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to cancel optimization job")
	}
	if !changed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "optimization finished before it could be cancelled")
	}
	s.queue.Cancel(id)

	job.Status = status
	job.FinishedAt = &finished
	resp := toJobResponse(job)
	_ = s.cache.Set(ctx, jobCacheKey(id), resp, s.cfg.CacheTTL)
	if err := s.publisher.Publish(ctx, events.Event{
		Type:       events.TypeOptimizationCancelled,
		JobID:      id,
		Status:     string(status),
		OccurredAt: finished,
	}); err != nil {
		s.logger.Warn("failed to publish cancellation", zap.String("job_id", id), zap.Error(err))
	}
	s.logger.Info("optimization cancelled", zap.String("job_id", id))
	return &resp, nil
}

// Evaluate scores a supplied timetable with the configured rules. It runs synchronously.
func (s *OptimizationService) Evaluate(ctx context.Context, req dto.EvaluateTimetableRequest) (*dto.EvaluateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.With(err, "invalid evaluation payload")
	}
	params, err := s.resolveParameters(req.Parameters)
	if err != nil {
		return nil, err
	}
	input := optimizer.Input{Departments: req.Departments, Rooms: req.Rooms, Academic: req.Academic}
	evaluation, err := optimizer.EvaluateAssignments(input, req.Assignments, params)
	if err != nil {
		return nil, mapOptimizerError(err)
	}
	return &dto.EvaluateTimetableResponse{
		Fitness:   evaluation.Fitness,
		Conflicts: evaluation.Conflicts,
		Metrics:   evaluation.Metrics,
	}, nil
}

// RecoverPendingJobs requeues jobs left unfinished by a previous process. Jobs that were
// running are reset to queued first.
func (s *OptimizationService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListByStatus(ctx,
		[]models.OptimizationStatus{models.OptimizationStatusQueued, models.OptimizationStatusRunning},
		s.cfg.RecoveryLimit,
	)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover pending optimization jobs", "error", err)
		return
	}
	for _, job := range pending {
		if job.Status == models.OptimizationStatusRunning {
			queued := models.OptimizationStatusQueued
			progress := 0.0
			if _, err := s.repo.Transition(ctx, job.ID,
				[]models.OptimizationStatus{models.OptimizationStatusRunning},
				repository.UpdateOptimizationJobParams{Status: &queued, Progress: &progress},
			); err != nil {
				s.logger.Sugar().Warnw("failed to reset interrupted job", "job_id", job.ID, "error", err)
				continue
			}
		}
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeOptimize}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
		}
	}
	if len(pending) > 0 {
		s.logger.Sugar().Infow("recovered pending optimization jobs", "count", len(pending))
	}
}

func (s *OptimizationService) load(ctx context.Context, id string) (*models.OptimizationJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "optimization job not found")
		}
		return nil, appErrors.ErrInternal.With(err, "failed to load optimization job")
	}
	return job, nil
}

func (s *OptimizationService) resolveParameters(overrides *dto.ParameterOverrides) (optimizer.Parameters, error) {
	params := applyOverrides(s.cfg.Parameters, overrides)
	if err := params.Validate(); err != nil {
		return params, appErrors.ErrValidation.With(err, err.Error())
	}
	return params, nil
}

func applyOverrides(base optimizer.Parameters, o *dto.ParameterOverrides) optimizer.Parameters {
	if o == nil {
		return base
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&base.PopulationSize, o.PopulationSize)
	setInt(&base.Generations, o.Generations)
	setInt(&base.Runs, o.Runs)
	setInt(&base.EliteCount, o.EliteCount)
	setInt(&base.TournamentSize, o.TournamentSize)
	setInt(&base.PreferredClusterSize, o.PreferredClusterSize)
	setInt(&base.MaxContinuousClasses, o.MaxContinuousClasses)
	setInt(&base.ResultLimit, o.ResultLimit)
	if w := o.Weights; w != nil {
		setFloat(&base.Weights.HardConflict, w.HardConflict)
		setFloat(&base.Weights.Continuous, w.Continuous)
		setFloat(&base.Weights.Clustering, w.Clustering)
		setFloat(&base.Weights.Distribution, w.Distribution)
		setFloat(&base.Weights.Gap, w.Gap)
	}
	return base
}

// mapOptimizerError translates optimizer sentinels into client facing errors.
func mapOptimizerError(err error) error {
	switch {
	case errors.Is(err, optimizer.ErrPrecondition):
		return appErrors.ErrPreconditionFailed.With(err, err.Error())
	case errors.Is(err, optimizer.ErrInvalidAssignment), errors.Is(err, optimizer.ErrInvalidParameters):
		return appErrors.ErrValidation.With(err, err.Error())
	default:
		return appErrors.ErrInternal.With(err, "optimization failed")
	}
}

func toJobResponse(job *models.OptimizationJob) dto.OptimizationJobResponse {
	resp := dto.OptimizationJobResponse{
		ID:         job.ID,
		Name:       job.Name,
		Status:     job.Status,
		Progress:   job.Progress,
		BestScore:  job.BestScore,
		CreatedAt:  job.CreatedAt,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp
}
