package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
	"github.com/sakthi0701/SIH2025-sub000/internal/optimizer"
	"github.com/sakthi0701/SIH2025-sub000/internal/repository"
	"github.com/sakthi0701/SIH2025-sub000/pkg/events"
	"github.com/sakthi0701/SIH2025-sub000/pkg/jobs"
)

// OptimizationWorkerConfig tunes progress persistence and retry bookkeeping.
type OptimizationWorkerConfig struct {
	// ProgressStep is the minimum progress delta, in percent, between database writes.
	ProgressStep float64
	MaxRetries   int
	CacheTTL     time.Duration
	WriteTimeout time.Duration
}

// OptimizationWorker runs queued optimization jobs. Handle is the queue handler.
type OptimizationWorker struct {
	repo      optimizationJobStore
	results   optimizationResultStore
	cache     *CacheService
	publisher events.Publisher
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       OptimizationWorkerConfig
	now       func() time.Time
}

// NewOptimizationWorker constructs the worker.
func NewOptimizationWorker(
	repo optimizationJobStore,
	results optimizationResultStore,
	cache *CacheService,
	publisher events.Publisher,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg OptimizationWorkerConfig,
) *OptimizationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.ProgressStep <= 0 {
		cfg.ProgressStep = 5
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &OptimizationWorker{
		repo:      repo,
		results:   results,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var activeStatuses = []models.OptimizationStatus{models.OptimizationStatusQueued, models.OptimizationStatusRunning}

// Handle executes one optimization job. A returned error asks the queue to retry.
func (w *OptimizationWorker) Handle(ctx context.Context, job jobs.Job) error {
	rec, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if rec.Status.Terminal() {
		w.logger.Debug("skipping settled optimization job", zap.String("job_id", rec.ID), zap.String("status", string(rec.Status)))
		return nil
	}

	running := models.OptimizationStatusRunning
	started := w.now()
	zero := 0.0
	changed, err := w.repo.Transition(ctx, rec.ID, activeStatuses, repository.UpdateOptimizationJobParams{
		Status:    &running,
		Progress:  &zero,
		StartedAt: &started,
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	rec.Status, rec.Progress, rec.StartedAt = running, 0, &started
	w.cacheJob(ctx, rec)
	w.publish(ctx, events.Event{Type: events.TypeOptimizationStarted, JobID: rec.ID, Status: string(running)})
	w.metrics.JobStarted()

	params, err := decodeParameters(rec.Snapshot.Parameters)
	if err != nil {
		w.fail(ctx, rec, started, err)
		return nil
	}
	seed := time.Now().UnixNano()
	if rec.Seed != nil {
		seed = *rec.Seed
	}
	opt, err := optimizer.New(params, optimizer.Options{
		Rand:   rand.New(rand.NewSource(seed)),
		Logger: w.logger.With(zap.String("job_id", rec.ID)),
		Clock:  w.now,
	})
	if err != nil {
		w.fail(ctx, rec, started, err)
		return nil
	}

	input := optimizer.Input{
		Name:           rec.Name,
		Departments:    rec.Snapshot.Departments,
		Rooms:          rec.Snapshot.Rooms,
		SemesterNumber: rec.Snapshot.SemesterNumber,
		Academic:       rec.Snapshot.Academic,
	}
	w.logger.Info("optimization started", zap.String("job_id", rec.ID), zap.Int64("seed", seed), zap.Int("attempt", job.Attempt+1))
	results, err := opt.Optimize(ctx, input, w.progressTracker(ctx, rec))
	switch {
	case errors.Is(err, optimizer.ErrStopped):
		w.stopped(ctx, rec, started)
		return nil
	case err != nil:
		w.fail(ctx, rec, started, err)
		return nil
	}

	if err := w.results.ReplaceForJob(ctx, rec.ID, results); err != nil {
		if job.Attempt >= w.cfg.MaxRetries {
			w.fail(ctx, rec, started, err)
			return nil
		}
		w.metrics.JobInterrupted()
		return err
	}
	w.finish(ctx, rec, started, results)
	return nil
}

// progressTracker mirrors every whole-percent change to the cache and writes the
// database only when progress moved by at least ProgressStep.
func (w *OptimizationWorker) progressTracker(ctx context.Context, rec *models.OptimizationJob) optimizer.ProgressFunc {
	cached, persisted := -1.0, 0.0
	return func(percent float64) bool {
		whole := math.Floor(percent)
		if whole == cached {
			return true
		}
		cached = whole
		rec.Progress = whole
		w.cacheJob(ctx, rec)
		if whole-persisted >= w.cfg.ProgressStep && whole < 100 {
			persisted = whole
			if err := w.repo.Update(ctx, rec.ID, repository.UpdateOptimizationJobParams{Progress: &whole}); err != nil {
				w.logger.Warn("failed to persist progress", zap.String("job_id", rec.ID), zap.Error(err))
			}
		}
		return true
	}
}

func (w *OptimizationWorker) finish(ctx context.Context, rec *models.OptimizationJob, started time.Time, results []models.OptimizationResult) {
	finished := models.OptimizationStatusFinished
	now := w.now()
	progress := 100.0
	best := results[0].Score
	conflicts := results[0].Metrics.ConflictCount

	changed, err := w.repo.Transition(ctx, rec.ID, []models.OptimizationStatus{models.OptimizationStatusRunning}, repository.UpdateOptimizationJobParams{
		Status:     &finished,
		Progress:   &progress,
		BestScore:  &best,
		FinishedAt: &now,
	})
	if err != nil {
		w.fail(ctx, rec, started, err)
		return
	}
	if !changed {
		w.refreshCache(ctx, rec.ID)
		w.metrics.JobFinished(models.OptimizationStatusCancelled, now.Sub(started), nil)
		w.logger.Info("optimization cancelled before results were recorded", zap.String("job_id", rec.ID))
		return
	}

	rec.Status, rec.Progress, rec.BestScore, rec.FinishedAt = finished, progress, &best, &now
	w.cacheJob(ctx, rec)
	_ = w.cache.Invalidate(ctx, resultsCacheKey(rec.ID))
	w.publish(ctx, events.Event{
		Type:          events.TypeOptimizationFinished,
		JobID:         rec.ID,
		Status:        string(finished),
		BestScore:     &best,
		ConflictCount: &conflicts,
		OccurredAt:    now,
	})
	w.metrics.JobFinished(finished, now.Sub(started), &best)
	w.logger.Info("optimization finished",
		zap.String("job_id", rec.ID),
		zap.Float64("best_score", best),
		zap.Int("conflicts", conflicts),
		zap.Int("results", len(results)),
		zap.Duration("duration", now.Sub(started)),
	)
}

func (w *OptimizationWorker) fail(ctx context.Context, rec *models.OptimizationJob, started time.Time, cause error) {
	ctx, cancel := w.detached(ctx)
	defer cancel()

	failed := models.OptimizationStatusFailed
	now := w.now()
	msg := cause.Error()
	changed, err := w.repo.Transition(ctx, rec.ID, activeStatuses, repository.UpdateOptimizationJobParams{
		Status:       &failed,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	})
	if err != nil {
		w.logger.Error("failed to record optimization failure", zap.String("job_id", rec.ID), zap.Error(err))
	} else if !changed {
		w.refreshCache(ctx, rec.ID)
		w.metrics.JobFinished(models.OptimizationStatusCancelled, now.Sub(started), nil)
		return
	}
	rec.Status, rec.ErrorMessage, rec.FinishedAt = failed, &msg, &now
	w.cacheJob(ctx, rec)
	w.publish(ctx, events.Event{Type: events.TypeOptimizationFailed, JobID: rec.ID, Status: string(failed), Error: msg, OccurredAt: now})
	w.metrics.JobFinished(failed, now.Sub(started), nil)
	w.logger.Error("optimization failed", zap.String("job_id", rec.ID), zap.Error(cause))
}

// stopped handles a search that ended early. A job the user cancelled is already
// CANCELLED; a job still RUNNING was interrupted by shutdown and goes back to QUEUED
// so the next process recovers it.
func (w *OptimizationWorker) stopped(ctx context.Context, rec *models.OptimizationJob, started time.Time) {
	ctx, cancel := w.detached(ctx)
	defer cancel()

	queued := models.OptimizationStatusQueued
	zero := 0.0
	requeued, err := w.repo.Transition(ctx, rec.ID, []models.OptimizationStatus{models.OptimizationStatusRunning}, repository.UpdateOptimizationJobParams{
		Status:   &queued,
		Progress: &zero,
	})
	if err != nil {
		w.logger.Error("failed to requeue interrupted optimization", zap.String("job_id", rec.ID), zap.Error(err))
	}
	if requeued {
		rec.Status, rec.Progress = queued, 0
		w.cacheJob(ctx, rec)
		w.metrics.JobInterrupted()
		w.logger.Info("optimization interrupted", zap.String("job_id", rec.ID))
		return
	}
	w.refreshCache(ctx, rec.ID)
	w.metrics.JobFinished(models.OptimizationStatusCancelled, w.now().Sub(started), nil)
	w.logger.Info("optimization stopped after cancellation", zap.String("job_id", rec.ID))
}

// detached keeps bookkeeping writes alive after the job context is cancelled.
func (w *OptimizationWorker) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), w.cfg.WriteTimeout)
}

func (w *OptimizationWorker) cacheJob(ctx context.Context, rec *models.OptimizationJob) {
	_ = w.cache.Set(ctx, jobCacheKey(rec.ID), toJobResponse(rec), w.cfg.CacheTTL)
}

// refreshCache replaces a mirror entry the progress callback may have overwritten
// after another actor settled the job.
func (w *OptimizationWorker) refreshCache(ctx context.Context, id string) {
	latest, err := w.repo.GetByID(ctx, id)
	if err != nil {
		_ = w.cache.Invalidate(ctx, jobCacheKey(id))
		return
	}
	w.cacheJob(ctx, latest)
}

func (w *OptimizationWorker) publish(ctx context.Context, event events.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = w.now()
	}
	if err := w.publisher.Publish(ctx, event); err != nil {
		w.logger.Warn("failed to publish optimization event", zap.String("job_id", event.JobID), zap.String("type", event.Type), zap.Error(err))
	}
}

func decodeParameters(raw json.RawMessage) (optimizer.Parameters, error) {
	params := optimizer.DefaultParameters()
	if len(raw) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, err
	}
	return params, nil
}
