package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sakthi0701/SIH2025-sub000/internal/dto"
	"github.com/sakthi0701/SIH2025-sub000/internal/models"
	"github.com/sakthi0701/SIH2025-sub000/internal/repository"
	appErrors "github.com/sakthi0701/SIH2025-sub000/pkg/errors"
	"github.com/sakthi0701/SIH2025-sub000/pkg/events"
	"github.com/sakthi0701/SIH2025-sub000/pkg/jobs"
)

type jobStoreStub struct {
	mu      sync.Mutex
	jobs    map[string]*models.OptimizationJob
	updates int
	// updateErr fails Update without applying it.
	updateErr error
	// onUpdate runs after every progress write, outside the lock.
	onUpdate func(id string)
}

func newJobStoreStub() *jobStoreStub {
	return &jobStoreStub{jobs: map[string]*models.OptimizationJob{}}
}

func (r *jobStoreStub) Create(ctx context.Context, job *models.OptimizationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	stored := *job
	r.jobs[job.ID] = &stored
	return nil
}

func (r *jobStoreStub) GetByID(ctx context.Context, id string) (*models.OptimizationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("get optimization job: %w", sql.ErrNoRows)
	}
	copied := *job
	return &copied, nil
}

func (r *jobStoreStub) Update(ctx context.Context, id string, params repository.UpdateOptimizationJobParams) error {
	r.mu.Lock()
	failure := r.updateErr
	r.mu.Unlock()
	if failure != nil {
		return failure
	}
	_, err := r.Transition(ctx, id, nil, params)
	r.mu.Lock()
	r.updates++
	hook := r.onUpdate
	r.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return err
}

func (r *jobStoreStub) Transition(ctx context.Context, id string, from []models.OptimizationStatus, params repository.UpdateOptimizationJobParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return false, nil
	}
	if len(from) > 0 {
		allowed := false
		for _, status := range from {
			if job.Status == status {
				allowed = true
			}
		}
		if !allowed {
			return false, nil
		}
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.BestScore != nil {
		job.BestScore = params.BestScore
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.StartedAt != nil {
		job.StartedAt = params.StartedAt
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return true, nil
}

func (r *jobStoreStub) ListByStatus(ctx context.Context, statuses []models.OptimizationStatus, limit int) ([]models.OptimizationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OptimizationJob
	for _, job := range r.jobs {
		for _, status := range statuses {
			if job.Status == status {
				out = append(out, *job)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *jobStoreStub) status(id string) models.OptimizationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id].Status
}

type resultStoreStub struct {
	results map[string][]models.OptimizationResult
	err     error
	calls   int
}

func newResultStoreStub() *resultStoreStub {
	return &resultStoreStub{results: map[string][]models.OptimizationResult{}}
}

func (r *resultStoreStub) ReplaceForJob(ctx context.Context, jobID string, results []models.OptimizationResult) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	r.results[jobID] = results
	return nil
}

func (r *resultStoreStub) ListByJob(ctx context.Context, jobID string) ([]models.OptimizationResult, error) {
	return r.results[jobID], nil
}

type dispatcherStub struct {
	enqueued  []jobs.Job
	cancelled []string
	err       error
}

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.enqueued = append(d.enqueued, job)
	return nil
}

func (d *dispatcherStub) Cancel(id string) bool {
	d.cancelled = append(d.cancelled, id)
	return true
}

type publisherStub struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *publisherStub) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *publisherStub) Close() error { return nil }

func (p *publisherStub) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, event := range p.events {
		out[i] = event.Type
	}
	return out
}

// memoryCache round-trips values through JSON like the Redis repository does.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, pattern)
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func periods(n int) []models.Period {
	out := make([]models.Period, n)
	for i := range out {
		out[i] = models.Period{Start: fmt.Sprintf("%02d:00", 9+i), End: fmt.Sprintf("%02d:50", 9+i)}
	}
	return out
}

func sampleDepartment() models.Department {
	return models.Department{
		ID:   "cse",
		Name: "Computer Science",
		Regulations: []models.Regulation{{
			ID: "r2021",
			Semesters: []models.Semester{{
				ID:     "sem-1",
				Number: 1,
				Courses: []models.Course{
					{ID: "cs101", Code: "CS101", Name: "Programming", WeeklyHours: 2},
					{ID: "ma101", Code: "MA101", Name: "Calculus", WeeklyHours: 2},
				},
			}},
		}},
		Batches: []models.Batch{{ID: "batch-a", Name: "A", RegulationID: "r2021", StudentCount: 30}},
		Faculty: []models.Faculty{
			{ID: "f-1", Name: "Ada", EligibleCourseIDs: []string{"cs101"}},
			{ID: "f-2", Name: "Grace", EligibleCourseIDs: []string{"ma101"}},
		},
	}
}

func sampleOptimizeRequest() dto.OptimizeTimetableRequest {
	generations, runs, population := 5, 1, 10
	return dto.OptimizeTimetableRequest{
		Name:           "CSE Sem 1",
		SemesterNumber: 1,
		Departments:    []models.Department{sampleDepartment()},
		Rooms:          []models.Room{{ID: "room-1", Name: "Hall 1", Capacity: 40}},
		Academic:       models.AcademicConfig{Periods: periods(6), LunchPeriod: periods(6)[3]},
		Parameters: &dto.ParameterOverrides{
			Generations:    &generations,
			Runs:           &runs,
			PopulationSize: &population,
		},
	}
}

func strPtr(v string) *string { return &v }

func appErrorStatus(err error) int {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}
