package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthi0701/SIH2025-sub000/internal/dto"
	"github.com/sakthi0701/SIH2025-sub000/internal/models"
	"github.com/sakthi0701/SIH2025-sub000/internal/service"
	appErrors "github.com/sakthi0701/SIH2025-sub000/pkg/errors"
)

type optimizationServiceMock struct {
	submitted  dto.OptimizeTimetableRequest
	job        *dto.OptimizationJobResponse
	results    *dto.OptimizationResultsResponse
	evaluation *dto.EvaluateTimetableResponse
	export     []byte
	rank       int
	err        error
}

func (m *optimizationServiceMock) Submit(ctx context.Context, req dto.OptimizeTimetableRequest) (*dto.OptimizationJobResponse, error) {
	m.submitted = req
	return m.job, m.err
}

func (m *optimizationServiceMock) Status(ctx context.Context, id string) (*dto.OptimizationJobResponse, error) {
	return m.job, m.err
}

func (m *optimizationServiceMock) Results(ctx context.Context, id string) (*dto.OptimizationResultsResponse, error) {
	return m.results, m.err
}

func (m *optimizationServiceMock) ExportResult(ctx context.Context, id string, rank int) ([]byte, error) {
	m.rank = rank
	return m.export, m.err
}

func (m *optimizationServiceMock) Cancel(ctx context.Context, id string) (*dto.OptimizationJobResponse, error) {
	return m.job, m.err
}

func (m *optimizationServiceMock) Evaluate(ctx context.Context, req dto.EvaluateTimetableRequest) (*dto.EvaluateTimetableResponse, error) {
	return m.evaluation, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestOptimizationHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &optimizationServiceMock{
		job: &dto.OptimizationJobResponse{ID: "job-1", Status: models.OptimizationStatusQueued},
	}
	handler := NewOptimizationHandler(mockSvc)

	payload, _ := json.Marshal(map[string]interface{}{"name": "CSE", "semesterNumber": 3})
	c, w := newGinContext(http.MethodPost, "/timetables/optimizations", payload)
	handler.Submit(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 3, mockSvc.submitted.SemesterNumber)
	assert.Equal(t, "CSE", mockSvc.submitted.Name)
	assert.Contains(t, w.Header().Get("Location"), "job-1")

	var job dto.OptimizationJobResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &job))
	assert.Equal(t, "job-1", job.ID)
}

func TestOptimizationHandlerSubmitMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationServiceMock{})

	c, w := newGinContext(http.MethodPost, "/timetables/optimizations", []byte("{"))
	handler.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var apiErr appErrors.Error
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["error"], &apiErr))
	assert.Equal(t, appErrors.ErrValidation.Code, apiErr.Code)
}

func TestOptimizationHandlerSubmitPreconditionFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationServiceMock{
		err: appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms available"),
	})

	c, w := newGinContext(http.MethodPost, "/timetables/optimizations", []byte(`{"semesterNumber":1}`))
	handler.Submit(c)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestOptimizationHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationServiceMock{
		job: &dto.OptimizationJobResponse{ID: "job-1", Status: models.OptimizationStatusRunning, Progress: 42},
	})

	c, w := newGinContext(http.MethodGet, "/timetables/optimizations/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	handler.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	var job dto.OptimizationJobResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &job))
	assert.Equal(t, 42.0, job.Progress)
}

func TestOptimizationHandlerResults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationServiceMock{
		results: &dto.OptimizationResultsResponse{
			JobID:   "job-1",
			Results: []models.OptimizationResult{{ID: "r1", Score: 99000}, {ID: "r2", Score: 98000}},
		},
	})

	c, w := newGinContext(http.MethodGet, "/timetables/optimizations/job-1/results", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	handler.Results(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, string(decodeEnvelope(t, w)["meta"]))
}

func TestOptimizationHandlerResultsNotFinished(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationServiceMock{
		err: appErrors.Clone(appErrors.ErrConflict, "optimization is RUNNING"),
	})

	c, w := newGinContext(http.MethodGet, "/timetables/optimizations/job-1/results", nil)
	handler.Results(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOptimizationHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &optimizationServiceMock{export: []byte("day,slot\nMonday,09:00-09:50\n")}
	handler := NewOptimizationHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/timetables/optimizations/job-1/results/2/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}, {Key: "rank", Value: "2"}}
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mockSvc.rank)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable-job-1-2.csv")
	assert.Equal(t, "day,slot\nMonday,09:00-09:50\n", w.Body.String())
}

func TestOptimizationHandlerExportBadRank(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationServiceMock{})

	c, w := newGinContext(http.MethodGet, "/timetables/optimizations/job-1/results/best/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}, {Key: "rank", Value: "best"}}
	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizationHandlerCancelUnknownJob(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationServiceMock{err: appErrors.ErrNotFound})

	c, w := newGinContext(http.MethodPost, "/timetables/optimizations/ghost/cancel", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}
	handler.Cancel(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOptimizationHandlerEvaluate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOptimizationHandler(&optimizationServiceMock{
		evaluation: &dto.EvaluateTimetableResponse{Fitness: 97000, Conflicts: []models.ConflictDetail{}},
	})

	c, w := newGinContext(http.MethodPost, "/timetables/evaluate", []byte(`{"assignments":[]}`))
	handler.Evaluate(c)

	require.Equal(t, http.StatusOK, w.Code)
	var evaluation dto.EvaluateTimetableResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &evaluation))
	assert.Equal(t, 97000.0, evaluation.Fitness)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	healthy := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{
		"postgres": PingFunc(func(context.Context) error { return nil }),
	})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	healthy.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	degraded := NewMetricsHandler(nil, map[string]Pinger{
		"postgres": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	degraded.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.JobStarted()
	handler := NewMetricsHandler(metrics, nil)

	c, w := newGinContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "optimization_jobs_running 1")
}
