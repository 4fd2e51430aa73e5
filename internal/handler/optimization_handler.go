package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sakthi0701/SIH2025-sub000/internal/dto"
	appErrors "github.com/sakthi0701/SIH2025-sub000/pkg/errors"
	"github.com/sakthi0701/SIH2025-sub000/pkg/response"
)

type optimizationService interface {
	Submit(ctx context.Context, req dto.OptimizeTimetableRequest) (*dto.OptimizationJobResponse, error)
	Status(ctx context.Context, id string) (*dto.OptimizationJobResponse, error)
	Results(ctx context.Context, id string) (*dto.OptimizationResultsResponse, error)
	ExportResult(ctx context.Context, id string, rank int) ([]byte, error)
	Cancel(ctx context.Context, id string) (*dto.OptimizationJobResponse, error)
	Evaluate(ctx context.Context, req dto.EvaluateTimetableRequest) (*dto.EvaluateTimetableResponse, error)
}

// OptimizationHandler exposes timetable optimization endpoints.
type OptimizationHandler struct {
	service optimizationService
}

// NewOptimizationHandler constructs the handler.
func NewOptimizationHandler(svc optimizationService) *OptimizationHandler {
	return &OptimizationHandler{service: svc}
}

// Submit godoc
// @Summary Queue a timetable optimization
// @Description Validates reference data and starts a background genetic search. Returns 412 when no timetable can be built from the input.
// @Tags Optimizations
// @Accept json
// @Produce json
// @Param payload body dto.OptimizeTimetableRequest true "Optimization payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/optimizations [post]
func (h *OptimizationHandler) Submit(c *gin.Context) {
	var req dto.OptimizeTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "invalid optimization payload"))
		return
	}
	job, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+job.ID)
	response.Accepted(c, job)
}

// Status godoc
// @Summary Optimization progress
// @Tags Optimizations
// @Produce json
// @Param id path string true "Optimization job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/optimizations/{id} [get]
func (h *OptimizationHandler) Status(c *gin.Context) {
	job, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Results godoc
// @Summary Ranked results of a finished optimization
// @Tags Optimizations
// @Produce json
// @Param id path string true "Optimization job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/optimizations/{id}/results [get]
func (h *OptimizationHandler) Results(c *gin.Context) {
	results, err := h.service.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, map[string]interface{}{"count": len(results.Results)})
}

// Export godoc
// @Summary Download a ranked result as CSV
// @Tags Optimizations
// @Produce text/csv
// @Param id path string true "Optimization job ID"
// @Param rank path int true "Result rank, 1 is best"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/optimizations/{id}/results/{rank}/export [get]
func (h *OptimizationHandler) Export(c *gin.Context) {
	id := c.Param("id")
	rank, err := strconv.Atoi(c.Param("rank"))
	if err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "rank must be a number"))
		return
	}
	data, err := h.service.ExportResult(c.Request.Context(), id, rank)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"timetable-%s-%d.csv\"", id, rank))
	c.Data(http.StatusOK, "text/csv", data)
}

// Cancel godoc
// @Summary Cancel a queued or running optimization
// @Tags Optimizations
// @Produce json
// @Param id path string true "Optimization job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/optimizations/{id}/cancel [post]
func (h *OptimizationHandler) Cancel(c *gin.Context) {
	job, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Evaluate godoc
// @Summary Score an existing timetable
// @Description Applies the optimizer's conflict detection and scoring to the supplied assignments without searching.
// @Tags Optimizations
// @Accept json
// @Produce json
// @Param payload body dto.EvaluateTimetableRequest true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables/evaluate [post]
func (h *OptimizationHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "invalid evaluation payload"))
		return
	}
	evaluation, err := h.service.Evaluate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation)
}
