package dto

import (
	"time"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

// WeightOverrides replaces individual penalty weights.
type WeightOverrides struct {
	HardConflict *float64 `json:"hardConflict,omitempty" validate:"omitempty,gt=0"`
	Continuous   *float64 `json:"continuous,omitempty" validate:"omitempty,gte=0"`
	Clustering   *float64 `json:"clustering,omitempty" validate:"omitempty,gte=0"`
	Distribution *float64 `json:"distribution,omitempty" validate:"omitempty,gte=0"`
	Gap          *float64 `json:"gap,omitempty" validate:"omitempty,gte=0"`
}

// ParameterOverrides tunes a single request on top of the configured defaults.
type ParameterOverrides struct {
	PopulationSize       *int             `json:"populationSize,omitempty" validate:"omitempty,min=1,max=1000"`
	Generations          *int             `json:"generations,omitempty" validate:"omitempty,min=0,max=5000"`
	Runs                 *int             `json:"runs,omitempty" validate:"omitempty,min=1,max=20"`
	EliteCount           *int             `json:"eliteCount,omitempty" validate:"omitempty,min=0"`
	TournamentSize       *int             `json:"tournamentSize,omitempty" validate:"omitempty,min=1"`
	PreferredClusterSize *int             `json:"preferredClusterSize,omitempty" validate:"omitempty,min=1,max=8"`
	MaxContinuousClasses *int             `json:"maxContinuousClasses,omitempty" validate:"omitempty,min=1"`
	ResultLimit          *int             `json:"resultLimit,omitempty" validate:"omitempty,min=1,max=10"`
	Weights              *WeightOverrides `json:"weights,omitempty"`
}

// OptimizeTimetableRequest captures POST /timetables/optimizations payload.
type OptimizeTimetableRequest struct {
	Name           string                `json:"name" validate:"max=120"`
	SemesterNumber int                   `json:"semesterNumber" validate:"required,min=1,max=12"`
	Departments    []models.Department   `json:"departments" validate:"required,min=1,dive"`
	Rooms          []models.Room         `json:"rooms" validate:"unique=ID,dive"`
	Academic       models.AcademicConfig `json:"academic"`
	Seed           *int64                `json:"seed,omitempty"`
	Parameters     *ParameterOverrides   `json:"parameters,omitempty"`
}

// EvaluateTimetableRequest captures POST /timetables/evaluate payload.
type EvaluateTimetableRequest struct {
	Departments []models.Department   `json:"departments" validate:"required,min=1,dive"`
	Rooms       []models.Room         `json:"rooms" validate:"unique=ID,dive"`
	Academic    models.AcademicConfig `json:"academic"`
	Assignments []models.Assignment   `json:"assignments" validate:"required,min=1,dive"`
	Parameters  *ParameterOverrides   `json:"parameters,omitempty"`
}

// OptimizationJobResponse exposes job progress metadata.
type OptimizationJobResponse struct {
	ID         string                    `json:"id"`
	Name       string                    `json:"name"`
	Status     models.OptimizationStatus `json:"status"`
	Progress   float64                   `json:"progress"`
	BestScore  *float64                  `json:"bestScore,omitempty"`
	Error      *string                   `json:"error,omitempty"`
	CreatedAt  time.Time                 `json:"createdAt"`
	StartedAt  *time.Time                `json:"startedAt,omitempty"`
	FinishedAt *time.Time                `json:"finishedAt,omitempty"`
}

// OptimizationResultsResponse lists the ranked results of a finished job.
type OptimizationResultsResponse struct {
	JobID   string                      `json:"jobId"`
	Results []models.OptimizationResult `json:"results"`
}

// EvaluateTimetableResponse is the score breakdown of a supplied timetable.
type EvaluateTimetableResponse struct {
	Fitness   float64                 `json:"fitness"`
	Conflicts []models.ConflictDetail `json:"conflicts"`
	Metrics   models.QualityMetrics   `json:"metrics"`
}
