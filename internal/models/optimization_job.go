package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// OptimizationStatus captures background optimization lifecycle states.
type OptimizationStatus string

const (
	OptimizationStatusQueued    OptimizationStatus = "QUEUED"
	OptimizationStatusRunning   OptimizationStatus = "RUNNING"
	OptimizationStatusFinished  OptimizationStatus = "FINISHED"
	OptimizationStatusFailed    OptimizationStatus = "FAILED"
	OptimizationStatusCancelled OptimizationStatus = "CANCELLED"
)

// Terminal reports whether no further transition is possible.
func (s OptimizationStatus) Terminal() bool {
	switch s {
	case OptimizationStatusFinished, OptimizationStatusFailed, OptimizationStatusCancelled:
		return true
	}
	return false
}

// OptimizationJob is the persisted metadata of one optimization request.
type OptimizationJob struct {
	ID           string               `db:"id" json:"id"`
	Name         string               `db:"name" json:"name"`
	Status       OptimizationStatus   `db:"status" json:"status"`
	Progress     float64              `db:"progress" json:"progress"`
	Snapshot     OptimizationSnapshot `db:"snapshot" json:"-"`
	Seed         *int64               `db:"seed" json:"seed,omitempty"`
	BestScore    *float64             `db:"best_score" json:"bestScore,omitempty"`
	ErrorMessage *string              `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt    time.Time            `db:"created_at" json:"createdAt"`
	StartedAt    *time.Time           `db:"started_at" json:"startedAt,omitempty"`
	FinishedAt   *time.Time           `db:"finished_at" json:"finishedAt,omitempty"`
}

// OptimizationSnapshot freezes the reference data and tuning a job runs with, stored as JSONB.
type OptimizationSnapshot struct {
	SemesterNumber int             `json:"semesterNumber"`
	Departments    []Department    `json:"departments"`
	Rooms          []Room          `json:"rooms"`
	Academic       AcademicConfig  `json:"academic"`
	Parameters     json.RawMessage `json:"parameters,omitempty"`
}

// Value marshals the snapshot to JSON for persistence.
func (s OptimizationSnapshot) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal optimization snapshot: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the snapshot.
func (s *OptimizationSnapshot) Scan(value interface{}) error {
	*s = OptimizationSnapshot{}
	return scanJSON(value, s, "optimization snapshot")
}

// OptimizationResultRecord is one ranked result row of a finished job.
type OptimizationResultRecord struct {
	ID        string        `db:"id"`
	JobID     string        `db:"job_id"`
	Rank      int           `db:"rank"`
	Score     float64       `db:"score"`
	Payload   ResultPayload `db:"payload"`
	CreatedAt time.Time     `db:"created_at"`
}

// ResultPayload stores an OptimizationResult as JSONB.
type ResultPayload OptimizationResult

// Value marshals the result to JSON for persistence.
func (p ResultPayload) Value() (driver.Value, error) {
	data, err := json.Marshal(OptimizationResult(p))
	if err != nil {
		return nil, fmt.Errorf("marshal optimization result: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the result.
func (p *ResultPayload) Scan(value interface{}) error {
	var result OptimizationResult
	if err := scanJSON(value, &result, "optimization result"); err != nil {
		return err
	}
	*p = ResultPayload(result)
	return nil
}

func scanJSON(value interface{}, dest interface{}, name string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, name)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
