package models

import "time"

// Department groups the curriculum, batches and faculty owned by one academic unit.
type Department struct {
	ID          string       `json:"id" validate:"required"`
	Name        string       `json:"name"`
	Regulations []Regulation `json:"regulations" validate:"dive"`
	Batches     []Batch      `json:"batches" validate:"dive"`
	Faculty     []Faculty    `json:"faculty" validate:"dive"`
}

// Regulation is a curriculum version that batches follow.
type Regulation struct {
	ID        string     `json:"id" validate:"required"`
	Name      string     `json:"name"`
	Semesters []Semester `json:"semesters" validate:"dive"`
}

// Semester lists the courses taught in one semester of a regulation.
type Semester struct {
	ID      string   `json:"id"`
	Number  int      `json:"number" validate:"min=1"`
	Courses []Course `json:"courses" validate:"dive"`
}

// Course is a subject with a weekly contact-hour requirement.
type Course struct {
	ID          string `json:"id" validate:"required"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	WeeklyHours int    `json:"weeklyHours" validate:"min=0,max=40"`
}

// Batch is a cohort of students following one regulation.
type Batch struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name"`
	RegulationID string `json:"regulationId"`
	StudentCount int    `json:"studentCount" validate:"min=0"`
}

// Faculty is an instructor and the courses they may teach.
type Faculty struct {
	ID                string   `json:"id" validate:"required"`
	Name              string   `json:"name"`
	EligibleCourseIDs []string `json:"eligibleCourseIds"`
	MaxWeeklyLoad     int      `json:"maxWeeklyLoad" validate:"min=0"`
}

// Room is a teaching space.
type Room struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity" validate:"min=0"`
	Type     string `json:"type"`
}

// Period is a (start, end) pair such as ("09:00", "09:50").
type Period struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// Label renders the period as "start-end".
func (p Period) Label() string {
	return p.Start + "-" + p.End
}

// IsZero reports whether the period carries no bounds.
func (p Period) IsZero() bool {
	return p.Start == "" && p.End == ""
}

// AcademicConfig is the institution's daily period layout.
type AcademicConfig struct {
	Periods     []Period `json:"periods" validate:"required,min=1,dive"`
	LunchPeriod Period   `json:"lunchPeriod" validate:"-"`
}

// ConflictType enumerates detected constraint violations.
type ConflictType string

const (
	ConflictFacultyDoubleBooked ConflictType = "FACULTY_DOUBLE_BOOKED"
	ConflictRoomDoubleBooked    ConflictType = "ROOM_DOUBLE_BOOKED"
	ConflictBatchDoubleBooked   ConflictType = "BATCH_DOUBLE_BOOKED"
	ConflictFacultyUnassigned   ConflictType = "FACULTY_UNASSIGNED"
	ConflictRoomCapacity        ConflictType = "ROOM_CAPACITY"
	ConflictFacultyOverloaded   ConflictType = "FACULTY_OVERLOADED"
)

// ConflictSeverity tags a conflict for reporting. It does not change scoring.
type ConflictSeverity string

const (
	SeverityCritical ConflictSeverity = "critical"
	SeverityHigh     ConflictSeverity = "high"
	SeverityMedium   ConflictSeverity = "medium"
	SeverityLow      ConflictSeverity = "low"
)

// ConflictDetail describes one violation found in a timetable.
type ConflictDetail struct {
	Type     ConflictType     `json:"type"`
	Day      string           `json:"day,omitempty"`
	Slot     string           `json:"slot,omitempty"`
	Message  string           `json:"message"`
	Entities []string         `json:"entities"`
	Severity ConflictSeverity `json:"severity"`
}

// Assignment places one session of a course for a batch.
type Assignment struct {
	SessionID    string  `json:"sessionId"`
	CourseID     string  `json:"courseId" validate:"required"`
	BatchID      string  `json:"batchId" validate:"required"`
	DepartmentID string  `json:"departmentId"`
	Day          string  `json:"day" validate:"required"`
	Slot         string  `json:"slot" validate:"required"`
	FacultyID    *string `json:"facultyId,omitempty"`
	RoomID       *string `json:"roomId,omitempty"`
}

// Timetable maps day → slot label → assignments held in that cell.
type Timetable map[string]map[string][]Assignment

// QualityMetrics summarises a timetable's soft quality.
type QualityMetrics struct {
	ClusteringScore   float64 `json:"clusteringScore"`
	DistributionScore float64 `json:"distributionScore"`
	ConflictCount     int     `json:"conflictCount"`
	UtilizationRate   float64 `json:"utilizationRate"`
}

// OptimizationResult is the outcome of one independent optimizer run.
type OptimizationResult struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Timetable Timetable        `json:"timetable"`
	Score     float64          `json:"score"`
	Conflicts []ConflictDetail `json:"conflicts"`
	Metrics   QualityMetrics   `json:"metrics"`
	CreatedAt time.Time        `json:"createdAt"`
}
