package optimizer

import (
	"fmt"
	"strings"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

// Evaluation is the score breakdown of an existing timetable.
type Evaluation struct {
	Fitness   float64                 `json:"fitness"`
	Conflicts []models.ConflictDetail `json:"conflicts"`
	Metrics   models.QualityMetrics   `json:"metrics"`
}

// EvaluateAssignments scores a hand-edited or previously generated timetable with the
// same rules the search uses. Every assignment is treated as one session; course, day,
// slot, faculty, room and batch must resolve against in, otherwise ErrInvalidAssignment.
func EvaluateAssignments(in Input, assignments []models.Assignment, params Parameters) (*Evaluation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	batches := indexBatches(in.Departments)
	courses := indexCourses(in.Departments)
	sessions := make([]Session, len(assignments))
	ordinals := make(map[string]int)
	for i, assignment := range assignments {
		batch, ok := batches[assignment.BatchID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown batch %q", ErrInvalidAssignment, assignment.BatchID)
		}
		if _, ok := courses[assignment.CourseID]; !ok {
			return nil, fmt.Errorf("%w: unknown course %q", ErrInvalidAssignment, assignment.CourseID)
		}
		ordinal, seen := ordinals[assignment.BatchID]
		if !seen {
			ordinal = len(ordinals)
			ordinals[assignment.BatchID] = ordinal
		}
		id := assignment.SessionID
		if id == "" {
			id = fmt.Sprintf("%s:%s:#%d", assignment.BatchID, assignment.CourseID, i+1)
		}
		sessions[i] = Session{
			Index:        i,
			ID:           id,
			CourseID:     assignment.CourseID,
			BatchID:      assignment.BatchID,
			DepartmentID: assignment.DepartmentID,
			StudentCount: batch.StudentCount,
			batch:        ordinal,
		}
	}

	c := newCatalog(in, sessions)
	if len(c.slots) == 0 {
		return nil, ErrNoSlots
	}
	genes := make([]Gene, len(assignments))
	for i, assignment := range assignments {
		g, err := c.gene(assignment)
		if err != nil {
			return nil, err
		}
		genes[i] = g
	}

	eval := newEvaluator(c, params)
	a := eval.analyze(genes, true)
	return &Evaluation{
		Fitness:   eval.score(a),
		Conflicts: nonNilConflicts(a.conflicts),
		Metrics:   qualityMetrics(c, a, len(genes)),
	}, nil
}

// gene resolves an assignment's identifiers to catalog indices.
func (c *catalog) gene(assignment models.Assignment) (Gene, error) {
	day, ok := c.dayIndex[strings.ToLower(assignment.Day)]
	if !ok {
		return Gene{}, fmt.Errorf("%w: unknown day %q", ErrInvalidAssignment, assignment.Day)
	}
	slot, ok := c.slotIndex[assignment.Slot]
	if !ok {
		return Gene{}, fmt.Errorf("%w: unknown slot %q", ErrInvalidAssignment, assignment.Slot)
	}
	g := Gene{Day: day, Slot: slot, Faculty: Unassigned, Room: Unassigned}
	if assignment.FacultyID != nil {
		idx, ok := c.facultyIdx[*assignment.FacultyID]
		if !ok {
			return Gene{}, fmt.Errorf("%w: unknown faculty %q", ErrInvalidAssignment, *assignment.FacultyID)
		}
		g.Faculty = idx
	}
	if assignment.RoomID != nil {
		idx, ok := c.roomIdx[*assignment.RoomID]
		if !ok {
			return Gene{}, fmt.Errorf("%w: unknown room %q", ErrInvalidAssignment, *assignment.RoomID)
		}
		g.Room = idx
	}
	return g, nil
}

func indexBatches(departments []models.Department) map[string]models.Batch {
	batches := make(map[string]models.Batch)
	for _, dept := range departments {
		for _, batch := range dept.Batches {
			if _, seen := batches[batch.ID]; !seen {
				batches[batch.ID] = batch
			}
		}
	}
	return batches
}

// indexCourses collects every course id offered by any semester of any regulation.
func indexCourses(departments []models.Department) map[string]struct{} {
	courses := make(map[string]struct{})
	for _, dept := range departments {
		for _, regulation := range dept.Regulations {
			for _, semester := range regulation.Semesters {
				for _, course := range semester.Courses {
					courses[course.ID] = struct{}{}
				}
			}
		}
	}
	return courses
}
