package optimizer

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

var fixedClock = func() time.Time {
	return time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
}

func periods(n int) []models.Period {
	out := make([]models.Period, n)
	for i := range out {
		out[i] = models.Period{
			Start: fmt.Sprintf("%02d:00", 9+i),
			End:   fmt.Sprintf("%02d:50", 9+i),
		}
	}
	return out
}

type courseSpec struct {
	id    string
	hours int
}

// singleDepartment builds one department with one regulation whose semester 1
// holds courses, one batch per (id, students) pair and the given faculty.
func singleDepartment(courses []courseSpec, batches map[string]int, faculty []models.Faculty) models.Department {
	semester := models.Semester{ID: "sem-1", Number: 1}
	for _, course := range courses {
		semester.Courses = append(semester.Courses, models.Course{ID: course.id, Code: course.id, Name: course.id, WeeklyHours: course.hours})
	}
	dept := models.Department{
		ID:          "cse",
		Name:        "Computer Science",
		Regulations: []models.Regulation{{ID: "r2021", Name: "R2021", Semesters: []models.Semester{semester}}},
		Faculty:     faculty,
	}
	ids := make([]string, 0, len(batches))
	for id := range batches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		dept.Batches = append(dept.Batches, models.Batch{ID: id, Name: id, RegulationID: "r2021", StudentCount: batches[id]})
	}
	return dept
}

func simpleInput() Input {
	dept := singleDepartment(
		[]courseSpec{{id: "cs101", hours: 2}},
		map[string]int{"batch-a": 30},
		[]models.Faculty{{ID: "f-1", Name: "Ada", EligibleCourseIDs: []string{"cs101"}}},
	)
	return Input{
		Departments:    []models.Department{dept},
		Rooms:          []models.Room{{ID: "room-1", Name: "Hall 1", Capacity: 40}},
		SemesterNumber: 1,
		Academic:       models.AcademicConfig{Periods: periods(6), LunchPeriod: periods(6)[3]},
	}
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func fastParameters() Parameters {
	params := DefaultParameters()
	params.PopulationSize = 20
	params.Generations = 15
	params.Runs = 2
	return params
}

func strPtr(s string) *string {
	return &s
}
