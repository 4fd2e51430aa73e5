package optimizer

import (
	"fmt"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

// Session is one required weekly teaching hour of a course for a batch.
// Its Index is the position of its gene in every Individual.
type Session struct {
	Index        int
	ID           string
	CourseID     string
	BatchID      string
	DepartmentID string
	Hour         int
	StudentCount int

	batch int
}

// MaterializeSessions expands the curriculum of the target semester into sessions.
// Batches whose regulation or semester cannot be resolved contribute nothing.
// The order is departments → batches → courses → hour, and seeds the genome indexing.
func MaterializeSessions(departments []models.Department, semesterNumber int) []Session {
	var sessions []Session
	batchOrdinal := make(map[string]int)

	for _, dept := range departments {
		for _, batch := range dept.Batches {
			regulation := findRegulation(dept, batch.RegulationID)
			if regulation == nil {
				continue
			}
			semester := findSemester(regulation, semesterNumber)
			if semester == nil {
				continue
			}
			for _, course := range semester.Courses {
				for hour := 0; hour < course.WeeklyHours; hour++ {
					ordinal, ok := batchOrdinal[batch.ID]
					if !ok {
						ordinal = len(batchOrdinal)
						batchOrdinal[batch.ID] = ordinal
					}
					sessions = append(sessions, Session{
						Index:        len(sessions),
						ID:           fmt.Sprintf("%s:%s:%d", batch.ID, course.ID, hour+1),
						CourseID:     course.ID,
						BatchID:      batch.ID,
						DepartmentID: dept.ID,
						Hour:         hour + 1,
						StudentCount: batch.StudentCount,
						batch:        ordinal,
					})
				}
			}
		}
	}
	return sessions
}

func findRegulation(dept models.Department, id string) *models.Regulation {
	if id == "" {
		return nil
	}
	for i := range dept.Regulations {
		if dept.Regulations[i].ID == id {
			return &dept.Regulations[i]
		}
	}
	return nil
}

func findSemester(regulation *models.Regulation, number int) *models.Semester {
	for i := range regulation.Semesters {
		if regulation.Semesters[i].Number == number {
			return &regulation.Semesters[i]
		}
	}
	return nil
}

// batchCount returns the number of distinct batches referenced by sessions.
func batchCount(sessions []Session) int {
	count := 0
	for _, s := range sessions {
		if s.batch+1 > count {
			count = s.batch + 1
		}
	}
	return count
}
