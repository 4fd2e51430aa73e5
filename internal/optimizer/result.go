package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

func (o *Optimizer) assemble(c *catalog, eval *Evaluator, best Individual, run int, name string) (models.OptimizationResult, error) {
	id, err := uuid.NewRandomFromReader(o.rng)
	if err != nil {
		return models.OptimizationResult{}, fmt.Errorf("generate result id: %w", err)
	}

	a := eval.analyze(best.Genes, true)
	return models.OptimizationResult{
		ID:        id.String(),
		Name:      resultName(name, run),
		Timetable: buildTimetable(c, best.Genes),
		Score:     eval.score(a),
		Conflicts: nonNilConflicts(a.conflicts),
		Metrics:   qualityMetrics(c, a, len(best.Genes)),
		CreatedAt: o.clock().UTC(),
	}, nil
}

func resultName(name string, run int) string {
	if name == "" {
		return fmt.Sprintf("Optimized Timetable %d", run+1)
	}
	return fmt.Sprintf("%s #%d", name, run+1)
}

// buildTimetable nests the genome as day → slot → assignments. Every day and slot
// is present, empty cells hold an empty list.
func buildTimetable(c *catalog, genes []Gene) models.Timetable {
	table := make(models.Timetable, len(Days))
	for _, day := range Days {
		slots := make(map[string][]models.Assignment, len(c.slots))
		for _, slot := range c.slots {
			slots[slot] = []models.Assignment{}
		}
		table[day] = slots
	}
	for i, g := range genes {
		assignment := toAssignment(c, i, g)
		table[assignment.Day][assignment.Slot] = append(table[assignment.Day][assignment.Slot], assignment)
	}
	return table
}

func toAssignment(c *catalog, idx int, g Gene) models.Assignment {
	session := c.sessions[idx]
	return models.Assignment{
		SessionID:    session.ID,
		CourseID:     session.CourseID,
		BatchID:      session.BatchID,
		DepartmentID: session.DepartmentID,
		Day:          Days[g.Day],
		Slot:         c.slots[g.Slot],
		FacultyID:    c.facultyID(g.Faculty),
		RoomID:       c.roomID(g.Room),
	}
}

func qualityMetrics(c *catalog, a analysis, placed int) models.QualityMetrics {
	metrics := models.QualityMetrics{
		ClusteringScore:   math.Max(0, 100-a.clustering),
		DistributionScore: math.Max(0, 100-a.distribution*10),
		ConflictCount:     a.hard,
	}
	capacity := len(Days) * len(c.slots) * len(c.rooms)
	if capacity > 0 {
		metrics.UtilizationRate = math.Min(100, 100*float64(placed)/float64(capacity))
	}
	return metrics
}

func nonNilConflicts(conflicts []models.ConflictDetail) []models.ConflictDetail {
	if conflicts == nil {
		return []models.ConflictDetail{}
	}
	return conflicts
}

// RankResults orders results by score, highest first, and keeps at most limit.
// A non-positive limit keeps everything.
func RankResults(results []models.OptimizationResult, limit int) []models.OptimizationResult {
	ranked := make([]models.OptimizationResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
