package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

// analysis holds the raw penalty terms of one genome.
type analysis struct {
	hard         int
	conflicts    []models.ConflictDetail
	continuous   float64
	clustering   float64
	distribution float64
	gap          float64
}

// Evaluator scores genomes against the shared catalog.
type Evaluator struct {
	cat    *catalog
	params Parameters
}

func newEvaluator(c *catalog, params Parameters) *Evaluator {
	return &Evaluator{cat: c, params: params}
}

// fitness returns BaseScore minus the weighted penalties, floored at zero.
func (e *Evaluator) fitness(genes []Gene) float64 {
	return e.score(e.analyze(genes, false))
}

func (e *Evaluator) score(a analysis) float64 {
	w := e.params.Weights
	penalty := w.HardConflict*float64(a.hard) +
		w.Continuous*a.continuous +
		w.Clustering*a.clustering +
		w.Distribution*a.distribution +
		w.Gap*a.gap
	return math.Max(0, e.params.BaseScore-penalty)
}

func (e *Evaluator) analyze(genes []Gene, detailed bool) analysis {
	var a analysis
	e.collectDoubleBookings(genes, detailed, &a)
	e.collectAssignmentIssues(genes, detailed, &a)
	e.collectOverloads(genes, detailed, &a)
	e.collectSoftPenalties(genes, &a)
	return a
}

func (e *Evaluator) collectDoubleBookings(genes []Gene, detailed bool, a *analysis) {
	c := e.cat
	cells := make([][]int, c.cells())
	for i, g := range genes {
		idx := c.cell(g)
		cells[idx] = append(cells[idx], i)
	}

	for _, members := range cells {
		if len(members) < 2 {
			continue
		}
		first := genes[members[0]]

		for _, group := range groupBy(members, func(i int) int { return genes[i].Faculty }) {
			if len(group) < 2 {
				continue
			}
			a.hard++
			if detailed {
				member := c.faculty[genes[group[0]].Faculty]
				a.conflicts = append(a.conflicts, models.ConflictDetail{
					Type:     models.ConflictFacultyDoubleBooked,
					Day:      Days[first.Day],
					Slot:     c.slots[first.Slot],
					Message:  fmt.Sprintf("Faculty %s is booked for %d sessions on %s at %s", displayName(member.Name, member.ID), len(group), Days[first.Day], c.slots[first.Slot]),
					Entities: append([]string{member.ID}, e.sessionIDs(group)...),
					Severity: models.SeverityCritical,
				})
			}
		}

		for _, group := range groupBy(members, func(i int) int { return genes[i].Room }) {
			if len(group) < 2 {
				continue
			}
			a.hard++
			if detailed {
				room := c.rooms[genes[group[0]].Room]
				a.conflicts = append(a.conflicts, models.ConflictDetail{
					Type:     models.ConflictRoomDoubleBooked,
					Day:      Days[first.Day],
					Slot:     c.slots[first.Slot],
					Message:  fmt.Sprintf("Room %s is booked for %d sessions on %s at %s", displayName(room.Name, room.ID), len(group), Days[first.Day], c.slots[first.Slot]),
					Entities: append([]string{room.ID}, e.sessionIDs(group)...),
					Severity: models.SeverityCritical,
				})
			}
		}

		for _, group := range groupBy(members, func(i int) int { return c.sessions[i].batch }) {
			if len(group) < 2 {
				continue
			}
			a.hard++
			if detailed {
				batchID := c.sessions[group[0]].BatchID
				a.conflicts = append(a.conflicts, models.ConflictDetail{
					Type:     models.ConflictBatchDoubleBooked,
					Day:      Days[first.Day],
					Slot:     c.slots[first.Slot],
					Message:  fmt.Sprintf("Batch %s has %d sessions on %s at %s", batchID, len(group), Days[first.Day], c.slots[first.Slot]),
					Entities: append([]string{batchID}, e.sessionIDs(group)...),
					Severity: models.SeverityCritical,
				})
			}
		}
	}
}

func (e *Evaluator) collectAssignmentIssues(genes []Gene, detailed bool, a *analysis) {
	c := e.cat
	for i, g := range genes {
		session := c.sessions[i]
		if g.Faculty == Unassigned {
			a.hard++
			if detailed {
				a.conflicts = append(a.conflicts, models.ConflictDetail{
					Type:     models.ConflictFacultyUnassigned,
					Day:      Days[g.Day],
					Slot:     c.slots[g.Slot],
					Message:  fmt.Sprintf("No faculty assigned to course %s for batch %s", session.CourseID, session.BatchID),
					Entities: []string{session.ID, session.CourseID, session.BatchID},
					Severity: models.SeverityHigh,
				})
			}
		}
		if g.Room == Unassigned {
			continue
		}
		room := c.rooms[g.Room]
		if room.Capacity < session.StudentCount {
			a.hard++
			if detailed {
				a.conflicts = append(a.conflicts, models.ConflictDetail{
					Type:     models.ConflictRoomCapacity,
					Day:      Days[g.Day],
					Slot:     c.slots[g.Slot],
					Message:  fmt.Sprintf("Room %s seats %d but batch %s has %d students", displayName(room.Name, room.ID), room.Capacity, session.BatchID, session.StudentCount),
					Entities: []string{room.ID, session.BatchID, session.ID},
					Severity: models.SeverityHigh,
				})
			}
		}
	}
}

func (e *Evaluator) collectOverloads(genes []Gene, detailed bool, a *analysis) {
	c := e.cat
	if len(c.faculty) == 0 {
		return
	}
	loads := make([]int, len(c.faculty))
	for _, g := range genes {
		if g.Faculty != Unassigned {
			loads[g.Faculty]++
		}
	}
	for idx, member := range c.faculty {
		if member.MaxWeeklyLoad <= 0 || loads[idx] <= member.MaxWeeklyLoad {
			continue
		}
		a.hard++
		if detailed {
			a.conflicts = append(a.conflicts, models.ConflictDetail{
				Type:     models.ConflictFacultyOverloaded,
				Message:  fmt.Sprintf("Faculty %s is assigned %d sessions, above the weekly load of %d", displayName(member.Name, member.ID), loads[idx], member.MaxWeeklyLoad),
				Entities: []string{member.ID},
				Severity: models.SeverityMedium,
			})
		}
	}
}

func (e *Evaluator) collectSoftPenalties(genes []Gene, a *analysis) {
	c := e.cat
	perBatch := make([][][]int, c.batches)
	for b := range perBatch {
		perBatch[b] = make([][]int, len(Days))
	}
	for i, g := range genes {
		b := c.sessions[i].batch
		perBatch[b][g.Day] = append(perBatch[b][g.Day], g.Slot)
	}

	for _, days := range perBatch {
		counts := make([]float64, len(days))
		for d, slots := range days {
			counts[d] = float64(len(slots))
			if len(slots) == 0 {
				continue
			}
			sort.Ints(slots)
			a.continuous += continuousPenalty(slots, e.params.MaxContinuousClasses)
			gaps := gapSum(slots)
			a.clustering += gaps * float64(len(slots))
			a.gap += gaps
		}
		a.distribution += variance(counts)
	}
}

// continuousPenalty charges every class beyond max in a run of adjacent slots.
// slots must be sorted.
func continuousPenalty(slots []int, max int) float64 {
	var penalty float64
	run := 1
	for i := 1; i < len(slots); i++ {
		if slots[i]-slots[i-1] <= 1 {
			run++
			continue
		}
		if run > max {
			penalty += float64(run - max)
		}
		run = 1
	}
	if run > max {
		penalty += float64(run - max)
	}
	return penalty
}

// gapSum adds up the empty periods between consecutive sorted slots.
func gapSum(slots []int) float64 {
	var gaps float64
	for i := 1; i < len(slots); i++ {
		if diff := slots[i] - slots[i-1] - 1; diff > 0 {
			gaps += float64(diff)
		}
	}
	return gaps
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

// groupBy partitions members by key in first-seen order. Unassigned keys are skipped.
func groupBy(members []int, key func(int) int) [][]int {
	var order []int
	groups := make(map[int][]int)
	for _, m := range members {
		k := key(m)
		if k == Unassigned {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], m)
	}
	result := make([][]int, 0, len(order))
	for _, k := range order {
		result = append(result, groups[k])
	}
	return result
}

func (e *Evaluator) sessionIDs(indices []int) []string {
	ids := make([]string, len(indices))
	for i, idx := range indices {
		ids[i] = e.cat.sessions[idx].ID
	}
	return ids
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return name
}
