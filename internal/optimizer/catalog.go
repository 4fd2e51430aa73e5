package optimizer

import (
	"strings"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

// Unassigned marks a gene without a faculty member or room.
const Unassigned = -1

// Days is the fixed teaching week, in order.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// SchedulableSlots returns the configured periods minus the lunch period, in order.
// A period repeated with the same label is kept once, at its first position.
func SchedulableSlots(cfg models.AcademicConfig) []models.Period {
	slots := make([]models.Period, 0, len(cfg.Periods))
	seen := make(map[string]struct{}, len(cfg.Periods))
	for _, period := range cfg.Periods {
		if !cfg.LunchPeriod.IsZero() && period == cfg.LunchPeriod {
			continue
		}
		label := period.Label()
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		slots = append(slots, period)
	}
	return slots
}

// catalog is the read-only placement vocabulary shared by every operator in a search.
type catalog struct {
	sessions   []Session
	batches    int
	slots      []string
	faculty    []models.Faculty
	rooms      []models.Room
	eligible   map[string][]int
	dayIndex   map[string]int
	slotIndex  map[string]int
	facultyIdx map[string]int
	roomIdx    map[string]int
}

func newCatalog(in Input, sessions []Session) *catalog {
	periods := SchedulableSlots(in.Academic)
	c := &catalog{
		sessions:   sessions,
		batches:    batchCount(sessions),
		slots:      make([]string, len(periods)),
		eligible:   make(map[string][]int),
		dayIndex:   make(map[string]int, len(Days)),
		slotIndex:  make(map[string]int, len(periods)),
		facultyIdx: make(map[string]int),
		roomIdx:    make(map[string]int, len(in.Rooms)),
	}
	for i, day := range Days {
		c.dayIndex[strings.ToLower(day)] = i
	}
	for i, period := range periods {
		c.slots[i] = period.Label()
		c.slotIndex[c.slots[i]] = i
	}
	for _, dept := range in.Departments {
		for _, member := range dept.Faculty {
			if _, seen := c.facultyIdx[member.ID]; seen {
				continue
			}
			idx := len(c.faculty)
			c.facultyIdx[member.ID] = idx
			c.faculty = append(c.faculty, member)
			for _, courseID := range member.EligibleCourseIDs {
				c.eligible[courseID] = append(c.eligible[courseID], idx)
			}
		}
	}
	for _, room := range in.Rooms {
		if _, seen := c.roomIdx[room.ID]; seen {
			continue
		}
		c.roomIdx[room.ID] = len(c.rooms)
		c.rooms = append(c.rooms, room)
	}
	return c
}

func (c *catalog) cells() int {
	return len(Days) * len(c.slots)
}

func (c *catalog) cell(g Gene) int {
	return g.Day*len(c.slots) + g.Slot
}

// eligibleCount returns how many faculty members can teach at least one session.
func (c *catalog) eligibleCount() int {
	seen := make(map[int]struct{})
	for _, s := range c.sessions {
		for _, idx := range c.eligible[s.CourseID] {
			seen[idx] = struct{}{}
		}
	}
	return len(seen)
}

func (c *catalog) facultyID(idx int) *string {
	if idx == Unassigned || idx >= len(c.faculty) {
		return nil
	}
	id := c.faculty[idx].ID
	return &id
}

func (c *catalog) roomID(idx int) *string {
	if idx == Unassigned || idx >= len(c.rooms) {
		return nil
	}
	id := c.rooms[idx].ID
	return &id
}
