package optimizer

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

func multiBatchCatalog(t *testing.T) *catalog {
	t.Helper()
	dept := singleDepartment(
		[]courseSpec{{id: "cs101", hours: 3}, {id: "ma101", hours: 2}, {id: "ph101", hours: 4}},
		map[string]int{"batch-a": 30, "batch-b": 45},
		[]models.Faculty{
			{ID: "f-1", EligibleCourseIDs: []string{"cs101", "ma101"}},
			{ID: "f-2", EligibleCourseIDs: []string{"cs101"}},
		},
	)
	in := Input{
		Departments:    []models.Department{dept},
		Rooms:          []models.Room{{ID: "r-1", Capacity: 60}, {ID: "r-2", Capacity: 30}},
		SemesterNumber: 1,
		Academic:       models.AcademicConfig{Periods: periods(7)},
	}
	c := newCatalog(in, MaterializeSessions(in.Departments, 1))
	require.Len(t, c.sessions, 18)
	return c
}

func assertGenesValid(t *testing.T, c *catalog, ind Individual) {
	t.Helper()
	require.Len(t, ind.Genes, len(c.sessions))
	for i, g := range ind.Genes {
		assert.GreaterOrEqual(t, g.Day, 0)
		assert.Less(t, g.Day, len(Days))
		assert.GreaterOrEqual(t, g.Slot, 0)
		assert.Less(t, g.Slot, len(c.slots))
		assert.GreaterOrEqual(t, g.Room, 0)
		assert.Less(t, g.Room, len(c.rooms))
		course := c.sessions[i].CourseID
		if len(c.eligible[course]) == 0 {
			assert.Equal(t, Unassigned, g.Faculty, "course %s has no eligible faculty", course)
			continue
		}
		assert.Contains(t, c.eligible[course], g.Faculty)
	}
}

func TestInitPopulationKeepsOneGenePerSession(t *testing.T) {
	c := multiBatchCatalog(t)
	params := DefaultParameters()
	params.PopulationSize = 30

	population := initPopulation(c, params, seeded(7))

	require.Len(t, population, 30)
	for _, ind := range population {
		assertGenesValid(t, c, ind)
	}
}

func TestInitPopulationFitsWhenClusterExceedsDay(t *testing.T) {
	c := multiBatchCatalog(t)
	c.slots = c.slots[:1]
	params := DefaultParameters()
	params.PopulationSize = 10
	params.PreferredClusterSize = 4

	for _, ind := range initPopulation(c, params, seeded(3)) {
		assertGenesValid(t, c, ind)
	}
}

func clusteredCatalog(t *testing.T, courses []courseSpec, slots int) *catalog {
	t.Helper()
	dept := singleDepartment(
		courses,
		map[string]int{"batch-a": 30, "batch-b": 30},
		[]models.Faculty{{ID: "f-1", EligibleCourseIDs: []string{"cs101", "ma101", "ph101"}}},
	)
	in := Input{
		Departments:    []models.Department{dept},
		Rooms:          []models.Room{{ID: "r-1", Capacity: 60}},
		SemesterNumber: 1,
		Academic:       models.AcademicConfig{Periods: periods(slots)},
	}
	return newCatalog(in, MaterializeSessions(in.Departments, 1))
}

func TestNewIndividualPlacesClusterOnOneDayInConsecutiveSlots(t *testing.T) {
	c := clusteredCatalog(t, []courseSpec{{id: "cs101", hours: 3}}, 8)
	params := DefaultParameters()
	byBatch := sessionsByBatch(c)
	require.Len(t, byBatch, 2)
	lastStart := len(c.slots) - (params.PreferredClusterSize + params.MinClusterBreak)

	rng := seeded(21)
	for n := 0; n < 50; n++ {
		ind := newIndividual(c, params, byBatch, rng)
		for _, group := range byBatch {
			require.Len(t, group, params.PreferredClusterSize)
			day := ind.Genes[group[0]].Day
			slots := make([]int, 0, len(group))
			for _, idx := range group {
				assert.Equal(t, day, ind.Genes[idx].Day, "one cluster shares a day")
				slots = append(slots, ind.Genes[idx].Slot)
			}
			sort.Ints(slots)
			assert.LessOrEqual(t, slots[0], lastStart)
			for i := 1; i < len(slots); i++ {
				assert.Equal(t, slots[i-1]+1, slots[i], "cluster slots are consecutive")
			}
		}
	}
}

func TestNewIndividualSplitsBatchIntoClustersPerDay(t *testing.T) {
	c := clusteredCatalog(t, []courseSpec{{id: "cs101", hours: 3}, {id: "ma101", hours: 3}, {id: "ph101", hours: 3}}, 8)
	params := DefaultParameters()
	byBatch := sessionsByBatch(c)

	rng := seeded(5)
	for n := 0; n < 50; n++ {
		ind := newIndividual(c, params, byBatch, rng)
		for _, group := range byBatch {
			require.Len(t, group, 9)
			perDay := make(map[int]int)
			for _, idx := range group {
				perDay[ind.Genes[idx].Day]++
			}
			for day, count := range perDay {
				assert.Zero(t, count%params.PreferredClusterSize, "day %d holds a partial cluster", day)
			}
		}
	}
}

func TestBreedKeepsGenesBoundToTheirSessions(t *testing.T) {
	c := multiBatchCatalog(t)
	params := fastParameters()
	o, err := New(params, Options{Rand: seeded(11)})
	require.NoError(t, err)
	eval := newEvaluator(c, params)

	population := initPopulation(c, params, o.rng)
	evaluateAll(population, eval)
	rankPopulation(population)
	state := newSearchState(params)
	state.mutationRate = 1

	for gen := 0; gen < 10; gen++ {
		population = o.breed(population, c, state)
		require.Len(t, population, params.PopulationSize)
		evaluateAll(population, eval)
		rankPopulation(population)
		for _, ind := range population {
			assertGenesValid(t, c, ind)
		}
	}
}

func TestSearchStateAdaptsMutationRate(t *testing.T) {
	params := DefaultParameters()
	params.StagnationWindow = 3

	stagnant := newSearchState(params)
	for i := 0; i < 20; i++ {
		stagnant.observe(500, params)
	}
	assert.Equal(t, params.MaxMutationRate, stagnant.mutationRate)

	improving := newSearchState(params)
	for i := 0; i < 40; i++ {
		improving.observe(float64(i*100), params)
	}
	assert.Equal(t, params.MinMutationRate, improving.mutationRate)

	early := newSearchState(params)
	for i := 0; i < params.StagnationWindow; i++ {
		early.observe(0, params)
	}
	assert.Equal(t, params.InitialMutationRate, early.mutationRate, "no adaptation inside the first window")
}

func TestTournamentSelectPrefersFittest(t *testing.T) {
	population := []Individual{{Fitness: 1}, {Fitness: 99}, {Fitness: 5}}

	best := tournamentSelect(population, 200, seeded(1))
	assert.Equal(t, 99.0, best.Fitness)

	single := tournamentSelect(population, 1, seeded(1))
	assert.Contains(t, []float64{1, 99, 5}, single.Fitness)
}

func TestCrossoverTakesEachGeneFromAParent(t *testing.T) {
	c := multiBatchCatalog(t)
	params := DefaultParameters()
	params.PopulationSize = 2
	population := initPopulation(c, params, seeded(11))
	first, second := population[0], population[1]

	child := crossover(first, second, seeded(5))

	require.Len(t, child.Genes, len(first.Genes))
	for i, g := range child.Genes {
		assert.True(t, g == first.Genes[i] || g == second.Genes[i], "gene %d must come from a parent", i)
	}
}

func TestCrossoverKeepsSharedDayFromSecondParent(t *testing.T) {
	first := Individual{Genes: []Gene{{Day: 2, Slot: 0, Faculty: 0, Room: 0}}}
	second := Individual{Genes: []Gene{{Day: 2, Slot: 3, Faculty: 1, Room: 1}}}

	seenSecond := false
	rng := seeded(9)
	for i := 0; i < 50; i++ {
		child := crossover(first, second, rng)
		assert.Equal(t, 2, child.Genes[0].Day)
		if child.Genes[0] == second.Genes[0] {
			seenSecond = true
		}
	}
	assert.True(t, seenSecond)
}

func TestMutateStaysWithinBounds(t *testing.T) {
	c := multiBatchCatalog(t)
	params := DefaultParameters()
	params.PopulationSize = 1
	ind := initPopulation(c, params, seeded(2))[0]
	before := ind.clone()

	mutate(ind, c, 1, seeded(4))

	assertGenesValid(t, c, ind)
	for i, g := range ind.Genes {
		shift := g.Slot - before.Genes[i].Slot
		assert.LessOrEqual(t, shift, 2)
		assert.GreaterOrEqual(t, shift, -2)
	}
}

func TestMutateZeroRateIsNoop(t *testing.T) {
	c := multiBatchCatalog(t)
	params := DefaultParameters()
	params.PopulationSize = 1
	ind := initPopulation(c, params, seeded(2))[0]
	before := ind.clone()

	mutate(ind, c, 0, seeded(4))

	assert.Equal(t, before.Genes, ind.Genes)
}
