package optimizer

import "math/rand"

// Gene places the session with the same index as the gene.
// Faculty and Room index into the search catalog or hold Unassigned.
type Gene struct {
	Day     int
	Slot    int
	Faculty int
	Room    int
}

// Individual is one candidate timetable: exactly one gene per session.
type Individual struct {
	Genes   []Gene
	Fitness float64
}

func (ind Individual) clone() Individual {
	genes := make([]Gene, len(ind.Genes))
	copy(genes, ind.Genes)
	return Individual{Genes: genes, Fitness: ind.Fitness}
}

func initPopulation(c *catalog, params Parameters, rng *rand.Rand) []Individual {
	population := make([]Individual, params.PopulationSize)
	byBatch := sessionsByBatch(c)
	for i := range population {
		population[i] = newIndividual(c, params, byBatch, rng)
	}
	return population
}

func sessionsByBatch(c *catalog) [][]int {
	groups := make([][]int, c.batches)
	for _, s := range c.sessions {
		groups[s.batch] = append(groups[s.batch], s.Index)
	}
	return groups
}

// newIndividual places each batch's sessions in small clusters of consecutive
// slots on a random day. The shuffle varies which courses share a cluster.
func newIndividual(c *catalog, params Parameters, byBatch [][]int, rng *rand.Rand) Individual {
	genes := make([]Gene, len(c.sessions))
	slotCount := len(c.slots)

	for _, group := range byBatch {
		members := make([]int, len(group))
		copy(members, group)
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})

		for start := 0; start < len(members); start += params.PreferredClusterSize {
			end := start + params.PreferredClusterSize
			if end > len(members) {
				end = len(members)
			}
			cluster := members[start:end]

			day := rng.Intn(len(Days))
			maxStart := slotCount - (len(cluster) + params.MinClusterBreak)
			if maxStart < 0 {
				maxStart = 0
			}
			first := rng.Intn(maxStart + 1)

			for offset, sessionIdx := range cluster {
				slot := first + offset
				placedDay := day
				if slot >= slotCount {
					// the cluster ran off the end of the day; keep the gene, drop the clustering
					placedDay = rng.Intn(len(Days))
					slot = rng.Intn(slotCount)
				}
				genes[sessionIdx] = Gene{
					Day:     placedDay,
					Slot:    slot,
					Faculty: pickFaculty(c, c.sessions[sessionIdx].CourseID, rng),
					Room:    pickRoom(c, rng),
				}
			}
		}
	}
	return Individual{Genes: genes}
}

func pickFaculty(c *catalog, courseID string, rng *rand.Rand) int {
	candidates := c.eligible[courseID]
	if len(candidates) == 0 {
		return Unassigned
	}
	return candidates[rng.Intn(len(candidates))]
}

func pickRoom(c *catalog, rng *rand.Rand) int {
	if len(c.rooms) == 0 {
		return Unassigned
	}
	return rng.Intn(len(c.rooms))
}
