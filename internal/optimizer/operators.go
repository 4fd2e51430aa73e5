package optimizer

import (
	"math"
	"math/rand"
)

// searchState is the mutable tuning of one run. It never outlives the run.
type searchState struct {
	mutationRate float64
	history      []float64
}

func newSearchState(params Parameters) *searchState {
	return &searchState{
		mutationRate: params.InitialMutationRate,
		history:      make([]float64, 0, params.Generations),
	}
}

// observe records the generation's best fitness and adapts the mutation rate
// once the history is longer than the stagnation window.
func (s *searchState) observe(best float64, params Parameters) {
	s.history = append(s.history, best)
	window := params.StagnationWindow
	if len(s.history) <= window {
		return
	}
	last := len(s.history) - 1
	improvement := s.history[last] - s.history[last-window]
	if improvement < params.StagnationThreshold {
		s.mutationRate = math.Min(params.MaxMutationRate, s.mutationRate*params.MutationIncrease)
		return
	}
	s.mutationRate = math.Max(params.MinMutationRate, s.mutationRate*params.MutationDecay)
}

// tournamentSelect draws size individuals with replacement and returns the fittest.
func tournamentSelect(population []Individual, size int, rng *rand.Rand) Individual {
	best := population[rng.Intn(len(population))]
	for i := 1; i < size; i++ {
		candidate := population[rng.Intn(len(population))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}

// crossover builds a child gene by gene. Genes at the same index always belong to
// the same session, so matching days are enough to keep a batch/day cluster.
func crossover(first, second Individual, rng *rand.Rand) Individual {
	genes := make([]Gene, len(first.Genes))
	for i := range genes {
		a, b := first.Genes[i], second.Genes[i]
		switch {
		case rng.Float64() < 0.5:
			genes[i] = a
		case a.Day == b.Day:
			genes[i] = b
		case rng.Float64() < 0.7:
			genes[i] = a
		default:
			genes[i] = b
		}
	}
	return Individual{Genes: genes}
}

// mutate rewrites genes in place, each with probability rate.
func mutate(ind Individual, c *catalog, rate float64, rng *rand.Rand) {
	slotCount := len(c.slots)
	for i := range ind.Genes {
		if rng.Float64() >= rate {
			continue
		}
		g := &ind.Genes[i]
		g.Faculty = pickFaculty(c, c.sessions[i].CourseID, rng)
		if rng.Float64() < 0.3 {
			g.Day = rng.Intn(len(Days))
		}
		low := g.Slot - 2
		if low < 0 {
			low = 0
		}
		high := g.Slot + 2
		if high > slotCount-1 {
			high = slotCount - 1
		}
		g.Slot = low + rng.Intn(high-low+1)
		if rng.Float64() < 0.5 {
			g.Room = pickRoom(c, rng)
		}
	}
}
