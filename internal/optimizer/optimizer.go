package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sakthi0701/SIH2025-sub000/internal/models"
)

// Input is the reference data one optimization works from.
type Input struct {
	Name           string                `json:"name"`
	Departments    []models.Department   `json:"departments"`
	Rooms          []models.Room         `json:"rooms"`
	SemesterNumber int                   `json:"semesterNumber"`
	Academic       models.AcademicConfig `json:"academic"`
}

// ProgressFunc receives the overall completion in [0,100] once per generation and
// once more at the end. Returning false stops the search before the next generation.
type ProgressFunc func(percent float64) bool

// Options carries the collaborators of an Optimizer. Zero values are replaced by
// a time-seeded source, a no-op logger and time.Now.
type Options struct {
	Rand   *rand.Rand
	Logger *zap.Logger
	Clock  func() time.Time
}

// Optimizer runs the restart-based genetic search. It is not safe for concurrent use;
// create one per optimization.
type Optimizer struct {
	params Parameters
	rng    *rand.Rand
	logger *zap.Logger
	clock  func() time.Time
}

// New validates params and builds an Optimizer.
func New(params Parameters, opts Options) (*Optimizer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Optimizer{
		params: params,
		rng:    opts.Rand,
		logger: opts.Logger,
		clock:  opts.Clock,
	}, nil
}

// Parameters returns the tuning the optimizer was built with.
func (o *Optimizer) Parameters() Parameters {
	return o.params
}

// Optimize runs every configured restart and returns the best results, highest
// score first. Precondition failures wrap ErrPrecondition; a declined progress
// callback or a cancelled context returns ErrStopped and no results.
func (o *Optimizer) Optimize(ctx context.Context, in Input, progress ProgressFunc) ([]models.OptimizationResult, error) {
	sessions := MaterializeSessions(in.Departments, in.SemesterNumber)
	c := newCatalog(in, sessions)
	if err := checkPreconditions(c); err != nil {
		return nil, err
	}

	eval := newEvaluator(c, o.params)
	o.logger.Debug("optimizer started",
		zap.Int("sessions", len(c.sessions)),
		zap.Int("batches", c.batches),
		zap.Int("faculty", len(c.faculty)),
		zap.Int("rooms", len(c.rooms)),
		zap.Int("slots", len(c.slots)),
		zap.Int("runs", o.params.Runs),
		zap.Int("generations", o.params.Generations),
	)

	results := make([]models.OptimizationResult, 0, o.params.Runs)
	for run := 0; run < o.params.Runs; run++ {
		best, err := o.run(ctx, c, eval, run, progress)
		if err != nil {
			return nil, err
		}
		result, err := o.assemble(c, eval, best, run, in.Name)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if progress != nil {
		progress(100)
	}
	return RankResults(results, o.params.ResultLimit), nil
}

// CheckInput reports the precondition failure Optimize would return for in, without searching.
func CheckInput(in Input) error {
	return checkPreconditions(newCatalog(in, MaterializeSessions(in.Departments, in.SemesterNumber)))
}

func checkPreconditions(c *catalog) error {
	switch {
	case len(c.sessions) == 0:
		return ErrNoSessions
	case c.eligibleCount() == 0:
		return ErrNoEligibleFaculty
	case len(c.rooms) == 0:
		return ErrNoRooms
	case len(c.slots) == 0:
		return ErrNoSlots
	}
	return nil
}

// run evolves one fresh population and returns its fittest individual.
func (o *Optimizer) run(ctx context.Context, c *catalog, eval *Evaluator, run int, progress ProgressFunc) (Individual, error) {
	state := newSearchState(o.params)
	population := initPopulation(c, o.params, o.rng)

	for gen := 0; gen < o.params.Generations; gen++ {
		evaluateAll(population, eval)
		rankPopulation(population)
		state.observe(population[0].Fitness, o.params)
		population = o.breed(population, c, state)

		if err := o.yield(ctx, progress, o.percent(run, gen)); err != nil {
			return Individual{}, err
		}
	}

	evaluateAll(population, eval)
	rankPopulation(population)
	o.logger.Debug("optimizer run finished",
		zap.Int("run", run+1),
		zap.Float64("fitness", population[0].Fitness),
		zap.Float64("mutationRate", state.mutationRate),
	)
	return population[0], nil
}

// breed builds the next generation: elites first, then mutated tournament children.
func (o *Optimizer) breed(population []Individual, c *catalog, state *searchState) []Individual {
	next := make([]Individual, 0, len(population))
	elite := o.params.EliteCount
	if elite > len(population) {
		elite = len(population)
	}
	for i := 0; i < elite; i++ {
		next = append(next, population[i].clone())
	}
	for len(next) < len(population) {
		first := tournamentSelect(population, o.params.TournamentSize, o.rng)
		second := tournamentSelect(population, o.params.TournamentSize, o.rng)
		child := crossover(first, second, o.rng)
		mutate(child, c, state.mutationRate, o.rng)
		next = append(next, child)
	}
	return next
}

// yield is the once-per-generation suspension point.
func (o *Optimizer) yield(ctx context.Context, progress ProgressFunc, percent float64) error {
	runtime.Gosched()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStopped, err)
	}
	if progress != nil && !progress(percent) {
		return ErrStopped
	}
	return nil
}

func (o *Optimizer) percent(run, gen int) float64 {
	total := o.params.Runs * o.params.Generations
	return 100 * float64(run*o.params.Generations+gen) / float64(total)
}

func evaluateAll(population []Individual, eval *Evaluator) {
	for i := range population {
		population[i].Fitness = eval.fitness(population[i].Genes)
	}
}

// rankPopulation orders by fitness descending; ties keep their previous order.
func rankPopulation(population []Individual) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].Fitness > population[j].Fitness
	})
}
