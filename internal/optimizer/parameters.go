package optimizer

import "fmt"

// Weights scales each penalty term before it is subtracted from the base score.
type Weights struct {
	HardConflict float64 `json:"hardConflict"`
	Continuous   float64 `json:"continuous"`
	Clustering   float64 `json:"clustering"`
	Distribution float64 `json:"distribution"`
	Gap          float64 `json:"gap"`
}

// Parameters tunes the genetic search. Use DefaultParameters and override fields.
type Parameters struct {
	PopulationSize int `json:"populationSize"`
	Generations    int `json:"generations"`
	Runs           int `json:"runs"`
	EliteCount     int `json:"eliteCount"`
	TournamentSize int `json:"tournamentSize"`

	PreferredClusterSize int `json:"preferredClusterSize"`
	MinClusterBreak      int `json:"minClusterBreak"`
	MaxContinuousClasses int `json:"maxContinuousClasses"`

	InitialMutationRate float64 `json:"initialMutationRate"`
	MinMutationRate     float64 `json:"minMutationRate"`
	MaxMutationRate     float64 `json:"maxMutationRate"`
	MutationIncrease    float64 `json:"mutationIncrease"`
	MutationDecay       float64 `json:"mutationDecay"`
	StagnationWindow    int     `json:"stagnationWindow"`
	StagnationThreshold float64 `json:"stagnationThreshold"`

	ResultLimit int     `json:"resultLimit"`
	BaseScore   float64 `json:"baseScore"`
	Weights     Weights `json:"weights"`
}

// DefaultParameters returns the tuning used when nothing is overridden.
func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize: 50,
		Generations:    100,
		Runs:           3,
		EliteCount:     5,
		TournamentSize: 7,

		PreferredClusterSize: 3,
		MinClusterBreak:      1,
		MaxContinuousClasses: 2,

		InitialMutationRate: 0.05,
		MinMutationRate:     0.02,
		MaxMutationRate:     0.1,
		MutationIncrease:    1.5,
		MutationDecay:       0.95,
		StagnationWindow:    10,
		StagnationThreshold: 1,

		ResultLimit: 3,
		BaseScore:   100000,
		Weights: Weights{
			HardConflict: 1000,
			Continuous:   50,
			Clustering:   10,
			Distribution: 20,
			Gap:          5,
		},
	}
}

// Validate rejects parameter sets the search cannot run with.
func (p Parameters) Validate() error {
	switch {
	case p.PopulationSize < 1:
		return fmt.Errorf("%w: population size must be >= 1", ErrInvalidParameters)
	case p.Generations < 0:
		return fmt.Errorf("%w: generations must be >= 0", ErrInvalidParameters)
	case p.Runs < 1:
		return fmt.Errorf("%w: runs must be >= 1", ErrInvalidParameters)
	case p.EliteCount < 0:
		return fmt.Errorf("%w: elite count must be >= 0", ErrInvalidParameters)
	case p.TournamentSize < 1:
		return fmt.Errorf("%w: tournament size must be >= 1", ErrInvalidParameters)
	case p.PreferredClusterSize < 1:
		return fmt.Errorf("%w: preferred cluster size must be >= 1", ErrInvalidParameters)
	case p.MinClusterBreak < 0:
		return fmt.Errorf("%w: cluster break must be >= 0", ErrInvalidParameters)
	case p.MaxContinuousClasses < 1:
		return fmt.Errorf("%w: max continuous classes must be >= 1", ErrInvalidParameters)
	case p.MinMutationRate < 0 || p.MaxMutationRate > 1 || p.MinMutationRate > p.MaxMutationRate:
		return fmt.Errorf("%w: mutation bounds must satisfy 0 <= min <= max <= 1", ErrInvalidParameters)
	case p.InitialMutationRate < 0 || p.InitialMutationRate > 1:
		return fmt.Errorf("%w: initial mutation rate must be within [0,1]", ErrInvalidParameters)
	case p.StagnationWindow < 1:
		return fmt.Errorf("%w: stagnation window must be >= 1", ErrInvalidParameters)
	case p.ResultLimit < 1:
		return fmt.Errorf("%w: result limit must be >= 1", ErrInvalidParameters)
	case p.BaseScore <= 0:
		return fmt.Errorf("%w: base score must be > 0", ErrInvalidParameters)
	}
	return nil
}
