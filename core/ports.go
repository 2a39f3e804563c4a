package core

import (
	"context"
	"math/rand/v2"
)

type FitnessEvaluator interface {
	Evaluate(g Genome) (float64, error)
}

// Selector picks one parent from an evaluated generation.
type Selector interface {
	Method() SelectionMethod
	Select(gen *Generation, rng *rand.Rand) (*Candidate, error)
}

// Crossover recombines two parents into one fresh child genome.
type Crossover interface {
	Method() CrossoverMethod
	Cross(p1, p2 Genome, rate float64, rng *rand.Rand) (Genome, error)
}

type Mutator interface {
	Mutate(c *Candidate, rate float64, rng *rand.Rand)
}

// Observer receives per-generation statistics. Implementations must not
// retain the generation.
type Observer interface {
	ObserveGeneration(ctx context.Context, stats GenerationStats)
}

type Critic interface {
	Accept(p Problem, g Genome) (bool, string)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, stats GenerationStats)

func (f ObserverFunc) ObserveGeneration(ctx context.Context, stats GenerationStats) { f(ctx, stats) }

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) ObserveGeneration(ctx context.Context, stats GenerationStats) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveGeneration(ctx, stats)
		}
	}
}

// NewRand returns the PRNG handle a run threads through every random draw.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
