// Package crossover implements one and two cut point recombination of bit
// genomes. Children never share memory with their parents.
package crossover

import (
	"fmt"
	"math/rand/v2"

	"github.com/snow-ghost/knapsack/core"
)

func New(method core.CrossoverMethod) (core.Crossover, error) {
	switch method {
	case core.CrossoverSinglePoint:
		return SinglePoint{}, nil
	case core.CrossoverTwoPoint:
		return TwoPoint{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown crossover %q", core.ErrInvalidParams, method)
	}
}

// SinglePoint takes p1 up to a cut in [1, L-1] and p2 after it.
type SinglePoint struct{}

func (SinglePoint) Method() core.CrossoverMethod { return core.CrossoverSinglePoint }

func (SinglePoint) Cross(p1, p2 core.Genome, rate float64, rng *rand.Rand) (core.Genome, error) {
	if err := checkParents(p1, p2); err != nil {
		return nil, err
	}
	if !active(len(p1), rate, rng) {
		return p1.Clone(), nil
	}
	cut := 1 + rng.IntN(len(p1)-1)
	child := make(core.Genome, len(p1))
	copy(child[:cut], p1[:cut])
	copy(child[cut:], p2[cut:])
	return child, nil
}

// TwoPoint swaps in the p2 segment between cut1 in [1, L-1] and cut2 in
// [cut1, L-1].
type TwoPoint struct{}

func (TwoPoint) Method() core.CrossoverMethod { return core.CrossoverTwoPoint }

func (TwoPoint) Cross(p1, p2 core.Genome, rate float64, rng *rand.Rand) (core.Genome, error) {
	if err := checkParents(p1, p2); err != nil {
		return nil, err
	}
	if !active(len(p1), rate, rng) {
		return p1.Clone(), nil
	}
	n := len(p1)
	cut1 := 1 + rng.IntN(n-1)
	cut2 := cut1 + rng.IntN(n-cut1)
	child := p1.Clone()
	copy(child[cut1:cut2], p2[cut1:cut2])
	return child, nil
}

func checkParents(p1, p2 core.Genome) error {
	if len(p1) != len(p2) {
		return fmt.Errorf("%w: parents have %d and %d bits", core.ErrInvalidGenomeLength, len(p1), len(p2))
	}
	return nil
}

// active draws the crossover coin. Genomes shorter than two bits have no valid
// cut point, so crossover is skipped without consuming randomness.
func active(n int, rate float64, rng *rand.Rand) bool {
	if n < 2 {
		return false
	}
	return rng.Float64() < rate
}
