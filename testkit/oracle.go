package testkit

import (
	"errors"
	"fmt"

	"github.com/snow-ghost/knapsack/core"
)

// MaxOracleItems bounds exhaustive search to 2^24 subsets.
const MaxOracleItems = 24

var ErrTooManyItems = errors.New("too many items for exhaustive search")

// Optimum is the best feasible subset by total value.
type Optimum struct {
	Genome core.Genome
	Value  float64
	Weight int
}

// SolveExact enumerates every subset. Ties keep the subset with the smallest
// bitmask, bit i standing for item i.
func SolveExact(p core.Problem) (Optimum, error) {
	n := len(p.Items)
	if n > MaxOracleItems {
		return Optimum{}, fmt.Errorf("%w: %d > %d", ErrTooManyItems, n, MaxOracleItems)
	}

	var bestMask uint32
	var bestValue float64
	bestWeight := 0
	for mask := uint32(0); mask < 1<<n; mask++ {
		w, v := 0, 0.0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				w += p.Items[i].Weight
				v += p.Items[i].Value
			}
		}
		if float64(w) <= p.Capacity && v > bestValue {
			bestMask, bestValue, bestWeight = mask, v, w
		}
	}

	g := make(core.Genome, n)
	for i := range g {
		if bestMask&(1<<i) != 0 {
			g[i] = 1
		}
	}
	return Optimum{Genome: g, Value: bestValue, Weight: bestWeight}, nil
}

// Gap is how far value falls short of the optimum, relative to it.
func (o Optimum) Gap(value float64) float64 {
	if o.Value == 0 {
		return 0
	}
	gap := (o.Value - value) / o.Value
	if gap < 0 {
		return 0
	}
	return gap
}
