// Package selection implements parent selection over an evaluated generation.
package selection

import (
	"fmt"
	"math/rand/v2"

	"github.com/snow-ghost/knapsack/core"
)

// New resolves a selection method once at configuration time.
func New(method core.SelectionMethod, tournamentSize int, strict bool) (core.Selector, error) {
	switch method {
	case core.SelectionTournament:
		if tournamentSize < 1 {
			return nil, fmt.Errorf("%w: tournament size %d", core.ErrInvalidParams, tournamentSize)
		}
		return NewTournament(tournamentSize), nil
	case core.SelectionRoulette:
		return NewRoulette(strict), nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidSelectionMethod, method)
	}
}

// Tournament samples Size distinct candidates and keeps the fittest.
type Tournament struct {
	Size int
}

func NewTournament(size int) *Tournament { return &Tournament{Size: size} }

func (t *Tournament) Method() core.SelectionMethod { return core.SelectionTournament }

func (t *Tournament) Select(gen *core.Generation, rng *rand.Rand) (*core.Candidate, error) {
	n := gen.Len()
	if t.Size > n {
		return nil, fmt.Errorf("%w: tournament size %d exceeds population %d", core.ErrInvalidParams, t.Size, n)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty population", core.ErrInvalidParams)
	}

	// partial Fisher-Yates over an index slice gives a sample without replacement
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	var best *core.Candidate
	for i := 0; i < t.Size; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		c := gen.Candidates[idx[i]]
		if best == nil || c.Score() > best.Score() {
			best = c
		}
	}
	return best, nil
}

// Roulette draws candidates with probability proportional to fitness. When
// the wheel is empty it falls back to a uniform draw unless Strict is set.
type Roulette struct {
	Strict bool
}

func NewRoulette(strict bool) *Roulette { return &Roulette{Strict: strict} }

func (r *Roulette) Method() core.SelectionMethod { return core.SelectionRoulette }

func (r *Roulette) Select(gen *core.Generation, rng *rand.Rand) (*core.Candidate, error) {
	n := gen.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: empty population", core.ErrInvalidParams)
	}
	total := gen.TotalFitness()
	if total <= 0 {
		if r.Strict {
			return nil, core.ErrDegenerateSelection
		}
		return gen.Candidates[rng.IntN(n)], nil
	}
	pick := rng.Float64() * total
	return gen.Candidates[gen.SearchAbove(pick)], nil
}
