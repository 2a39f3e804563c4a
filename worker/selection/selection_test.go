package selection

import (
	"testing"

	"github.com/snow-ghost/knapsack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constEvaluator map[string]float64

func (c constEvaluator) Evaluate(g core.Genome) (float64, error) { return c[g.Key()], nil }

// generation builds candidates whose fitness is given by fits, in order.
func generation(t *testing.T, fits ...float64) *core.Generation {
	t.Helper()
	ev := constEvaluator{}
	cands := make([]*core.Candidate, len(fits))
	for i, f := range fits {
		g := make(core.Genome, len(fits))
		g[i] = 1
		ev[g.Key()] = f
		cands[i] = core.NewCandidate(g)
		_, err := cands[i].Evaluate(ev)
		require.NoError(t, err)
	}
	return core.NewGeneration(0, cands)
}

func TestNew(t *testing.T) {
	s, err := New(core.SelectionTournament, 3, false)
	require.NoError(t, err)
	assert.Equal(t, core.SelectionTournament, s.Method())

	s, err = New(core.SelectionRoulette, 0, true)
	require.NoError(t, err)
	assert.Equal(t, core.SelectionRoulette, s.Method())

	_, err = New("rank", 3, false)
	assert.ErrorIs(t, err, core.ErrInvalidSelectionMethod)

	_, err = New(core.SelectionTournament, 0, false)
	assert.ErrorIs(t, err, core.ErrInvalidParams)
}

func TestTournament_FullSizeReturnsBest(t *testing.T) {
	gen := generation(t, 1, 7, 3, 7, 2)
	sel := NewTournament(5)
	for i := 0; i < 50; i++ {
		c, err := sel.Select(gen, core.NewRand(uint64(i)))
		require.NoError(t, err)
		assert.Equal(t, 7.0, c.Score())
	}
}

func TestTournament_SizeOneIsUniform(t *testing.T) {
	gen := generation(t, 1, 2, 3, 4)
	sel := NewTournament(1)
	rng := core.NewRand(9)
	counts := map[*core.Candidate]int{}
	const draws = 40000
	for i := 0; i < draws; i++ {
		c, err := sel.Select(gen, rng)
		require.NoError(t, err)
		counts[c]++
	}
	for _, c := range gen.Candidates {
		assert.InDelta(t, 0.25, float64(counts[c])/draws, 0.02)
	}
}

func TestTournament_TooLarge(t *testing.T) {
	gen := generation(t, 1, 2)
	_, err := NewTournament(3).Select(gen, core.NewRand(1))
	assert.ErrorIs(t, err, core.ErrInvalidParams)
}

func TestRoulette_UniformFitnessIsUniform(t *testing.T) {
	gen := generation(t, 2, 2, 2, 2, 2)
	sel := NewRoulette(false)
	rng := core.NewRand(11)
	counts := make([]int, gen.Len())
	const draws = 50000
	for i := 0; i < draws; i++ {
		c, err := sel.Select(gen, rng)
		require.NoError(t, err)
		for j, cand := range gen.Candidates {
			if cand == c {
				counts[j]++
			}
		}
	}
	for _, n := range counts {
		assert.InDelta(t, 0.2, float64(n)/draws, 0.015)
	}
}

func TestRoulette_ProportionalToFitness(t *testing.T) {
	gen := generation(t, 1, 3)
	sel := NewRoulette(false)
	rng := core.NewRand(12)
	hits := 0
	const draws = 40000
	for i := 0; i < draws; i++ {
		c, err := sel.Select(gen, rng)
		require.NoError(t, err)
		if c == gen.Candidates[1] {
			hits++
		}
	}
	assert.InDelta(t, 0.75, float64(hits)/draws, 0.015)
}

func TestRoulette_ZeroFitnessSkipsEmptySlots(t *testing.T) {
	gen := generation(t, 0, 5, 0)
	sel := NewRoulette(false)
	rng := core.NewRand(13)
	for i := 0; i < 1000; i++ {
		c, err := sel.Select(gen, rng)
		require.NoError(t, err)
		assert.Same(t, gen.Candidates[1], c)
	}
}

func TestRoulette_Degenerate(t *testing.T) {
	gen := generation(t, 0, 0, 0)

	c, err := NewRoulette(false).Select(gen, core.NewRand(1))
	require.NoError(t, err)
	assert.Contains(t, gen.Candidates, c)

	_, err = NewRoulette(true).Select(gen, core.NewRand(1))
	assert.ErrorIs(t, err, core.ErrDegenerateSelection)
}
