package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyEvaluator map[string]float64

func (k keyEvaluator) Evaluate(g Genome) (float64, error) { return k[g.Key()], nil }

func evaluated(t *testing.T, fits ...float64) *Generation {
	t.Helper()
	e := keyEvaluator{}
	cands := make([]*Candidate, len(fits))
	for i, f := range fits {
		g := make(Genome, len(fits))
		g[i] = 1
		e[g.Key()] = f
		cands[i] = NewCandidate(g)
		_, err := cands[i].Evaluate(e)
		require.NoError(t, err)
	}
	return NewGeneration(0, cands)
}

func TestGeneration_Cumulative(t *testing.T) {
	gen := evaluated(t, 1, 0, 3)
	assert.Equal(t, []float64{1, 1, 4}, gen.Cumulative())
	assert.Equal(t, 4.0, gen.TotalFitness())

	tests := []struct {
		pick float64
		want int
	}{
		{0, 0},
		{0.99, 0},
		{1, 2}, // slot 1 has zero width
		{3.5, 2},
		{4, 2}, // clamped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gen.SearchAbove(tt.pick), "pick %v", tt.pick)
	}
}

func TestGeneration_BestKeepsFirstTie(t *testing.T) {
	gen := evaluated(t, 2, 5, 5, 1)
	assert.Equal(t, 1, gen.Best())
	assert.Equal(t, -1, NewGeneration(0, nil).Best())
}

func TestGeneration_Summarize(t *testing.T) {
	gen := evaluated(t, 2, 4, 6)
	s := gen.Summarize()
	assert.Equal(t, 6.0, s.Best)
	assert.Equal(t, 2.0, s.Worst)
	assert.Equal(t, 4.0, s.Mean)
	assert.Equal(t, 3, s.Size)

	empty := NewGeneration(3, nil).Summarize()
	assert.Equal(t, 3, empty.Index)
	assert.Equal(t, 0.0, empty.Mean)
	assert.Equal(t, 0.0, NewGeneration(0, nil).TotalFitness())
}

func TestObservers(t *testing.T) {
	var seen []int
	obs := Observers{
		ObserverFunc(func(_ context.Context, s GenerationStats) { seen = append(seen, s.Index) }),
		nil,
		ObserverFunc(func(_ context.Context, s GenerationStats) { seen = append(seen, s.Index*10) }),
	}
	obs.ObserveGeneration(context.Background(), GenerationStats{Index: 2})
	assert.Equal(t, []int{2, 20}, seen)
}
