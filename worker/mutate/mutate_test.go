package mutate

import (
	"testing"

	"github.com/snow-ghost/knapsack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitFlip_ZeroRateLeavesGenome(t *testing.T) {
	rng := core.NewRand(1)
	g := core.Genome{1, 0, 1, 1, 0}
	c := core.NewCandidate(g.Clone())
	NewBitFlip().Mutate(c, 0, rng)
	assert.Equal(t, g, c.Genome())
}

func TestBitFlip_FullRateFlipsEveryBit(t *testing.T) {
	rng := core.NewRand(2)
	c := core.NewCandidate(core.Genome{1, 0, 1, 1, 0})
	NewBitFlip().Mutate(c, 1, rng)
	assert.Equal(t, core.Genome{0, 1, 0, 0, 1}, c.Genome())
}

func TestBitFlip_InvalidatesFitness(t *testing.T) {
	p := core.Problem{Capacity: 10, Items: []core.Item{{Name: "a", Weight: 1, Value: 1}}}
	ev, err := core.NewEvaluator(p, core.MetricBenefit, core.PenaltySoft)
	require.NoError(t, err)

	c := core.NewCandidate(core.Genome{0})
	_, err = c.Evaluate(ev)
	require.NoError(t, err)

	NewBitFlip().Mutate(c, 1, core.NewRand(3))
	_, ok := c.Fitness()
	assert.False(t, ok)

	f, err := c.Evaluate(ev)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)
}

func TestBitFlip_RateRoughlyMatchesFlipFrequency(t *testing.T) {
	rng := core.NewRand(4)
	const n = 20000
	c := core.NewCandidate(make(core.Genome, n))
	NewBitFlip().Mutate(c, 0.1, rng)
	assert.InDelta(t, 0.1, float64(c.Genome().Ones())/n, 0.01)
}
