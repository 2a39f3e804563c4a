package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEvaluator struct{ calls int }

func (c *countingEvaluator) Evaluate(g Genome) (float64, error) {
	c.calls++
	return float64(g.Ones()), nil
}

func TestGenome_CloneDoesNotAlias(t *testing.T) {
	g := Genome{1, 0, 1}
	c := g.Clone()
	c[0] = 0
	assert.Equal(t, Genome{1, 0, 1}, g)
	assert.Nil(t, Genome(nil).Clone())
}

func TestGenome_KeyAndParse(t *testing.T) {
	g := Genome{1, 0, 0, 1}
	assert.Equal(t, "1001", g.Key())
	assert.Equal(t, 2, g.Ones())

	parsed, err := ParseGenome("1001")
	require.NoError(t, err)
	assert.Equal(t, g, parsed)

	_, err = ParseGenome("10x1")
	assert.Error(t, err)
}

func TestNewRandomGenome(t *testing.T) {
	rng := NewRand(3)
	g := NewRandomGenome(1000, rng)
	require.Len(t, g, 1000)
	for _, b := range g {
		assert.True(t, b == 0 || b == 1)
	}
	// p = 0.5 per bit
	assert.InDelta(t, 500, g.Ones(), 80)
}

func TestNewRand_Reproducible(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	assert.Equal(t, NewRandomGenome(64, a), NewRandomGenome(64, b))
}

func TestCandidate_FitnessCache(t *testing.T) {
	e := &countingEvaluator{}
	c := NewCandidate(Genome{1, 1, 0})

	_, ok := c.Fitness()
	assert.False(t, ok)
	assert.Equal(t, 0.0, c.Score())

	f, err := c.Evaluate(e)
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)
	_, err = c.Evaluate(e)
	require.NoError(t, err)
	assert.Equal(t, 1, e.calls)

	c.FlipBit(2)
	_, ok = c.Fitness()
	assert.False(t, ok)
	f, err = c.Evaluate(e)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)
	assert.Equal(t, 2, e.calls)

	c.SetGenome(Genome{0, 0, 0})
	_, ok = c.Fitness()
	assert.False(t, ok)
}

func TestCandidate_Clone(t *testing.T) {
	c := NewCandidate(Genome{1, 0})
	_, err := c.Evaluate(&countingEvaluator{})
	require.NoError(t, err)

	cl := c.Clone()
	cl.FlipBit(1)
	assert.Equal(t, Genome{1, 0}, c.Genome())
	f, ok := c.Fitness()
	assert.True(t, ok)
	assert.Equal(t, 1.0, f)
}

func TestProblem_TotalsAndSelected(t *testing.T) {
	p := Problem{Items: fourItems(), Capacity: 10}
	w, v := p.Totals(Genome{1, 0, 1, 0})
	assert.Equal(t, 6, w)
	assert.Equal(t, 8.0, v)

	sel := p.Selected(Genome{0, 1, 0, 1})
	require.Len(t, sel, 2)
	assert.Equal(t, "b", sel[0].Name)
	assert.Equal(t, "d", sel[1].Name)

	s := NewSolution(p, Genome{1, 1, 0, 1}, 13)
	assert.Equal(t, 10, s.Weight)
	assert.Equal(t, 13.0, s.Value)
}

func TestFeasibilityCritic(t *testing.T) {
	p := Problem{Items: fourItems(), Capacity: 10}
	c := NewFeasibilityCritic()

	ok, _ := c.Accept(p, Genome{1, 1, 0, 1})
	assert.True(t, ok)

	ok, reason := c.Accept(p, Genome{1, 1, 1, 1})
	assert.False(t, ok)
	assert.Contains(t, reason, "exceeds capacity")

	ok, _ = c.Accept(p, Genome{1})
	assert.False(t, ok)
}
