package cache

import (
	"errors"
	"testing"

	"github.com/snow-ghost/knapsack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEvaluator struct {
	calls int
	err   error
}

func (c *countingEvaluator) Evaluate(g core.Genome) (float64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return float64(g.Ones()), nil
}

func TestFitnessCache_HitsAndMisses(t *testing.T) {
	inner := &countingEvaluator{}
	c, err := NewFitnessCache(inner, Config{MaxSize: 10})
	require.NoError(t, err)

	f, err := c.Evaluate(core.Genome{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)

	f, err = c.Evaluate(core.Genome{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)

	assert.Equal(t, 1, inner.calls)
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.InDelta(t, 0.5, stats.HitRate(), 1e-9)
}

func TestFitnessCache_Eviction(t *testing.T) {
	inner := &countingEvaluator{}
	c, err := NewFitnessCache(inner, Config{MaxSize: 2})
	require.NoError(t, err)

	for _, g := range []core.Genome{{0, 0}, {0, 1}, {1, 0}} {
		_, err := c.Evaluate(g)
		require.NoError(t, err)
	}

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(1), stats.Evictions)

	// oldest entry was evicted and must be recomputed
	_, err = c.Evaluate(core.Genome{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)
}

func TestFitnessCache_ErrorsNotCached(t *testing.T) {
	boom := errors.New("boom")
	inner := &countingEvaluator{err: boom}
	c, err := NewFitnessCache(inner, Config{MaxSize: 4})
	require.NoError(t, err)

	_, err = c.Evaluate(core.Genome{1})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Stats().Size)
}

func TestFitnessCache_DefaultSize(t *testing.T) {
	c, err := NewFitnessCache(&countingEvaluator{}, Config{})
	require.NoError(t, err)
	if c.Stats().MaxSize != DefaultConfig().MaxSize {
		t.Errorf("Expected default max size %d, got %d", DefaultConfig().MaxSize, c.Stats().MaxSize)
	}
}
