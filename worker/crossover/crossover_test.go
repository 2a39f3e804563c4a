package crossover

import (
	"testing"

	"github.com/snow-ghost/knapsack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func operators() []core.Crossover {
	return []core.Crossover{SinglePoint{}, TwoPoint{}}
}

func TestNew(t *testing.T) {
	c, err := New(core.CrossoverSinglePoint)
	require.NoError(t, err)
	assert.Equal(t, core.CrossoverSinglePoint, c.Method())

	c, err = New(core.CrossoverTwoPoint)
	require.NoError(t, err)
	assert.Equal(t, core.CrossoverTwoPoint, c.Method())

	_, err = New("uniform")
	assert.ErrorIs(t, err, core.ErrInvalidParams)
}

func TestCross_ZeroRateCopiesParent1(t *testing.T) {
	p1 := core.Genome{1, 1, 0, 0, 1, 0}
	p2 := core.Genome{0, 0, 1, 1, 0, 1}
	for _, op := range operators() {
		t.Run(string(op.Method()), func(t *testing.T) {
			child, err := op.Cross(p1, p2, 0, core.NewRand(1))
			require.NoError(t, err)
			assert.Equal(t, p1, child)

			child[0] = 0
			assert.Equal(t, uint8(1), p1[0], "child must not alias parent1")
		})
	}
}

func TestSinglePoint_PrefixSuffix(t *testing.T) {
	p1 := core.Genome{1, 1, 1, 1, 1, 1, 1, 1}
	p2 := core.Genome{0, 0, 0, 0, 0, 0, 0, 0}
	rng := core.NewRand(5)
	for i := 0; i < 200; i++ {
		child, err := SinglePoint{}.Cross(p1, p2, 1, rng)
		require.NoError(t, err)
		require.Len(t, child, len(p1))

		ones := child.Ones()
		assert.GreaterOrEqual(t, ones, 1)
		assert.LessOrEqual(t, ones, len(p1)-1)
		for j := 0; j < ones; j++ {
			assert.Equal(t, uint8(1), child[j])
		}
	}
}

func TestTwoPoint_MiddleSegmentFromParent2(t *testing.T) {
	p1 := core.Genome{1, 1, 1, 1, 1, 1, 1, 1}
	p2 := core.Genome{0, 0, 0, 0, 0, 0, 0, 0}
	rng := core.NewRand(6)
	for i := 0; i < 200; i++ {
		child, err := TwoPoint{}.Cross(p1, p2, 1, rng)
		require.NoError(t, err)
		require.Len(t, child, len(p1))
		assert.Equal(t, uint8(1), child[0], "cut1 is at least 1")

		// zeros, if any, form one contiguous block
		first, last := -1, -1
		for j, b := range child {
			if b == 0 {
				if first < 0 {
					first = j
				}
				last = j
			}
		}
		if first >= 0 {
			for j := first; j <= last; j++ {
				assert.Equal(t, uint8(0), child[j])
			}
		}
	}
}

func TestCross_DoesNotModifyParents(t *testing.T) {
	p1 := core.Genome{1, 0, 1, 0, 1}
	p2 := core.Genome{0, 1, 0, 1, 0}
	for _, op := range operators() {
		_, err := op.Cross(p1, p2, 1, core.NewRand(7))
		require.NoError(t, err)
		assert.Equal(t, core.Genome{1, 0, 1, 0, 1}, p1)
		assert.Equal(t, core.Genome{0, 1, 0, 1, 0}, p2)
	}
}

func TestCross_ShortGenomesSkip(t *testing.T) {
	for _, op := range operators() {
		child, err := op.Cross(core.Genome{1}, core.Genome{0}, 1, core.NewRand(8))
		require.NoError(t, err)
		assert.Equal(t, core.Genome{1}, child)

		child, err = op.Cross(core.Genome{}, core.Genome{}, 1, core.NewRand(8))
		require.NoError(t, err)
		assert.Empty(t, child)
	}
}

func TestCross_LengthMismatch(t *testing.T) {
	for _, op := range operators() {
		_, err := op.Cross(core.Genome{1, 0}, core.Genome{1, 0, 1}, 1, core.NewRand(9))
		assert.ErrorIs(t, err, core.ErrInvalidGenomeLength)
	}
}
