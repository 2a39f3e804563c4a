package mutate

import (
	"math/rand/v2"

	"github.com/snow-ghost/knapsack/core"
)

// BitFlip flips every bit independently with probability rate.
// The candidate must be a fresh offspring, never a parent still held by the
// population.
type BitFlip struct{}

func NewBitFlip() *BitFlip { return &BitFlip{} }

func (m *BitFlip) Mutate(c *core.Candidate, rate float64, rng *rand.Rand) {
	if rate <= 0 {
		return
	}
	for i := 0; i < c.Len(); i++ {
		if rng.Float64() < rate {
			c.FlipBit(i)
		}
	}
}
