package core

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Item is a single knapsack item. Items are never mutated after loading.
type Item struct {
	Name   string  `json:"name" yaml:"name"`
	Weight int     `json:"weight" yaml:"weight"`
	Value  float64 `json:"value" yaml:"value"`
}

func (i Item) String() string {
	return fmt.Sprintf("Item(name=%q, weight=%d, value=%g)", i.Name, i.Weight, i.Value)
}

// Problem is a knapsack instance shared read-only by every evaluation.
type Problem struct {
	Items    []Item  `json:"items" yaml:"items"`
	Capacity float64 `json:"capacity" yaml:"capacity"`
}

// Totals returns the summed weight and value of the items selected by g.
func (p Problem) Totals(g Genome) (weight int, value float64) {
	for i, bit := range g {
		if bit == 1 && i < len(p.Items) {
			weight += p.Items[i].Weight
			value += p.Items[i].Value
		}
	}
	return weight, value
}

// Selected returns the items whose bit is set in g, in genome order.
func (p Problem) Selected(g Genome) []Item {
	var out []Item
	for i, bit := range g {
		if bit == 1 && i < len(p.Items) {
			out = append(out, p.Items[i])
		}
	}
	return out
}

// Genome is a fixed-length bit vector, one bit per item.
type Genome []uint8

// NewRandomGenome draws each bit independently with probability 0.5.
func NewRandomGenome(n int, rng *rand.Rand) Genome {
	g := make(Genome, n)
	for i := range g {
		g[i] = uint8(rng.IntN(2))
	}
	return g
}

// Clone returns a copy that shares no memory with g.
func (g Genome) Clone() Genome {
	if g == nil {
		return nil
	}
	out := make(Genome, len(g))
	copy(out, g)
	return out
}

// Ones counts the set bits.
func (g Genome) Ones() int {
	n := 0
	for _, b := range g {
		if b == 1 {
			n++
		}
	}
	return n
}

// Key encodes the genome as a string of '0'/'1', usable as a map key.
func (g Genome) Key() string {
	var sb strings.Builder
	sb.Grow(len(g))
	for _, b := range g {
		if b == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (g Genome) String() string { return g.Key() }

// ParseGenome is the inverse of Genome.Key.
func ParseGenome(s string) (Genome, error) {
	g := make(Genome, len(s))
	for i, r := range s {
		switch r {
		case '0':
		case '1':
			g[i] = 1
		default:
			return nil, fmt.Errorf("invalid bit %q at position %d", r, i)
		}
	}
	return g, nil
}

// Candidate is a genome plus a memoized fitness. The cache is dropped by
// every genome mutation that goes through FlipBit or SetGenome.
type Candidate struct {
	genome    Genome
	fitness   float64
	evaluated bool
}

func NewCandidate(g Genome) *Candidate { return &Candidate{genome: g} }

// Genome exposes the underlying bits. Callers must not modify them directly;
// use FlipBit so the fitness cache stays coherent.
func (c *Candidate) Genome() Genome { return c.genome }

func (c *Candidate) Len() int { return len(c.genome) }

// FlipBit inverts bit i and invalidates the cached fitness.
func (c *Candidate) FlipBit(i int) {
	c.genome[i] = 1 - c.genome[i]
	c.evaluated = false
}

// SetGenome replaces the genome and invalidates the cached fitness.
func (c *Candidate) SetGenome(g Genome) {
	c.genome = g
	c.evaluated = false
}

// Fitness returns the cached fitness and whether it is current.
func (c *Candidate) Fitness() (float64, bool) { return c.fitness, c.evaluated }

// Score returns the cached fitness, or 0 when the candidate was never evaluated.
func (c *Candidate) Score() float64 {
	if !c.evaluated {
		return 0
	}
	return c.fitness
}

// Evaluate computes fitness through e unless a current value is cached.
func (c *Candidate) Evaluate(e FitnessEvaluator) (float64, error) {
	if c.evaluated {
		return c.fitness, nil
	}
	f, err := e.Evaluate(c.genome)
	if err != nil {
		return 0, err
	}
	c.fitness, c.evaluated = f, true
	return f, nil
}

// Clone deep-copies the candidate including its cache.
func (c *Candidate) Clone() *Candidate {
	return &Candidate{genome: c.genome.Clone(), fitness: c.fitness, evaluated: c.evaluated}
}

// Solution is a finished answer for a problem.
type Solution struct {
	Genome  Genome  `json:"genome"`
	Fitness float64 `json:"fitness"`
	Weight  int     `json:"weight"`
	Value   float64 `json:"value"`
}

// NewSolution fills the totals of g against p.
func NewSolution(p Problem, g Genome, fitness float64) Solution {
	w, v := p.Totals(g)
	return Solution{Genome: g.Clone(), Fitness: fitness, Weight: w, Value: v}
}
