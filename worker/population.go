package worker

import (
	"fmt"
	"math/rand/v2"

	"github.com/snow-ghost/knapsack/core"
)

// Operators bundles the strategy objects a population breeds with.
type Operators struct {
	Selector      core.Selector
	Crossover     core.Crossover
	Mutator       core.Mutator
	CrossoverRate float64
	MutationRate  float64
	Elitism       bool
}

// Population owns exactly Size() candidates. The slice is never handed out,
// so callers cannot alias members across generations.
type Population struct {
	candidates []*core.Candidate
	index      int
	current    *core.Generation
}

// NewPopulation draws size random genomes of genes bits each.
func NewPopulation(size, genes int, rng *rand.Rand) *Population {
	cands := make([]*core.Candidate, size)
	for i := range cands {
		cands[i] = core.NewCandidate(core.NewRandomGenome(genes, rng))
	}
	return &Population{candidates: cands}
}

func (p *Population) Size() int { return len(p.candidates) }

// Index is the number of Evolve calls so far.
func (p *Population) Index() int { return p.index }

// Snapshot returns deep copies of the members.
func (p *Population) Snapshot() []*core.Candidate {
	out := make([]*core.Candidate, len(p.candidates))
	for i, c := range p.candidates {
		out[i] = c.Clone()
	}
	return out
}

// Evaluate scores every member once per generation. Candidates carrying a
// current fitness (the elite, or cache hits) are not recomputed.
func (p *Population) Evaluate(e core.FitnessEvaluator) (*core.Generation, error) {
	if p.current != nil {
		return p.current, nil
	}
	for i, c := range p.candidates {
		if _, err := c.Evaluate(e); err != nil {
			return nil, fmt.Errorf("evaluate candidate %d: %w", i, err)
		}
	}
	p.current = core.NewGeneration(p.index, p.candidates)
	return p.current, nil
}

// Evolve replaces the population with Size() offspring. With elitism the best
// member of the outgoing generation overwrites slot 0 unconditionally.
func (p *Population) Evolve(e core.FitnessEvaluator, ops Operators, rng *rand.Rand) error {
	gen, err := p.Evaluate(e)
	if err != nil {
		return err
	}
	n := len(p.candidates)

	var elite *core.Candidate
	if ops.Elitism && n > 0 {
		elite = gen.Candidates[gen.Best()].Clone()
	}

	next := make([]*core.Candidate, 0, n)
	for len(next) < n {
		p1, err := ops.Selector.Select(gen, rng)
		if err != nil {
			return fmt.Errorf("select first parent: %w", err)
		}
		p2, err := ops.Selector.Select(gen, rng)
		if err != nil {
			return fmt.Errorf("select second parent: %w", err)
		}
		child, err := ops.Crossover.Cross(p1.Genome(), p2.Genome(), ops.CrossoverRate, rng)
		if err != nil {
			return fmt.Errorf("crossover: %w", err)
		}
		offspring := core.NewCandidate(child)
		ops.Mutator.Mutate(offspring, ops.MutationRate, rng)
		next = append(next, offspring)
	}
	if elite != nil {
		next[0] = elite
	}

	p.candidates = next
	p.index++
	p.current = nil
	return nil
}
