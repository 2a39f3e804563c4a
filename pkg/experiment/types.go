package experiment

import (
	"fmt"

	"github.com/snow-ghost/knapsack/core"
)

// TestCase is one row of the experiment grid. Unset fields fall back to the
// plan defaults.
type TestCase struct {
	ID             int                  `json:"id" yaml:"id" validate:"gte=1"`
	CrossoverRate  *float64             `json:"crossover_rate,omitempty" yaml:"crossover_rate,omitempty"`
	MutationRate   *float64             `json:"mutation_rate,omitempty" yaml:"mutation_rate,omitempty"`
	PopulationSize int                  `json:"population_size,omitempty" yaml:"population_size,omitempty" validate:"gte=0"`
	NumGenerations *int                 `json:"num_generations,omitempty" yaml:"num_generations,omitempty"`
	Selection      core.SelectionMethod `json:"selection,omitempty" yaml:"selection,omitempty"`
	TournamentSize int                  `json:"tournament_size,omitempty" yaml:"tournament_size,omitempty" validate:"gte=0"`
	Metric         core.Metric          `json:"metric,omitempty" yaml:"metric,omitempty"`
	Elitism        *bool                `json:"elitism,omitempty" yaml:"elitism,omitempty"`
	Runs           int                  `json:"runs,omitempty" yaml:"runs,omitempty" validate:"gte=0"`
	CompareElitism bool                 `json:"compare_elitism,omitempty" yaml:"compare_elitism,omitempty"`
}

// Plan is a batch of tests against one problem file.
type Plan struct {
	Problem     string      `json:"problem" yaml:"problem"`
	Seed        uint64      `json:"seed" yaml:"seed"`
	Runs        int         `json:"runs" yaml:"runs" validate:"gte=0"`
	Concurrency int         `json:"concurrency" yaml:"concurrency" validate:"gte=0"`
	Defaults    core.Params `json:"defaults" yaml:"defaults"`
	Tests       []TestCase  `json:"tests" yaml:"tests" validate:"required,min=1,dive"`
}

// Variant is one concrete parameter set of a test.
type Variant struct {
	TestID int
	Runs   int
	Params core.Params
}

// Params resolves the test against base.
func (t TestCase) Params(base core.Params) core.Params {
	p := base
	if t.CrossoverRate != nil {
		p.CrossoverRate = *t.CrossoverRate
	}
	if t.MutationRate != nil {
		p.MutationRate = *t.MutationRate
	}
	if t.PopulationSize > 0 {
		p.PopulationSize = t.PopulationSize
	}
	if t.NumGenerations != nil {
		p.NumGenerations = *t.NumGenerations
	}
	if t.Selection != "" {
		p.Selection = t.Selection
	}
	if t.TournamentSize > 0 {
		p.TournamentSize = t.TournamentSize
	}
	if t.Metric != "" {
		p.Metric = t.Metric
	}
	if t.Elitism != nil {
		p.Elitism = *t.Elitism
	}
	if p.Selection == core.SelectionTournament && p.TournamentSize > p.PopulationSize {
		p.TournamentSize = p.PopulationSize
	}
	return p.WithDefaults()
}

// Variants expands the plan into concrete parameter sets, in test order.
// compare_elitism yields the elitist variant first.
func (p *Plan) Variants() []Variant {
	var out []Variant
	for _, t := range p.Tests {
		runs := t.Runs
		if runs == 0 {
			runs = p.runs()
		}
		params := t.Params(p.Defaults)
		if !t.CompareElitism {
			out = append(out, Variant{TestID: t.ID, Runs: runs, Params: params})
			continue
		}
		with, without := params, params
		with.Elitism, without.Elitism = true, false
		out = append(out,
			Variant{TestID: t.ID, Runs: runs, Params: with},
			Variant{TestID: t.ID, Runs: runs, Params: without},
		)
	}
	return out
}

func (p *Plan) runs() int {
	if p.Runs > 0 {
		return p.Runs
	}
	return 1
}

// Validate checks the plan shape and every resolved parameter set.
func (p *Plan) Validate() error {
	if err := core.ValidateStruct(p); err != nil {
		return err
	}
	seen := make(map[int]bool, len(p.Tests))
	for _, t := range p.Tests {
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate test id %d", core.ErrInvalidParams, t.ID)
		}
		seen[t.ID] = true
	}
	for _, v := range p.Variants() {
		if err := v.Params.Validate(); err != nil {
			return fmt.Errorf("test %d: %w", v.TestID, err)
		}
	}
	return nil
}

func float(v float64) *float64 { return &v }
func integer(v int) *int       { return &v }

// DefaultPlan is the reference grid: five parameter sets, each averaged over
// five runs and compared with and without elitism.
func DefaultPlan() *Plan {
	grid := []struct {
		cx, mut  float64
		pop, gen int
	}{
		{0.8, 0.1, 50, 500},
		{0.6, 0.5, 100, 1000},
		{0.7, 0.3, 75, 450},
		{0.9, 0.2, 60, 600},
		{0.5, 0.1, 80, 200},
	}

	plan := &Plan{
		Problem:     "data/instancia.csv",
		Runs:        5,
		Concurrency: 4,
		Defaults:    core.DefaultParams(),
	}
	for i, g := range grid {
		plan.Tests = append(plan.Tests, TestCase{
			ID:             i + 1,
			CrossoverRate:  float(g.cx),
			MutationRate:   float(g.mut),
			PopulationSize: g.pop,
			NumGenerations: integer(g.gen),
			CompareElitism: true,
		})
	}
	return plan
}
