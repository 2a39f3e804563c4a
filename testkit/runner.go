package testkit

import (
	"context"
	"time"

	"github.com/snow-ghost/knapsack/core"
	"github.com/snow-ghost/knapsack/worker"
)

// Case is a small instance with a known optimum.
type Case struct {
	Name    string
	Problem core.Problem
	Optimum float64
}

func items(pairs ...[2]float64) []core.Item {
	out := make([]core.Item, len(pairs))
	for i, p := range pairs {
		out[i] = core.Item{Name: string(rune('a' + i)), Weight: int(p[0]), Value: p[1]}
	}
	return out
}

// GenerateCasesFixed returns a fixed set of instances with hand-checked optima.
func GenerateCasesFixed() []Case {
	return []Case{
		{
			Name:    "four_items",
			Problem: core.Problem{Capacity: 10, Items: items([2]float64{2, 3}, [2]float64{3, 4}, [2]float64{4, 5}, [2]float64{5, 6})},
			Optimum: 13,
		},
		{
			Name: "dense_high_value",
			Problem: core.Problem{Capacity: 15, Items: items(
				[2]float64{12, 4}, [2]float64{2, 2}, [2]float64{1, 1}, [2]float64{1, 2}, [2]float64{4, 10},
			)},
			Optimum: 15,
		},
		{
			Name: "eight_items",
			Problem: core.Problem{Capacity: 50, Items: items(
				[2]float64{10, 60}, [2]float64{20, 100}, [2]float64{30, 120}, [2]float64{5, 30},
				[2]float64{15, 75}, [2]float64{25, 90}, [2]float64{8, 40}, [2]float64{12, 50},
			)},
			Optimum: 265,
		},
		{
			Name:    "nothing_fits",
			Problem: core.Problem{Capacity: 3, Items: items([2]float64{4, 10}, [2]float64{5, 20}, [2]float64{6, 30})},
			Optimum: 0,
		},
	}
}

// Runner checks GA results against the exhaustive optimum.
type Runner struct {
	// Tolerance is the relative gap a case may have and still pass.
	Tolerance float64
}

func NewRunner(tolerance float64) *Runner { return &Runner{Tolerance: tolerance} }

// Run solves every case with params and aggregates metrics. A case passes
// when the GA's best solution fits the capacity and its value is within
// Tolerance of the optimum.
func (r *Runner) Run(ctx context.Context, params core.Params, cases []Case) (map[string]float64, bool, error) {
	metrics := map[string]float64{
		"cases_total":       0,
		"cases_passed":      0,
		"cases_failed":      0,
		"gap_total":         0,
		"duration_ms_total": 0,
	}

	allPassed := true

	for _, tc := range cases {
		start := time.Now()

		opt, err := SolveExact(tc.Problem)
		if err != nil {
			return nil, false, err
		}
		solver, err := worker.NewSolver(tc.Problem, params)
		if err != nil {
			return nil, false, err
		}
		res, err := solver.Run(ctx, core.NewRand(params.Seed))
		if err != nil {
			return nil, false, err
		}

		metrics["duration_ms_total"] += float64(time.Since(start).Milliseconds())
		metrics["cases_total"] += 1

		gap := opt.Gap(res.Best.Value)
		metrics["gap_total"] += gap

		if res.Feasible && gap <= r.Tolerance {
			metrics["cases_passed"] += 1
		} else {
			metrics["cases_failed"] += 1
			allPassed = false
		}
	}

	return metrics, allPassed, nil
}
