package experiment

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/snow-ghost/knapsack/core"
	"github.com/snow-ghost/knapsack/pkg/logging"
	"github.com/snow-ghost/knapsack/pkg/results"
	"github.com/snow-ghost/knapsack/pkg/tracing"
	"github.com/snow-ghost/knapsack/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Runner executes a plan against one problem. Runs are independent and
// execute in parallel; each one owns its PRNG, so results do not depend on
// scheduling.
type Runner struct {
	Problem core.Problem
	Results *results.Manager
	Logger  *logging.Logger
	Tracer  *tracing.Tracer

	// Instrument, when set, is applied to every solver before it runs.
	Instrument func(*worker.Solver)
	// OnRun, when set, is called after every single run. It may be called
	// concurrently.
	OnRun func(testID int, res worker.Result)
}

// Outcome is the aggregate of a variant's runs.
type Outcome struct {
	Variant Variant
	Record  results.RunRecord
	Runs    []worker.Result
}

// RunSeed derives the seed of one run. Both variants of an elitism comparison
// share seeds, so they start from the same populations.
func RunSeed(base uint64, testID, run int) uint64 {
	z := base + uint64(testID)*0x9e3779b97f4a7c15 + uint64(run)*0xbf58476d1ce4e5b9
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Run executes every variant of plan and records one results row per
// variant, in plan order.
func (r *Runner) Run(ctx context.Context, plan *Plan) ([]Outcome, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	variants := plan.Variants()
	outcomes := make([]Outcome, len(variants))
	for i, v := range variants {
		outcomes[i] = Outcome{Variant: v, Runs: make([]worker.Result, v.Runs)}
	}

	limit := plan.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range variants {
		v := variants[i]
		for run := 0; run < v.Runs; run++ {
			g.Go(func() error {
				res, err := r.runOnce(gctx, v, plan.Seed, run)
				if err != nil {
					return fmt.Errorf("test %d run %d: %w", v.TestID, run+1, err)
				}
				outcomes[i].Runs[run] = res
				if r.OnRun != nil {
					r.OnRun(v.TestID, res)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range outcomes {
		o := &outcomes[i]
		o.Record = Aggregate(o.Variant, o.Runs)
		if r.Results != nil {
			if err := r.Results.Record(o.Record); err != nil {
				return nil, fmt.Errorf("failed to record test %d: %w", o.Variant.TestID, err)
			}
		}
		logger.LogRun(ctx, o.Variant.TestID, o.Record.ID, o.Record.BestFitness, o.Record.AverageFitness,
			o.Record.Feasible, totalDuration(o.Runs))
	}
	return outcomes, nil
}

func (r *Runner) runOnce(ctx context.Context, v Variant, base uint64, run int) (worker.Result, error) {
	params := v.Params
	params.Seed = RunSeed(base, v.TestID, run)

	ctx, span := r.startSpan(ctx, v, run)
	defer span.End()
	span.SetAttributes(attribute.Bool("ga.elitism", params.Elitism))

	solver, err := worker.NewSolver(r.Problem, params)
	if err != nil {
		tracing.RecordSpanError(span, err)
		return worker.Result{}, err
	}
	if r.Instrument != nil {
		r.Instrument(solver)
	}
	res, err := solver.Run(ctx, core.NewRand(params.Seed))
	if err != nil {
		tracing.RecordSpanError(span, err)
		return worker.Result{}, err
	}
	return res, nil
}

// startSpan returns a non-recording span when no tracer is configured.
func (r *Runner) startSpan(ctx context.Context, v Variant, run int) (context.Context, trace.Span) {
	if r.Tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	ctx, span := r.Tracer.StartExperimentSpan(ctx, v.TestID, v.Runs)
	span.SetAttributes(attribute.Int("experiment.run", run+1))
	return ctx, span
}

// Aggregate averages the runs of a variant: the mean best fitness and the
// per-generation mean of the histories. The reported solution is the best
// single run, first wins ties.
func Aggregate(v Variant, runs []worker.Result) results.RunRecord {
	p := v.Params
	rec := results.RunRecord{
		TestID:         v.TestID,
		Timestamp:      time.Now(),
		CrossoverRate:  p.CrossoverRate,
		MutationRate:   p.MutationRate,
		PopulationSize: p.PopulationSize,
		NumGenerations: p.NumGenerations,
		Selection:      string(p.Selection),
		Metric:         string(p.Metric),
		Elitism:        p.Elitism,
		Runs:           len(runs),
	}
	if len(runs) == 0 {
		return rec
	}

	best := 0
	var sumBest float64
	rec.History = make([]float64, p.NumGenerations)
	for i, res := range runs {
		sumBest += res.BestFitness()
		if res.BestFitness() > runs[best].BestFitness() {
			best = i
		}
		for g := 0; g < len(rec.History) && g < len(res.History); g++ {
			rec.History[g] += res.History[g]
		}
	}
	n := float64(len(runs))
	for g := range rec.History {
		rec.History[g] /= n
	}

	rec.ID = runs[best].ID
	rec.BestFitness = sumBest / n
	rec.BestValue = runs[best].Best.Value
	rec.BestWeight = runs[best].Best.Weight
	rec.Feasible = runs[best].Feasible
	rec.AverageFitness = mean(rec.History)
	return rec
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func totalDuration(runs []worker.Result) time.Duration {
	var d time.Duration
	for _, r := range runs {
		d += r.Duration
	}
	return d
}
