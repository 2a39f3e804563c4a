// worker/solver.go
package worker

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/snow-ghost/knapsack/core"
	"github.com/snow-ghost/knapsack/pkg/cache"
	"github.com/snow-ghost/knapsack/pkg/tracing"
	"github.com/snow-ghost/knapsack/worker/crossover"
	"github.com/snow-ghost/knapsack/worker/mutate"
	"github.com/snow-ghost/knapsack/worker/selection"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/snow-ghost/knapsack/worker"

// Result is what a finished run hands to the reporting layer.
type Result struct {
	ID          string        `json:"id"`
	Params      core.Params   `json:"params"`
	Best        core.Solution `json:"best"`
	History     []float64     `json:"history"`
	MeanHistory []float64     `json:"mean_history"`
	Feasible    bool          `json:"feasible"`
	Duration    time.Duration `json:"duration"`
	CacheStats  *cache.Stats  `json:"cache_stats,omitempty"`
}

// BestFitness is the global best over all generations.
func (r Result) BestFitness() float64 { return r.Best.Fitness }

// AverageFitness is the mean of the per-generation best fitness.
func (r Result) AverageFitness() float64 {
	if len(r.History) == 0 {
		return 0
	}
	var sum float64
	for _, f := range r.History {
		sum += f
	}
	return sum / float64(len(r.History))
}

// Solver runs the generational loop for one problem and one parameter set.
type Solver struct {
	Problem   core.Problem
	Params    core.Params
	Evaluator core.FitnessEvaluator
	Ops       Operators
	Critic    core.Critic
	Observer  core.Observer
	Logger    *zap.Logger
	Tracer    trace.Tracer

	cache *cache.FitnessCache
}

// NewSolver validates params and resolves every strategy up front so a bad
// configuration fails before the first generation.
func NewSolver(p core.Problem, params core.Params) (*Solver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	ev, err := core.NewEvaluator(p, params.Metric, params.Penalty)
	if err != nil {
		return nil, err
	}
	sel, err := selection.New(params.Selection, params.TournamentSize, params.StrictSelection)
	if err != nil {
		return nil, err
	}
	cx, err := crossover.New(params.Crossover)
	if err != nil {
		return nil, err
	}

	s := &Solver{
		Problem:   p,
		Params:    params,
		Evaluator: ev,
		Ops: Operators{
			Selector:      sel,
			Crossover:     cx,
			Mutator:       mutate.NewBitFlip(),
			CrossoverRate: params.CrossoverRate,
			MutationRate:  params.MutationRate,
			Elitism:       params.Elitism,
		},
		Critic: core.NewFeasibilityCritic(),
		Logger: zap.NewNop(),
		Tracer: otel.Tracer(tracerName),
	}
	if params.CacheSize > 0 {
		fc, err := cache.NewFitnessCache(ev, cache.Config{MaxSize: params.CacheSize})
		if err != nil {
			return nil, err
		}
		s.Evaluator = fc
		s.cache = fc
	}
	return s, nil
}

// Run executes Params.NumGenerations generations. All randomness is drawn from
// rng, so equal seeds give equal results.
func (s *Solver) Run(ctx context.Context, rng *rand.Rand) (Result, error) {
	start := time.Now()
	logger := s.logger()
	ctx, span := s.tracer().Start(ctx, "knapsack.run", trace.WithAttributes(
		attribute.Int("ga.items", len(s.Problem.Items)),
		attribute.Int("ga.population_size", s.Params.PopulationSize),
		attribute.Int("ga.generations", s.Params.NumGenerations),
		attribute.String("ga.selection", string(s.Params.Selection)),
		attribute.String("ga.metric", string(s.Params.Metric)),
		attribute.Bool("ga.elitism", s.Params.Elitism),
	))
	defer span.End()

	res := Result{
		ID:          uuid.NewString(),
		Params:      s.Params,
		History:     make([]float64, 0, s.Params.NumGenerations),
		MeanHistory: make([]float64, 0, s.Params.NumGenerations),
	}
	logger = logger.With(zap.String("run_id", res.ID))
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		logger = logger.With(zap.String("trace_id", traceID))
	}
	logger.Info("starting evolution",
		zap.Int("items", len(s.Problem.Items)),
		zap.Float64("capacity", s.Problem.Capacity),
		zap.Int("population_size", s.Params.PopulationSize),
		zap.Int("generations", s.Params.NumGenerations),
	)

	pop := NewPopulation(s.Params.PopulationSize, len(s.Problem.Items), rng)

	// the empty selection always fits, so it is a safe starting best
	bestGenome := make(core.Genome, len(s.Problem.Items))
	bestFitness := 0.0

	for g := 0; g < s.Params.NumGenerations; g++ {
		if err := ctx.Err(); err != nil {
			tracing.RecordSpanError(span, err)
			return Result{}, err
		}
		if err := pop.Evolve(s.Evaluator, s.Ops, rng); err != nil {
			tracing.RecordSpanError(span, err)
			return Result{}, fmt.Errorf("generation %d: %w", g, err)
		}
		gen, err := pop.Evaluate(s.Evaluator)
		if err != nil {
			tracing.RecordSpanError(span, err)
			return Result{}, fmt.Errorf("generation %d: %w", g, err)
		}

		stats := gen.Summarize()
		stats.Index = g
		res.History = append(res.History, stats.Best)
		res.MeanHistory = append(res.MeanHistory, stats.Mean)

		if stats.Best > bestFitness {
			best := gen.Candidates[gen.Best()]
			bestGenome = best.Genome().Clone()
			bestFitness = stats.Best
			stats.Improvement = true
			span.AddEvent("improvement", trace.WithAttributes(
				attribute.Int("ga.generation", g),
				attribute.Float64("ga.best_fitness", bestFitness),
			))
		}
		stats.GlobalBest = bestFitness
		stats.Feasible = s.countFeasible(gen)

		if s.Observer != nil {
			s.Observer.ObserveGeneration(ctx, stats)
		}
	}

	res.Best = core.NewSolution(s.Problem, bestGenome, bestFitness)
	if s.Critic != nil {
		res.Feasible, _ = s.Critic.Accept(s.Problem, bestGenome)
	}
	if s.cache != nil {
		st := s.cache.Stats()
		res.CacheStats = &st
	}
	res.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Float64("ga.best_fitness", bestFitness),
		attribute.Bool("ga.feasible", res.Feasible),
	)
	logger.Info("evolution finished",
		zap.Float64("best_fitness", bestFitness),
		zap.Int("best_weight", res.Best.Weight),
		zap.Float64("best_value", res.Best.Value),
		zap.Bool("feasible", res.Feasible),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (s *Solver) countFeasible(gen *core.Generation) int {
	if s.Critic == nil {
		return 0
	}
	n := 0
	for _, c := range gen.Candidates {
		if ok, _ := s.Critic.Accept(s.Problem, c.Genome()); ok {
			n++
		}
	}
	return n
}

func (s *Solver) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Solver) tracer() trace.Tracer {
	if s.Tracer == nil {
		return otel.Tracer(tracerName)
	}
	return s.Tracer
}
