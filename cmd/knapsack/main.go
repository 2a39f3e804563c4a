package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/snow-ghost/knapsack/core"
	"github.com/snow-ghost/knapsack/loader"
	"github.com/snow-ghost/knapsack/pkg/experiment"
	"github.com/snow-ghost/knapsack/pkg/observability"
	"github.com/snow-ghost/knapsack/pkg/results"
	"github.com/snow-ghost/knapsack/testkit"
	"github.com/snow-ghost/knapsack/worker"
	"go.uber.org/zap"
)

// reportItems caps how many selected items are printed per solution.
const reportItems = 5

// options are the flags that steer a run once observability is set up.
type options struct {
	problem    string
	plan       string
	initPlan   string
	out        string
	format     string
	db         string
	series     string
	metrics    string
	listen     string
	verify     bool
	problemSet bool
	seedSet    bool
	params     core.Params
}

func main() {
	config := worker.LoadConfig()
	p := &config.Params

	var (
		problemPath = flag.String("problem", config.ProblemPath, "Problem file (CSV)")
		planPath    = flag.String("plan", "", "Experiment plan (YAML); runs a single test when empty")
		initPlan    = flag.String("init-plan", "", "Write the default experiment plan to this file and exit")
		outPath     = flag.String("out", "", "Write the results table to this file")
		format      = flag.String("format", "", "Results format: json, csv, xlsx (default from -out extension)")
		dbPath      = flag.String("db", "", "Store results in this SQLite database")
		seriesPath  = flag.String("series", "", "Write per-generation fitness series (CSV)")
		metricsFile = flag.String("metrics-file", "", "Dump Prometheus metrics to this textfile")
		jaeger      = flag.String("jaeger", os.Getenv("JAEGER_ENDPOINT"), "Jaeger collector endpoint")
		logLevel    = flag.String("log-level", config.LogLevel, "Log level: debug, info, warn, error")
		logFormat   = flag.String("log-format", config.LogFormat, "Log format: console, json")
		listen      = flag.String("listen", "", "Serve /metrics and /health on this address while running")
		verify      = flag.Bool("verify", false, "Compare the best solution with the exhaustive optimum (small instances)")
		metric      = flag.String("metric", string(p.Metric), "Fitness metric: maximize_benefit_weight, maximize_benefit")
		sel         = flag.String("selection", string(p.Selection), "Selection method: tournament, roulette")
		cx          = flag.String("crossover", string(p.Crossover), "Crossover: two_point, single_point")
		penalty     = flag.String("penalty", string(p.Penalty), "Penalty policy: soft, hard")
	)
	flag.IntVar(&p.PopulationSize, "population", p.PopulationSize, "Population size")
	flag.IntVar(&p.NumGenerations, "generations", p.NumGenerations, "Number of generations")
	flag.Float64Var(&p.CrossoverRate, "crossover-rate", p.CrossoverRate, "Crossover rate [0,1]")
	flag.Float64Var(&p.MutationRate, "mutation-rate", p.MutationRate, "Per-bit mutation rate [0,1]")
	flag.IntVar(&p.TournamentSize, "tournament-size", p.TournamentSize, "Tournament size")
	flag.BoolVar(&p.Elitism, "elitism", p.Elitism, "Carry the best candidate into the next generation")
	flag.BoolVar(&p.StrictSelection, "strict", p.StrictSelection, "Fail roulette selection when total fitness is zero")
	flag.IntVar(&p.CacheSize, "cache", p.CacheSize, "Fitness LRU cache size (0 disables)")
	flag.Uint64Var(&p.Seed, "seed", p.Seed, "PRNG seed")
	flag.Parse()

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	p.Metric = core.Metric(*metric)
	p.Selection = core.SelectionMethod(*sel)
	p.Crossover = core.CrossoverMethod(*cx)
	p.Penalty = core.PenaltyPolicy(*penalty)

	obs, err := observability.NewManager(observability.Config{
		ServiceName:    "knapsack",
		ServiceVersion: "dev",
		Environment:    os.Getenv("ENVIRONMENT"),
		JaegerEndpoint: *jaeger,
		LogLevel:       *logLevel,
		LogFormat:      *logFormat,
	})
	if err != nil {
		log.Fatalf("Failed to set up observability: %v", err)
	}
	logger := obs.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, obs, options{
		problem:    *problemPath,
		plan:       *planPath,
		initPlan:   *initPlan,
		out:        *outPath,
		format:     *format,
		db:         *dbPath,
		series:     *seriesPath,
		metrics:    *metricsFile,
		listen:     *listen,
		verify:     *verify,
		problemSet: explicit["problem"],
		seedSet:    explicit["seed"],
		params:     config.Params,
	}, os.Stdout)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if serr := obs.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("Failed to shut down tracing", "error", serr)
	}
	cancel()
	if err != nil {
		logger.Error("knapsack failed", "error", err)
		os.Exit(1)
	}
}

// run executes one invocation. Every failure is returned so the caller can
// shut observability down before exiting.
func run(ctx context.Context, obs *observability.Manager, o options, stdout io.Writer) error {
	if o.initPlan != "" {
		if err := experiment.NewLoader(o.initPlan).SavePlan(experiment.DefaultPlan()); err != nil {
			return err
		}
		obs.GetLogger().Info("default plan written", "path", o.initPlan)
		return nil
	}

	store, err := results.NewManager(results.Config{UseSQLite: o.db != "", DBPath: o.db})
	if err != nil {
		return fmt.Errorf("failed to open results store: %w", err)
	}
	defer store.Close()

	if o.listen != "" {
		srv := serve(o.listen, obs)
		defer srv.Close()
	}

	a := &app{
		obs:     obs,
		store:   store,
		verify:  o.verify,
		stdout:  stdout,
		problem: o.problem,
	}

	if o.plan != "" {
		err = a.runPlan(ctx, o.plan, o.problemSet, o.seedSet, o.params.Seed)
	} else {
		err = a.runSingle(ctx, o.params)
	}
	if err != nil {
		return err
	}
	if err := a.export(o.out, o.format, o.series); err != nil {
		return err
	}
	if o.metrics != "" {
		return obs.GetMetrics().WriteTextfile(o.metrics)
	}
	return nil
}

type app struct {
	obs     *observability.Manager
	store   *results.Manager
	verify  bool
	stdout  io.Writer
	problem string
}

func (a *app) loadProblem(path string) (core.Problem, error) {
	p, _, err := loader.New(a.obs.GetLogger().GetZap()).LoadFile(path)
	if err != nil {
		return core.Problem{}, err
	}
	fmt.Fprintf(a.stdout, "\nKnapsack capacity: %g\n", p.Capacity)
	fmt.Fprintln(a.stdout, "--------------------------------------")
	return p, nil
}

func (a *app) runSingle(ctx context.Context, params core.Params) error {
	problem, err := a.loadProblem(a.problem)
	if err != nil {
		return err
	}
	params = params.WithDefaults()

	solver, err := worker.NewSolver(problem, params)
	if err != nil {
		return err
	}
	a.obs.Instrument(solver)

	res, err := solver.Run(ctx, core.NewRand(params.Seed))
	if err != nil {
		return err
	}
	a.obs.RecordRunMetrics(1, res)

	variant := experiment.Variant{TestID: 1, Runs: 1, Params: params}
	rec := experiment.Aggregate(variant, []worker.Result{res})
	if err := a.store.Record(rec); err != nil {
		return err
	}

	a.report(problem, rec, res.Best)
	return a.check(problem, res.Best)
}

func (a *app) runPlan(ctx context.Context, path string, problemSet, seedSet bool, seed uint64) error {
	plan, err := experiment.NewLoader(path).LoadPlan()
	if err != nil {
		return err
	}
	if problemSet || plan.Problem == "" {
		plan.Problem = a.problem
	}
	if seedSet {
		plan.Seed = seed
	}

	problem, err := a.loadProblem(plan.Problem)
	if err != nil {
		return err
	}

	runner := &experiment.Runner{
		Problem:    problem,
		Results:    a.store,
		Logger:     a.obs.GetLogger(),
		Tracer:     a.obs.GetTracer(),
		Instrument: a.obs.Instrument,
		OnRun:      a.obs.RecordRunMetrics,
	}
	ctx, span := a.obs.GetTracer().StartSpan(ctx, "knapsack.plan")
	outcomes, err := runner.Run(ctx, plan)
	span.End()
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		best := o.Runs[0].Best
		for _, r := range o.Runs[1:] {
			if r.Best.Fitness > best.Fitness {
				best = r.Best
			}
		}
		a.obs.GetMetrics().RecordBestFitness(fmt.Sprintf("%d", o.Record.TestID), o.Record.BestFitness)
		a.report(problem, o.Record, best)
		if err := a.check(problem, best); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) report(problem core.Problem, rec results.RunRecord, best core.Solution) {
	elitism := "with elitism"
	if !rec.Elitism {
		elitism = "without elitism"
	}
	fmt.Fprintf(a.stdout, "Test %d (%s, %d run(s)) - selected items:\n", rec.TestID, elitism, rec.Runs)

	selected := problem.Selected(best.Genome)
	for i, it := range selected {
		if i == reportItems {
			fmt.Fprintf(a.stdout, "  ... and %d more\n", len(selected)-reportItems)
			break
		}
		fmt.Fprintf(a.stdout, "  Item %s: weight = %d, value = %g\n", it.Name, it.Weight, it.Value)
	}
	fmt.Fprintf(a.stdout, "  Total weight = %d / %g, total value = %g, fitness = %.4f\n",
		best.Weight, problem.Capacity, best.Value, best.Fitness)
	fmt.Fprintf(a.stdout, "  Average fitness = %.4f, best fitness = %.4f\n", rec.AverageFitness, rec.BestFitness)
	fmt.Fprintln(a.stdout, "--------------------------------------")
}

func (a *app) check(problem core.Problem, best core.Solution) error {
	if !a.verify {
		return nil
	}
	opt, err := testkit.SolveExact(problem)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	gap := opt.Gap(best.Value)
	fmt.Fprintf(a.stdout, "  Exhaustive optimum = %g (weight %d), gap = %.2f%%\n", opt.Value, opt.Weight, gap*100)
	a.obs.GetLogger().GetZap().Info("verified against optimum",
		zap.Float64("optimum", opt.Value),
		zap.Float64("value", best.Value),
		zap.Float64("gap", gap),
	)
	return nil
}

func (a *app) export(outPath, format, seriesPath string) error {
	if outPath != "" {
		if format == "" {
			format = strings.TrimPrefix(filepath.Ext(outPath), ".")
		}
		f, err := results.ParseExportFormat(format)
		if err != nil {
			return err
		}
		if err := a.store.WriteFile(outPath, f); err != nil {
			return err
		}
		a.obs.GetLogger().Info("results written", "path", outPath, "format", string(f))
	}
	if seriesPath != "" {
		if err := a.store.WriteSeriesFile(seriesPath); err != nil {
			return err
		}
		a.obs.GetLogger().Info("series written", "path", seriesPath)
	}
	return nil
}

func serve(addr string, obs *observability.Manager) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", obs.GetMetrics().Handler())
	mux.Handle("/health", http.HandlerFunc(obs.GetTelemetry().HealthHandler))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		obs.GetLogger().Info("metrics server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.GetLogger().Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
