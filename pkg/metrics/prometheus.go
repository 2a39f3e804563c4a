package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// Run metrics
	RunsTotal       *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	RunBestFitness  *prometheus.GaugeVec
	InfeasibleTotal *prometheus.CounterVec

	// Generation metrics
	GenerationsTotal   prometheus.Counter
	ImprovementsTotal  prometheus.Counter
	GenerationBest     prometheus.Gauge
	GenerationMean     prometheus.Gauge
	GenerationFeasible prometheus.Gauge

	// Fitness cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewPrometheusMetrics creates metrics on a private registry so several
// instances can coexist in one process.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knapsack_runs_total",
				Help: "Total number of completed GA runs",
			},
			[]string{"selection", "metric", "elitism"},
		),

		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "knapsack_run_duration_seconds",
				Help:    "GA run wall time in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"selection", "metric"},
		),

		RunBestFitness: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "knapsack_run_best_fitness",
				Help: "Best fitness of the most recent run per experiment test",
			},
			[]string{"test"},
		),

		InfeasibleTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knapsack_runs_infeasible_total",
				Help: "Runs whose best solution exceeds capacity",
			},
			[]string{"selection", "metric"},
		),

		GenerationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "knapsack_generations_total",
				Help: "Total number of generations evolved",
			},
		),

		ImprovementsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "knapsack_improvements_total",
				Help: "Generations that raised the global best fitness",
			},
		),

		GenerationBest: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "knapsack_generation_best_fitness",
				Help: "Best fitness of the latest generation",
			},
		),

		GenerationMean: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "knapsack_generation_mean_fitness",
				Help: "Mean fitness of the latest generation",
			},
		),

		GenerationFeasible: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "knapsack_generation_feasible_candidates",
				Help: "Candidates within capacity in the latest generation",
			},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "knapsack_fitness_cache_hits_total",
				Help: "Total number of fitness cache hits",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "knapsack_fitness_cache_misses_total",
				Help: "Total number of fitness cache misses",
			},
		),
	}
}

// Registry exposes the underlying registry, e.g. for promhttp.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the private registry in the exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun records a finished run
func (m *PrometheusMetrics) RecordRun(selection, metric string, elitism, feasible bool, duration time.Duration) {
	m.RunsTotal.WithLabelValues(selection, metric, fmt.Sprintf("%t", elitism)).Inc()
	m.RunDuration.WithLabelValues(selection, metric).Observe(duration.Seconds())
	if !feasible {
		m.InfeasibleTotal.WithLabelValues(selection, metric).Inc()
	}
}

// RecordBestFitness sets the best fitness gauge for an experiment test
func (m *PrometheusMetrics) RecordBestFitness(test string, fitness float64) {
	m.RunBestFitness.WithLabelValues(test).Set(fitness)
}

// RecordGeneration records a generation summary
func (m *PrometheusMetrics) RecordGeneration(best, mean float64, feasible int, improved bool) {
	m.GenerationsTotal.Inc()
	m.GenerationBest.Set(best)
	m.GenerationMean.Set(mean)
	m.GenerationFeasible.Set(float64(feasible))
	if improved {
		m.ImprovementsTotal.Inc()
	}
}

// RecordCache adds fitness cache counters from a finished run
func (m *PrometheusMetrics) RecordCache(hits, misses int64) {
	m.CacheHitsTotal.Add(float64(hits))
	m.CacheMissesTotal.Add(float64(misses))
}

// WriteTextfile dumps every metric in the text exposition format, for the
// node exporter textfile collector.
func (m *PrometheusMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
