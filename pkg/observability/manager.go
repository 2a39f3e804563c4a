package observability

import (
	"context"
	"fmt"

	"github.com/snow-ghost/knapsack/pkg/logging"
	"github.com/snow-ghost/knapsack/pkg/metrics"
	"github.com/snow-ghost/knapsack/pkg/tracing"
	"github.com/snow-ghost/knapsack/worker"
	"github.com/snow-ghost/knapsack/worker/telemetry"
)

// Manager manages all observability components
type Manager struct {
	metrics   *metrics.PrometheusMetrics
	tracer    *tracing.Tracer
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
}

// Config holds observability configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	JaegerEndpoint string
	LogLevel       string
	LogFormat      string
	Progress       telemetry.Config
}

// NewManager creates a new observability manager
func NewManager(config Config) (*Manager, error) {
	prometheusMetrics := metrics.NewPrometheusMetrics()

	tracer, err := tracing.NewTracer(tracing.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: config.ServiceVersion,
		JaegerEndpoint: config.JaegerEndpoint,
		Environment:    config.Environment,
	})
	if err != nil {
		return nil, err
	}

	// stdout carries the report, logs go to stderr
	logger, err := logging.NewLogger(logging.Config{
		Level:     config.LogLevel,
		Format:    config.LogFormat,
		Output:    "stderr",
		AddCaller: false,
		AddStack:  false,
	})
	if err != nil {
		tracer.Shutdown(context.Background())
		return nil, err
	}

	if config.Progress.EveryN == 0 && config.Progress.Interval == 0 {
		config.Progress = telemetry.DefaultConfig()
	}

	return &Manager{
		metrics:   prometheusMetrics,
		tracer:    tracer,
		logger:    logger,
		telemetry: telemetry.NewTelemetry(prometheusMetrics, logger, config.Progress),
	}, nil
}

// GetMetrics returns the metrics instance
func (m *Manager) GetMetrics() *metrics.PrometheusMetrics {
	return m.metrics
}

// GetTracer returns the tracer instance
func (m *Manager) GetTracer() *tracing.Tracer {
	return m.tracer
}

// GetLogger returns the logger instance
func (m *Manager) GetLogger() *logging.Logger {
	return m.logger
}

// GetTelemetry returns the generation observer
func (m *Manager) GetTelemetry() *telemetry.Telemetry {
	return m.telemetry
}

// Instrument attaches logger, tracer and generation observer to a solver.
func (m *Manager) Instrument(s *worker.Solver) {
	s.Logger = m.logger.GetZap()
	s.Tracer = m.tracer.Tracer()
	s.Observer = m.telemetry
}

// RecordRunMetrics records a finished run
func (m *Manager) RecordRunMetrics(testID int, res worker.Result) {
	p := res.Params
	m.metrics.RecordRun(string(p.Selection), string(p.Metric), p.Elitism, res.Feasible, res.Duration)
	m.metrics.RecordBestFitness(fmt.Sprintf("%d", testID), res.BestFitness())
	if res.CacheStats != nil {
		m.metrics.RecordCache(res.CacheStats.Hits, res.CacheStats.Misses)
	}
}

// Shutdown shuts down all observability components
func (m *Manager) Shutdown(ctx context.Context) error {
	if err := m.tracer.Shutdown(ctx); err != nil {
		return err
	}

	// stderr cannot be synced on some platforms; that is not worth failing on
	_ = m.logger.Sync()

	return nil
}
