package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/snow-ghost/knapsack/core"
	"github.com/snow-ghost/knapsack/pkg/logging"
	"github.com/snow-ghost/knapsack/pkg/metrics"
	"golang.org/x/time/rate"
)

// Telemetry observes generations, feeds Prometheus and emits throttled
// progress logs. It is safe for use by concurrent runs.
type Telemetry struct {
	mu sync.Mutex

	metrics  *metrics.PrometheusMetrics
	logger   *logging.Logger
	progress rate.Sometimes

	generations  int
	improvements int
}

// Config controls how often progress lines are logged.
type Config struct {
	// EveryN logs the first generation and then every Nth.
	EveryN int
	// Interval also logs once that much time has passed since the last line.
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{EveryN: 10, Interval: time.Second}
}

// NewTelemetry creates a new telemetry instance. Both m and logger may be nil.
func NewTelemetry(m *metrics.PrometheusMetrics, logger *logging.Logger, config Config) *Telemetry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Telemetry{
		metrics:  m,
		logger:   logger,
		progress: rate.Sometimes{First: 1, Every: config.EveryN, Interval: config.Interval},
	}
}

// ObserveGeneration implements core.Observer
func (t *Telemetry) ObserveGeneration(ctx context.Context, stats core.GenerationStats) {
	t.mu.Lock()
	t.generations++
	if stats.Improvement {
		t.improvements++
	}
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.RecordGeneration(stats.Best, stats.Mean, stats.Feasible, stats.Improvement)
	}

	t.progress.Do(func() {
		t.logger.LogGeneration(ctx, stats.Index, stats.Best, stats.Mean, stats.GlobalBest, stats.Feasible, stats.Size)
	})
}

// Counts returns generations observed and how many improved the global best.
func (t *Telemetry) Counts() (generations, improvements int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generations, t.improvements
}

// HealthHandler reports liveness and progress as JSON
func (t *Telemetry) HealthHandler(w http.ResponseWriter, r *http.Request) {
	gens, imps := t.Counts()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "ok",
		"generations":  gens,
		"improvements": imps,
	})
}
