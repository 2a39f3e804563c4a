package telemetry

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/snow-ghost/knapsack/core"
	"github.com/snow-ghost/knapsack/pkg/logging"
	"github.com/snow-ghost/knapsack/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestObserveGeneration(t *testing.T) {
	obsCore, logs := observer.New(zapcore.InfoLevel)
	m := metrics.NewPrometheusMetrics()
	tel := NewTelemetry(m, logging.New(zap.New(obsCore)), Config{EveryN: 5})

	ctx := context.Background()
	for i := 0; i < 12; i++ {
		tel.ObserveGeneration(ctx, core.GenerationStats{Index: i, Best: float64(i), Improvement: i%2 == 0, Size: 10})
	}

	gens, imps := tel.Counts()
	assert.Equal(t, 12, gens)
	assert.Equal(t, 6, imps)
	assert.Equal(t, 12.0, testutil.ToFloat64(m.GenerationsTotal))
	assert.Equal(t, 11.0, testutil.ToFloat64(m.GenerationBest))

	// first, then every fifth call: generations 0, 5, 10
	assert.Equal(t, 3, logs.FilterMessage("generation").Len())
}

func TestNilCollaborators(t *testing.T) {
	tel := NewTelemetry(nil, nil, DefaultConfig())
	tel.ObserveGeneration(context.Background(), core.GenerationStats{})
	gens, _ := tel.Counts()
	assert.Equal(t, 1, gens)
}

func TestHealthHandler(t *testing.T) {
	tel := NewTelemetry(nil, nil, DefaultConfig())
	tel.ObserveGeneration(context.Background(), core.GenerationStats{Improvement: true})

	rec := httptest.NewRecorder()
	tel.HealthHandler(rec, httptest.NewRequest("GET", "/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 1.0, body["generations"])
	assert.Equal(t, 1.0, body["improvements"])
}
