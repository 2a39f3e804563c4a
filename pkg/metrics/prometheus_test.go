package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordRun("tournament", "maximize_benefit", true, true, 20*time.Millisecond)
	m.RecordRun("tournament", "maximize_benefit", true, false, 30*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("tournament", "maximize_benefit", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InfeasibleTotal.WithLabelValues("tournament", "maximize_benefit")))
}

func TestRecordGeneration(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordGeneration(9, 4.5, 17, true)
	m.RecordGeneration(9, 5, 18, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImprovementsTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.GenerationMean))
	assert.Equal(t, 18.0, testutil.ToFloat64(m.GenerationFeasible))
}

func TestInstancesAreIndependent(t *testing.T) {
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()
	a.RecordCache(3, 1)
	assert.Equal(t, 3.0, testutil.ToFloat64(a.CacheHitsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheHitsTotal))
}

func TestWriteTextfile(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordBestFitness("1", 9)

	path := filepath.Join(t.TempDir(), "knapsack.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `knapsack_run_best_fitness{test="1"} 9`)
}

func TestHandler(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordCache(3, 1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "knapsack_fitness_cache_misses_total 1"))
}
