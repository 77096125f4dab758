package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRun(ResultSuccess, 20*time.Millisecond)
	m.ObserveRun(ResultError, time.Millisecond)
	m.ObserveRun(ResultSuccess, time.Millisecond)
	m.AddLegs("MATCHED", 4)
	m.AddLegs("OTHER", 0)
	m.AddPairs(2)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.Classified()

	assert.InDelta(t, 2, testutil.ToFloat64(m.runsTotal.WithLabelValues(ResultSuccess)), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runsTotal.WithLabelValues(ResultError)), 0.001)
	assert.InDelta(t, 4, testutil.ToFloat64(m.legsTotal.WithLabelValues("MATCHED")), 0.001)
	assert.InDelta(t, 2, testutil.ToFloat64(m.pairsTotal), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cacheLookups.WithLabelValues(cacheHit)), 0.001)
	assert.InDelta(t, 2, testutil.ToFloat64(m.cacheLookups.WithLabelValues(cacheMiss)), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.classifyRuns), 0.001)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun(ResultSuccess, time.Second)
		m.AddLegs("MATCHED", 1)
		m.AddPairs(1)
		m.CacheLookup(true)
		m.Classified()
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.AddPairs(3)

	path := filepath.Join(t.TempDir(), "recon.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recon_pairs_total 3")
}
