// Package metrics exposes reconciliation counters in Prometheus form.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "recon_"

	ResultSuccess = "success"
	ResultError   = "error"

	cacheHit  = "hit"
	cacheMiss = "miss"
)

// Metrics holds the collectors of one registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	runsTotal    *prometheus.CounterVec
	runLatency   *prometheus.HistogramVec
	legsTotal    *prometheus.CounterVec
	pairsTotal   prometheus.Counter
	cacheLookups *prometheus.CounterVec
	classifyRuns prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "runs_total",
				Help: "Total reconciliation runs by result",
			},
			[]string{"result"},
		),
		runLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "run_latency_seconds",
				Help:    "Reconciliation run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		legsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "legs_total",
				Help: "Total reconciled legs by final status",
			},
			[]string{"status"},
		),
		pairsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "pairs_total",
				Help: "Total matched leg pairs",
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "classification_cache_lookups_total",
				Help: "Classification cache lookups by result",
			},
			[]string{"result"},
		),
		classifyRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "classifications_total",
				Help: "Charts of accounts classified after a cache miss",
			},
		),
	}
	reg.MustRegister(m.runsTotal, m.runLatency, m.legsTotal, m.pairsTotal, m.cacheLookups, m.classifyRuns)
	return m
}

// ObserveRun records the outcome and latency of a run.
func (m *Metrics) ObserveRun(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(result).Inc()
	m.runLatency.WithLabelValues(result).Observe(d.Seconds())
}

// AddLegs counts n legs that ended with status.
func (m *Metrics) AddLegs(status string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.legsTotal.WithLabelValues(status).Add(float64(n))
}

// AddPairs counts matched pairs.
func (m *Metrics) AddPairs(n int) {
	if m == nil || n == 0 {
		return
	}
	m.pairsTotal.Add(float64(n))
}

// CacheLookup records a classification cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues(cacheHit).Inc()
		return
	}
	m.cacheLookups.WithLabelValues(cacheMiss).Inc()
}

// Classified records one chart classification.
func (m *Metrics) Classified() {
	if m == nil {
		return
	}
	m.classifyRuns.Inc()
}

// WriteTextfile writes the gathered metrics in the text exposition format,
// for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
