// Package metrics exposes Prometheus counters and histograms for the parse
// pipeline on a registry owned by the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "statement_parser"

// OutcomeSuccess labels a parse that returned a result. Failures are
// labelled with their failure kind.
const OutcomeSuccess = "success"

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	parses       *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	stages       *prometheus.HistogramVec
	transactions prometheus.Histogram
}

// New registers the pipeline collectors, plus Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Statement parse requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "End-to-end statement parse latency by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Latency of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		transactions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transactions_per_statement",
			Help:      "Transactions returned per successfully parsed statement.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		}),
	}
	m.registry.MustRegister(
		m.parses,
		m.duration,
		m.stages,
		m.transactions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveParse records one finished parse.
func (m *Metrics) ObserveParse(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.parses.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveStage records the time spent in one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveTransactions records the size of a parsed statement.
func (m *Metrics) ObserveTransactions(n int) {
	if m == nil {
		return
	}
	m.transactions.Observe(float64(n))
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
