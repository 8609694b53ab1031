// Package metrics exposes Prometheus instrumentation for monitoring runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "riskmonitor"

// Run outcomes
const (
	OutcomeSuccess = "success"
	OutcomeNoData  = "no_data"
	OutcomeFailed  = "failed"
)

// Metrics holds all Prometheus metrics for the risk monitor.
// Each instance owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Runs                 *prometheus.CounterVec
	RunDuration          prometheus.Histogram
	InstrumentsEvaluated prometheus.Counter
	InstrumentsSkipped   *prometheus.CounterVec
	Breaches             prometheus.Counter
	FetchFailures        prometheus.Counter
	RecordsInserted      *prometheus.CounterVec
	LastRunTimestamp     prometheus.Gauge
}

// New creates and registers all metrics
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Monitoring runs by outcome",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a monitoring run",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		InstrumentsEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instruments_evaluated_total",
			Help:      "Instruments that produced a risk record",
		}),
		InstrumentsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instruments_skipped_total",
			Help:      "Instruments skipped, by reason",
		}, []string{"reason"}),
		Breaches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaches_total",
			Help:      "Risk records flagged as a breach",
		}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed price history fetch attempts",
		}),
		RecordsInserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_inserted_total",
			Help:      "Risk records written, by sink",
		}, []string{"sink"}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Registry returns the registry backing these metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
