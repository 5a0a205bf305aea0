package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the worker's Prometheus instruments.
type Metrics struct {
	registry *prometheus.Registry

	jobRuns     *prometheus.CounterVec
	jobErrors   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec

	itemsSynced *prometheus.CounterVec
	itemErrors  *prometheus.CounterVec

	driftCorrections *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		jobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalogsync",
			Name:      "job_runs_total",
			Help:      "Number of job executions.",
		}, []string{"job"}),
		jobErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalogsync",
			Name:      "job_errors_total",
			Help:      "Number of job executions that returned an error.",
		}, []string{"job"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalogsync",
			Name:      "job_duration_seconds",
			Help:      "Job execution latency.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"job"}),
		itemsSynced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalogsync",
			Name:      "items_synced_total",
			Help:      "Destination rows written, by entity.",
		}, []string{"entity"}),
		itemErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalogsync",
			Name:      "item_errors_total",
			Help:      "Per-item failures that were skipped, by entity.",
		}, []string{"entity"}),
		driftCorrections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalogsync",
			Name:      "drift_corrections_total",
			Help:      "Drift detector overwrites applied, by kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) IncJobRun(job string)   { m.jobRuns.WithLabelValues(job).Inc() }
func (m *Metrics) IncJobError(job string) { m.jobErrors.WithLabelValues(job).Inc() }

func (m *Metrics) ObserveJobDuration(job string, d time.Duration) {
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) AddItemsSynced(entity string, n int) {
	m.itemsSynced.WithLabelValues(entity).Add(float64(n))
}

func (m *Metrics) AddItemErrors(entity string, n int) {
	m.itemErrors.WithLabelValues(entity).Add(float64(n))
}

func (m *Metrics) IncDriftCorrection(kind string) {
	m.driftCorrections.WithLabelValues(kind).Inc()
}
