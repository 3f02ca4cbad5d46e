// Package metrics holds the Prometheus counters of a batch run.
//
// A run owns its registry; nothing is registered globally. After the run the
// registry can be written in text format for the node_exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	recordsLoaded   *prometheus.CounterVec
	recordsDropped  *prometheus.CounterVec
	recordsRejected *prometheus.CounterVec
	tracksCleaned   prometheus.Counter
	identities      prometheus.Gauge
	nearDuplicates  prometheus.Gauge
	examples        prometheus.Gauge
	stageDuration   *prometheus.HistogramVec
	lastSuccess     prometheus.Gauge
}

// New creates the metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recordsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirify_records_loaded_total",
				Help: "Raw records read from export files",
			},
			[]string{"format"},
		),
		recordsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirify_records_dropped_total",
				Help: "Raw records dropped during ingestion",
			},
			[]string{"stage"},
		),
		recordsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirify_records_rejected_total",
				Help: "Records rejected by validation",
			},
			[]string{"reason"},
		),
		tracksCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mirify_tracks_cleaned_total",
			Help: "Records accepted by validation",
		}),
		identities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mirify_track_identities",
			Help: "Distinct track identities in the last run",
		}),
		nearDuplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mirify_near_duplicate_identities",
			Help: "Identity pairs flagged as near duplicates in the last run",
		}),
		examples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mirify_training_examples",
			Help: "Training examples produced by the last run",
		}),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mirify_stage_duration_seconds",
				Help:    "Time spent per pipeline stage",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"stage"},
		),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mirify_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}

	m.registry.MustRegister(
		m.recordsLoaded,
		m.recordsDropped,
		m.recordsRejected,
		m.tracksCleaned,
		m.identities,
		m.nearDuplicates,
		m.examples,
		m.stageDuration,
		m.lastSuccess,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RecordsLoaded(format string, n int) {
	m.recordsLoaded.WithLabelValues(format).Add(float64(n))
}

func (m *Metrics) RecordsDropped(stage string, n int) {
	m.recordsDropped.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) Rejected(reason string, n int) {
	m.recordsRejected.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) TracksCleaned(n int) { m.tracksCleaned.Add(float64(n)) }

func (m *Metrics) Identities(n int) { m.identities.Set(float64(n)) }

func (m *Metrics) NearDuplicates(n int) { m.nearDuplicates.Set(float64(n)) }

func (m *Metrics) Examples(n int) { m.examples.Set(float64(n)) }

// ObserveStage records how long stage took.
func (m *Metrics) ObserveStage(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// MarkSuccess stamps the current time as the last successful run.
func (m *Metrics) MarkSuccess() { m.lastSuccess.SetToCurrentTime() }

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
