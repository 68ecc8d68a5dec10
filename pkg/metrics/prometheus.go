package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	matchesRecorded *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	realmNumber     prometheus.Gauge
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		matchesRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resona_matches_recorded_total",
				Help: "Total number of matches recorded per backend",
			},
			[]string{"backend", "number"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resona_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		realmNumber: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "resona_realm_number",
				Help: "Most recently computed realm number",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resona_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordMatch records a match stored via a backend.
func (r *Recorder) RecordMatch(backend string, number int) {
	r.matchesRecorded.WithLabelValues(backend, strconv.Itoa(number)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRealmNumber records the latest computed realm number.
func (r *Recorder) RecordRealmNumber(number int) {
	r.realmNumber.Set(float64(number))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
