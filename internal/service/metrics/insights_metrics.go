package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	InsightsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resona",
			Subsystem: "insights",
			Name:      "latency_seconds",
			Help:      "Latency of insights endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	InsightsErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resona",
			Subsystem: "insights",
			Name:      "errors_total",
			Help:      "Errors by insights endpoint",
		},
		[]string{"endpoint"},
	)

	InsightsCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resona",
			Subsystem: "insights",
			Name:      "cache_hits_total",
			Help:      "Response cache hits by insights endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(InsightsLatency, InsightsErrors, InsightsCacheHits)
	})
}
