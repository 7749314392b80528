// Package metrics provides Prometheus metrics for mspadm admin operations.
// Embedders that serve a /metrics endpoint can expose Registry through
// promhttp; the CLI records into it so long-running callers of pkg/admin
// get instrumentation for free.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all mspadm metrics
	namespace = "mspadm"
)

var (
	// Registry holds every mspadm collector
	Registry = prometheus.NewRegistry()

	// RequestsTotal tracks admin API requests by operation and outcome
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_requests_total",
			Help:      "Total number of admin API requests",
		},
		[]string{"operation", "status"},
	)

	// RequestDuration tracks admin request latency
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "admin_request_duration_seconds",
			Help:      "Duration of admin API requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	// InstanceUp tracks instance reachability as seen by the last request
	InstanceUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "instance_up",
			Help:      "Whether the last admin request to an instance succeeded (1) or failed (0)",
		},
		[]string{"instance"},
	)
)

func init() {
	Registry.MustRegister(
		RequestsTotal,
		RequestDuration,
		InstanceUp,
	)
}

// RecordRequest records one admin API request and its duration
func RecordRequest(operation, status string, duration float64) {
	RequestsTotal.WithLabelValues(operation, status).Inc()
	RequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordInstanceStatus records whether an instance answered its last request
func RecordInstanceStatus(instance string, up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	InstanceUp.WithLabelValues(instance).Set(value)
}
