// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_requests_total",
			Help: "Total number of notification requests processed, by terminal status",
		},
		[]string{"status"},
	)

	TransportAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_transport_attempts_total",
			Help: "Total number of transport send attempts including retries",
		},
	)

	TransportFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_transport_failures_total",
			Help: "Total number of failed transport send attempts",
		},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_trigger_events_total",
			Help: "Total number of stream events consumed, by outcome",
		},
		[]string{"outcome"},
	)

	StatusWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_status_write_failures_total",
			Help: "Total number of failed delivery-status write-backs",
		},
	)

	ProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_processing_duration_seconds",
			Help:    "End-to-end processing time per notification request",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
)
