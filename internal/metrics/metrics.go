// Package metrics holds the Prometheus collectors exported on the metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route pattern and status
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration is the latency of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsflow_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// SubmissionsTotal counts public submissions by outcome (ok, rejected, error)
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsflow_submissions_total",
			Help: "Total number of form submissions",
		},
		[]string{"status"},
	)

	// AIRequestsTotal counts generative model calls
	AIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsflow_ai_requests_total",
			Help: "Total number of generative model calls",
		},
		[]string{"operation", "provider", "status"},
	)

	// AIRequestDuration is the latency of generative model calls
	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsflow_ai_request_duration_seconds",
			Help:    "Generative model call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"operation", "provider"},
	)

	// CacheLookups counts analytics cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsflow_analytics_cache_lookups_total",
			Help: "Analytics cache lookups by result",
		},
		[]string{"result"},
	)
)

// Outcome labels
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusRejected = "rejected"
)
