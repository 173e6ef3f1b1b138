// Package metrics holds Prometheus instruments that are used across the
// API.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vp_requests_total",
			Help: "HTTP requests served, by route pattern and status code.",
		},
		[]string{"route", "code"})

	RequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vp_request_duration_seconds",
			Help:    "End-to-end request latency.",
			Buckets: prometheus.DefBuckets,
		})

	DatabaseErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vp_database_errors_total",
			Help: "Cumulative number of failed database operations.",
		})

	UnauthorizedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vp_unauthorized_total",
			Help: "Requests rejected by the role check.",
		})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		DatabaseErrorsTotal,
		UnauthorizedTotal,
	)
}
