// Package metrics exposes prometheus collectors for the recovery API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecoveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recoveries_total",
			Help: "Total successful transaction recoveries by canonical state",
		},
		[]string{"state"},
	)

	ProcessorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "processor_errors_total",
			Help: "Total upstream processor failures during recovery",
		},
		[]string{"processor"},
	)

	DuplicatePairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_pairs_total",
			Help: "Total duplicate transaction pairs detected in bulk recovery",
		},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Handler serves the /metrics endpoint
var Handler = promhttp.Handler

// Init registers all collectors with the default registry
func Init() {
	prometheus.MustRegister(RecoveriesTotal)
	prometheus.MustRegister(ProcessorErrorsTotal)
	prometheus.MustRegister(DuplicatePairsTotal)
	prometheus.MustRegister(HTTPLatency)
}
