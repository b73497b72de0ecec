// Package metrics holds the Prometheus instrumentation for the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled HTTP requests by method, route pattern
	// and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewlog_http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "route", "code"})

	// RequestDuration observes request latency by route pattern.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crewlog_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// GroupWriteConflicts counts optimistic-concurrency conflicts hit while
	// writing group documents. Each conflict triggers a re-read and retry.
	GroupWriteConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewlog_group_write_conflicts_total",
		Help: "Group document version conflicts (retried).",
	})
)
