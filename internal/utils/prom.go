package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cpatracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and path.",
	}, []string{"method", "path"})

	RowsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpatracker",
		Name:      "rows_ingested_total",
		Help:      "Canonical daily metrics admitted to the store.",
	}, []string{"platform"})

	RowsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpatracker",
		Name:      "rows_rejected_total",
		Help:      "Rows dropped during normalization.",
	}, []string{"platform"})

	IntegrityFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cpatracker",
		Name:      "integrity_failures_total",
		Help:      "Batches rejected by the data integrity guard.",
	})
)
