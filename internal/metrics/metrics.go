// Package metrics exposes the pipeline's Prometheus instrumentation and the
// small HTTP server serving /metrics and /healthz.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TransactionsProcessed counts fully handled notifications by action
	// kind and outcome ("ok", "duplicate", "dropped", "ineligible",
	// "malformed", "invalid_signature", "unrecognized", "error").
	TransactionsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "kindex_transactions_processed_total", Help: "Processed change notifications"},
		[]string{"kind", "outcome"},
	)

	// ProcessingDuration measures the full worker handling time per
	// notification, fetch and persistence included.
	ProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "kindex_processing_duration_seconds", Help: "Per-notification processing latency", Buckets: prometheus.DefBuckets},
		[]string{"outcome"},
	)

	// FetchRetries counts visibility-race retries of the row re-read.
	FetchRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "kindex_fetch_retries_total", Help: "Transaction row re-read retries"},
	)

	// ListenerReconnects counts notification-channel losses.
	ListenerReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "kindex_listener_reconnects_total", Help: "Notification listener reconnects"},
	)
)

func init() {
	prometheus.MustRegister(TransactionsProcessed, ProcessingDuration, FetchRetries, ListenerReconnects)
}
