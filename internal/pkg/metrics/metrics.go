// Package metrics exposes the Prometheus collectors the engine updates as
// it processes transfers, mirroring the teacher's src/metrics/prometheus.go
// registration style (promauto, grouped var blocks) but scoped to the
// ledger domain: HTTP surface, transfer throughput, and outbox health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

var (
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Total number of transfer attempts by outcome",
		},
		[]string{"status"}, // completed, failed, reversed
	)

	TransferAmountMinor = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transfer_amount_minor_units",
			Help:    "Distribution of transfer amounts in minor currency units",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		},
	)

	DeadlockRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deadlock_retries_total",
			Help: "Total number of transaction retries caused by a detected deadlock",
		},
	)

	IdempotencyHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idempotency_hits_total",
			Help: "Total number of requests served from the idempotency cache or reused-key rejections",
		},
		[]string{"outcome"}, // cache_hit, key_reuse, lock_timeout
	)
)

var (
	OutboxBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "outbox_backlog_size",
			Help: "Number of outbox events not yet published",
		},
	)

	OutboxPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outbox_published_total",
			Help: "Total number of outbox events successfully published",
		},
	)

	OutboxDeadLetteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outbox_dead_lettered_total",
			Help: "Total number of outbox events that exhausted their publish attempts",
		},
	)

	ReconciliationMismatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciliation_mismatches_total",
			Help: "Total number of accounts found inconsistent during a reconciliation pass",
		},
	)
)

var (
	AccountsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_created_total",
			Help: "Total number of accounts successfully opened",
		},
	)
)

func RecordTransferOutcome(status string) {
	TransfersTotal.WithLabelValues(status).Inc()
}
