// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Mint pipeline metrics
	AttemptsStarted  prometheus.Counter
	AttemptsFinished *prometheus.CounterVec
	AttemptFailures  *prometheus.CounterVec

	// Pinning metrics
	PinRequests *prometheus.CounterVec
	PinDuration *prometheus.HistogramVec
	PinnedBytes prometheus.Counter

	// Transaction metrics
	TransactionsPending prometheus.Gauge
	ConfirmationLatency prometheus.Histogram

	// Explorer cache metrics
	ExplorerRequests   *prometheus.CounterVec
	TransferRowsCached prometheus.Counter
	DashboardRefreshes *prometheus.CounterVec

	// Health metrics
	LastConfirmedMint prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "nft_minter"
	}

	return &Metrics{
		// Mint pipeline metrics
		AttemptsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "attempts_started_total",
			Help:      "Total number of mint attempts started",
		}),
		AttemptsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "attempts_finished_total",
			Help:      "Total number of mint attempts finished by outcome",
		}, []string{"outcome"}),
		AttemptFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "attempt_failures_total",
			Help:      "Total number of failed mint attempts by reason",
		}, []string{"reason"}),
		// Pinning metrics
		PinRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinning",
			Name:      "requests_total",
			Help:      "Total number of pinning service requests by stage and outcome",
		}, []string{"stage", "outcome"}),
		PinDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pinning",
			Name:      "request_duration_seconds",
			Help:      "Pinning service request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		PinnedBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinning",
			Name:      "pinned_bytes_total",
			Help:      "Total number of asset bytes pinned",
		}),

		// Transaction metrics
		TransactionsPending: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ethereum",
			Name:      "transactions_pending",
			Help:      "Number of submitted transactions awaiting confirmation",
		}),
		ConfirmationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ethereum",
			Name:      "confirmation_latency_seconds",
			Help:      "Time from submission to mined receipt in seconds",
			Buckets:   []float64{1, 5, 10, 15, 30, 60, 120, 300, 600},
		}),

		// Explorer cache metrics
		ExplorerRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "explorer",
			Name:      "requests_total",
			Help:      "Total number of explorer API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		TransferRowsCached: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "explorer",
			Name:      "transfer_rows_cached_total",
			Help:      "Total number of transfer history rows written to the cache",
		}),
		DashboardRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "refreshes_total",
			Help:      "Total number of account dashboard refreshes by status",
		}, []string{"status"}),

		// Health metrics
		LastConfirmedMint: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_confirmed_mint_timestamp",
			Help:      "Unix timestamp of the last confirmed mint",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
