package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API client request metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_console_api_requests_total",
			Help: "Total number of API requests sent by the client",
		},
		[]string{"method", "status_class"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_console_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method"},
	)

	APIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_console_api_errors_total",
			Help: "Total number of API failures by kind",
		},
		[]string{"kind"},
	)

	// Token refresh metrics
	RefreshAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_console_refresh_attempts_total",
			Help: "Total number of refresh-token round trips by outcome",
		},
		[]string{"outcome"},
	)

	RefreshWaitersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_console_refresh_coalesced_waiters_total",
			Help: "Callers that joined a refresh already in flight",
		},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "admin_console_refresh_duration_seconds",
			Help:    "Refresh-token round trip latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
		},
	)

	AuthRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_console_auth_retries_total",
			Help: "Requests replayed after a 401, by outcome of the replay",
		},
		[]string{"outcome"},
	)

	// Credential store metrics
	CredentialWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_console_credential_writes_total",
			Help: "Credential snapshot persistence attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	// Mock API server metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_console_mock_http_requests_total",
			Help: "Requests served by the mock API by route and status class",
		},
		[]string{"method", "route", "status_class"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_console_mock_http_request_duration_seconds",
			Help:    "Mock API handler latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admin_console_mock_http_in_flight",
			Help: "Requests currently being served by the mock API",
		},
	)
)

// RecordAPIRequest records one HTTP exchange.
func RecordAPIRequest(method, statusClass string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, statusClass).Inc()
	APIRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordRefresh records the outcome of one refresh flight.
func RecordRefresh(outcome string, d time.Duration) {
	RefreshAttemptsTotal.WithLabelValues(outcome).Inc()
	RefreshDuration.Observe(d.Seconds())
}

// WriteTextfile dumps the default registry in the text exposition format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
