package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	clientRequestsTotal    *prometheus.CounterVec
	clientRequestSeconds   *prometheus.HistogramVec
	serverRequestsTotal    *prometheus.CounterVec
	serverLatencySeconds   *prometheus.HistogramVec
	serverErrorsTotal      *prometheus.CounterVec
	discussionMessagesSent *prometheus.CounterVec
	staleResponsesDropped  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors shared by the client and the dev backend.
func RegisterMetrics() {
	registerOnce.Do(func() {
		clientRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kultura",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of backend requests issued by the API client.",
		}, []string{"method", "status"})

		clientRequestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kultura",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Latency of backend requests issued by the API client.",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0},
		}, []string{"method"})

		staleResponsesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kultura",
			Subsystem: "client",
			Name:      "stale_responses_dropped_total",
			Help:      "Responses discarded by a state container because a newer request superseded them.",
		}, []string{"store"})

		serverRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kultura",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		serverLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kultura",
			Subsystem: "server",
			Name:      "latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		serverErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kultura",
			Subsystem: "server",
			Name:      "errors_total",
			Help:      "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		discussionMessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kultura",
			Subsystem: "discussion",
			Name:      "messages_total",
			Help:      "Discussion messages accepted by the API.",
		}, []string{"type"})

		prometheus.MustRegister(
			clientRequestsTotal,
			clientRequestSeconds,
			staleResponsesDropped,
			serverRequestsTotal,
			serverLatencySeconds,
			serverErrorsTotal,
			discussionMessagesSent,
		)
	})
}

// ClientRequests exposes the counter for outgoing API client requests.
func ClientRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return clientRequestsTotal
}

// ClientLatency exposes the latency histogram for outgoing API client requests.
func ClientLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return clientRequestSeconds
}

// StaleResponsesDropped exposes the counter of superseded responses per store.
func StaleResponsesDropped() *prometheus.CounterVec {
	RegisterMetrics()
	return staleResponsesDropped
}

// ServerRequests exposes the counter for served API requests.
func ServerRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return serverRequestsTotal
}

// ServerLatency exposes the latency histogram for served API requests.
func ServerLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return serverLatencySeconds
}

// ServerErrors exposes the counter for error responses.
func ServerErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return serverErrorsTotal
}

// DiscussionMessages exposes the counter of accepted discussion messages.
func DiscussionMessages() *prometheus.CounterVec {
	RegisterMetrics()
	return discussionMessagesSent
}
