// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "goalmate_http_request_duration_seconds",
	Help:    "HTTP request latency by route and status class",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route", "status"})

var aiGenerationMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "goalmate_ai_generations_total",
	Help: "Tutor generations by outcome (ok, quota, error)",
}, []string{"outcome"})

var aiLatencyMetric = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "goalmate_ai_generation_seconds",
	Help:    "Latency of upstream generation calls",
	Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30},
})

var reactionToggleMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "goalmate_reaction_toggles_total",
	Help: "Reaction toggles by write mode (cas, overwrite)",
}, []string{"mode"})

var reactionRetryMetric = promauto.NewCounter(prometheus.CounterOpts{
	Name: "goalmate_reaction_cas_retries_total",
	Help: "Reaction compare-and-swap attempts lost to a concurrent writer",
})

var membershipDegradedMetric = promauto.NewCounter(prometheus.CounterOpts{
	Name: "goalmate_membership_lookup_degraded_total",
	Help: "Group member lookups that failed and were served as an empty list",
})

var wsConnectionsMetric = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "goalmate_ws_connections",
	Help: "Open websocket connections",
})

var wsEventsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "goalmate_ws_events_sent_total",
	Help: "Realtime events delivered to websocket clients by type",
}, []string{"type"})

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestMetric.WithLabelValues(method, route, statusClass(status)).Observe(elapsed.Seconds())
}

func ObserveGeneration(outcome string, elapsed time.Duration) {
	aiGenerationMetric.WithLabelValues(outcome).Inc()
	aiLatencyMetric.Observe(elapsed.Seconds())
}

func ReactionToggled(mode string) {
	reactionToggleMetric.WithLabelValues(mode).Inc()
}

func ReactionRetried() {
	reactionRetryMetric.Inc()
}

func MembershipDegraded() {
	membershipDegradedMetric.Inc()
}

func WSConnected() {
	wsConnectionsMetric.Inc()
}

func WSDisconnected() {
	wsConnectionsMetric.Dec()
}

func WSEventSent(eventType string) {
	wsEventsMetric.WithLabelValues(eventType).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
