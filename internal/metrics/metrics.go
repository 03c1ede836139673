// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Learning Metrics
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_recorded_total",
			Help: "Total number of interactions applied to user contexts",
		},
		[]string{"type"},
	)

	InteractionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_rejected_total",
			Help: "Total number of interactions rejected before learning",
		},
		[]string{"reason"}, // "invalid", "unknown_user"
	)

	// Matching Metrics
	MatchRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total number of match generation requests",
		},
	)

	MatchFallbackServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_fallback_served_total",
			Help: "Total number of match requests served by the fallback ranking",
		},
	)

	MatchGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_generation_duration_seconds",
			Help:    "Duration of match generation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	MatchCandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_candidates_scored",
			Help:    "Number of candidates scored per match request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Catalog Metrics
	CatalogFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetches_total",
			Help: "Total number of catalog fetches",
		},
		[]string{"source", "outcome"}, // outcome: "ok", "error", "breaker_open"
	)

	CatalogFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Duration of catalog fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// WebSocket Metrics
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"event"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped due to slow clients",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records one handled API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordInteraction records one applied interaction.
func RecordInteraction(interactionType string) {
	InteractionsTotal.WithLabelValues(interactionType).Inc()
}

// RecordInteractionRejected records an interaction rejected before learning.
func RecordInteractionRejected(reason string) {
	InteractionsRejected.WithLabelValues(reason).Inc()
}

// RecordMatchRequest records one match generation call.
func RecordMatchRequest(candidates int, fallback bool, duration time.Duration) {
	MatchRequestsTotal.Inc()
	MatchCandidatesScored.Observe(float64(candidates))
	MatchGenerationDuration.Observe(duration.Seconds())
	if fallback {
		MatchFallbackServed.Inc()
	}
}

// RecordCatalogFetch records one catalog fetch attempt.
func RecordCatalogFetch(source, outcome string, duration time.Duration) {
	CatalogFetchesTotal.WithLabelValues(source, outcome).Inc()
	CatalogFetchDuration.Observe(duration.Seconds())
}

// RecordWSMessage records one broadcast WebSocket message.
func RecordWSMessage(event string) {
	WSMessagesSent.WithLabelValues(event).Inc()
}
