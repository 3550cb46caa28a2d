// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for the relay:
// - HTTP request latency and throughput
// - Webhook outcomes by event
// - Telegram delivery outcomes and latency
// - Thumbnail fetches and the circuit breaker guarding them

var (
	// API Endpoint Metrics
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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15}, // Includes the outbound Telegram call
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Webhook Metrics
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Total number of webhook requests by result",
		},
		[]string{"result"}, // processed, unauthorized, bad_request, too_large
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of accepted webhook events by Plex event type",
		},
		[]string{"event"}, // media.play, media.resume, media.pause, media.stop, unknown
	)

	WebhookPayloadRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_payload_recovered_total",
			Help: "Total number of payloads found by scanning part bodies instead of a labelled JSON part",
		},
	)

	// Notification Metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notifications by outcome",
		},
		[]string{"outcome"}, // dry_run, delivered, delivered_fallback, dropped, fatal
	)

	TelegramRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telegram_request_duration_seconds",
			Help:    "Duration of Telegram Bot API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"}, // sendMessage, sendPhoto
	)

	TelegramRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_request_errors_total",
			Help: "Total number of failed Telegram Bot API calls",
		},
		[]string{"method", "status_code"}, // status_code "network" for transport failures
	)

	// Thumbnail Metrics
	ThumbnailFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbnail_fetches_total",
			Help: "Total number of Plex thumbnail fetches by result",
		},
		[]string{"result"}, // success, error, rejected, cached
	)

	ThumbnailFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thumbnail_fetch_duration_seconds",
			Help:    "Duration of Plex thumbnail fetches in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordWebhookRequest records the result of a webhook request.
func RecordWebhookRequest(result string) {
	WebhookRequests.WithLabelValues(result).Inc()
}

// RecordWebhookEvent records an accepted webhook event.
func RecordWebhookEvent(event string) {
	WebhookEvents.WithLabelValues(event).Inc()
}

// RecordNotification records a notification outcome.
func RecordNotification(outcome string) {
	NotificationsTotal.WithLabelValues(outcome).Inc()
}

// RecordTelegramRequest records a Bot API call. statusCode is 0 for
// transport failures; any non-2xx status or transport failure counts as an error.
func RecordTelegramRequest(method string, statusCode int, duration time.Duration) {
	TelegramRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	switch {
	case statusCode == 0:
		TelegramRequestErrors.WithLabelValues(method, "network").Inc()
	case statusCode < 200 || statusCode > 299:
		TelegramRequestErrors.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	}
}

// RecordThumbnailFetch records a Plex thumbnail fetch.
func RecordThumbnailFetch(result string, duration time.Duration) {
	ThumbnailFetches.WithLabelValues(result).Inc()
	if result == "success" || result == "error" {
		ThumbnailFetchDuration.Observe(duration.Seconds())
	}
}

// Handler serves the default registry at /metrics and 404 elsewhere. It is
// mounted on its own listener (METRICS_ADDR), never on the webhook port.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
