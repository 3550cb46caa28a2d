// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

/*
Package metrics provides Prometheus metrics for the relay.

Metrics are registered with the default registry through promauto and are
exposed by the optional metrics listener (METRICS_ENABLED, METRICS_ADDR):

	curl http://localhost:9091/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: Requests by method, route pattern and status (counter)
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: In-flight requests (gauge)

Webhook Metrics:
  - webhook_requests_total: Webhook requests by result (counter)
  - webhook_events_total: Accepted events by Plex event name (counter)
  - webhook_payload_recovered_total: Payloads recovered by body scanning (counter)

Delivery Metrics:
  - notifications_total: Notifications by outcome (counter)
  - telegram_request_duration_seconds: Bot API latency by method (histogram)
  - telegram_request_errors_total: Failed Bot API calls by method and status (counter)

Thumbnail Metrics:
  - thumbnail_fetches_total: Plex thumbnail fetches by result (counter)
  - thumbnail_fetch_duration_seconds: Fetch latency (histogram)
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Calls through the breaker by result (counter)
  - circuit_breaker_state_transitions_total: State changes (counter)
*/
package metrics
