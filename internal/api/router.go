// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/plex-telegram-notify/internal/config"
	"github.com/tomtom215/plex-telegram-notify/internal/logging"
	"github.com/tomtom215/plex-telegram-notify/internal/metrics"
	"github.com/tomtom215/plex-telegram-notify/internal/middleware"
)

// NewRouter builds the HTTP routes:
//
//	GET  /health, /health/   liveness JSON
//	GET  anything else       404
//	POST /, POST /{secret}   Plex webhook
func NewRouter(cfg *config.ServerConfig, webhook http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)

	r.NotFound(NotFound)

	r.Get("/health", Health)
	r.Get("/health/", Health)
	r.Get("/*", NotFound)

	r.Group(func(r chi.Router) {
		r.Use(WebhookRateLimit(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Post("/", webhook.ServeHTTP)
		r.Post("/*", webhook.ServeHTTP)
	})

	return r
}

// WebhookRateLimit limits webhook requests per client IP with
// go-chi/httprate. requests <= 0 disables the limit.
func WebhookRateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	if window <= 0 {
		window = time.Minute
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logging.Ctx(r.Context()).Warn().Str("remote_addr", r.RemoteAddr).Msg("Webhook rate limit exceeded")
			metrics.RecordWebhookRequest(resultRateLimited)
			writeStatus(w, http.StatusTooManyRequests)
		}),
	)
}
