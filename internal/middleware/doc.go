// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

/*
Package middleware provides HTTP middleware for the webhook server.

Both middlewares use the chi signature func(http.Handler) http.Handler:

  - RequestID: assigns or propagates X-Request-ID and puts request and
    correlation IDs into the context read by logging.Ctx.
  - PrometheusMetrics: records api_requests_total, request duration and
    in-flight requests, labelled by chi route pattern.

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)

PrometheusMetrics sits outside Recoverer so that recovered panics are
counted with their 500 status.
*/
package middleware
