// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

/*
Package api serves the Plex webhook and the health check.

Request flow for POST / (or POST /{secret} when WEBHOOK_SECRET is set):

 1. The trimmed path must equal the secret, otherwise 404.
 2. The body, capped at MAX_BODY_BYTES, is split by extract.Extract.
 3. models.ParsePlexWebhook checks event, Account, Player and Metadata.
 4. normalize.Normalize builds the display strings.
 5. media.play and media.stop are sent through the Notifier; pause and
    resume are logged; anything else is logged as unhandled.

Every request that gets this far is answered 200, whatever happened to the
notification. A *delivery.FatalConfigError is handed to the FatalReporter.

Routing uses go-chi/chi with the RequestID, RealIP, PrometheusMetrics and
Recoverer middleware. An optional per-IP limit (RATE_LIMIT_REQUESTS per
RATE_LIMIT_WINDOW) is applied to the webhook routes with go-chi/httprate.
*/
package api
