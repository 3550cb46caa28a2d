// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package api

import (
	"net/http"

	"github.com/tomtom215/plex-telegram-notify/internal/logging"
)

// Health answers the container health check. It reports liveness only and
// never calls Telegram or Plex.
func Health(w http.ResponseWriter, r *http.Request) {
	logging.Ctx(r.Context()).Debug().Msg("Healthcheck request received")
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: ServiceName})
}

// NotFound answers every GET other than the health check.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusNotFound)
}
