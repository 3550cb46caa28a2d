// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tomtom215/plex-telegram-notify/internal/config"
	"github.com/tomtom215/plex-telegram-notify/internal/delivery"
	"github.com/tomtom215/plex-telegram-notify/internal/extract"
	"github.com/tomtom215/plex-telegram-notify/internal/images"
	"github.com/tomtom215/plex-telegram-notify/internal/logging"
	"github.com/tomtom215/plex-telegram-notify/internal/metrics"
	"github.com/tomtom215/plex-telegram-notify/internal/models"
	"github.com/tomtom215/plex-telegram-notify/internal/normalize"
)

// Webhook request results, used as the webhook_requests_total label.
const (
	resultProcessed    = "processed"
	resultUnauthorized = "unauthorized"
	resultBadRequest   = "bad_request"
	resultTooLarge     = "too_large"
	resultRateLimited  = "rate_limited"
)

// Notifier delivers a notification. *delivery.Dispatcher implements it.
type Notifier interface {
	Send(ctx context.Context, n delivery.Notification) (delivery.Outcome, error)
}

// FatalReporter receives delivery errors that mean the bot is
// misconfigured. The runtime decides how to stop.
type FatalReporter interface {
	ReportFatal(err error)
}

// FatalReporterFunc adapts a function to FatalReporter.
type FatalReporterFunc func(err error)

// ReportFatal implements FatalReporter.
func (f FatalReporterFunc) ReportFatal(err error) { f(err) }

// WebhookHandler receives Plex webhooks and relays playback events to
// Telegram.
type WebhookHandler struct {
	secret   string
	maxBody  int64
	images   images.Source
	notifier Notifier
	fatal    FatalReporter
}

// NewWebhookHandler creates the webhook handler. fatal may be nil, in which
// case fatal delivery errors are only logged.
func NewWebhookHandler(cfg *config.Config, source images.Source, notifier Notifier, fatal FatalReporter) *WebhookHandler {
	return &WebhookHandler{
		secret:   cfg.Webhook.Secret,
		maxBody:  cfg.Server.MaxBodyBytes,
		images:   source,
		notifier: notifier,
		fatal:    fatal,
	}
}

// ServeHTTP handles POST / and POST /{secret}.
//
// Responses: 404 when the path does not match the configured secret, 400
// for bodies that are not a usable Plex webhook, 200 otherwise. Delivery
// failures never change the status; Plex does not retry.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logging.Ctx(r.Context())

	if !h.authorized(r) {
		log.Warn().Str("path", logging.SanitizeValue(r.URL.Path)).Msg("Unauthorized webhook request, invalid path")
		metrics.RecordWebhookRequest(resultUnauthorized)
		writeStatus(w, http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn().Int64("limit", tooLarge.Limit).Msg("Webhook body exceeds size limit")
			metrics.RecordWebhookRequest(resultTooLarge)
		} else {
			log.Warn().Err(err).Msg("Failed to read webhook body")
			metrics.RecordWebhookRequest(resultBadRequest)
		}
		writeStatus(w, http.StatusBadRequest)
		return
	}

	result, err := extract.Extract(r.Header.Get("Content-Type"), body)
	if err != nil {
		log.Warn().Err(err).Str("content_type", logging.SanitizeValue(r.Header.Get("Content-Type"))).
			Msg("Rejected webhook body")
		metrics.RecordWebhookRequest(resultBadRequest)
		writeStatus(w, http.StatusBadRequest)
		return
	}
	if result.Recovered {
		log.Debug().Msg("Webhook payload recovered from an unlabelled part")
		metrics.WebhookPayloadRecovered.Inc()
	}

	webhook, err := models.ParsePlexWebhook(result.Payload)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid webhook payload")
		metrics.RecordWebhookRequest(resultBadRequest)
		writeStatus(w, http.StatusBadRequest)
		return
	}

	event := normalize.Normalize(webhook)
	metrics.RecordWebhookEvent(event.Type.String())
	log.Info().Str("event", logging.SanitizeValue(webhook.Event)).Msg("Received webhook event")

	// Delivery is not cancelled if Plex hangs up; it runs to its own timeouts.
	h.dispatch(context.WithoutCancel(r.Context()), webhook.Event, event, result.Image)

	metrics.RecordWebhookRequest(resultProcessed)
	writeStatus(w, http.StatusOK)
}

// authorized compares the trimmed request path with the webhook secret.
// The query string is not part of the comparison.
func (h *WebhookHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return true
	}
	path := strings.Trim(r.URL.Path, "/")
	return subtle.ConstantTimeCompare([]byte(path), []byte(h.secret)) == 1
}

func (h *WebhookHandler) dispatch(ctx context.Context, rawEvent string, event normalize.Event, attachment *extract.Image) {
	log := logging.Ctx(ctx)

	switch event.Type {
	case models.EventPlay:
		log.Info().Str("user", logging.SanitizeValue(event.Account)).
			Str("media", logging.SanitizeValue(event.Media)).
			Str("player", logging.SanitizeValue(event.Player)).
			Msg("Media play event")
		h.notify(ctx, PlayMessage(event), event, attachment)
	case models.EventStop:
		log.Info().Str("user", logging.SanitizeValue(event.Account)).
			Str("media", logging.SanitizeValue(event.Media)).
			Str("player", logging.SanitizeValue(event.Player)).
			Msg("Media stop event")
		h.notify(ctx, StopMessage(event), event, attachment)
	case models.EventPause, models.EventResume:
		log.Debug().Str("event", event.Type.String()).
			Str("user", logging.SanitizeValue(event.Account)).
			Str("media", logging.SanitizeValue(event.Media)).
			Str("player", logging.SanitizeValue(event.Player)).
			Msg("Media event, no notification")
	case models.EventUnknown:
		log.Warn().Str("event", logging.SanitizeValue(rawEvent)).Msg("Unhandled event type")
	}
}

func (h *WebhookHandler) notify(ctx context.Context, text string, event normalize.Event, attachment *extract.Image) {
	n := delivery.Notification{
		Text:  text,
		Image: h.images.Select(attachment, event.Thumb),
	}

	if _, err := h.notifier.Send(ctx, n); err != nil {
		var fatal *delivery.FatalConfigError
		if errors.As(err, &fatal) && h.fatal != nil {
			h.fatal.ReportFatal(err)
			return
		}
		logging.Ctx(ctx).Error().Err(err).Msg("Notification failed")
	}
}

// PlayMessage is the notification text for media.play.
func PlayMessage(e normalize.Event) string {
	return fmt.Sprintf("%s começou a tocar %s em %s", e.Account, e.Media, e.Player)
}

// StopMessage is the notification text for media.stop.
func StopMessage(e normalize.Event) string {
	return fmt.Sprintf("%s parou de tocar %s em %s", e.Account, e.Media, e.Player)
}
