// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/plex-telegram-notify/internal/config"
	"github.com/tomtom215/plex-telegram-notify/internal/images"
	"github.com/tomtom215/plex-telegram-notify/internal/logging"
	"github.com/tomtom215/plex-telegram-notify/internal/metrics"
)

// Sender is the subset of the Bot API the dispatcher uses.
type Sender interface {
	SendMessage(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, caption string, photo *images.Loaded) error
}

// Notification is one message to deliver. Image may be nil.
type Notification struct {
	Text  string
	Image *images.Image
}

// Outcome describes what happened to a notification.
type Outcome int

const (
	// OutcomeDropped means delivery failed transiently and was abandoned.
	OutcomeDropped Outcome = iota
	// OutcomeDryRun means the notification was only logged.
	OutcomeDryRun
	// OutcomeDelivered means the first choice (photo, or text when there
	// was no image) was accepted.
	OutcomeDelivered
	// OutcomeDeliveredFallback means the photo path failed and the text
	// message was accepted instead.
	OutcomeDeliveredFallback
	// OutcomeFatal means the Bot API rejected the configuration.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDryRun:
		return "dry_run"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDeliveredFallback:
		return "delivered_fallback"
	case OutcomeFatal:
		return "fatal"
	default:
		return "dropped"
	}
}

// FatalConfigError means the Bot API rejected the bot token or chat ID.
// Retrying cannot succeed; the process should stop.
type FatalConfigError struct {
	StatusCode  int
	Description string
}

func (e *FatalConfigError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram rejected the bot configuration (HTTP %d): %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram rejected the bot configuration (HTTP %d)", e.StatusCode)
}

// IsFatalStatus reports whether a Bot API status means the bot token or
// chat ID is wrong.
func IsFatalStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	default:
		return false
	}
}

// Dispatcher delivers notifications with the photo-then-text policy.
// It is safe for concurrent use.
type Dispatcher struct {
	sender       Sender
	dryRun       bool
	textTimeout  time.Duration
	photoTimeout time.Duration
}

// NewDispatcher creates a dispatcher using the Telegram settings.
func NewDispatcher(sender Sender, cfg *config.TelegramConfig) *Dispatcher {
	return &Dispatcher{
		sender:       sender,
		dryRun:       cfg.DryRun,
		textTimeout:  cfg.TextTimeout,
		photoTimeout: cfg.PhotoTimeout,
	}
}

// Send delivers a notification. The returned error is non-nil only for a
// *FatalConfigError; transient failures are logged and reported as
// OutcomeDropped.
func (d *Dispatcher) Send(ctx context.Context, n Notification) (Outcome, error) {
	outcome, err := d.send(ctx, n)
	metrics.RecordNotification(outcome.String())
	return outcome, err
}

func (d *Dispatcher) send(ctx context.Context, n Notification) (Outcome, error) {
	log := logging.Ctx(ctx)

	if d.dryRun {
		event := log.Info().Str("text", logging.SanitizeValue(n.Text)).Bool("has_image", n.Image != nil)
		if n.Image != nil {
			event = event.Str("image_origin", string(n.Image.Origin)).
				Str("image_ref", logging.SanitizeValue(n.Image.Ref)).
				Int("image_bytes", n.Image.Size).
				Str("image_type", n.Image.ContentType)
		}
		event.Msg("[DRY RUN] Would send Telegram notification")
		return OutcomeDryRun, nil
	}

	fallback := false
	if n.Image != nil {
		if d.sendPhoto(ctx, n) {
			return OutcomeDelivered, nil
		}
		fallback = true
	}

	textCtx, cancel := context.WithTimeout(ctx, d.textTimeout)
	defer cancel()

	err := d.sender.SendMessage(textCtx, n.Text)
	if err == nil {
		log.Info().Bool("fallback", fallback).Msg("Telegram notification sent")
		if fallback {
			return OutcomeDeliveredFallback, nil
		}
		return OutcomeDelivered, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && IsFatalStatus(apiErr.StatusCode) {
		log.Error().Int("status", apiErr.StatusCode).Str("description", apiErr.Description).
			Msg("FATAL: Telegram API configuration error, check BOT_TOKEN and CHAT_ID")
		return OutcomeFatal, &FatalConfigError{StatusCode: apiErr.StatusCode, Description: apiErr.Description}
	}

	warn := log.Warn().Err(err)
	if apiErr != nil && apiErr.RetryAfter > 0 {
		warn = warn.Dur("retry_after", apiErr.RetryAfter)
	}
	warn.Msg("Temporary error sending Telegram notification, dropping it")
	return OutcomeDropped, nil
}

// sendPhoto tries the photo path and reports whether it succeeded. Every
// failure is logged and leaves the caller to send text.
func (d *Dispatcher) sendPhoto(ctx context.Context, n Notification) bool {
	log := logging.Ctx(ctx)

	photo, err := n.Image.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Str("image_origin", string(n.Image.Origin)).
			Msg("Image unavailable, falling back to text-only")
		return false
	}

	photoCtx, cancel := context.WithTimeout(ctx, d.photoTimeout)
	defer cancel()

	if err := d.sender.SendPhoto(photoCtx, n.Text, photo); err != nil {
		log.Warn().Err(err).Int("image_bytes", len(photo.Data)).
			Msg("Failed to send image, falling back to text-only")
		return false
	}

	log.Info().Int("image_bytes", len(photo.Data)).Str("image_type", photo.ContentType).
		Msg("Telegram notification with image sent")
	return true
}
