// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package models

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Payload errors. Both map to HTTP 400.
var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field")
)

// requiredFields are the top-level keys every playback webhook carries.
var requiredFields = []string{"event", "Account", "Player", "Metadata"}

// PlexWebhook represents a Plex webhook HTTP POST payload
// Documentation: https://support.plex.tv/articles/115002267687-webhooks/
type PlexWebhook struct {
	Event    string              `json:"event"`    // Webhook event type (e.g., "media.play", "media.stop")
	User     bool                `json:"user"`     // True if user-initiated action
	Owner    bool                `json:"owner"`    // True if server owner triggered event
	Account  PlexWebhookAccount  `json:"Account"`  // User account information
	Server   PlexWebhookServer   `json:"Server"`   // Plex server information
	Player   PlexWebhookPlayer   `json:"Player"`   // Client/device information
	Metadata PlexWebhookMetadata `json:"Metadata"` // Content metadata
}

// PlexWebhookAccount represents the user account in webhook payload
type PlexWebhookAccount struct {
	ID    FlexInt `json:"id"`    // Plex account ID
	Thumb string  `json:"thumb"` // Profile picture URL
	Title string  `json:"title"` // Username/display name
}

// PlexWebhookServer represents the Plex server in webhook payload
type PlexWebhookServer struct {
	Title string `json:"title"`
	UUID  string `json:"uuid"`
}

// PlexWebhookPlayer represents the client/device in webhook payload.
// Title is a pointer because an absent title and an empty one are reported
// differently.
type PlexWebhookPlayer struct {
	Local         bool    `json:"local"`
	PublicAddress string  `json:"publicAddress"`
	Title         *string `json:"title"`
	UUID          string  `json:"uuid"`
}

// PlexWebhookMetadata represents content metadata in webhook payload
type PlexWebhookMetadata struct {
	LibrarySectionType  string  `json:"librarySectionType"`  // "movie", "show", "artist"
	LibrarySectionTitle string  `json:"librarySectionTitle"` // Library name
	RatingKey           string  `json:"ratingKey"`           // Content unique identifier
	Key                 string  `json:"key"`                 // Metadata API path
	GUID                string  `json:"guid"`                // External GUID (imdb://, tvdb://)
	Type                string  `json:"type"`                // Content type: "movie", "episode", "track"
	Title               string  `json:"title"`               // Content title
	GrandparentTitle    string  `json:"grandparentTitle"`    // Show/Artist title
	ParentTitle         string  `json:"parentTitle"`         // Season/Album title
	Index               FlexInt `json:"index"`               // Episode/track number
	ParentIndex         FlexInt `json:"parentIndex"`         // Season/disc number
	Year                FlexInt `json:"year"`                // Release year
	Thumb               string  `json:"thumb"`               // Thumbnail path
	ParentThumb         string  `json:"parentThumb"`         // Season/Album thumbnail
	GrandparentThumb    string  `json:"grandparentThumb"`    // Show/Artist thumbnail
	Art                 string  `json:"art"`                 // Background art path
}

// Kind returns the closed media kind for the metadata type.
func (m *PlexWebhookMetadata) Kind() MediaKind {
	return ParseMediaKind(m.Type)
}

// PlaybackEvent returns the closed playback event for the webhook.
func (w *PlexWebhook) PlaybackEvent() PlaybackEvent {
	return ParsePlaybackEvent(w.Event)
}

// ParsePlexWebhook decodes a webhook JSON payload after checking that the
// required top-level fields are present. The returned error wraps
// ErrMissingField or ErrInvalidField.
func ParsePlexWebhook(data []byte) (*PlexWebhook, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %v", ErrInvalidField, err)
	}

	for _, field := range requiredFields {
		if err := checkPresent(field, raw[field]); err != nil {
			return nil, err
		}
	}

	var webhook PlexWebhook
	if err := json.Unmarshal(data, &webhook); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	return &webhook, nil
}

// checkPresent reports whether a required value is present and non-empty.
// event must be a non-empty string; the others must be non-empty objects.
func checkPresent(field string, value json.RawMessage) error {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	if field == "event" {
		var event string
		if err := json.Unmarshal(trimmed, &event); err != nil {
			return fmt.Errorf("%w: %s must be a string", ErrInvalidField, field)
		}
		if event == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field)
		}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("%w: %s must be an object", ErrInvalidField, field)
	}
	if len(obj) == 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return nil
}
