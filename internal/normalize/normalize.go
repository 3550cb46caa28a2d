// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

// Package normalize turns a decoded Plex webhook into display strings.
// All functions are pure.
package normalize

import (
	"fmt"
	"strings"

	"github.com/tomtom215/plex-telegram-notify/internal/models"
)

// Display fallbacks for fields Plex leaves out.
const (
	GuestAccount   = "Um usuário visitante"
	UnknownPlayer  = "Unknown Player"
	UnknownSeries  = "Unknown Series"
	UnknownEpisode = "Unknown Episode"
	UnknownMovie   = "Unknown Movie"
	UnknownArtist  = "Unknown Artist"
	UnknownTrack   = "Unknown Track"
	UnknownMedia   = "Unknown Media"
)

// Event is the display form of a playback webhook.
type Event struct {
	Type      models.PlaybackEvent
	MediaKind models.MediaKind
	Account   string
	Media     string
	Player    string
	// Thumb is the Plex path of the preferred thumbnail, or "".
	Thumb string
}

// Normalize derives the display strings for a webhook.
func Normalize(w *models.PlexWebhook) Event {
	return Event{
		Type:      w.PlaybackEvent(),
		MediaKind: w.Metadata.Kind(),
		Account:   AccountTitle(&w.Account),
		Media:     FormatMediaTitle(&w.Metadata),
		Player:    PlayerTitle(&w.Player),
		Thumb:     SelectThumb(&w.Metadata),
	}
}

// AccountTitle returns the trimmed account name, or GuestAccount when Plex
// sends no usable name (guest and managed users).
func AccountTitle(a *models.PlexWebhookAccount) string {
	if title := strings.TrimSpace(a.Title); title != "" {
		return title
	}
	return GuestAccount
}

// PlayerTitle returns the player name. Only an absent title falls back;
// an empty one is kept as sent.
func PlayerTitle(p *models.PlexWebhookPlayer) string {
	if p.Title == nil {
		return UnknownPlayer
	}
	return *p.Title
}

// FormatMediaTitle renders the media title for the metadata kind:
//
//	episode: "Show (S01E03) - Episode"
//	movie:   "Movie (2020)" or "Movie"
//	track:   "Artist - Track (Album: Album)" or "Artist - Track"
//	other:   "Title"
func FormatMediaTitle(m *models.PlexWebhookMetadata) string {
	switch m.Kind() {
	case models.KindEpisode:
		return fmt.Sprintf("%s (S%02dE%02d) - %s",
			orDefault(m.GrandparentTitle, UnknownSeries),
			m.ParentIndex.Int(),
			m.Index.Int(),
			orDefault(m.Title, UnknownEpisode))

	case models.KindMovie:
		title := orDefault(m.Title, UnknownMovie)
		if m.Year != 0 {
			return fmt.Sprintf("%s (%d)", title, m.Year.Int())
		}
		return title

	case models.KindTrack:
		artist := orDefault(m.GrandparentTitle, UnknownArtist)
		track := orDefault(m.Title, UnknownTrack)
		if m.ParentTitle != "" {
			return fmt.Sprintf("%s - %s (Album: %s)", artist, track, m.ParentTitle)
		}
		return fmt.Sprintf("%s - %s", artist, track)

	case models.KindOther:
		return orDefault(m.Title, UnknownMedia)
	}
	return orDefault(m.Title, UnknownMedia)
}

// SelectThumb returns the most representative thumbnail path: the show
// poster for episodes, the album cover for tracks, the item thumb otherwise.
func SelectThumb(m *models.PlexWebhookMetadata) string {
	switch m.Kind() {
	case models.KindEpisode:
		return firstNonEmpty(m.GrandparentThumb, m.Thumb)
	case models.KindTrack:
		return firstNonEmpty(m.ParentThumb, m.Thumb)
	case models.KindMovie, models.KindOther:
		return m.Thumb
	}
	return m.Thumb
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
