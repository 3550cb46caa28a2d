// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package normalize

import (
	"testing"

	"github.com/tomtom215/plex-telegram-notify/internal/models"
)

func strPtr(s string) *string { return &s }

func TestFormatMediaTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		meta models.PlexWebhookMetadata
		want string
	}{
		{
			name: "episode",
			meta: models.PlexWebhookMetadata{Type: "episode", GrandparentTitle: "Foo", ParentIndex: 1, Index: 3, Title: "Bar"},
			want: "Foo (S01E03) - Bar",
		},
		{
			name: "episode three digit index",
			meta: models.PlexWebhookMetadata{Type: "episode", GrandparentTitle: "Foo", ParentIndex: 12, Index: 105, Title: "Bar"},
			want: "Foo (S12E105) - Bar",
		},
		{
			name: "episode fallbacks",
			meta: models.PlexWebhookMetadata{Type: "episode"},
			want: "Unknown Series (S00E00) - Unknown Episode",
		},
		{
			name: "movie with year",
			meta: models.PlexWebhookMetadata{Type: "movie", Title: "Baz", Year: 2020},
			want: "Baz (2020)",
		},
		{
			name: "movie without year",
			meta: models.PlexWebhookMetadata{Type: "movie", Title: "Baz"},
			want: "Baz",
		},
		{
			name: "movie fallback",
			meta: models.PlexWebhookMetadata{Type: "movie", Year: 1999},
			want: "Unknown Movie (1999)",
		},
		{
			name: "track with album",
			meta: models.PlexWebhookMetadata{Type: "track", GrandparentTitle: "Art", Title: "Song", ParentTitle: "Alb"},
			want: "Art - Song (Album: Alb)",
		},
		{
			name: "track without album",
			meta: models.PlexWebhookMetadata{Type: "track", GrandparentTitle: "Art", Title: "Song"},
			want: "Art - Song",
		},
		{
			name: "track fallbacks",
			meta: models.PlexWebhookMetadata{Type: "track"},
			want: "Unknown Artist - Unknown Track",
		},
		{
			name: "other with title",
			meta: models.PlexWebhookMetadata{Type: "clip", Title: "Trailer"},
			want: "Trailer",
		},
		{
			name: "other fallback",
			meta: models.PlexWebhookMetadata{},
			want: "Unknown Media",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatMediaTitle(&tt.meta); got != tt.want {
				t.Errorf("FormatMediaTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccountTitle(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"alice":     "alice",
		"  bob  ":   "bob",
		"":          GuestAccount,
		"   \t\n  ": GuestAccount,
	}
	for input, want := range tests {
		if got := AccountTitle(&models.PlexWebhookAccount{Title: input}); got != want {
			t.Errorf("AccountTitle(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestPlayerTitle(t *testing.T) {
	t.Parallel()

	if got := PlayerTitle(&models.PlexWebhookPlayer{}); got != UnknownPlayer {
		t.Errorf("PlayerTitle(absent) = %q, want %q", got, UnknownPlayer)
	}
	if got := PlayerTitle(&models.PlexWebhookPlayer{Title: strPtr("")}); got != "" {
		t.Errorf("PlayerTitle(empty) = %q, want empty", got)
	}
	if got := PlayerTitle(&models.PlexWebhookPlayer{Title: strPtr("Roku")}); got != "Roku" {
		t.Errorf("PlayerTitle(Roku) = %q, want Roku", got)
	}
}

func TestSelectThumb(t *testing.T) {
	t.Parallel()

	full := models.PlexWebhookMetadata{Thumb: "/t", ParentThumb: "/p", GrandparentThumb: "/g"}

	tests := []struct {
		name string
		meta models.PlexWebhookMetadata
		want string
	}{
		{"episode prefers grandparent", withType(full, "episode"), "/g"},
		{"episode falls back to thumb", models.PlexWebhookMetadata{Type: "episode", Thumb: "/t"}, "/t"},
		{"movie uses thumb", withType(full, "movie"), "/t"},
		{"track prefers parent", withType(full, "track"), "/p"},
		{"track falls back to thumb", models.PlexWebhookMetadata{Type: "track", Thumb: "/t"}, "/t"},
		{"other uses thumb", withType(full, "clip"), "/t"},
		{"none", models.PlexWebhookMetadata{Type: "movie"}, ""},
	}

	for _, tt := range tests {
		if got := SelectThumb(&tt.meta); got != tt.want {
			t.Errorf("%s: SelectThumb() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func withType(m models.PlexWebhookMetadata, typ string) models.PlexWebhookMetadata {
	m.Type = typ
	return m
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	w := &models.PlexWebhook{
		Event:   "media.stop",
		Account: models.PlexWebhookAccount{Title: ""},
		Player:  models.PlexWebhookPlayer{Title: strPtr("Living Room")},
		Metadata: models.PlexWebhookMetadata{
			Type: "movie", Title: "Baz", Year: 2020, Thumb: "/library/metadata/9/thumb/1",
		},
	}

	got := Normalize(w)
	want := Event{
		Type:      models.EventStop,
		MediaKind: models.KindMovie,
		Account:   GuestAccount,
		Media:     "Baz (2020)",
		Player:    "Living Room",
		Thumb:     "/library/metadata/9/thumb/1",
	}
	if got != want {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}

	// Deterministic: same input, same output.
	if again := Normalize(w); again != got {
		t.Errorf("Normalize() not deterministic: %+v vs %+v", again, got)
	}
}
