// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PlaybackEvent is the closed set of webhook events the relay understands.
type PlaybackEvent int

const (
	EventUnknown PlaybackEvent = iota
	EventPlay
	EventResume
	EventPause
	EventStop
)

// ParsePlaybackEvent maps a Plex event name to a PlaybackEvent. Names are
// matched exactly; anything else is EventUnknown.
func ParsePlaybackEvent(event string) PlaybackEvent {
	switch event {
	case "media.play":
		return EventPlay
	case "media.resume":
		return EventResume
	case "media.pause":
		return EventPause
	case "media.stop":
		return EventStop
	default:
		return EventUnknown
	}
}

func (e PlaybackEvent) String() string {
	switch e {
	case EventPlay:
		return "media.play"
	case EventResume:
		return "media.resume"
	case EventPause:
		return "media.pause"
	case EventStop:
		return "media.stop"
	default:
		return "unknown"
	}
}

// MediaKind is the closed set of media types with their own title format.
type MediaKind int

const (
	KindOther MediaKind = iota
	KindEpisode
	KindMovie
	KindTrack
)

// ParseMediaKind maps a Plex metadata type to a MediaKind.
func ParseMediaKind(mediaType string) MediaKind {
	switch mediaType {
	case "episode":
		return KindEpisode
	case "movie":
		return KindMovie
	case "track":
		return KindTrack
	default:
		return KindOther
	}
}

func (k MediaKind) String() string {
	switch k {
	case KindEpisode:
		return "episode"
	case KindMovie:
		return "movie"
	case KindTrack:
		return "track"
	default:
		return "other"
	}
}

// FlexInt is an integer that decodes from a JSON number or a numeric string.
// null and "" decode as zero. Fractional numbers are rejected.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid numeric string %s: %w", s, err)
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*f = 0
			return nil
		}
	}

	if n, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(n)
		return nil
	}

	// 3.0 and 1e1 are integral numbers in JSON terms.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return fmt.Errorf("invalid integer value %s", string(data))
	}
	*f = FlexInt(int(v))
	return nil
}

// Int returns the value as an int.
func (f FlexInt) Int() int {
	return int(f)
}
