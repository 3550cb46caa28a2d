// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

/*
Package models defines the Plex webhook payload and the closed enumerations
derived from it.

Key Components:

  - PlexWebhook: decoded webhook payload (event, Account, Player, Metadata)
  - ParsePlexWebhook: presence checks and decoding of the JSON payload
  - PlaybackEvent: media.play / media.resume / media.pause / media.stop
  - MediaKind: episode / movie / track / other
  - FlexInt: integer field that also accepts numeric strings

Presence Rules:

The four top-level fields are required. A missing key, a JSON null, an empty
event string and an empty object all count as missing and yield
ErrMissingField. A value of the wrong JSON type yields ErrInvalidField.

Thread Safety:

All types are plain values with no shared state.
*/
package models
