// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

// Command plex-telegram-notify relays Plex Media Server webhooks to a
// Telegram chat.
//
// Plex posts a multipart body to the configured webhook URL on every
// playback event. media.play and media.stop become a Telegram message
// (with the poster when one is available); pause and resume are logged.
//
// # Usage
//
//	plex-telegram-notify [--config path] [--dry-run]
//	plex-telegram-notify check-config
//
// Minimal environment:
//
//	export BOT_TOKEN=123456789:AA...
//	export CHAT_ID=-1001234567890
//	export WEBHOOK_SECRET=some-long-random-string
//	./plex-telegram-notify
//
// In Plex, add the webhook http://host:9000/some-long-random-string.
//
// # Startup
//
//  1. Configuration: defaults, optional YAML file, environment (koanf v2).
//  2. Logging: zerolog, level and format from LOG_LEVEL and LOG_FORMAT.
//  3. Image source, Telegram client and dispatcher.
//  4. chi router and webhook server under the suture supervisor tree, plus
//     the /metrics listener when METRICS_ENABLED is set.
//
// # Exit codes
//
//	0  SIGINT or SIGTERM, graceful shutdown
//	1  invalid configuration, listen failure, or Telegram answered
//	   400/401/403/404 (wrong token or chat)
package main
