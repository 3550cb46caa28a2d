// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

/*
Package config provides configuration loading and validation for the relay.

Configuration is layered with Koanf v2:

 1. Defaults: built-in values from defaultConfig()
 2. Config file: optional YAML file (CONFIG_PATH, ./config.yaml, /etc/plex-telegram-notify/config.yaml)
 3. Environment variables: highest priority, mapped explicitly by envTransformFunc

The environment variable names match the ones the relay has always used
(BOT_TOKEN, CHAT_ID, WEBHOOK_SECRET, DRYRUN, SERVER_HOST, SERVER_PORT,
LOG_LEVEL) so existing deployments keep working.

Validation uses go-playground/validator struct tags for per-field rules and
hand-written checks for cross-field rules. Validation errors name the
environment variable that controls the offending field:

	cfg, err := config.LoadWithKoanf("")
	if err != nil {
	    // "configuration validation failed: BOT_TOKEN is required"
	}

Thread Safety:

Config is immutable after loading and safe for concurrent read access.
*/
package config
