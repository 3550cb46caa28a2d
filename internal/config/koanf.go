// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/plex-telegram-notify/config.yaml",
	"/etc/plex-telegram-notify/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultTelegramAPIURL is the public Bot API endpoint.
const DefaultTelegramAPIURL = "https://api.telegram.org"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            9000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    10 << 20, // Plex attaches a JPEG thumbnail, rarely above 1 MiB
			RateLimitReqs:   0,
			RateLimitWindow: time.Minute,
		},
		Webhook: WebhookConfig{
			Secret: "",
		},
		Telegram: TelegramConfig{
			DryRun:       false,
			APIURL:       DefaultTelegramAPIURL,
			TextTimeout:  10 * time.Second,
			PhotoTimeout: 5 * time.Second,
			RateLimit:    0, // unlimited
			RateBurst:    1,
		},
		Image: ImageConfig{
			Source: ImageSourceAttachment,
		},
		Plex: PlexConfig{
			FetchTimeout: 5 * time.Second,
			CacheSize:    64,
			CacheTTL:     10 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9091",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (configPath, or searched if empty)
//  3. Environment Variables: Override any setting
//
// An explicit configPath that does not exist is an error; a searched path
// that does not exist is skipped.
func LoadWithKoanf(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	} else {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// BOT_TOKEN -> telegram.bot_token, SERVER_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processBoolFields(k); err != nil {
		return nil, fmt.Errorf("failed to process boolean fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// boolConfigPaths are parsed leniently when they arrive as strings from the
// environment. Deployments set DRYRUN=True, DRYRUN=yes or DRYRUN=1; all
// mean true. Anything unrecognised is false rather than a startup error.
var boolConfigPaths = []string{
	"telegram.dry_run",
	"metrics.enabled",
	"logging.caller",
}

func processBoolFields(k *koanf.Koanf) error {
	for _, path := range boolConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		if err := k.Set(path, parseBool(strVal)); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"server_host":         "server.host",
	"server_port":         "server.port",
	"read_timeout":        "server.read_timeout",
	"write_timeout":       "server.write_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"max_body_bytes":      "server.max_body_bytes",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	// Webhook
	"webhook_secret": "webhook.secret",

	// Telegram
	"bot_token":              "telegram.bot_token",
	"chat_id":                "telegram.chat_id",
	"dryrun":                 "telegram.dry_run",
	"telegram_api_url":       "telegram.api_url",
	"telegram_text_timeout":  "telegram.text_timeout",
	"telegram_photo_timeout": "telegram.photo_timeout",
	"telegram_rate_limit":    "telegram.rate_limit",
	"telegram_rate_burst":    "telegram.rate_burst",

	// Images
	"image_source":       "image.source",
	"plex_url":           "plex.url",
	"plex_token":         "plex.token",
	"plex_fetch_timeout": "plex.fetch_timeout",
	"plex_cache_size":    "plex.cache_size",
	"plex_cache_ttl":     "plex.cache_ttl",

	// Observability
	"metrics_enabled": "metrics.enabled",
	"metrics_addr":    "metrics.addr",
	"log_level":       "logging.level",
	"log_format":      "logging.format",
	"log_caller":      "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - BOT_TOKEN -> telegram.bot_token
//   - DRYRUN -> telegram.dry_run
//   - SERVER_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// envNameForPath returns the environment variable controlling a koanf path,
// or the path itself when no variable maps to it.
func envNameForPath(path string) string {
	for envName, mapped := range envMappings {
		if mapped == path {
			return strings.ToUpper(envName)
		}
	}
	return path
}

// normalize applies the transformations that are not expressible as defaults.
func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Image.Source = strings.ToLower(strings.TrimSpace(c.Image.Source))
	c.Telegram.APIURL = strings.TrimRight(c.Telegram.APIURL, "/")
	c.Plex.URL = strings.TrimRight(c.Plex.URL, "/")
}
