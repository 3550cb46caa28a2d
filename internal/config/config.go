// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Image source names accepted by IMAGE_SOURCE.
const (
	ImageSourceAttachment = "attachment"
	ImageSourcePlex       = "plex"
	ImageSourceNone       = "none"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Categories:
//
//  1. Inbound: Server (listener, limits) and Webhook (path secret)
//  2. Outbound: Telegram (bot credentials, timeouts, rate limit)
//  3. Images: Image (source selection) and Plex (thumbnail fetch)
//  4. Observability: Logging and Metrics
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Webhook  WebhookConfig  `koanf:"webhook"`
	Telegram TelegramConfig `koanf:"telegram"`
	Image    ImageConfig    `koanf:"image"`
	Plex     PlexConfig     `koanf:"plex"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the inbound HTTP listener settings.
//
// Environment Variables:
//   - SERVER_HOST: bind address (default: 0.0.0.0)
//   - SERVER_PORT: bind port (default: 9000)
//   - READ_TIMEOUT / WRITE_TIMEOUT: http.Server timeouts (default: 30s)
//   - SHUTDOWN_TIMEOUT: graceful shutdown budget (default: 10s)
//   - MAX_BODY_BYTES: webhook body cap (default: 10 MiB)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: per-IP webhook limit (0 disables)
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"omitempty,ip|hostname_rfc1123"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" validate:"min=1024"`
	RateLimitReqs   int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// WebhookConfig holds the inbound webhook settings.
type WebhookConfig struct {
	// Secret, when non-empty, must equal the request path with surrounding
	// slashes removed. Requests with any other path get a 404.
	Secret string `koanf:"secret"`
}

// TelegramConfig holds the Bot API settings.
//
// Environment Variables:
//   - BOT_TOKEN: bot token from @BotFather (required)
//   - CHAT_ID: target chat (required)
//   - DRYRUN: log notifications instead of sending them
//   - TELEGRAM_API_URL: API base URL (default: https://api.telegram.org)
//   - TELEGRAM_TEXT_TIMEOUT / TELEGRAM_PHOTO_TIMEOUT: per-call timeouts
//   - TELEGRAM_RATE_LIMIT / TELEGRAM_RATE_BURST: outbound limiter (0 disables)
type TelegramConfig struct {
	BotToken     string        `koanf:"bot_token" validate:"required"`
	ChatID       string        `koanf:"chat_id" validate:"required"`
	DryRun       bool          `koanf:"dry_run"`
	APIURL       string        `koanf:"api_url" validate:"required,url"`
	TextTimeout  time.Duration `koanf:"text_timeout" validate:"gt=0"`
	PhotoTimeout time.Duration `koanf:"photo_timeout" validate:"gt=0"`
	RateLimit    float64       `koanf:"rate_limit" validate:"min=0"`
	RateBurst    int           `koanf:"rate_burst" validate:"min=0"`
}

// ImageConfig selects where notification images come from.
type ImageConfig struct {
	Source string `koanf:"source" validate:"oneof=attachment plex none"`
}

// PlexConfig holds the Plex Media Server settings used to fetch thumbnails
// when IMAGE_SOURCE=plex.
type PlexConfig struct {
	URL          string        `koanf:"url"`
	Token        string        `koanf:"token"`
	FetchTimeout time.Duration `koanf:"fetch_timeout" validate:"gt=0"`
	// CacheSize is the number of thumbnails kept in memory; 0 disables
	// the cache.
	CacheSize int           `koanf:"cache_size" validate:"min=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gt=0"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"required_if=Enabled true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"loglevel"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Summary returns a one-line description of the effective configuration
// with every credential masked, suitable for the startup log.
func (c *Config) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "listen=%s", c.Server.Addr())
	fmt.Fprintf(&b, " secret=%s", maskSecret(c.Webhook.Secret))
	fmt.Fprintf(&b, " bot_token=%s", maskSecret(c.Telegram.BotToken))
	fmt.Fprintf(&b, " chat_id=%s", c.Telegram.ChatID)
	fmt.Fprintf(&b, " dry_run=%t", c.Telegram.DryRun)
	fmt.Fprintf(&b, " api_url=%s", c.Telegram.APIURL)
	fmt.Fprintf(&b, " image_source=%s", c.Image.Source)
	if c.Image.Source == ImageSourcePlex {
		fmt.Fprintf(&b, " plex_url=%s plex_token=%s", c.Plex.URL, maskSecret(c.Plex.Token))
	}
	if c.Server.RateLimitReqs > 0 {
		fmt.Fprintf(&b, " rate_limit=%d/%s", c.Server.RateLimitReqs, c.Server.RateLimitWindow)
	}
	if c.Metrics.Enabled {
		fmt.Fprintf(&b, " metrics=%s", c.Metrics.Addr)
	}
	fmt.Fprintf(&b, " log_level=%s", c.Logging.Level)
	return b.String()
}

// maskSecret keeps the first four characters of long secrets. Short secrets
// are masked entirely and empty ones are reported as unset.
func maskSecret(s string) string {
	switch {
	case s == "":
		return "<unset>"
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****"
	}
}
