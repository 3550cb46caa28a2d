// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/plex-telegram-notify/internal/cache"
	"github.com/tomtom215/plex-telegram-notify/internal/config"
	"github.com/tomtom215/plex-telegram-notify/internal/extract"
	"github.com/tomtom215/plex-telegram-notify/internal/logging"
	"github.com/tomtom215/plex-telegram-notify/internal/metrics"
)

// maxThumbnailBytes caps a fetched thumbnail. Telegram rejects photos above 10 MB.
const maxThumbnailBytes = 10 << 20

const breakerName = "plex-thumbnails"

// StatusError is returned when Plex answers with a non-200 status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("plex returned HTTP %d", e.StatusCode)
}

// PlexSource fetches the selected thumbnail from the Plex server.
// Fetches go through a circuit breaker so an unreachable server costs one
// timeout per breaker window instead of one per webhook. Successful
// fetches are kept in an LRU cache keyed by thumbnail path, so the stop
// notification reuses the poster fetched for play.
type PlexSource struct {
	baseURL string
	token   string
	timeout time.Duration
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[*Loaded]
	cache   *cache.LRU[Loaded] // nil when PLEX_CACHE_SIZE=0
}

// NewPlexSource creates a thumbnail source for the given Plex server.
// Circuit breaker configuration:
// - Opens after 5 consecutive failures
// - 30 second timeout before attempting recovery
// - 1 probe request in half-open state
func NewPlexSource(cfg *config.PlexConfig) *PlexSource {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[*Loaded](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= 5
			if shouldTrip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// A 4xx means Plex is up; only transport errors and 5xx count.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *StatusError
			return errors.As(err, &statusErr) && statusErr.StatusCode < 500
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	var thumbs *cache.LRU[Loaded]
	if cfg.CacheSize > 0 {
		thumbs = cache.NewLRU[Loaded](cfg.CacheSize, cfg.CacheTTL)
	}

	return &PlexSource{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		timeout: cfg.FetchTimeout,
		client:  &http.Client{},
		cb:      cb,
		cache:   thumbs,
	}
}

// Select implements Source. The inline attachment is ignored.
func (p *PlexSource) Select(_ *extract.Image, thumb string) *Image {
	if thumb == "" {
		return nil
	}
	return &Image{
		Origin: OriginPlex,
		Ref:    thumb,
		load: func(ctx context.Context) (*Loaded, error) {
			return p.Fetch(ctx, thumb)
		},
	}
}

// Name implements Source.
func (p *PlexSource) Name() string { return config.ImageSourcePlex }

// Fetch returns a thumbnail from the cache or downloads it through the
// circuit breaker. The returned value is the caller's own copy.
func (p *PlexSource) Fetch(ctx context.Context, thumb string) (*Loaded, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(thumb); ok {
			metrics.RecordThumbnailFetch("cached", 0)
			return &cached, nil
		}
	}

	start := time.Now()
	loaded, err := p.cb.Execute(func() (*Loaded, error) {
		return p.fetch(ctx, thumb)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			metrics.RecordThumbnailFetch("rejected", 0)
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
			metrics.RecordThumbnailFetch("error", time.Since(start))
		}
		return nil, fmt.Errorf("fetch thumbnail %s: %w", logging.SanitizeValue(thumb), err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.RecordThumbnailFetch("success", time.Since(start))
	if p.cache != nil {
		p.cache.Add(thumb, *loaded)
	}
	return loaded, nil
}

func (p *PlexSource) fetch(ctx context.Context, thumb string) (*Loaded, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if !strings.HasPrefix(thumb, "/") {
		thumb = "/" + thumb
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+thumb, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", p.token)
	req.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		// The URL carries no token, the header does; the error is safe to log.
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnailBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxThumbnailBytes {
		return nil, fmt.Errorf("thumbnail exceeds %d bytes", maxThumbnailBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("unexpected content type %q", contentType)
	}

	return &Loaded{Data: data, ContentType: contentType}, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
