// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(testConfig(), &recordingNotifier{}, nil)

	for _, path := range []string{"/health", "/health/"} {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("GET %s Content-Type = %q", path, ct)
		}

		var body HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode health body: %v", err)
		}
		if body.Status != "healthy" || body.Service != "plex-telegram-notify" {
			t.Errorf("GET %s body = %+v", path, body)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("GET %s missing X-Request-ID", path)
		}
	}
}

func TestOtherGETsAreNotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(testConfig(), &recordingNotifier{}, nil)

	for _, path := range []string{"/", "/metrics", "/healthz", "/health/extra", "/s3cret"} {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestWebhookRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.RateLimitReqs = 2
	cfg.Server.RateLimitWindow = time.Minute
	notifier := &recordingNotifier{}
	srv := newTestServer(cfg, notifier, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(srv, webhookRequest(t, "/", moviePayload, false)).Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}
	if notifier.count() != 2 {
		t.Errorf("notifications = %d, want 2", notifier.count())
	}

	// Health checks are not limited.
	if rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil)); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestWebhookRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	mw := WebhookRateLimit(0, time.Minute)
	called := 0
	h := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called++ }))
	for i := 0; i < 5; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}
	if called != 5 {
		t.Errorf("handler calls = %d, want 5", called)
	}
}
