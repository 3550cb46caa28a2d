// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/plex-telegram-notify/internal/config"
	"github.com/tomtom215/plex-telegram-notify/internal/images"
	"github.com/tomtom215/plex-telegram-notify/internal/logging"
	"github.com/tomtom215/plex-telegram-notify/internal/metrics"
)

// Telegram Bot API limits, in characters.
const (
	MaxMessageLength = 4096
	MaxCaptionLength = 1024
)

// Bot API method names.
const (
	methodSendMessage = "sendMessage"
	methodSendPhoto   = "sendPhoto"
)

// APIError is returned when the Bot API answers with a non-2xx status.
// RetryAfter is set from parameters.retry_after on 429 responses.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram %s: HTTP %d: %s", e.Method, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram %s: HTTP %d", e.Method, e.StatusCode)
}

// TransportError is returned when no HTTP response was received. The
// message has the bot token redacted.
type TransportError struct {
	Method  string
	Message string
	Timeout bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram %s: %s", e.Method, e.Message)
}

// TelegramSendMessageRequest represents the Telegram sendMessage API request.
type TelegramSendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// TelegramAPIResponse represents a Telegram API response.
type TelegramAPIResponse struct {
	OK          bool                `json:"ok"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Description string              `json:"description,omitempty"`
	Parameters  *TelegramParameters `json:"parameters,omitempty"`
}

// TelegramParameters contains additional response parameters.
type TelegramParameters struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// TelegramClient calls the Telegram Bot API. It is safe for concurrent use.
// Timeouts come from the caller's context.
type TelegramClient struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
	limiter *rate.Limiter
}

// NewTelegramClient creates a client for the configured bot and chat.
// A positive RateLimit enables an outbound limiter (messages per second).
func NewTelegramClient(cfg *config.TelegramConfig) *TelegramClient {
	c := &TelegramClient{
		client:  &http.Client{},
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		token:   cfg.BotToken,
		chatID:  cfg.ChatID,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// SendMessage sends a plain-text message. Text longer than the Bot API
// limit is truncated.
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(TelegramSendMessageRequest{
		ChatID: c.chatID,
		Text:   TruncateContent(text, MaxMessageLength),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.do(ctx, methodSendMessage, "application/json", payload)
}

// SendPhoto uploads a photo with a caption as multipart/form-data.
func (c *TelegramClient) SendPhoto(ctx context.Context, caption string, photo *images.Loaded) error {
	body, contentType, err := c.buildPhotoForm(caption, photo)
	if err != nil {
		return err
	}
	return c.do(ctx, methodSendPhoto, contentType, body)
}

func (c *TelegramClient) buildPhotoForm(caption string, photo *images.Loaded) ([]byte, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", c.chatID); err != nil {
		return nil, "", fmt.Errorf("write chat_id: %w", err)
	}
	if err := writer.WriteField("caption", TruncateContent(caption, MaxCaptionLength)); err != nil {
		return nil, "", fmt.Errorf("write caption: %w", err)
	}

	photoType := photo.ContentType
	if photoType == "" {
		photoType = "image/jpeg"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, photo.Filename))
	h.Set("Content-Type", photoType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create photo part: %w", err)
	}
	if _, err := part.Write(photo.Data); err != nil {
		return nil, "", fmt.Errorf("write photo: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}

// do performs a Bot API call and classifies the result.
func (c *TelegramClient) do(ctx context.Context, method, contentType string, payload []byte) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Method: method, Message: "rate limiter: " + err.Error(), Timeout: true}
		}
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Method: method, Message: logging.RedactSecret(err.Error(), c.token)}
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordTelegramRequest(method, 0, time.Since(start))
		return &TransportError{
			Method:  method,
			Message: logging.RedactSecret(err.Error(), c.token),
			Timeout: errors.Is(err, context.DeadlineExceeded) || isTimeout(err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordTelegramRequest(method, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil
	}

	apiErr := &APIError{Method: method, StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var apiResp TelegramAPIResponse
		if json.Unmarshal(body, &apiResp) == nil {
			apiErr.Description = apiResp.Description
			if apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
				apiErr.RetryAfter = time.Duration(apiResp.Parameters.RetryAfter) * time.Second
			}
		}
	}
	return apiErr
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

// TruncateContent shortens content to at most maxLen characters, ending
// with "..." when cut. It never splits a multi-byte character.
func TruncateContent(content string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(content) <= maxLen {
		return content
	}
	runes := []rune(content)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
