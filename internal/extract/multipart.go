// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

// Package extract pulls the JSON payload and the optional thumbnail out of a
// Plex multipart/form-data webhook body.
//
// Plex posts two form fields: "payload" (JSON, usually without a
// Content-Type header) and, for some events, "thumb" (a JPEG). Parts are read
// at the byte level so image bytes are returned exactly as received.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// Extraction errors. All of them mean the request is malformed (HTTP 400).
var (
	ErrInvalidContentType = errors.New("content type is not multipart")
	ErrMalformed          = errors.New("malformed multipart body")
	ErrMissingPayload     = errors.New("no JSON payload in multipart body")
)

// defaultPartType is the RFC 7578 default for form parts without a
// Content-Type header.
const defaultPartType = "text/plain"

// Image is an inline image part.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Result holds what was extracted from a webhook body.
type Result struct {
	// Payload is the raw JSON object, ready to decode.
	Payload []byte
	// Image is the first image/* part, or nil.
	Image *Image
	// Recovered is true when the payload was found by scanning part bodies
	// instead of through a labelled JSON part.
	Recovered bool
}

// Extract parses a multipart body and returns its JSON payload and first
// image part.
func Extract(contentType string, body []byte) (*Result, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "multipart/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentType, contentType)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("%w: missing boundary", ErrMalformed)
	}

	result := &Result{}
	var candidates [][]byte

	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		// NextRawPart keeps Content-Transfer-Encoding untouched so image
		// bytes are never re-decoded.
		part, err := reader.NextRawPart()
		if err == io.EOF { //nolint:errorlint // only the bare EOF marks the closing boundary
			break
		}
		if err != nil {
			if result.Payload != nil {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			if result.Payload != nil {
				break
			}
			return nil, fmt.Errorf("%w: reading part %q: %v", ErrMalformed, part.FormName(), err)
		}

		rawType := part.Header.Get("Content-Type")
		mediaType := partMediaType(rawType)

		switch {
		case strings.HasPrefix(mediaType, "image/"):
			if result.Image == nil {
				result.Image = &Image{
					Data:        data,
					ContentType: strings.TrimSpace(rawType),
					Filename:    part.FileName(),
				}
			}
		case result.Payload == nil && (mediaType == "application/json" || mediaType == defaultPartType) && isJSONObject(data):
			result.Payload = bytes.TrimSpace(data)
		default:
			candidates = append(candidates, data)
		}
	}

	if result.Payload == nil {
		for _, data := range candidates {
			if obj := findJSONObject(data); obj != nil {
				result.Payload = obj
				result.Recovered = true
				break
			}
		}
	}

	if result.Payload == nil {
		return nil, ErrMissingPayload
	}
	return result, nil
}

// partMediaType returns the lower-cased media type of a part, defaulting to
// text/plain when the header is absent.
func partMediaType(header string) string {
	if strings.TrimSpace(header) == "" {
		return defaultPartType
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		mediaType, _, _ = strings.Cut(header, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// isJSONObject reports whether data is valid UTF-8 that decodes as a JSON object.
func isJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !utf8.Valid(trimmed) {
		return false
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal(trimmed, &obj) == nil
}
