// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

// Package images decides which image accompanies a notification and loads
// it on demand.
//
// Three sources are available, selected by IMAGE_SOURCE:
//
//   - attachment: the image Plex attached to the webhook body
//   - plex: the thumbnail fetched from the Plex server by path
//   - none: text-only notifications
//
// Images are loaded lazily so a dry run never touches the network.
package images

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/tomtom215/plex-telegram-notify/internal/config"
	"github.com/tomtom215/plex-telegram-notify/internal/extract"
)

// ErrEmptyImage is returned when an image loads with no bytes.
var ErrEmptyImage = errors.New("image is empty")

// Origin identifies where an image comes from.
type Origin string

const (
	OriginAttachment Origin = "attachment"
	OriginPlex       Origin = "plex"
)

// Source selects the image for a notification.
type Source interface {
	// Select returns the image for a webhook, or nil when there is none.
	// attachment is the inline image part (may be nil) and thumb the
	// preferred Plex thumbnail path (may be empty).
	Select(attachment *extract.Image, thumb string) *Image
	// Name returns the source name used in logs.
	Name() string
}

// Loaded is an image ready to upload.
type Loaded struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Image is a notification image that has not necessarily been loaded yet.
type Image struct {
	Origin Origin
	// Ref is the Plex thumbnail path for OriginPlex and the part filename
	// for OriginAttachment.
	Ref string
	// Size is the byte size when known before loading, otherwise 0.
	Size int
	// ContentType is the MIME type when known before loading.
	ContentType string

	load func(ctx context.Context) (*Loaded, error)
}

// Load returns the image bytes, fetching them if needed.
func (i *Image) Load(ctx context.Context) (*Loaded, error) {
	loaded, err := i.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(loaded.Data) == 0 {
		return nil, ErrEmptyImage
	}
	if loaded.Filename == "" {
		loaded.Filename = "thumb" + extensionFor(loaded.ContentType)
	}
	return loaded, nil
}

// NewInlineImage wraps bytes already in memory.
func NewInlineImage(data []byte, contentType, filename string) *Image {
	return &Image{
		Origin:      OriginAttachment,
		Ref:         filename,
		Size:        len(data),
		ContentType: contentType,
		load: func(context.Context) (*Loaded, error) {
			return &Loaded{Data: data, ContentType: contentType, Filename: filename}, nil
		},
	}
}

// NewSource returns the source named by cfg.Image.Source.
func NewSource(cfg *config.Config) (Source, error) {
	switch cfg.Image.Source {
	case config.ImageSourceAttachment:
		return AttachmentSource{}, nil
	case config.ImageSourcePlex:
		return NewPlexSource(&cfg.Plex), nil
	case config.ImageSourceNone:
		return NoneSource{}, nil
	default:
		return nil, fmt.Errorf("unknown image source %q", cfg.Image.Source)
	}
}

// AttachmentSource uses the image attached to the webhook body.
type AttachmentSource struct{}

// Select implements Source.
func (AttachmentSource) Select(attachment *extract.Image, _ string) *Image {
	if attachment == nil || len(attachment.Data) == 0 {
		return nil
	}
	return NewInlineImage(attachment.Data, attachment.ContentType, attachment.Filename)
}

// Name implements Source.
func (AttachmentSource) Name() string { return config.ImageSourceAttachment }

// NoneSource never attaches an image.
type NoneSource struct{}

// Select implements Source.
func (NoneSource) Select(*extract.Image, string) *Image { return nil }

// Name implements Source.
func (NoneSource) Name() string { return config.ImageSourceNone }

// extensionFor maps an image MIME type to a file extension for the upload
// filename. Unknown types get ".jpg", which is what Plex produces.
func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch strings.ToLower(mediaType) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
