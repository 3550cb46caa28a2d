// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/plex-telegram-notify/internal/logging"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator. Field names in errors are
// reported as koanf paths so they can be mapped back to environment variables.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		// Registration only fails for an empty tag or nil func.
		_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
			return logging.ValidLevel(fl.Field().String())
		})
	})
	return validate
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateFields(); err != nil {
		return err
	}

	if err := validateHTTPURL(c.Telegram.APIURL, "TELEGRAM_API_URL"); err != nil {
		return err
	}

	if err := c.validateImageSource(); err != nil {
		return err
	}

	return c.validateRateLimits()
}

// validateFields runs the struct-tag rules and reports the first failure
// by environment variable name.
func (c *Config) validateFields() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldErrorMessage(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

func fieldErrorMessage(fe validator.FieldError) string {
	// Namespace is "Config.telegram.bot_token"; drop the root type name.
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	name := envNameForPath(path)

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got: %v", name, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got: %v", name, fe.Value())
	case "min", "gt":
		return fmt.Sprintf("%s must be at least %s, got: %v", name, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got: %v", name, fe.Param(), fe.Value())
	case "loglevel":
		return fmt.Sprintf("%s must be one of trace, debug, info, warn, error, fatal, disabled; got: %v", name, fe.Value())
	default:
		return fmt.Sprintf("%s is invalid (%s), got: %v", name, fe.Tag(), fe.Value())
	}
}

// validateImageSource checks the settings the selected image source needs.
func (c *Config) validateImageSource() error {
	if c.Image.Source != ImageSourcePlex {
		return nil
	}
	if c.Plex.URL == "" {
		return fmt.Errorf("PLEX_URL is required when IMAGE_SOURCE=plex")
	}
	if err := validateHTTPURL(c.Plex.URL, "PLEX_URL"); err != nil {
		return fmt.Errorf("PLEX_URL is invalid: %w", err)
	}
	if c.Plex.Token == "" {
		return fmt.Errorf("PLEX_TOKEN is required when IMAGE_SOURCE=plex")
	}
	return nil
}

// validateRateLimits validates the inbound rate limiter window when enabled.
func (c *Config) validateRateLimits() error {
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when RATE_LIMIT_REQUESTS is set, got: %v", c.Server.RateLimitWindow)
	}
	return nil
}
