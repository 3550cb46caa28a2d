// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package logging

import (
	"fmt"
	"strings"
)

// SanitizeValue removes control characters from user-provided strings to
// prevent log injection. Newlines, carriage returns and other C0 controls are
// replaced with their \xNN escape.
func SanitizeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			b.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeToken masks a credential, keeping only the first four characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****"
}

// RedactSecret replaces every occurrence of secret in s with its masked form.
// Used for transport errors, which embed the request URL (and with it the
// bot token) in their message.
func RedactSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, SanitizeToken(secret))
}
