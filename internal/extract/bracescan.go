// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package extract

import (
	"cmp"
	"slices"
)

const (
	// maxScanBytes is the largest part the brace scan accepts. Plex
	// payloads are a few kilobytes; bigger parts are skipped.
	maxScanBytes = 1 << 20

	// maxScanCandidates bounds how many balanced regions of one part are
	// decoded.
	maxScanCandidates = 32
)

type braceRegion struct {
	start, end int
}

// findJSONObject returns the balanced {...} region of data with the lowest
// start offset that decodes as a JSON object, or nil. Braces inside JSON
// strings (including escaped quotes) do not count towards the balance.
func findJSONObject(data []byte) []byte {
	if len(data) > maxScanBytes {
		return nil
	}

	regions := balancedRegions(data)
	slices.SortFunc(regions, func(a, b braceRegion) int {
		return cmp.Compare(a.start, b.start)
	})

	for i, r := range regions {
		if i == maxScanCandidates {
			break
		}
		if candidate := data[r.start : r.end+1]; isJSONObject(candidate) {
			return candidate
		}
	}
	return nil
}

// balancedRegions returns every balanced {...} region of data in one pass,
// in closing order. Strings are tracked only while a brace is open, so
// quotes in text between objects are ignored.
func balancedRegions(data []byte) []braceRegion {
	var (
		regions  []braceRegion
		open     []int
		inString bool
		escaped  bool
	)

	for i, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = len(open) > 0
		case '{':
			open = append(open, i)
		case '}':
			if n := len(open); n > 0 {
				regions = append(regions, braceRegion{start: open[n-1], end: i})
				open = open[:n-1]
			}
		}
	}
	return regions
}
