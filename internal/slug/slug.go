// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package slug derives the filesystem-safe base name shared by a note and
// its images.
package slug

import (
	"regexp"
	"strings"
	"time"
)

const (
	timestampPrefix = "clipboard-"
	timestampLayout = "20060102-150405"
)

// space covers Unicode whitespace, not just the ASCII set matched by \s.
const space = `\s\p{Z}\v\x{1c}-\x{1f}\x{85}`

var (
	disallowed  = regexp.MustCompile(`[^\p{L}\p{N}_` + space + `-]`)
	whitespace  = regexp.MustCompile(`[` + space + `]+`)
	underscores = regexp.MustCompile(`_+`)
)

// Slugify converts a title to a filesystem-safe slug.
//
//	"AI Meeting 2026-02-01" -> "ai_meeting_2026-02-01"
func Slugify(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Timestamp returns the fallback base name for a run started at now,
// formatted in local time.
func Timestamp(now time.Time) string {
	return timestampPrefix + now.Local().Format(timestampLayout)
}

// BaseName returns the slug of title, or the timestamp name when the title
// is empty or slugifies to nothing.
func BaseName(title string, now time.Time) string {
	if s := Slugify(title); s != "" {
		return s
	}
	return Timestamp(now)
}
