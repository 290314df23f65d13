// Package urlfix rewrites media URLs recorded against a development host so
// they resolve against the configured API base.
package urlfix

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/tessro/mewzy/internal/core"
)

// Fixer rewrites stale-host and root-relative URLs.
type Fixer struct {
	base  string
	stale *regexp.Regexp
}

// New creates a Fixer for base. Hosts default to localhost and 127.0.0.1.
func New(base string, staleHosts ...string) *Fixer {
	if len(staleHosts) == 0 {
		staleHosts = []string{"localhost", "127.0.0.1"}
	}
	quoted := lo.Map(staleHosts, func(h string, _ int) string { return regexp.QuoteMeta(h) })
	pattern := `^(?:https?://)?(?:` + strings.Join(quoted, "|") + `)(?::\d+)?`
	return &Fixer{
		base:  strings.TrimRight(base, "/"),
		stale: regexp.MustCompile(pattern),
	}
}

// Base returns the base URL without a trailing slash.
func (f *Fixer) Base() string {
	return f.base
}

// URL sanitizes a single URL. Empty strings, protocol-relative URLs and
// external URLs are returned unchanged.
func (f *Fixer) URL(u string) string {
	if u == "" {
		return u
	}
	if loc := f.stale.FindStringIndex(u); loc != nil && hostEnds(u, loc[1]) {
		return f.base + u[loc[1]:]
	}
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return f.base + u
	}
	return u
}

// hostEnds reports whether the stale host match ends at a URL boundary, so
// "localhost.example.com" is not mistaken for "localhost".
func hostEnds(u string, end int) bool {
	if end == len(u) {
		return true
	}
	switch u[end] {
	case '/', '?', '#':
		return true
	}
	return false
}

// Track returns a copy of t with its cover and stream URLs sanitized.
func (f *Fixer) Track(t core.Track) core.Track {
	t.Cover = f.URL(t.Cover)
	t.StreamURL = f.URL(t.StreamURL)
	return t
}

// Tracks sanitizes every track in the list, returning a new slice.
func (f *Fixer) Tracks(tracks []core.Track) []core.Track {
	if tracks == nil {
		return nil
	}
	return lo.Map(tracks, func(t core.Track, _ int) core.Track { return f.Track(t) })
}
