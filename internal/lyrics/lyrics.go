// Package lyrics parses timed (LRC) and plain lyrics and tracks the active
// line during playback.
package lyrics

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tessro/mewzy/internal/api"
)

// Unavailable is the single line shown when a track has no lyrics.
const Unavailable = "Lyrics not available."

var (
	lrcLine   = regexp.MustCompile(`^\[(\d{1,2}):(\d{1,2})[.:](\d{1,3})\](.*)`)
	lrcMarker = regexp.MustCompile(`(?m)^\[\d{2}`)
)

// Line is one lyric line. Time is the start in seconds; it is zero for
// plain lyrics.
type Line struct {
	Time float64
	Text string
}

// Lyrics is a parsed lyrics document.
type Lyrics struct {
	Lines  []Line
	Synced bool
}

// Fetcher loads raw lyrics documents.
type Fetcher interface {
	Lyrics(ctx context.Context, trackID string) (*api.Lyrics, error)
}

// Parse reads LRC timed lines. Lines without a timestamp are skipped.
func Parse(doc string) []Line {
	var lines []Line
	for _, raw := range strings.Split(doc, "\n") {
		m := lrcLine.FindStringSubmatch(strings.TrimRight(raw, "\r"))
		if m == nil {
			continue
		}
		mins, _ := strconv.Atoi(m[1])
		secs, _ := strconv.Atoi(m[2])
		frac, _ := strconv.Atoi(m[3])
		ms := frac * 10
		if len(m[3]) == 3 {
			ms = frac
		}
		lines = append(lines, Line{
			Time: float64(mins*60+secs) + float64(ms)/1000,
			Text: strings.TrimSpace(m[4]),
		})
	}
	return lines
}

// Plain splits doc into its non-blank lines.
func Plain(doc string) []Line {
	var lines []Line
	for _, raw := range strings.Split(doc, "\n") {
		text := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, Line{Text: text})
	}
	return lines
}

// FromDocument interprets a raw document, preferring timed lines when the
// document looks like LRC.
func FromDocument(doc *api.Lyrics) Lyrics {
	if doc == nil || doc.Lyrics == "" {
		return unavailable()
	}
	if doc.Type == "synced" || lrcMarker.MatchString(doc.Lyrics) {
		if lines := Parse(doc.Lyrics); len(lines) > 0 {
			return Lyrics{Lines: lines, Synced: true}
		}
	}
	if lines := Plain(doc.Lyrics); len(lines) > 0 {
		return Lyrics{Lines: lines}
	}
	return unavailable()
}

// Load fetches and parses the lyrics for a track. Failures yield the
// unavailable placeholder.
func Load(ctx context.Context, f Fetcher, trackID string) Lyrics {
	doc, err := f.Lyrics(ctx, trackID)
	if err != nil {
		slog.Debug("lyrics fetch failed", "track", trackID, "error", err)
		return unavailable()
	}
	return FromDocument(doc)
}

func unavailable() Lyrics {
	return Lyrics{Lines: []Line{{Text: Unavailable}}}
}

// ActiveIndex returns the line to highlight at position t. Timed lyrics
// pick the last line that has started; plain lyrics advance in proportion
// to duration, staying on the first line while the length is unknown.
func (l Lyrics) ActiveIndex(t, duration float64) int {
	if len(l.Lines) == 0 {
		return 0
	}
	if l.Synced {
		for i := len(l.Lines) - 1; i >= 0; i-- {
			if t >= l.Lines[i].Time {
				return i
			}
		}
		return 0
	}
	if duration <= 0 {
		return 0
	}
	i := int(math.Floor(t / duration * float64(len(l.Lines))))
	return min(max(i, 0), len(l.Lines)-1)
}
