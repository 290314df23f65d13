package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Track represents a playable audio track as served by the API.
// Tracks are values; the engine copies them and never mutates a queued track.
type Track struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	Cover     string   `json:"cover"`
	StreamURL string   `json:"stream_url"`
	Duration  Duration `json:"duration"`
}

// Duration is a track length as reported by the API. The wire form may be a
// number of seconds, a clock string ("3:45") or null; it is re-encoded in the
// same form it was decoded from.
type Duration struct {
	seconds float64
	text    string
	set     bool
}

// Seconds builds a numeric Duration.
func Seconds(s float64) Duration {
	return Duration{seconds: s, set: true}
}

// Clock builds a Duration from its display text, e.g. "3:45".
func Clock(text string) Duration {
	return Duration{text: text, set: text != ""}
}

// IsZero reports whether no duration is known.
func (d Duration) IsZero() bool {
	return !d.set
}

// Seconds returns the duration in seconds and whether it could be determined.
func (d Duration) Seconds() (float64, bool) {
	if !d.set {
		return 0, false
	}
	if d.text == "" {
		return d.seconds, true
	}
	return parseClock(d.text)
}

// String returns the display form.
func (d Duration) String() string {
	if d.text != "" {
		return d.text
	}
	if !d.set {
		return ""
	}
	return FormatClock(d.seconds)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	switch {
	case d.text != "":
		return json.Marshal(d.text)
	case d.set:
		return json.Marshal(d.seconds)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Duration{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Clock(strings.TrimSpace(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid duration %s: %w", string(data), err)
	}
	*d = Seconds(f)
	return nil
}

// parseClock parses "225", "3:45" or "1:02:03".
func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}

// FormatClock formats seconds as M:SS, or H:MM:SS past one hour.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
