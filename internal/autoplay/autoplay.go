// Package autoplay finds more tracks when the queue runs out.
package autoplay

import (
	"context"
	"log/slog"
	"time"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/urlfix"
)

// DefaultTimeout bounds a continuation request.
const DefaultTimeout = 8 * time.Second

// RadioAPI returns tracks that follow a seed track.
type RadioAPI interface {
	Radio(ctx context.Context, trackID string) ([]core.Track, error)
}

// Client asks the server for a continuation of the current track.
type Client struct {
	api     RadioAPI
	fix     *urlfix.Fixer
	timeout time.Duration
}

// New creates a client. A zero timeout uses DefaultTimeout.
func New(a RadioAPI, fix *urlfix.Fixer, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{api: a, fix: fix, timeout: timeout}
}

// Continue returns sanitized tracks to append after current, never
// including current itself. Any failure yields nil.
func (c *Client) Continue(ctx context.Context, current core.Track) []core.Track {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		tracks []core.Track
		err    error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("radio lookup panicked", "track", current.ID, "panic", r)
				done <- result{}
			}
		}()
		tracks, err := c.api.Radio(ctx, current.ID)
		done <- result{tracks, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		slog.Debug("radio lookup timed out", "track", current.ID)
		return nil
	}
	if res.err != nil {
		slog.Debug("radio lookup failed", "track", current.ID, "error", res.err)
		return nil
	}

	tracks := core.Without(res.tracks, current.ID)
	if len(tracks) == 0 {
		return nil
	}
	return c.fix.Tracks(tracks)
}
