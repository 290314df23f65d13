package api

import (
	"context"
	"net/url"

	"github.com/tessro/mewzy/internal/core"
)

// ProgressUpdate is the body of a listening progress push.
type ProgressUpdate struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Artist    string        `json:"artist"`
	Cover     string        `json:"cover"`
	Duration  core.Duration `json:"duration"`
	Timestamp float64       `json:"timestamp"`
}

// NewProgressUpdate builds an update for track at offset seconds.
func NewProgressUpdate(t core.Track, offset float64) ProgressUpdate {
	return ProgressUpdate{
		ID:        t.ID,
		Title:     t.Title,
		Artist:    t.Artist,
		Cover:     t.Cover,
		Duration:  t.Duration,
		Timestamp: offset,
	}
}

// HistoryItem is an entry of the server-side listening history.
type HistoryItem struct {
	core.Track
	ResumeTime float64 `json:"resume_time"`
	PlayedAt   string  `json:"played_at,omitempty"`
}

// Lyrics is the raw lyrics document for a track.
type Lyrics struct {
	Type   string `json:"type"`
	Lyrics string `json:"lyrics"`
}

type resumeResponse struct {
	Timestamp float64 `json:"timestamp"`
}

func trackPath(prefix, id string) string {
	return prefix + url.PathEscape(id)
}

// ResumePosition returns the saved listening offset for a track in seconds.
func (c *Client) ResumePosition(ctx context.Context, trackID string) (float64, error) {
	var resp resumeResponse
	if err := c.Get(ctx, trackPath("/api/history/", trackID), true, &resp); err != nil {
		return 0, err
	}
	return resp.Timestamp, nil
}

// UpdateProgress records the listening offset for a track.
func (c *Client) UpdateProgress(ctx context.Context, update ProgressUpdate) error {
	return c.Post(ctx, "/api/history/update", true, update, nil)
}

// History returns the server-side recent history, newest first.
func (c *Client) History(ctx context.Context) ([]HistoryItem, error) {
	var items []HistoryItem
	if err := c.Get(ctx, "/api/history", true, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteHistory removes a track from the server-side history.
func (c *Client) DeleteHistory(ctx context.Context, trackID string) error {
	return c.Delete(ctx, trackPath("/api/history/", trackID), true)
}

// Radio returns tracks that continue listening after trackID. Guests may call
// it; a token is sent when present.
func (c *Client) Radio(ctx context.Context, trackID string) ([]core.Track, error) {
	var tracks []core.Track
	if err := c.Get(ctx, trackPath("/api/radio/", trackID), false, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Lyrics fetches the lyrics document for a track.
func (c *Client) Lyrics(ctx context.Context, trackID string) (*Lyrics, error) {
	var l Lyrics
	if err := c.Get(ctx, trackPath("/api/lyrics/", trackID), false, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Feed returns the public front-page track list.
func (c *Client) Feed(ctx context.Context) ([]core.Track, error) {
	var tracks []core.Track
	if err := c.Get(ctx, "/api/feed", false, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Likes returns the user's liked songs.
func (c *Client) Likes(ctx context.Context) ([]core.Track, error) {
	var tracks []core.Track
	if err := c.Get(ctx, "/api/likes", true, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// StreamURL returns the canonical stream location for a track id.
func (c *Client) StreamURL(trackID string) string {
	return c.baseURL + trackPath("/api/stream/", trackID)
}
