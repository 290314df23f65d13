package core

import "github.com/samber/lo"

// IndexOf returns the position of the first track with the given id, or -1.
func IndexOf(tracks []Track, id string) int {
	_, idx, ok := lo.FindIndexOf(tracks, func(t Track) bool { return t.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// Contains reports whether a track with the given id is present.
func Contains(tracks []Track, id string) bool {
	return lo.ContainsBy(tracks, func(t Track) bool { return t.ID == id })
}

// Without returns the tracks whose id differs from id.
func Without(tracks []Track, id string) []Track {
	return lo.Filter(tracks, func(t Track, _ int) bool { return t.ID != id })
}

// CloneTracks returns a copy of tracks that shares no backing array.
func CloneTracks(tracks []Track) []Track {
	if tracks == nil {
		return nil
	}
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return out
}

// Queue is a read-only view of the play queue.
type Queue struct {
	Tracks       []Track `json:"tracks"`
	CurrentIndex int     `json:"current_index"`
}

// Current returns the track at the current index, or nil if the index is unset.
func (q *Queue) Current() *Track {
	if q == nil || len(q.Tracks) == 0 || q.CurrentIndex < 0 || q.CurrentIndex >= len(q.Tracks) {
		return nil
	}
	return &q.Tracks[q.CurrentIndex]
}

// Upcoming returns tracks after the current position.
func (q *Queue) Upcoming() []Track {
	if q == nil || len(q.Tracks) == 0 || q.CurrentIndex < 0 || q.CurrentIndex >= len(q.Tracks)-1 {
		return nil
	}
	return q.Tracks[q.CurrentIndex+1:]
}

// Len returns the total number of tracks in the queue.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}
