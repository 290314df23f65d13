// Package session owns the single audio output of the process.
package session

import "context"

// EventKind identifies a media event.
type EventKind int

const (
	EventTimeUpdate EventKind = iota
	EventLoadedMetadata
	EventWaiting
	EventPlaying
	EventPause
	EventEnded
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventTimeUpdate:
		return "timeupdate"
	case EventLoadedMetadata:
		return "loadedmetadata"
	case EventWaiting:
		return "waiting"
	case EventPlaying:
		return "playing"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is emitted by a Handle.
type Event struct {
	Kind EventKind
	Err  error
}

// Handle is an audio output device playing one source at a time.
// Implementations must be safe for concurrent use.
type Handle interface {
	// Load replaces the current source and blocks until its metadata is
	// available or ctx is done. The new source starts paused at 0.
	Load(ctx context.Context, url string) error
	Play() error
	Pause()
	Seek(seconds float64) error
	Position() float64
	// Duration returns the source length in seconds, or 0 when unknown.
	Duration() float64
	Paused() bool
	SetVolume(v float64)
	Events() <-chan Event
	// Tap returns the sample tap feeding the visualizer, or nil.
	Tap() Tap
	Close() error
}

// Tap exposes the most recent mono samples sent to the output.
type Tap interface {
	// Samples fills dst with the newest samples in [-1, 1] and returns how
	// many were written.
	Samples(dst []float64) int
}
