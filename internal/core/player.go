package core

import "context"

// Transport is the set of playback operations UI collaborators drive.
type Transport interface {
	PlayFrom(ctx context.Context, track Track, source []Track, force bool)
	Next(ctx context.Context)
	Previous(ctx context.Context)
	Enqueue(track Track) bool
	TogglePlay()
	Play()
	Pause()
	SeekBy(delta float64)
	SeekFraction(f float64)
	AdjustVolume(delta float64)
	ToggleMute()
	State() PlaybackState
}
