// Package mediakeys connects the engine to now-playing surfaces and the
// keyboard.
package mediakeys

import (
	"context"
	"sync"

	"github.com/tessro/mewzy/internal/core"
)

// Action is a transport control a surface can trigger.
type Action string

const (
	ActionPlay     Action = "play"
	ActionPause    Action = "pause"
	ActionNext     Action = "nexttrack"
	ActionPrevious Action = "previoustrack"
)

// Metadata describes the current track on a surface.
type Metadata struct {
	Title   string
	Artist  string
	Artwork string
}

// Surface is a host now-playing display with optional transport buttons.
type Surface interface {
	SetMetadata(Metadata)
	SetPlaybackState(playing bool)
	SetActionHandler(action Action, handler func())
}

// Player is the part of the engine an Integration drives.
type Player interface {
	Subscribe(fn func(core.PlaybackState)) (unsubscribe func())
	State() core.PlaybackState
	Play()
	Pause()
	Next(ctx context.Context)
	Previous(ctx context.Context)
}

// Integration mirrors the current track and playing flag onto a surface.
type Integration struct {
	player  Player
	surface Surface

	mu      sync.Mutex
	trackID string
	playing bool
	primed  bool
}

// Attach registers transport handlers on s and starts mirroring p's state.
// The returned func stops mirroring.
func Attach(ctx context.Context, p Player, s Surface) (detach func()) {
	in := &Integration{player: p, surface: s}

	s.SetActionHandler(ActionPlay, p.Play)
	s.SetActionHandler(ActionPause, p.Pause)
	s.SetActionHandler(ActionNext, func() { p.Next(ctx) })
	s.SetActionHandler(ActionPrevious, func() { p.Previous(ctx) })

	in.update(p.State())
	return p.Subscribe(in.update)
}

func (in *Integration) update(st core.PlaybackState) {
	in.mu.Lock()
	var id string
	if st.Track != nil {
		id = st.Track.ID
	}
	trackChanged := id != in.trackID && st.Track != nil
	playingChanged := !in.primed || st.Playing != in.playing
	in.trackID = id
	in.playing = st.Playing
	in.primed = true
	in.mu.Unlock()

	if trackChanged {
		in.surface.SetMetadata(Metadata{
			Title:   st.Track.Title,
			Artist:  st.Track.Artist,
			Artwork: st.Track.Cover,
		})
	}
	if playingChanged {
		in.surface.SetPlaybackState(st.Playing)
	}
}
