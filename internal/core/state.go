package core

import "fmt"

// RepeatMode controls what happens when a track ends.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the config/wire name of the mode.
func (r RepeatMode) String() string {
	switch r {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// Next cycles off → all → one → off.
func (r RepeatMode) Next() RepeatMode {
	return (r + 1) % 3
}

// ParseRepeatMode parses "off", "all" or "one".
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch s {
	case "", "off":
		return RepeatOff, nil
	case "all":
		return RepeatAll, nil
	case "one":
		return RepeatOne, nil
	}
	return RepeatOff, fmt.Errorf("invalid repeat mode: %s (must be off, all, or one)", s)
}

// Status is the transport state of the player.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusLoading Status = "loading"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusEnded   Status = "ended"
)

// Settings are the user-controlled player settings.
type Settings struct {
	Volume  float64    `json:"volume"`
	Muted   bool       `json:"muted"`
	Repeat  RepeatMode `json:"repeat"`
	Shuffle bool       `json:"shuffle"`
}

// EffectiveVolume is the volume actually applied to the output.
func (s Settings) EffectiveVolume() float64 {
	if s.Muted {
		return 0
	}
	return s.Volume
}

// DefaultSettings returns full volume, unmuted, no repeat, no shuffle.
func DefaultSettings() Settings {
	return Settings{Volume: 1}
}

// PlaybackState is an immutable snapshot of the engine.
type PlaybackState struct {
	Track     *Track   `json:"track"`
	Queue     []Track  `json:"queue"`
	Index     int      `json:"index"`
	Status    Status   `json:"status"`
	Playing   bool     `json:"is_playing"`
	Buffering bool     `json:"buffering"`
	Position  float64  `json:"position"`
	Duration  float64  `json:"duration"`
	Settings  Settings `json:"settings"`
}

// HasTrack returns true if there is an active track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Duration <= 0 {
		return 0
	}
	p := s.Position / s.Duration * 100
	if p > 100 {
		return 100
	}
	return p
}

// QueueView returns the queue and index as a Queue.
func (s *PlaybackState) QueueView() *Queue {
	if s == nil {
		return nil
	}
	return &Queue{Tracks: s.Queue, CurrentIndex: s.Index}
}
