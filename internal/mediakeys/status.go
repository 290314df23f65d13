package mediakeys

import (
	"sync"
)

// StatusSurface keeps now-playing metadata for an in-terminal status line.
type StatusSurface struct {
	mu       sync.Mutex
	meta     Metadata
	playing  bool
	handlers map[Action]func()
}

func NewStatusSurface() *StatusSurface {
	return &StatusSurface{handlers: make(map[Action]func())}
}

func (s *StatusSurface) SetMetadata(m Metadata) {
	s.mu.Lock()
	s.meta = m
	s.mu.Unlock()
}

func (s *StatusSurface) SetPlaybackState(playing bool) {
	s.mu.Lock()
	s.playing = playing
	s.mu.Unlock()
}

func (s *StatusSurface) SetActionHandler(a Action, fn func()) {
	s.mu.Lock()
	s.handlers[a] = fn
	s.mu.Unlock()
}

// Snapshot returns the last metadata and playing flag.
func (s *StatusSurface) Snapshot() (Metadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta, s.playing
}

// Trigger runs the handler registered for a, if any. It reports whether a
// handler ran.
func (s *StatusSurface) Trigger(a Action) bool {
	s.mu.Lock()
	fn := s.handlers[a]
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}
