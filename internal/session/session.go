package session

import (
	"context"
	"log/slog"
	"sync"

	mewzyerrors "github.com/tessro/mewzy/internal/errors"
)

// Session is the facade every component uses to drive the audio Handle.
type Session struct {
	h Handle

	mu         sync.Mutex
	source     string
	ready      chan error
	cancelLoad context.CancelFunc
	volume     float64
	muted      bool
}

// New wraps h. The session owns h from here on.
func New(h Handle) *Session {
	return &Session{h: h, volume: 1}
}

// Load replaces the source. Loading continues in the background; callers
// use WaitReady to wait for metadata. A load still in progress is abandoned.
func (s *Session) Load(url string) {
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan error, 1)

	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.source = url
	s.ready = ready
	s.cancelLoad = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()
		err := s.h.Load(ctx, url)
		if err == nil {
			s.applyVolume()
		} else if ctx.Err() == nil {
			slog.Error("failed to load source", "url", url, "error", err)
		}
		ready <- err
	}()
}

// WaitReady blocks until the current load finishes or ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()
	if ready == nil {
		return mewzyerrors.ErrNoSource
	}

	select {
	case err := <-ready:
		// Leave the result for other waiters.
		ready <- err
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HasSource reports whether a source has been set.
func (s *Session) HasSource() bool {
	return s.Source() != ""
}

// Source returns the current source URL.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Session) Play() error {
	if !s.HasSource() {
		return mewzyerrors.ErrNoSource
	}
	return s.h.Play()
}

func (s *Session) Pause() { s.h.Pause() }

func (s *Session) Seek(sec float64) error {
	if sec < 0 {
		sec = 0
	}
	return s.h.Seek(sec)
}

func (s *Session) Position() float64 { return s.h.Position() }

// Duration returns the source length in seconds, or 0 when unknown.
func (s *Session) Duration() float64 { return s.h.Duration() }

func (s *Session) Paused() bool { return s.h.Paused() }

func (s *Session) Events() <-chan Event { return s.h.Events() }

// Tap returns the visualizer sample tap, or nil.
func (s *Session) Tap() Tap { return s.h.Tap() }

// SetVolume sets the volume in [0, 1].
func (s *Session) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = clamp01(v)
	s.mu.Unlock()
	s.applyVolume()
}

// SetMuted mutes or unmutes without changing the volume.
func (s *Session) SetMuted(m bool) {
	s.mu.Lock()
	s.muted = m
	s.mu.Unlock()
	s.applyVolume()
}

// EffectiveVolume is 0 when muted and the volume otherwise.
func (s *Session) EffectiveVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.muted {
		return 0
	}
	return s.volume
}

func (s *Session) applyVolume() {
	s.h.SetVolume(s.EffectiveVolume())
}

// Close releases the handle.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.mu.Unlock()
	return s.h.Close()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
