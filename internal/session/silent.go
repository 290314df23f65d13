package session

import (
	"context"
	"sync"
	"time"
)

// SilentHandle follows playback with a wall clock and produces no sound.
// It stands in for real output when no audio device is available.
type SilentHandle struct {
	mu        sync.Mutex
	loaded    bool
	paused    bool
	base      float64
	startedAt time.Time
	length    float64
	volume    float64
	events    chan Event
	stop      chan struct{}
	closed    bool
}

// NewSilentHandle creates a silent handle. length is reported as the
// duration of every source; 0 means unknown.
func NewSilentHandle(length float64) *SilentHandle {
	return &SilentHandle{
		paused: true,
		length: length,
		volume: 1,
		events: make(chan Event, 64),
	}
}

func (h *SilentHandle) Load(ctx context.Context, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	h.stopTickerLocked()
	h.loaded = true
	h.paused = true
	h.base = 0
	h.mu.Unlock()
	h.emit(Event{Kind: EventLoadedMetadata})
	return nil
}

func (h *SilentHandle) Play() error {
	h.mu.Lock()
	if !h.loaded || !h.paused {
		h.mu.Unlock()
		return nil
	}
	h.paused = false
	h.startedAt = time.Now()
	stop := make(chan struct{})
	h.stop = stop
	h.mu.Unlock()

	h.emit(Event{Kind: EventPlaying})
	go h.tick(stop)
	return nil
}

func (h *SilentHandle) tick(stop chan struct{}) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			ended := h.length > 0 && h.positionLocked() >= h.length
			if ended {
				h.base = h.length
				h.paused = true
				h.stop = nil
			}
			h.mu.Unlock()
			if ended {
				h.emit(Event{Kind: EventEnded})
				return
			}
			h.emit(Event{Kind: EventTimeUpdate})
		}
	}
}

func (h *SilentHandle) Pause() {
	h.mu.Lock()
	if h.paused {
		h.mu.Unlock()
		return
	}
	h.base = h.positionLocked()
	h.paused = true
	h.stopTickerLocked()
	h.mu.Unlock()
	h.emit(Event{Kind: EventPause})
}

func (h *SilentHandle) Seek(seconds float64) error {
	h.mu.Lock()
	if h.length > 0 && seconds > h.length {
		seconds = h.length
	}
	h.base = seconds
	h.startedAt = time.Now()
	h.mu.Unlock()
	h.emit(Event{Kind: EventTimeUpdate})
	return nil
}

func (h *SilentHandle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked()
}

func (h *SilentHandle) positionLocked() float64 {
	if h.paused {
		return h.base
	}
	return h.base + time.Since(h.startedAt).Seconds()
}

func (h *SilentHandle) Duration() float64 {
	return h.length
}

func (h *SilentHandle) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

func (h *SilentHandle) SetVolume(v float64) {
	h.mu.Lock()
	h.volume = v
	h.mu.Unlock()
}

func (h *SilentHandle) Events() <-chan Event { return h.events }

// Tap is always nil; the visualizer reads silence.
func (h *SilentHandle) Tap() Tap { return nil }

func (h *SilentHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopTickerLocked()
	h.closed = true
	return nil
}

func (h *SilentHandle) stopTickerLocked() {
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
}

func (h *SilentHandle) emit(ev Event) {
	emit(h.events, ev)
}

// emit delivers ev without blocking the caller. Time updates are dropped
// when the consumer lags; other events are delivered late instead.
func emit(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
		if ev.Kind != EventTimeUpdate {
			go func() { ch <- ev }()
		}
	}
}
