// Package sessiontest provides a scriptable audio handle for tests.
package sessiontest

import (
	"context"
	"sync"

	"github.com/tessro/mewzy/internal/session"
)

// Handle is a fake session.Handle. Position and duration are set by the
// test; events are injected with Emit.
type Handle struct {
	mu       sync.Mutex
	loads    []string
	seeks    []float64
	plays    int
	pos      float64
	dur      float64
	paused   bool
	volume   float64
	loadErr  error
	playErr  error
	loadGate chan struct{}
	tap      session.Tap
	events   chan session.Event
}

// New creates a paused fake handle.
func New() *Handle {
	return &Handle{
		paused: true,
		volume: 1,
		events: make(chan session.Event, 256),
	}
}

// FailLoads makes every Load return err until cleared with nil.
func (h *Handle) FailLoads(err error) {
	h.mu.Lock()
	h.loadErr = err
	h.mu.Unlock()
}

// FailPlay makes Play return err until cleared with nil.
func (h *Handle) FailPlay(err error) {
	h.mu.Lock()
	h.playErr = err
	h.mu.Unlock()
}

// HoldLoads makes Load block until the returned release func is called.
func (h *Handle) HoldLoads() (release func()) {
	gate := make(chan struct{})
	h.mu.Lock()
	h.loadGate = gate
	h.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.loadGate = nil
			h.mu.Unlock()
			close(gate)
		})
	}
}

// SetTap installs a sample tap.
func (h *Handle) SetTap(t session.Tap) {
	h.mu.Lock()
	h.tap = t
	h.mu.Unlock()
}

// SetPosition moves the playhead without emitting events.
func (h *Handle) SetPosition(sec float64) {
	h.mu.Lock()
	h.pos = sec
	h.mu.Unlock()
}

// SetDuration sets the reported source length.
func (h *Handle) SetDuration(sec float64) {
	h.mu.Lock()
	h.dur = sec
	h.mu.Unlock()
}

// Emit injects an event.
func (h *Handle) Emit(kind session.EventKind) {
	if kind == session.EventEnded {
		h.mu.Lock()
		h.paused = true
		h.mu.Unlock()
	}
	h.events <- session.Event{Kind: kind}
}

// Loads returns every URL passed to Load.
func (h *Handle) Loads() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.loads...)
}

// Seeks returns every position passed to Seek.
func (h *Handle) Seeks() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float64(nil), h.seeks...)
}

// Plays returns how often Play succeeded.
func (h *Handle) Plays() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plays
}

// Volume returns the last volume set.
func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *Handle) Load(ctx context.Context, url string) error {
	h.mu.Lock()
	h.loads = append(h.loads, url)
	gate := h.loadGate
	err := h.loadErr
	h.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.pos = 0
	h.paused = true
	h.mu.Unlock()
	return nil
}

func (h *Handle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.playErr != nil {
		return h.playErr
	}
	h.paused = false
	h.plays++
	return nil
}

func (h *Handle) Pause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()
}

func (h *Handle) Seek(sec float64) error {
	h.mu.Lock()
	h.pos = sec
	h.seeks = append(h.seeks, sec)
	h.mu.Unlock()
	return nil
}

func (h *Handle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos
}

func (h *Handle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dur
}

func (h *Handle) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

func (h *Handle) SetVolume(v float64) {
	h.mu.Lock()
	h.volume = v
	h.mu.Unlock()
}

func (h *Handle) Events() <-chan session.Event { return h.events }

func (h *Handle) Tap() session.Tap {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tap
}

func (h *Handle) Close() error { return nil }
