//go:build (linux && cgo) || windows || darwin

package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

const tapSize = 2048

// BeepHandle plays MP3 streams through the system speaker.
type BeepHandle struct {
	client *http.Client

	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	tap         *ringTap
	level       float64
	loadID      uint64
	stop        chan struct{}

	events chan Event
}

// NewBeepHandle creates a speaker-backed handle. The speaker is opened on
// the first Load.
func NewBeepHandle(client *http.Client) *BeepHandle {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &BeepHandle{
		client:     client,
		sampleRate: beep.SampleRate(44100),
		level:      1,
		events:     make(chan Event, 64),
	}
}

// NewDefaultHandle returns the best handle for this build.
func NewDefaultHandle(client *http.Client) Handle {
	return NewBeepHandle(client)
}

// initSpeakerLocked initializes the speaker if not already done.
func (h *BeepHandle) initSpeakerLocked() error {
	if h.initialized {
		return nil
	}
	if err := speaker.Init(h.sampleRate, h.sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	h.initialized = true
	return nil
}

func (h *BeepHandle) Load(ctx context.Context, url string) error {
	h.mu.Lock()
	h.stopLocked()
	h.loadID++
	id := h.loadID
	h.mu.Unlock()

	emit(h.events, Event{Kind: EventWaiting})

	data, err := h.fetch(ctx, url)
	if err != nil {
		emit(h.events, Event{Kind: EventError, Err: err})
		return err
	}

	// Decode MP3 from memory so the stream stays seekable
	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		err = fmt.Errorf("decode %s: %w", url, err)
		emit(h.events, Event{Kind: EventError, Err: err})
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// A newer Load started while this one was fetching
	if id != h.loadID || ctx.Err() != nil {
		streamer.Close()
		return context.Canceled
	}

	if err := h.initSpeakerLocked(); err != nil {
		streamer.Close()
		return err
	}

	h.streamer = streamer
	h.format = format

	var src beep.Streamer = streamer
	if format.SampleRate != h.sampleRate {
		src = beep.Resample(4, format.SampleRate, h.sampleRate, streamer)
	}
	h.tap = newRingTap(src, tapSize)
	h.ctrl = &beep.Ctrl{Streamer: h.tap, Paused: true}
	h.volume = &effects.Volume{Streamer: h.ctrl, Base: 2}
	h.applyLevelLocked()

	speaker.Play(beep.Seq(h.volume, beep.Callback(func() {
		h.ended(id)
	})))

	emit(h.events, Event{Kind: EventLoadedMetadata})
	return nil
}

func (h *BeepHandle) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ended runs on the speaker goroutine when a source drains.
func (h *BeepHandle) ended(id uint64) {
	go func() {
		h.mu.Lock()
		current := id == h.loadID
		if current {
			h.stopTickerLocked()
		}
		h.mu.Unlock()
		if current {
			emit(h.events, Event{Kind: EventEnded})
		}
	}()
}

func (h *BeepHandle) Play() error {
	h.mu.Lock()
	if h.ctrl == nil {
		h.mu.Unlock()
		return fmt.Errorf("play: no source loaded")
	}
	speaker.Lock()
	h.ctrl.Paused = false
	speaker.Unlock()
	h.stopTickerLocked()
	stop := make(chan struct{})
	h.stop = stop
	h.mu.Unlock()

	emit(h.events, Event{Kind: EventPlaying})
	go h.tick(stop)
	return nil
}

func (h *BeepHandle) tick(stop chan struct{}) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			emit(h.events, Event{Kind: EventTimeUpdate})
		}
	}
}

func (h *BeepHandle) Pause() {
	h.mu.Lock()
	if h.ctrl == nil {
		h.mu.Unlock()
		return
	}
	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
	h.stopTickerLocked()
	h.mu.Unlock()
	emit(h.events, Event{Kind: EventPause})
}

func (h *BeepHandle) Seek(seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streamer == nil {
		return nil
	}

	speaker.Lock()
	defer speaker.Unlock()

	n := h.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	n = max(0, min(n, h.streamer.Len()-1))
	return h.streamer.Seek(n)
}

func (h *BeepHandle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := h.streamer.Position()
	speaker.Unlock()

	return h.format.SampleRate.D(pos).Seconds()
}

func (h *BeepHandle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streamer == nil {
		return 0
	}
	return h.format.SampleRate.D(h.streamer.Len()).Seconds()
}

func (h *BeepHandle) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctrl == nil {
		return true
	}

	speaker.Lock()
	paused := h.ctrl.Paused
	speaker.Unlock()
	return paused
}

// SetVolume sets a linear volume in [0, 1].
func (h *BeepHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level = v
	h.applyLevelLocked()
}

// applyLevelLocked maps the linear level onto beep's base-2 exponent.
func (h *BeepHandle) applyLevelLocked() {
	if h.volume == nil {
		return
	}
	speaker.Lock()
	if h.level <= 0 {
		h.volume.Silent = true
	} else {
		h.volume.Silent = false
		h.volume.Volume = math.Log2(h.level)
	}
	speaker.Unlock()
}

func (h *BeepHandle) Events() <-chan Event { return h.events }

func (h *BeepHandle) Tap() Tap {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tap == nil {
		return nil
	}
	return h.tap
}

func (h *BeepHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	if h.initialized {
		speaker.Close()
		h.initialized = false
	}
	return nil
}

// stopLocked stops playback (must be called with lock held).
func (h *BeepHandle) stopLocked() {
	h.stopTickerLocked()
	if h.initialized {
		speaker.Clear()
	}
	if h.streamer != nil {
		h.streamer.Close()
		h.streamer = nil
	}
	h.ctrl = nil
	h.volume = nil
}

func (h *BeepHandle) stopTickerLocked() {
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
}

// nopCloser wraps a bytes.Reader to implement io.ReadCloser.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
