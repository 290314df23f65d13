package player

import (
	"context"
	"log/slog"
	"time"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/session"
)

// beginLocked makes track current and starts loading it. The returned
// generation identifies this load; work finishing under an older one is
// discarded.
func (e *Engine) beginLocked(track core.Track) uint64 {
	t := track
	e.current = &t
	e.gen++
	e.ticks = 0
	e.playing = false
	e.buffering = true
	e.status = core.StatusLoading
	e.sess.Load(track.StreamURL)
	return e.gen
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen == gen
}

func (e *Engine) started(ctx context.Context, gen uint64, track core.Track, snap snapshot) {
	e.persist(ctx, snap)
	if e.recent != nil {
		e.recent.Started(ctx, track)
	}
	e.publish()
	e.start(ctx, gen, track)
}

// start waits for the source, applies any resume offset and begins playback.
func (e *Engine) start(ctx context.Context, gen uint64, track core.Track) {
	if err := e.sess.WaitReady(ctx); err != nil {
		e.mu.Lock()
		if e.gen != gen {
			e.mu.Unlock()
			return
		}
		slog.Error("failed to start track", "id", track.ID, "error", err)
		e.playing = false
		e.buffering = false
		e.status = core.StatusPaused
		e.mu.Unlock()
		e.publish()
		return
	}
	if !e.isCurrent(gen) {
		return
	}

	var offset float64
	var notice string
	if e.resumer != nil {
		if d, ok := e.resumer.Decide(ctx, track, e.durationFor(track)); ok {
			offset, notice = d.Offset, d.Notice
		}
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return
	}
	if offset > 0 {
		if err := e.sess.Seek(offset); err != nil {
			slog.Warn("failed to seek to resume offset", "id", track.ID, "error", err)
		}
	}
	e.buffering = false
	e.playLocked()
	e.mu.Unlock()

	if notice != "" {
		e.notify(core.NoticeInfo, notice)
	}
	e.publish()
}

func (e *Engine) playLocked() {
	if err := e.sess.Play(); err != nil {
		slog.Error("playback failed", "error", err)
		e.playing = false
		e.status = core.StatusPaused
		return
	}
	e.playing = true
	e.status = core.StatusPlaying
}

// TogglePlay pauses a playing source and plays a paused one.
func (e *Engine) TogglePlay() {
	if !e.sess.HasSource() {
		return
	}
	if e.sess.Paused() {
		e.Play()
	} else {
		e.Pause()
	}
}

func (e *Engine) Play() {
	if !e.sess.HasSource() {
		return
	}
	e.mu.Lock()
	e.playLocked()
	e.mu.Unlock()
	e.publish()
}

func (e *Engine) Pause() {
	e.sess.Pause()
	e.mu.Lock()
	e.playing = false
	e.ticks = 0
	if e.current != nil {
		e.status = core.StatusPaused
	}
	e.mu.Unlock()
	e.publish()
}

// Seek moves to sec, clamped to the track bounds when the length is known.
func (e *Engine) Seek(sec float64) {
	e.mu.Lock()
	current := e.current
	e.mu.Unlock()
	if current == nil || !e.sess.HasSource() {
		return
	}
	if d := e.durationFor(*current); d > 0 {
		sec = min(sec, d)
	}
	if err := e.sess.Seek(max(0, sec)); err != nil {
		slog.Warn("failed to seek", "error", err)
	}
	e.publish()
}

// SeekBy moves delta seconds relative to the current position.
func (e *Engine) SeekBy(delta float64) {
	e.Seek(e.sess.Position() + delta)
}

// SeekFraction moves to frac of the track. It does nothing while the length
// is unknown.
func (e *Engine) SeekFraction(frac float64) {
	e.mu.Lock()
	current := e.current
	e.mu.Unlock()
	if current == nil {
		return
	}
	d := e.durationFor(*current)
	if d <= 0 {
		return
	}
	e.Seek(d * frac)
}

// SetVolume sets and persists the volume in [0, 1].
func (e *Engine) SetVolume(v float64) {
	v = min(1, max(0, v))
	e.mu.Lock()
	e.settings.Volume = v
	e.mu.Unlock()
	e.sess.SetVolume(v)
	if err := e.state.SaveVolume(context.Background(), v); err != nil {
		slog.Warn("failed to persist volume", "error", err)
	}
	e.publish()
}

// AdjustVolume changes the volume by delta. Raising it also unmutes.
func (e *Engine) AdjustVolume(delta float64) {
	e.mu.Lock()
	v := e.settings.Volume + delta
	unmute := delta > 0 && e.settings.Muted
	if unmute {
		e.settings.Muted = false
	}
	e.mu.Unlock()
	if unmute {
		e.sess.SetMuted(false)
	}
	e.SetVolume(v)
}

func (e *Engine) ToggleMute() {
	e.mu.Lock()
	e.settings.Muted = !e.settings.Muted
	m := e.settings.Muted
	e.mu.Unlock()
	e.sess.SetMuted(m)
	e.publish()
}

func (e *Engine) SetRepeat(r core.RepeatMode) {
	e.mu.Lock()
	e.settings.Repeat = r
	e.mu.Unlock()
	e.publish()
}

// CycleRepeat steps off → all → one → off.
func (e *Engine) CycleRepeat() {
	e.mu.Lock()
	e.settings.Repeat = e.settings.Repeat.Next()
	e.mu.Unlock()
	e.publish()
}

func (e *Engine) SetShuffle(on bool) {
	e.mu.Lock()
	e.settings.Shuffle = on
	e.rebuildOrderLocked()
	e.mu.Unlock()
	e.publish()
}

// Restore loads the persisted session without starting playback. It does
// nothing once a source is loaded.
func (e *Engine) Restore(ctx context.Context) error {
	if e.sess.HasSource() {
		return nil
	}

	res := e.state.Load(ctx)
	if err := res.Err(); err != nil {
		slog.Warn("some saved state could not be read", "error", err)
	}
	snap := res.Data

	e.mu.Lock()
	e.settings.Volume = min(1, max(0, snap.Volume))
	e.queue = snap.Queue
	e.index = snap.Index
	if e.index >= len(e.queue) {
		e.index = -1
	}
	e.rebuildOrderLocked()
	var gen uint64
	var track core.Track
	if snap.Track != nil {
		track = *snap.Track
		gen = e.beginLocked(track)
	}
	vol := e.settings.Volume
	e.mu.Unlock()

	e.sess.SetVolume(vol)
	if snap.Track == nil {
		e.publish()
		return nil
	}

	if err := e.sess.WaitReady(ctx); err != nil {
		e.mu.Lock()
		if e.gen == gen {
			e.buffering = false
			e.status = core.StatusPaused
		}
		e.mu.Unlock()
		e.publish()
		return err
	}

	e.mu.Lock()
	if e.gen == gen {
		if snap.Position > 0 {
			if err := e.sess.Seek(snap.Position); err != nil {
				slog.Warn("failed to seek to saved position", "error", err)
			}
		}
		e.buffering = false
		e.status = core.StatusPaused
	}
	e.mu.Unlock()
	e.publish()
	return nil
}

// Run consumes playback events and drives periodic persistence until ctx is
// done.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	events := e.sess.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.handleEvent(ctx, ev)
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, ev session.Event) {
	switch ev.Kind {
	case session.EventTimeUpdate, session.EventLoadedMetadata:
		// Position and duration are read on demand.
		if ev.Kind == session.EventLoadedMetadata {
			e.publish()
		}
	case session.EventWaiting:
		e.setFlags(func() { e.buffering = true })
	case session.EventPlaying:
		e.setFlags(func() {
			e.buffering = false
			e.playing = true
			e.status = core.StatusPlaying
		})
	case session.EventPause:
		e.setFlags(func() {
			e.playing = false
			e.ticks = 0
			if e.status == core.StatusPlaying {
				e.status = core.StatusPaused
			}
		})
	case session.EventError:
		slog.Error("playback error", "error", ev.Err)
		e.setFlags(func() {
			e.playing = false
			e.buffering = false
			e.status = core.StatusPaused
		})
	case session.EventEnded:
		go e.ended(ctx)
	}
}

func (e *Engine) setFlags(fn func()) {
	e.mu.Lock()
	fn()
	e.mu.Unlock()
	e.publish()
}

func (e *Engine) ended(ctx context.Context) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return
	}
	track := *e.current
	gen := e.gen
	e.playing = false
	e.ticks = 0
	e.status = core.StatusEnded
	repeatOne := e.settings.Repeat == core.RepeatOne
	e.mu.Unlock()

	e.report(ctx, track, 0)

	if repeatOne {
		e.mu.Lock()
		if e.gen == gen {
			if err := e.sess.Seek(0); err != nil {
				slog.Warn("failed to rewind", "error", err)
			}
			e.playLocked()
		}
		e.mu.Unlock()
		e.publish()
		return
	}

	e.Next(ctx)

	e.mu.Lock()
	if e.gen == gen && e.status == core.StatusEnded {
		e.status = core.StatusStopped
	}
	e.mu.Unlock()
	e.publish()
}

func (e *Engine) tick(ctx context.Context) {
	e.mu.Lock()
	if e.current == nil || !e.playing {
		e.mu.Unlock()
		return
	}
	track := *e.current
	e.ticks++
	push := e.ticks%progressEvery == 0
	e.mu.Unlock()

	pos := e.sess.Position()
	if err := e.state.SavePosition(ctx, pos); err != nil {
		slog.Warn("failed to persist position", "error", err)
	}
	if push {
		e.report(ctx, track, pos)
		if e.recent != nil {
			e.recent.Progressed(track)
		}
	}
}
