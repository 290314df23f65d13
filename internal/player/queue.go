package player

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/tessro/mewzy/internal/core"
)

// snapshot is the part of the state written on every current/queue change.
type snapshot struct {
	ok    bool
	track core.Track
	queue []core.Track
	index int
}

func (e *Engine) snapshotLocked() snapshot {
	if e.current == nil {
		return snapshot{}
	}
	return snapshot{ok: true, track: *e.current, queue: core.CloneTracks(e.queue), index: e.index}
}

func (e *Engine) persist(ctx context.Context, s snapshot) {
	if !s.ok {
		return
	}
	if err := e.state.SaveCurrent(ctx, s.track, s.queue, s.index); err != nil {
		slog.Warn("failed to persist player state", "error", err)
	}
}

// PlayFrom plays track. When track is already loaded and force is false it
// toggles play/pause instead. A non-nil source replaces the queue; otherwise
// the index moves to track's position in the existing queue, if present.
func (e *Engine) PlayFrom(ctx context.Context, track core.Track, source []core.Track, force bool) {
	track = e.fix.Track(track)

	e.mu.Lock()
	if !force && e.current != nil && e.current.ID == track.ID && e.sess.HasSource() {
		e.mu.Unlock()
		e.TogglePlay()
		return
	}

	if source != nil {
		e.queue = e.fix.Tracks(source)
		e.index = max(0, core.IndexOf(e.queue, track.ID))
		e.rebuildOrderLocked()
	} else if len(e.queue) > 0 {
		if i := core.IndexOf(e.queue, track.ID); i >= 0 {
			e.index = i
		}
	}

	gen := e.beginLocked(track)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.started(ctx, gen, track, snap)
}

// PlayIndex force-plays the queue entry at i.
func (e *Engine) PlayIndex(ctx context.Context, i int) {
	e.mu.Lock()
	if i < 0 || i >= len(e.queue) {
		e.mu.Unlock()
		return
	}
	e.index = i
	track := e.queue[i]
	gen := e.beginLocked(track)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.started(ctx, gen, track, snap)
}

// Next advances to the following track. At the end of the queue it first
// tries to extend the queue with a continuation, then wraps around.
func (e *Engine) Next(ctx context.Context) {
	e.mu.Lock()
	n := len(e.queue)
	if n == 0 || e.index == -1 {
		e.mu.Unlock()
		return
	}
	gen := e.gen
	atEnd := e.isLastLocked()
	var current *core.Track
	if e.current != nil {
		t := *e.current
		current = &t
	}
	e.mu.Unlock()

	if atEnd && current != nil && e.autoplay != nil {
		e.notify(core.NoticeInfo, noticeAutoplay)
		more := e.autoplay.Continue(ctx, *current)
		if len(more) > 0 {
			more = e.fix.Tracks(core.Without(more, current.ID))
		}

		e.mu.Lock()
		if e.gen != gen {
			// Something else started playing while we waited
			e.mu.Unlock()
			return
		}
		if len(more) > 0 {
			first := len(e.queue)
			e.queue = append(e.queue, more...)
			e.extendOrderLocked(first)
			e.mu.Unlock()
			e.PlayIndex(ctx, first)
			return
		}
		e.mu.Unlock()
	}

	e.mu.Lock()
	if e.gen != gen || len(e.queue) == 0 || e.index == -1 {
		e.mu.Unlock()
		return
	}
	next := e.stepLocked(1)
	e.mu.Unlock()
	e.PlayIndex(ctx, next)
}

// Previous restarts the current track when more than a few seconds in,
// otherwise goes to the preceding track, wrapping around.
func (e *Engine) Previous(ctx context.Context) {
	e.mu.Lock()
	if len(e.queue) == 0 || e.index == -1 {
		e.mu.Unlock()
		return
	}

	if e.sess.Position() > restartThreshold {
		if err := e.sess.Seek(0); err != nil {
			slog.Warn("failed to seek", "error", err)
		}
		e.playLocked()
		e.mu.Unlock()
		e.publish()
		return
	}

	prev := e.stepLocked(-1)
	e.mu.Unlock()
	e.PlayIndex(ctx, prev)
}

// Enqueue appends track unless a track with the same id is queued. It
// reports whether the track was added.
func (e *Engine) Enqueue(track core.Track) bool {
	track = e.fix.Track(track)

	e.mu.Lock()
	if core.Contains(e.queue, track.ID) {
		e.mu.Unlock()
		e.notify(core.NoticeInfo, noticeDuplicate)
		return false
	}
	first := len(e.queue)
	e.queue = append(e.queue, track)
	e.extendOrderLocked(first)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.persist(context.Background(), snap)
	e.notify(core.NoticeSuccess, noticeAdded)
	e.publish()
	return true
}

func (e *Engine) shuffleActiveLocked() bool {
	return e.shuffleNav && e.settings.Shuffle
}

// rebuildOrderLocked draws a new navigation order with the current index
// first.
func (e *Engine) rebuildOrderLocked() {
	if !e.shuffleActiveLocked() {
		e.order = nil
		return
	}
	rest := lo.Shuffle(lo.Filter(lo.Range(len(e.queue)), func(i, _ int) bool { return i != e.index }))
	if e.index >= 0 && e.index < len(e.queue) {
		e.order = append([]int{e.index}, rest...)
	} else {
		e.order = rest
	}
}

func (e *Engine) extendOrderLocked(first int) {
	if !e.shuffleActiveLocked() {
		return
	}
	for i := first; i < len(e.queue); i++ {
		e.order = append(e.order, i)
	}
}

func (e *Engine) orderPosLocked() int {
	if len(e.order) != len(e.queue) {
		e.rebuildOrderLocked()
	}
	return lo.IndexOf(e.order, e.index)
}

func (e *Engine) isLastLocked() bool {
	if e.shuffleActiveLocked() {
		return e.orderPosLocked() == len(e.queue)-1
	}
	return e.index == len(e.queue)-1
}

// stepLocked returns the queue index delta steps from the current one in
// navigation order, wrapping around.
func (e *Engine) stepLocked(delta int) int {
	n := len(e.queue)
	if e.shuffleActiveLocked() {
		p := e.orderPosLocked()
		if p < 0 {
			return e.order[0]
		}
		return e.order[((p+delta)%n+n)%n]
	}
	return ((e.index+delta)%n + n) % n
}
