// Package player implements the queue and transport controller.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/history"
	"github.com/tessro/mewzy/internal/session"
	"github.com/tessro/mewzy/internal/store"
	"github.com/tessro/mewzy/internal/urlfix"
)

const (
	// restartThreshold is how far into a track Previous restarts it instead
	// of navigating back.
	restartThreshold = 3.0
	// progressEvery is the number of one-second ticks of unpaused playback
	// between progress pushes.
	progressEvery = 10
	// reportTimeout bounds a fire-and-forget progress push.
	reportTimeout = 10 * time.Second

	noticeAutoplay  = "Queue ended. Finding more you'll like..."
	noticeDuplicate = "Song already in queue"
	noticeAdded     = "Added to queue"
)

// Continuation supplies tracks to append when the queue runs out.
type Continuation interface {
	Continue(ctx context.Context, current core.Track) []core.Track
}

// Resumer decides start offsets and records listening progress.
type Resumer interface {
	Decide(ctx context.Context, track core.Track, duration float64) (history.Decision, bool)
	Report(ctx context.Context, track core.Track, offset float64)
}

// RecentLog records started tracks and progress for observers.
type RecentLog interface {
	Started(ctx context.Context, track core.Track)
	Progressed(track core.Track)
}

// Options configures an Engine. Session, State and Fixer are required.
type Options struct {
	Session  *session.Session
	State    *store.State
	Fixer    *urlfix.Fixer
	Resumer  Resumer
	Autoplay Continuation
	Recent   RecentLog
	Notifier core.Notifier
	Settings core.Settings
	// ShuffleNavigation makes Next and Previous follow a shuffled order
	// while the shuffle flag is set.
	ShuffleNavigation bool
}

// Engine owns the queue, the current track and the transport state.
// All methods are safe for concurrent use.
type Engine struct {
	sess       *session.Session
	state      *store.State
	fix        *urlfix.Fixer
	resumer    Resumer
	autoplay   Continuation
	recent     RecentLog
	notifier   core.Notifier
	shuffleNav bool

	mu        sync.Mutex
	queue     []core.Track
	index     int
	current   *core.Track
	settings  core.Settings
	status    core.Status
	playing   bool
	buffering bool
	gen       uint64
	order     []int
	ticks     int

	subMu  sync.Mutex
	subs   map[int]func(core.PlaybackState)
	nextID int
}

// New creates an engine with an empty queue.
func New(opts Options) *Engine {
	settings := opts.Settings
	if settings == (core.Settings{}) {
		settings = core.DefaultSettings()
	}
	e := &Engine{
		sess:       opts.Session,
		state:      opts.State,
		fix:        opts.Fixer,
		resumer:    opts.Resumer,
		autoplay:   opts.Autoplay,
		recent:     opts.Recent,
		notifier:   opts.Notifier,
		shuffleNav: opts.ShuffleNavigation,
		index:      -1,
		settings:   settings,
		status:     core.StatusStopped,
		subs:       make(map[int]func(core.PlaybackState)),
	}
	e.sess.SetVolume(settings.Volume)
	e.sess.SetMuted(settings.Muted)
	return e
}

// Session returns the playback session the engine drives.
func (e *Engine) Session() *session.Session {
	return e.sess
}

// State returns a snapshot of the engine.
func (e *Engine) State() core.PlaybackState {
	e.mu.Lock()
	st := core.PlaybackState{
		Queue:     core.CloneTracks(e.queue),
		Index:     e.index,
		Status:    e.status,
		Playing:   e.playing,
		Buffering: e.buffering,
		Settings:  e.settings,
	}
	if st.Queue == nil {
		st.Queue = []core.Track{}
	}
	var current *core.Track
	if e.current != nil {
		t := *e.current
		current = &t
	}
	e.mu.Unlock()

	st.Track = current
	if current != nil {
		st.Position = e.sess.Position()
		st.Duration = e.durationFor(*current)
	}
	return st
}

// Subscribe registers fn for state changes and returns a func that removes
// it. fn runs on the goroutine that caused the change and must not block.
func (e *Engine) Subscribe(fn func(core.PlaybackState)) (unsubscribe func()) {
	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) publish() {
	e.subMu.Lock()
	fns := lo.Values(e.subs)
	e.subMu.Unlock()
	if len(fns) == 0 {
		return
	}
	st := e.State()
	for _, fn := range fns {
		fn(st)
	}
}

func (e *Engine) notify(kind core.NoticeKind, msg string) {
	if e.notifier != nil {
		e.notifier.Notify(core.NewNotice(kind, msg))
	}
}

// durationFor prefers the decoded length and falls back to the catalog one.
func (e *Engine) durationFor(t core.Track) float64 {
	if d := e.sess.Duration(); d > 0 {
		return d
	}
	if s, ok := t.Duration.Seconds(); ok {
		return s
	}
	return 0
}

func (e *Engine) report(ctx context.Context, track core.Track, offset float64) {
	if e.resumer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
		defer cancel()
		e.resumer.Report(ctx, track, offset)
	}()
}

var _ core.Transport = (*Engine)(nil)
