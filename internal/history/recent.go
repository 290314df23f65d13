package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/tessro/mewzy/internal/api"
	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/store"
	"github.com/tessro/mewzy/internal/urlfix"
)

// remoteTimeout bounds the server history fetch.
const remoteTimeout = 8 * time.Second

// EventKind identifies a recent-log change.
type EventKind int

const (
	// TrackStarted fires when a track begins playing.
	TrackStarted EventKind = iota
	// TrackProgress fires on each periodic progress push.
	TrackProgress
	// TrackRemoved fires when an entry is deleted.
	TrackRemoved
)

// Event describes a recent-log change.
type Event struct {
	Kind EventKind
	Item store.RecentItem
}

// RemoteAPI is the server side of the history view.
type RemoteAPI interface {
	HasToken() bool
	History(ctx context.Context) ([]api.HistoryItem, error)
	DeleteHistory(ctx context.Context, trackID string) error
	StreamURL(trackID string) string
}

// Recent is the recent-play log with typed observers.
type Recent struct {
	state  *store.State
	remote RemoteAPI
	fix    *urlfix.Fixer
	now    func() time.Time

	mu        sync.Mutex
	observers map[int]func(Event)
	nextID    int
}

// NewRecent creates a log over state. remote may be nil.
func NewRecent(state *store.State, remote RemoteAPI, fix *urlfix.Fixer) *Recent {
	return &Recent{
		state:     state,
		remote:    remote,
		fix:       fix,
		now:       time.Now,
		observers: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for log changes and returns a func that removes it.
func (r *Recent) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.observers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.observers, id)
		r.mu.Unlock()
	}
}

func (r *Recent) notify(ev Event) {
	r.mu.Lock()
	fns := lo.Values(r.observers)
	r.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Started records track at the head of the log and notifies observers.
func (r *Recent) Started(ctx context.Context, track core.Track) {
	item, err := r.state.AddRecent(ctx, track, r.now())
	if err != nil {
		slog.Warn("failed to record recent track", "track", track.ID, "error", err)
	}
	r.notify(Event{Kind: TrackStarted, Item: item})
}

// Progressed notifies observers that track is still playing.
func (r *Recent) Progressed(track core.Track) {
	r.notify(Event{Kind: TrackProgress, Item: store.RecentItem{Track: track, TS: r.now().UnixMilli()}})
}

// List returns the local log, newest first.
func (r *Recent) List(ctx context.Context) ([]store.RecentItem, error) {
	return r.state.Recent(ctx)
}

type remoteCache struct {
	TS    int64             `json:"ts"`
	Items []api.HistoryItem `json:"items"`
}

// FetchRemote loads the server history. Missing stream URLs are filled in
// and all URLs sanitized. Successful fetches are cached locally.
func (r *Recent) FetchRemote(ctx context.Context) ([]api.HistoryItem, error) {
	if r.remote == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	items, err := r.remote.History(ctx)
	if err != nil {
		return nil, err
	}
	items = r.prepare(items)

	data, err := json.Marshal(remoteCache{TS: r.now().UnixMilli(), Items: items})
	if err == nil {
		err = r.state.KV().Set(ctx, store.KeyRemoteCache, string(data))
	}
	if err != nil {
		slog.Debug("failed to cache remote history", "error", err)
	}
	return items, nil
}

// Cached returns the last remote history fetched, or nil.
func (r *Recent) Cached(ctx context.Context) ([]api.HistoryItem, error) {
	raw, ok, err := r.state.KV().Get(ctx, store.KeyRemoteCache)
	if err != nil || !ok {
		return nil, err
	}
	var c remoteCache
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("%s: %w", store.KeyRemoteCache, err)
	}
	return r.prepare(c.Items), nil
}

func (r *Recent) prepare(items []api.HistoryItem) []api.HistoryItem {
	return lo.Map(items, func(it api.HistoryItem, _ int) api.HistoryItem {
		if it.StreamURL == "" && r.remote != nil {
			it.StreamURL = r.remote.StreamURL(it.ID)
		}
		it.Track = r.fix.Track(it.Track)
		return it
	})
}

// Remove deletes id from the local log, the cached server history and,
// when logged in, the server.
func (r *Recent) Remove(ctx context.Context, id string) error {
	if err := r.state.RemoveRecent(ctx, id); err != nil {
		return err
	}

	if cached, err := r.Cached(ctx); err == nil && cached != nil {
		kept := lo.Filter(cached, func(it api.HistoryItem, _ int) bool { return it.ID != id })
		if data, err := json.Marshal(remoteCache{TS: r.now().UnixMilli(), Items: kept}); err == nil {
			_ = r.state.KV().Set(ctx, store.KeyRemoteCache, string(data))
		}
	}

	r.notify(Event{Kind: TrackRemoved, Item: store.RecentItem{Track: core.Track{ID: id}}})

	if r.remote == nil || !r.remote.HasToken() {
		return nil
	}
	if err := r.remote.DeleteHistory(ctx, id); err != nil {
		return fmt.Errorf("delete from server history: %w", err)
	}
	return nil
}
