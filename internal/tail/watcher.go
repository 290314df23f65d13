// Package tail follows the persisted state of a running player.
package tail

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	mewzyerrors "github.com/tessro/mewzy/internal/errors"
	"github.com/tessro/mewzy/internal/store"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventQueueChange
	EventVolumeChange
)

// Event represents a change between two persisted snapshots.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *store.Snapshot
	Current   *store.Snapshot
}

// Source loads the persisted player snapshot.
type Source interface {
	Load(ctx context.Context) mewzyerrors.PartialResult[store.Snapshot]
}

// Watcher reloads the snapshot whenever the state database changes and
// emits events for the differences.
type Watcher struct {
	src      Source
	path     string
	interval time.Duration
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a watcher over the database at path. interval is the
// fallback poll period used alongside file notifications.
func NewWatcher(src Source, path string, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		src:      src,
		path:     path,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.events)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var fsEvents <-chan fsnotify.Event
	var fsErrors <-chan error
	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		defer fsw.Close()
		if err := fsw.Add(filepath.Dir(w.path)); err != nil {
			slog.Warn("file notifications unavailable, polling", "path", w.path, "error", err)
		} else {
			fsEvents, fsErrors = fsw.Events, fsw.Errors
		}
	} else {
		slog.Warn("file notifications unavailable, polling", "error", err)
	}

	prev := w.load(ctx)

	reload := func() {
		curr := w.load(ctx)
		for _, e := range diffSnapshots(prev, curr) {
			select {
			case w.events <- e:
			default:
				// Drop event if channel is full
			}
		}
		prev = curr
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if w.relevant(ev) {
				reload()
			}
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			slog.Debug("file watch error", "error", err)
		case <-ticker.C:
			reload()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// relevant matches writes to the database and its journal files.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), filepath.Base(w.path))
}

func (w *Watcher) load(ctx context.Context) *store.Snapshot {
	res := w.src.Load(ctx)
	if err := res.Err(); err != nil {
		slog.Debug("snapshot partially unreadable", "error", err)
	}
	return &res.Data
}

// diffSnapshots compares two snapshots and returns detected events.
func diffSnapshots(prev, curr *store.Snapshot) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event

	// First load - no previous snapshot
	if prev == nil {
		if curr.Track != nil {
			events = append(events, Event{Type: EventTrackChange, Timestamp: now, Current: curr})
		}
		return events
	}

	if trackChanged(prev, curr) {
		eventType := EventTrackChange
		if prev.Track != nil {
			if wasCompleted(prev) {
				eventType = EventTrackComplete
			} else {
				eventType = EventTrackSkip
			}
		}
		events = append(events, Event{Type: eventType, Timestamp: now, Previous: prev, Current: curr})
	}

	if len(prev.Queue) != len(curr.Queue) {
		events = append(events, Event{Type: EventQueueChange, Timestamp: now, Previous: prev, Current: curr})
	}

	if prev.Volume != curr.Volume {
		events = append(events, Event{Type: EventVolumeChange, Timestamp: now, Previous: prev, Current: curr})
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *store.Snapshot) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Track.ID != curr.Track.ID
}

// wasCompleted returns true if the last saved position reached 95% of the
// track length. Tracks of unknown length count as skipped.
func wasCompleted(s *store.Snapshot) bool {
	if s.Track == nil {
		return false
	}
	dur, ok := s.Track.Duration.Seconds()
	if !ok || dur <= 0 {
		return false
	}
	return s.Position >= dur*0.95
}
