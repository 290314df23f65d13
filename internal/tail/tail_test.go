package tail

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/store"
	"github.com/tessro/mewzy/internal/urlfix"
)

func snap(id string, pos float64, queue int) *store.Snapshot {
	s := &store.Snapshot{Index: 0, Position: pos, Volume: 1}
	if id != "" {
		s.Track = &core.Track{ID: id, Title: "T" + id, Artist: "A", Duration: core.Seconds(100)}
	}
	for i := range queue {
		s.Queue = append(s.Queue, core.Track{ID: string(rune('a' + i))})
	}
	return s
}

func types(events []Event) []EventType {
	var out []EventType
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestDiffSnapshots(t *testing.T) {
	louder := snap("b", 0, 2)
	louder.Volume = 0.5

	tests := []struct {
		name string
		prev *store.Snapshot
		curr *store.Snapshot
		want []EventType
	}{
		{"first load", nil, snap("a", 0, 1), []EventType{EventTrackChange}},
		{"first load empty", nil, snap("", 0, 0), nil},
		{"unchanged", snap("a", 10, 1), snap("a", 20, 1), nil},
		{"completed", snap("a", 99, 2), snap("b", 0, 2), []EventType{EventTrackComplete}},
		{"skipped", snap("a", 30, 2), snap("b", 0, 2), []EventType{EventTrackSkip}},
		{"from nothing", snap("", 0, 0), snap("a", 0, 1), []EventType{EventTrackChange, EventQueueChange}},
		{"queue grew", snap("a", 5, 1), snap("a", 5, 3), []EventType{EventQueueChange}},
		{"volume", snap("b", 0, 2), louder, []EventType{EventVolumeChange}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types(diffSnapshots(tt.prev, tt.curr))
			if len(got) != len(tt.want) {
				t.Fatalf("events = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("events = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestWasCompletedUnknownLength(t *testing.T) {
	s := snap("a", 500, 1)
	s.Track.Duration = core.Duration{}
	if wasCompleted(s) {
		t.Error("unknown length should not count as completed")
	}
}

func TestFormatter(t *testing.T) {
	e := Event{Type: EventTrackSkip, Previous: snap("a", 75, 1), Current: snap("b", 0, 1)}

	got := NewFormatter(WithEmoji(false)).Format(e)
	if got != "Skipped: A - Ta at 1:15" {
		t.Errorf("Format() = %q", got)
	}

	got = NewFormatter(WithTemplate("{{.Type}} {{.Title}} q={{.Queue}} v={{.Volume}}")).Format(e)
	if got != "track_skip Tb q=1 v=100" {
		t.Errorf("template Format() = %q", got)
	}

	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	got = NewFormatter(WithTimestamp(true), WithEmoji(false)).Format(Event{Type: EventVolumeChange, Timestamp: ts, Current: snap("a", 0, 0)})
	if got != "15:04:05 Volume: 100%" {
		t.Errorf("timestamped Format() = %q", got)
	}
}

func TestWatcherFollowsDatabase(t *testing.T) {
	path := t.TempDir() + "/state.db"
	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	st := store.NewState(db, urlfix.New("https://music.example.com"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewWatcher(st, path, 50*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Let the watcher take its initial snapshot.
	time.Sleep(100 * time.Millisecond)

	if err := st.SaveCurrent(ctx, core.Track{ID: "x", Title: "Song", Artist: "Band"}, nil, 0); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-w.Events():
		if e.Type != EventTrackChange || e.Current.Track == nil || e.Current.Track.ID != "x" {
			t.Errorf("event = %+v", e)
		}
		if !strings.Contains(NewFormatter().Format(e), "Now playing: Band - Song") {
			t.Errorf("Format() = %q", NewFormatter().Format(e))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event after state change")
	}

	w.Stop()
	if err := <-done; err != nil {
		t.Errorf("Start() error = %v", err)
	}
}
