package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/urlfix"
)

func openSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testKV(t *testing.T) map[string]KV {
	return map[string]KV{
		"memory": NewMemory(),
		"sqlite": openSQLite(t),
	}
}

func TestKV(t *testing.T) {
	ctx := context.Background()
	for name, kv := range testKV(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get(ctx, "missing"); ok || err != nil {
				t.Fatalf("Get(missing) = %v, %v", ok, err)
			}
			if err := kv.Set(ctx, "k", "v1"); err != nil {
				t.Fatal(err)
			}
			if err := kv.Set(ctx, "k", "v2"); err != nil {
				t.Fatal(err)
			}
			v, ok, err := kv.Get(ctx, "k")
			if err != nil || !ok || v != "v2" {
				t.Fatalf("Get(k) = %q, %v, %v", v, ok, err)
			}
			if err := kv.Delete(ctx, "k"); err != nil {
				t.Fatal(err)
			}
			if _, ok, _ := kv.Get(ctx, "k"); ok {
				t.Error("key survived Delete")
			}
		})
	}
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Set(ctx, KeyVolume, "0.4"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	// Migrations are idempotent and data survives
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	v, ok, err := db.Get(ctx, KeyVolume)
	if err != nil || !ok || v != "0.4" {
		t.Fatalf("Get() = %q, %v, %v", v, ok, err)
	}
}

func TestStateLoadDefaults(t *testing.T) {
	st := NewState(NewMemory(), urlfix.New("https://music.example.com"))
	res := st.Load(context.Background())
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	snap := res.Data
	if snap.Track != nil || len(snap.Queue) != 0 || snap.Index != -1 || snap.Position != 0 || snap.Volume != 1 {
		t.Errorf("defaults = %+v", snap)
	}
}

func TestStateRoundTripSanitizes(t *testing.T) {
	ctx := context.Background()
	for name, kv := range testKV(t) {
		t.Run(name, func(t *testing.T) {
			st := NewState(kv, urlfix.New("https://music.example.com"))

			track := core.Track{ID: "b", Title: "B", StreamURL: "http://127.0.0.1:5000/api/stream/b", Duration: core.Clock("3:00")}
			queue := []core.Track{{ID: "a", Cover: "/a.jpg"}, track}
			if err := st.SaveCurrent(ctx, track, queue, 1); err != nil {
				t.Fatal(err)
			}
			if err := st.SavePosition(ctx, 42.25); err != nil {
				t.Fatal(err)
			}
			if err := st.SaveVolume(ctx, 0.3); err != nil {
				t.Fatal(err)
			}

			res := st.Load(ctx)
			if res.HasErrors() {
				t.Fatalf("errors: %v", res.Errors)
			}
			snap := res.Data
			if snap.Track == nil || snap.Track.StreamURL != "https://music.example.com/api/stream/b" {
				t.Errorf("track = %+v", snap.Track)
			}
			if snap.Track.Duration.String() != "3:00" {
				t.Errorf("duration = %q", snap.Track.Duration.String())
			}
			if len(snap.Queue) != 2 || snap.Queue[0].Cover != "https://music.example.com/a.jpg" {
				t.Errorf("queue = %+v", snap.Queue)
			}
			if snap.Index != 1 || snap.Position != 42.25 || snap.Volume != 0.3 {
				t.Errorf("snapshot = %+v", snap)
			}
		})
	}
}

func TestStateLoadCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	_ = kv.Set(ctx, KeyLastPlayed, "{not json")
	_ = kv.Set(ctx, KeyLastIndex, "two")
	_ = kv.Set(ctx, KeyVolume, "0.5")

	res := NewState(kv, urlfix.New("")).Load(ctx)
	if len(res.Errors) != 2 {
		t.Fatalf("errors = %v, want 2", res.Errors)
	}
	if res.Data.Track != nil || res.Data.Index != -1 || res.Data.Volume != 0.5 {
		t.Errorf("snapshot = %+v", res.Data)
	}
}

func TestRecentLog(t *testing.T) {
	ctx := context.Background()
	st := NewState(NewMemory(), urlfix.New("https://music.example.com"))
	now := time.UnixMilli(1_700_000_000_000)

	for i := range RecentLimit + 5 {
		id := fmt.Sprintf("t%d", i)
		if _, err := st.AddRecent(ctx, core.Track{ID: id}, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatal(err)
		}
	}
	// Replaying an old track moves it to the front without duplicating it
	if _, err := st.AddRecent(ctx, core.Track{ID: "t10", StreamURL: "/api/stream/t10"}, now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	items, err := st.Recent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != RecentLimit {
		t.Fatalf("len = %d, want %d", len(items), RecentLimit)
	}
	if items[0].ID != "t10" || items[0].StreamURL != "https://music.example.com/api/stream/t10" {
		t.Errorf("head = %+v", items[0])
	}
	if items[1].ID != fmt.Sprintf("t%d", RecentLimit+4) {
		t.Errorf("second = %s", items[1].ID)
	}
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.ID] {
			t.Errorf("duplicate %s", it.ID)
		}
		seen[it.ID] = true
	}

	if err := st.RemoveRecent(ctx, "t10"); err != nil {
		t.Fatal(err)
	}
	items, _ = st.Recent(ctx)
	if items[0].ID == "t10" {
		t.Error("RemoveRecent did not remove entry")
	}
}
