package player

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/history"
	"github.com/tessro/mewzy/internal/session"
	"github.com/tessro/mewzy/internal/session/sessiontest"
	"github.com/tessro/mewzy/internal/store"
	"github.com/tessro/mewzy/internal/urlfix"
)

type fakeResumer struct {
	mu      sync.Mutex
	offsets map[string]float64
	gates   map[string]chan struct{}
	entered chan string
	reports []float64
}

func newFakeResumer() *fakeResumer {
	return &fakeResumer{
		offsets: make(map[string]float64),
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 16),
	}
}

func (f *fakeResumer) Decide(ctx context.Context, track core.Track, _ float64) (history.Decision, bool) {
	f.mu.Lock()
	off, ok := f.offsets[track.ID]
	gate := f.gates[track.ID]
	f.mu.Unlock()

	f.entered <- track.ID
	if gate != nil {
		<-gate
	}
	if !ok {
		return history.Decision{}, false
	}
	return history.Decision{Offset: off, Notice: "Resumed at " + core.FormatClock(off)}, true
}

func (f *fakeResumer) Report(_ context.Context, _ core.Track, offset float64) {
	f.mu.Lock()
	f.reports = append(f.reports, offset)
	f.mu.Unlock()
}

func (f *fakeResumer) Reports() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.reports)
}

type fakeAutoplay struct {
	tracks []core.Track
	calls  int
}

func (f *fakeAutoplay) Continue(context.Context, core.Track) []core.Track {
	f.calls++
	return f.tracks
}

type recorder struct {
	mu      sync.Mutex
	notices []core.Notice
}

func (r *recorder) Notify(n core.Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notices {
		out = append(out, n.Message)
	}
	return out
}

type harness struct {
	engine   *Engine
	handle   *sessiontest.Handle
	kv       *store.Memory
	resumer  *fakeResumer
	autoplay *fakeAutoplay
	notices  *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		handle:   sessiontest.New(),
		kv:       store.NewMemory(),
		resumer:  newFakeResumer(),
		autoplay: &fakeAutoplay{},
		notices:  &recorder{},
	}
	fix := urlfix.New("https://music.example.com")
	sess := session.New(h.handle)
	t.Cleanup(func() { sess.Close() })
	h.engine = New(Options{
		Session:  sess,
		State:    store.NewState(h.kv, fix),
		Fixer:    fix,
		Resumer:  h.resumer,
		Autoplay: h.autoplay,
		Notifier: h.notices,
	})
	return h
}

func track(id string) core.Track {
	return core.Track{
		ID:        id,
		Title:     "Song " + id,
		Artist:    "Artist",
		StreamURL: "http://localhost:8000/api/stream/" + id,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func currentID(e *Engine) string {
	st := e.State()
	if st.Track == nil {
		return ""
	}
	return st.Track.ID
}

func TestPlayFromReplacesQueue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	src := []core.Track{track("a"), track("b"), track("c")}

	h.engine.PlayFrom(ctx, track("b"), src, false)

	st := h.engine.State()
	if st.Index != 1 {
		t.Errorf("Index = %d, want 1", st.Index)
	}
	if len(st.Queue) != 3 {
		t.Fatalf("len(Queue) = %d, want 3", len(st.Queue))
	}
	if !st.Playing || st.Status != core.StatusPlaying {
		t.Errorf("Playing = %v, Status = %v, want playing", st.Playing, st.Status)
	}
	if got := h.handle.Loads(); len(got) != 1 || got[0] != "https://music.example.com/api/stream/b" {
		t.Errorf("Loads() = %v, want sanitized stream URL", got)
	}
	for _, q := range st.Queue {
		if q.StreamURL != "https://music.example.com/api/stream/"+q.ID {
			t.Errorf("queued StreamURL = %q, not sanitized", q.StreamURL)
		}
	}
}

func TestPlayFromTrackMissingFromSource(t *testing.T) {
	h := newHarness(t)
	h.engine.PlayFrom(context.Background(), track("z"), []core.Track{track("a"), track("b")}, false)

	st := h.engine.State()
	if st.Index != 0 {
		t.Errorf("Index = %d, want 0", st.Index)
	}
	if currentID(h.engine) != "z" {
		t.Errorf("current = %q, want z", currentID(h.engine))
	}
}

func TestPlayFromWithoutSourceReindexes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.engine.PlayFrom(ctx, track("a"), []core.Track{track("a"), track("b")}, false)

	h.engine.PlayFrom(ctx, track("b"), nil, false)
	if got := h.engine.State().Index; got != 1 {
		t.Errorf("Index = %d, want 1", got)
	}

	h.engine.PlayFrom(ctx, track("x"), nil, false)
	st := h.engine.State()
	if st.Index != 1 {
		t.Errorf("Index after unknown track = %d, want 1", st.Index)
	}
	if len(st.Queue) != 2 {
		t.Errorf("len(Queue) = %d, want 2", len(st.Queue))
	}
}

func TestPlayFromSameTrackToggles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.engine.PlayFrom(ctx, track("a"), []core.Track{track("a")}, false)

	h.engine.PlayFrom(ctx, track("a"), nil, false)
	if !h.handle.Paused() {
		t.Error("second PlayFrom should pause")
	}
	if st := h.engine.State(); st.Playing {
		t.Error("Playing = true after toggle")
	}

	h.engine.PlayFrom(ctx, track("a"), nil, false)
	if h.handle.Paused() {
		t.Error("third PlayFrom should resume")
	}
	if got := len(h.handle.Loads()); got != 1 {
		t.Errorf("Loads = %d, want 1", got)
	}

	h.engine.PlayFrom(ctx, track("a"), nil, true)
	if got := len(h.handle.Loads()); got != 2 {
		t.Errorf("forced Loads = %d, want 2", got)
	}
}

func TestResumeOffsetApplied(t *testing.T) {
	h := newHarness(t)
	h.resumer.offsets["a"] = 95
	h.engine.PlayFrom(context.Background(), track("a"), []core.Track{track("a")}, false)

	if got := h.handle.Seeks(); !slices.Equal(got, []float64{95}) {
		t.Errorf("Seeks() = %v, want [95]", got)
	}
	if got := h.notices.Messages(); !slices.Contains(got, "Resumed at 1:35") {
		t.Errorf("notices = %v, want resume notice", got)
	}
}

func TestStaleResumeDiscarded(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.resumer.offsets["a"] = 42
	gate := make(chan struct{})
	h.resumer.gates["a"] = gate
	src := []core.Track{track("a"), track("b")}

	done := make(chan struct{})
	go func() {
		h.engine.PlayFrom(ctx, track("a"), src, false)
		close(done)
	}()
	if id := <-h.resumer.entered; id != "a" {
		t.Fatalf("entered %q, want a", id)
	}

	h.engine.PlayFrom(ctx, track("b"), nil, true)
	<-h.resumer.entered
	close(gate)
	<-done

	if got := h.handle.Seeks(); slices.Contains(got, 42) {
		t.Errorf("Seeks() = %v, stale offset applied", got)
	}
	if got := h.handle.Plays(); got != 1 {
		t.Errorf("Plays() = %d, want 1", got)
	}
	if currentID(h.engine) != "b" {
		t.Errorf("current = %q, want b", currentID(h.engine))
	}
	if got := h.notices.Messages(); slices.Contains(got, "Resumed at 0:42") {
		t.Error("stale resume notice shown")
	}
}

func TestNextAutoplayAppends(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.engine.PlayFrom(ctx, track("b"), []core.Track{track("a"), track("b")}, false)
	h.autoplay.tracks = []core.Track{track("b"), track("c"), track("d")}

	h.engine.Next(ctx)

	st := h.engine.State()
	ids := make([]string, 0, len(st.Queue))
	for _, q := range st.Queue {
		ids = append(ids, q.ID)
	}
	if !slices.Equal(ids, []string{"a", "b", "c", "d"}) {
		t.Errorf("queue = %v, want [a b c d]", ids)
	}
	if st.Index != 2 || currentID(h.engine) != "c" {
		t.Errorf("Index = %d current = %q, want 2 c", st.Index, currentID(h.engine))
	}
	if got := h.notices.Messages(); !slices.Contains(got, noticeAutoplay) {
		t.Errorf("notices = %v, want autoplay notice", got)
	}
}

func TestNextWrapsWhenAutoplayEmpty(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.engine.PlayFrom(ctx, track("b"), []core.Track{track("a"), track("b")}, false)

	h.engine.Next(ctx)

	if h.autoplay.calls != 1 {
		t.Errorf("autoplay calls = %d, want 1", h.autoplay.calls)
	}
	if st := h.engine.State(); st.Index != 0 || currentID(h.engine) != "a" {
		t.Errorf("Index = %d current = %q, want 0 a", st.Index, currentID(h.engine))
	}
}

func TestNextMidQueue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.engine.PlayFrom(ctx, track("a"), []core.Track{track("a"), track("b")}, false)

	h.engine.Next(ctx)

	if h.autoplay.calls != 0 {
		t.Errorf("autoplay calls = %d, want 0", h.autoplay.calls)
	}
	if currentID(h.engine) != "b" {
		t.Errorf("current = %q, want b", currentID(h.engine))
	}
}

func TestNextEmptyQueueNoop(t *testing.T) {
	h := newHarness(t)
	h.engine.Next(context.Background())
	h.engine.Previous(context.Background())
	if got := len(h.handle.Loads()); got != 0 {
		t.Errorf("Loads = %d, want 0", got)
	}
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name    string
		pos     float64
		wantID  string
		wantIdx int
	}{
		{"restart past threshold", 10, "a", 0},
		{"restart just past threshold", 3.1, "a", 0},
		{"at threshold navigates", 3.0, "c", 2},
		{"just under threshold", 2.9, "c", 2},
		{"wrap to last", 2, "c", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			h.engine.PlayFrom(ctx, track("a"), []core.Track{track("a"), track("b"), track("c")}, false)
			h.handle.SetPosition(tt.pos)

			h.engine.Previous(ctx)

			st := h.engine.State()
			if currentID(h.engine) != tt.wantID || st.Index != tt.wantIdx {
				t.Errorf("current = %q index = %d, want %q %d", currentID(h.engine), st.Index, tt.wantID, tt.wantIdx)
			}
			if tt.pos > restartThreshold {
				seeks := h.handle.Seeks()
				if len(seeks) == 0 || seeks[len(seeks)-1] != 0 {
					t.Errorf("Seeks() = %v, want restart at 0", seeks)
				}
				if got := len(h.handle.Loads()); got != 1 {
					t.Errorf("Loads = %d, want 1", got)
				}
			}
		})
	}
}

func TestEnqueue(t *testing.T) {
	h := newHarness(t)
	h.engine.PlayFrom(context.Background(), track("a"), []core.Track{track("a")}, false)

	if !h.engine.Enqueue(track("b")) {
		t.Error("Enqueue(b) = false, want true")
	}
	if h.engine.Enqueue(track("b")) {
		t.Error("second Enqueue(b) = true, want false")
	}

	if got := len(h.engine.State().Queue); got != 2 {
		t.Errorf("len(Queue) = %d, want 2", got)
	}
	want := []string{noticeAdded, noticeDuplicate}
	if got := h.notices.Messages(); !slices.Equal(got, want) {
		t.Errorf("notices = %v, want %v", got, want)
	}
}

func TestSeek(t *testing.T) {
	h := newHarness(t)
	h.engine.PlayFrom(context.Background(), track("a"), []core.Track{track("a")}, false)
	h.handle.SetDuration(200)
	h.handle.SetPosition(195)

	h.engine.SeekBy(10)
	if got := h.handle.Position(); got != 200 {
		t.Errorf("Position after SeekBy(10) = %v, want 200", got)
	}

	h.handle.SetPosition(4)
	h.engine.SeekBy(-10)
	if got := h.handle.Position(); got != 0 {
		t.Errorf("Position after SeekBy(-10) = %v, want 0", got)
	}

	h.engine.SeekFraction(0.3)
	if got := h.handle.Position(); got != 60 {
		t.Errorf("Position after SeekFraction(0.3) = %v, want 60", got)
	}
}

func TestSeekFractionUnknownDuration(t *testing.T) {
	h := newHarness(t)
	h.engine.PlayFrom(context.Background(), track("a"), []core.Track{track("a")}, false)
	before := len(h.handle.Seeks())

	h.engine.SeekFraction(0.5)

	if got := len(h.handle.Seeks()); got != before {
		t.Errorf("Seeks grew from %d to %d", before, got)
	}
}

func TestVolume(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.SetVolume(0.4)
	if v, _, _ := h.kv.Get(ctx, store.KeyVolume); v != "0.4" {
		t.Errorf("persisted volume = %q, want 0.4", v)
	}

	h.engine.ToggleMute()
	if got := h.handle.Volume(); got != 0 {
		t.Errorf("muted handle volume = %v, want 0", got)
	}
	if v, _, _ := h.kv.Get(ctx, store.KeyVolume); v != "0.4" {
		t.Errorf("mute changed persisted volume to %q", v)
	}

	h.engine.AdjustVolume(0.1)
	st := h.engine.State()
	if st.Settings.Muted {
		t.Error("raising volume should unmute")
	}
	if st.Settings.Volume < 0.49 || st.Settings.Volume > 0.51 {
		t.Errorf("Volume = %v, want 0.5", st.Settings.Volume)
	}

	h.engine.AdjustVolume(-5)
	if got := h.engine.State().Settings.Volume; got != 0 {
		t.Errorf("Volume = %v, want clamped 0", got)
	}
}

func TestPersistsCurrentAndQueue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.engine.PlayFrom(ctx, track("b"), []core.Track{track("a"), track("b")}, false)

	if v, ok, _ := h.kv.Get(ctx, store.KeyLastIndex); !ok || v != "1" {
		t.Errorf("last_index = %q, %v, want 1", v, ok)
	}
	if _, ok, _ := h.kv.Get(ctx, store.KeyLastPlayed); !ok {
		t.Error("last_played_song not written")
	}

	h.handle.SetPosition(33)
	h.engine.tick(ctx)
	if v, _, _ := h.kv.Get(ctx, store.KeyLastPosition); v != "33" {
		t.Errorf("last_active_time = %q, want 33", v)
	}
}

func TestProgressPushedEveryTenTicks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.engine.PlayFrom(ctx, track("a"), []core.Track{track("a")}, false)
	h.handle.SetPosition(12)

	for range progressEvery - 1 {
		h.engine.tick(ctx)
	}
	time.Sleep(20 * time.Millisecond)
	if got := h.resumer.Reports(); len(got) != 0 {
		t.Fatalf("Reports() = %v before ten ticks", got)
	}

	h.engine.tick(ctx)
	waitFor(t, "progress report", func() bool { return len(h.resumer.Reports()) == 1 })
	if got := h.resumer.Reports()[0]; got != 12 {
		t.Errorf("reported %v, want 12", got)
	}
}

func TestPauseResetsProgressCounter(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.engine.PlayFrom(ctx, track("a"), []core.Track{track("a")}, false)

	for range progressEvery - 1 {
		h.engine.tick(ctx)
	}
	h.engine.Pause()
	h.engine.tick(ctx)
	h.engine.Play()
	h.engine.tick(ctx)

	time.Sleep(20 * time.Millisecond)
	if got := h.resumer.Reports(); len(got) != 0 {
		t.Errorf("Reports() = %v, want none after pause", got)
	}
}

func TestEndedAdvances(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.engine.Run(ctx)

	h.engine.PlayFrom(ctx, track("a"), []core.Track{track("a"), track("b")}, false)
	h.handle.Emit(session.EventEnded)

	waitFor(t, "advance to b", func() bool { return currentID(h.engine) == "b" && h.engine.State().Playing })
	waitFor(t, "zero report", func() bool { return slices.Contains(h.resumer.Reports(), 0) })
}

func TestEndedRepeatOne(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.engine.Run(ctx)

	h.engine.PlayFrom(ctx, track("a"), []core.Track{track("a"), track("b")}, false)
	h.engine.SetRepeat(core.RepeatOne)
	h.handle.SetPosition(180)
	h.handle.Emit(session.EventEnded)

	waitFor(t, "replay", func() bool { return h.handle.Plays() == 2 })
	if currentID(h.engine) != "a" {
		t.Errorf("current = %q, want a", currentID(h.engine))
	}
	if got := h.handle.Position(); got != 0 {
		t.Errorf("Position = %v, want 0", got)
	}
	if got := len(h.handle.Loads()); got != 1 {
		t.Errorf("Loads = %d, want 1", got)
	}
}

func TestLoadFailureLeavesPaused(t *testing.T) {
	h := newHarness(t)
	h.handle.FailLoads(errors.New("boom"))

	h.engine.PlayFrom(context.Background(), track("a"), []core.Track{track("a")}, false)

	st := h.engine.State()
	if st.Playing || st.Status != core.StatusPaused || st.Buffering {
		t.Errorf("state = playing %v status %v buffering %v, want paused", st.Playing, st.Status, st.Buffering)
	}
	if h.handle.Plays() != 0 {
		t.Error("Play called after failed load")
	}
}

func TestRestore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fix := urlfix.New("https://music.example.com")
	st := store.NewState(h.kv, fix)
	if err := st.SaveCurrent(ctx, track("b"), []core.Track{track("a"), track("b")}, 1); err != nil {
		t.Fatal(err)
	}
	if err := st.SavePosition(ctx, 77); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveVolume(ctx, 0.25); err != nil {
		t.Fatal(err)
	}

	if err := h.engine.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got := h.engine.State()
	if currentID(h.engine) != "b" || got.Index != 1 || len(got.Queue) != 2 {
		t.Errorf("restored current %q index %d queue %d", currentID(h.engine), got.Index, len(got.Queue))
	}
	if got.Playing || h.handle.Plays() != 0 {
		t.Error("Restore must not start playback")
	}
	if got.Settings.Volume != 0.25 || h.handle.Volume() != 0.25 {
		t.Errorf("volume = %v / %v, want 0.25", got.Settings.Volume, h.handle.Volume())
	}
	if seeks := h.handle.Seeks(); !slices.Equal(seeks, []float64{77}) {
		t.Errorf("Seeks() = %v, want [77]", seeks)
	}
	if h.autoplay.calls != 0 {
		t.Error("Restore triggered autoplay")
	}
}

func TestRestoreKeepsLoadedSource(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.engine.PlayFrom(ctx, track("a"), []core.Track{track("a")}, false)

	st := store.NewState(h.kv, urlfix.New("https://music.example.com"))
	if err := st.SaveCurrent(ctx, track("b"), []core.Track{track("b")}, 0); err != nil {
		t.Fatal(err)
	}

	if err := h.engine.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if currentID(h.engine) != "a" {
		t.Errorf("current = %q, want a", currentID(h.engine))
	}
	if got := len(h.handle.Loads()); got != 1 {
		t.Errorf("Loads = %d, want 1", got)
	}
	if !h.engine.State().Playing {
		t.Error("Restore paused a playing source")
	}
}

func TestRestoreEmpty(t *testing.T) {
	h := newHarness(t)
	if err := h.engine.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	st := h.engine.State()
	if st.Track != nil || st.Index != -1 || len(h.handle.Loads()) != 0 {
		t.Errorf("unexpected state after empty restore: %+v", st)
	}
}

func TestShuffleNavigationVisitsAll(t *testing.T) {
	h := newHarness(t)
	h.engine.shuffleNav = true
	ctx := context.Background()
	src := []core.Track{track("a"), track("b"), track("c"), track("d")}
	h.engine.PlayFrom(ctx, track("a"), src, false)
	h.engine.SetShuffle(true)

	seen := map[string]bool{currentID(h.engine): true}
	for range len(src) - 1 {
		h.engine.Next(ctx)
		seen[currentID(h.engine)] = true
	}
	if len(seen) != len(src) {
		t.Errorf("visited %v, want all %d tracks", seen, len(src))
	}
	if h.autoplay.calls != 0 {
		t.Errorf("autoplay calls = %d before order exhausted", h.autoplay.calls)
	}
}

func TestSubscribe(t *testing.T) {
	h := newHarness(t)
	var mu sync.Mutex
	var n int
	unsub := h.engine.Subscribe(func(core.PlaybackState) {
		mu.Lock()
		n++
		mu.Unlock()
	})

	h.engine.ToggleMute()
	unsub()
	h.engine.ToggleMute()

	mu.Lock()
	defer mu.Unlock()
	if n != 1 {
		t.Errorf("notified %d times, want 1", n)
	}
}
