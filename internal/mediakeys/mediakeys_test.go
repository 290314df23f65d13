package mediakeys

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/tessro/mewzy/internal/core"
)

type fakeTransport struct {
	calls []string
	state core.PlaybackState
	subs  []func(core.PlaybackState)
}

func (f *fakeTransport) PlayFrom(context.Context, core.Track, []core.Track, bool) {
	f.calls = append(f.calls, "playfrom")
}
func (f *fakeTransport) Next(context.Context)     { f.calls = append(f.calls, "next") }
func (f *fakeTransport) Previous(context.Context) { f.calls = append(f.calls, "previous") }
func (f *fakeTransport) Enqueue(core.Track) bool {
	f.calls = append(f.calls, "enqueue")
	return true
}
func (f *fakeTransport) TogglePlay()               { f.calls = append(f.calls, "toggle") }
func (f *fakeTransport) Play()                     { f.calls = append(f.calls, "play") }
func (f *fakeTransport) Pause()                    { f.calls = append(f.calls, "pause") }
func (f *fakeTransport) SeekBy(d float64)          { f.calls = append(f.calls, fmt.Sprintf("seek %+g", d)) }
func (f *fakeTransport) SeekFraction(v float64)    { f.calls = append(f.calls, fmt.Sprintf("frac %g", v)) }
func (f *fakeTransport) AdjustVolume(d float64)    { f.calls = append(f.calls, fmt.Sprintf("vol %+g", d)) }
func (f *fakeTransport) ToggleMute()               { f.calls = append(f.calls, "mute") }
func (f *fakeTransport) State() core.PlaybackState { return f.state }

func (f *fakeTransport) Subscribe(fn func(core.PlaybackState)) func() {
	f.subs = append(f.subs, fn)
	return func() { f.subs = nil }
}

func (f *fakeTransport) publish(st core.PlaybackState) {
	f.state = st
	for _, fn := range f.subs {
		fn(st)
	}
}

type fakeView struct{ toggles, collapses int }

func (v *fakeView) ToggleExpanded() { v.toggles++ }
func (v *fakeView) Collapse()       { v.collapses++ }

func TestDispatcher(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{" ", "toggle"},
		{"k", "toggle"},
		{"N", "next"},
		{"shift+p", "previous"},
		{"left", "seek -5"},
		{"right", "seek +5"},
		{"j", "seek -10"},
		{"l", "seek +10"},
		{"up", "vol +0.1"},
		{"down", "vol -0.1"},
		{"m", "mute"},
		{"K", "toggle"},
		{"J", "seek -10"},
		{"L", "seek +10"},
		{"M", "mute"},
		{"3", "frac 0.3"},
		{"0", "frac 0"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			tr := &fakeTransport{}
			d := NewDispatcher(tr, nil, nil)
			if !d.Handle(context.Background(), tt.key) {
				t.Fatalf("Handle(%q) = false", tt.key)
			}
			if !slices.Equal(tr.calls, []string{tt.want}) {
				t.Errorf("calls = %v, want [%s]", tr.calls, tt.want)
			}
		})
	}
}

func TestDispatcherView(t *testing.T) {
	v := &fakeView{}
	d := NewDispatcher(&fakeTransport{}, v, nil)
	d.Handle(context.Background(), "f")
	d.Handle(context.Background(), "F")
	d.Handle(context.Background(), "esc")
	if v.toggles != 2 || v.collapses != 1 {
		t.Errorf("toggles = %d collapses = %d, want 2 1", v.toggles, v.collapses)
	}

	if NewDispatcher(&fakeTransport{}, nil, nil).Handle(context.Background(), "f") {
		t.Error("f with no view should be unhandled")
	}
}

func TestDispatcherSuppressedWhileTyping(t *testing.T) {
	tr := &fakeTransport{}
	typing := true
	d := NewDispatcher(tr, nil, func() bool { return typing })

	if d.Handle(context.Background(), "k") {
		t.Error("Handle returned true while typing")
	}
	typing = false
	if !d.Handle(context.Background(), "k") {
		t.Error("Handle returned false after focus left")
	}
	if len(tr.calls) != 1 {
		t.Errorf("calls = %v, want one toggle", tr.calls)
	}
}

func TestDispatcherUnbound(t *testing.T) {
	tr := &fakeTransport{}
	for _, key := range []string{"x", "n", "p"} {
		if NewDispatcher(tr, nil, nil).Handle(context.Background(), key) {
			t.Errorf("%s should be unbound", key)
		}
	}
}

func TestIntegration(t *testing.T) {
	tr := &fakeTransport{}
	s := NewStatusSurface()
	detach := Attach(context.Background(), tr, s)
	defer detach()

	a := core.Track{ID: "a", Title: "Alpha", Artist: "Ann"}
	tr.publish(core.PlaybackState{Track: &a, Playing: true})

	meta, playing := s.Snapshot()
	if meta.Title != "Alpha" || meta.Artist != "Ann" || !playing {
		t.Errorf("Snapshot() = %+v, %v", meta, playing)
	}

	tr.publish(core.PlaybackState{Track: &a, Playing: false})
	if _, playing := s.Snapshot(); playing {
		t.Error("playing not mirrored")
	}

	for _, a := range []Action{ActionPlay, ActionPause, ActionNext, ActionPrevious} {
		if !s.Trigger(a) {
			t.Errorf("no handler for %s", a)
		}
	}
	want := []string{"play", "pause", "next", "previous"}
	if !slices.Equal(tr.calls, want) {
		t.Errorf("calls = %v, want %v", tr.calls, want)
	}
}

func TestDesktopSurfaceOnlyOnMetadata(t *testing.T) {
	var got []string
	d := &DesktopSurface{notify: func(title, msg string) error {
		got = append(got, title+": "+msg)
		return nil
	}}

	d.SetMetadata(Metadata{Title: "Alpha", Artist: "Ann"})
	d.SetMetadata(Metadata{})
	d.SetPlaybackState(true)

	if !slices.Equal(got, []string{"Now playing: Alpha · Ann"}) {
		t.Errorf("notifications = %v", got)
	}
}
