package urlfix

import (
	"testing"

	"github.com/tessro/mewzy/internal/core"
)

func TestURL(t *testing.T) {
	f := New("https://music.example.com/")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"http://localhost:8000/api/stream/1", "https://music.example.com/api/stream/1"},
		{"https://127.0.0.1/covers/a.jpg", "https://music.example.com/covers/a.jpg"},
		{"localhost:3000/x", "https://music.example.com/x"},
		{"http://localhost", "https://music.example.com"},
		{"/api/stream/1", "https://music.example.com/api/stream/1"},
		{"//cdn.example.net/a.jpg", "//cdn.example.net/a.jpg"},
		{"https://cdn.example.net/a.jpg", "https://cdn.example.net/a.jpg"},
		{"http://localhost.example.net/a", "http://localhost.example.net/a"},
		{"https://music.example.com/api/stream/1", "https://music.example.com/api/stream/1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := f.URL(tt.in)
			if got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := f.URL(got); again != got {
				t.Errorf("not idempotent: URL(%q) = %q", got, again)
			}
		})
	}
}

func TestURLCustomHosts(t *testing.T) {
	f := New("https://music.example.com", "dev.local")
	if got := f.URL("http://dev.local:9000/s"); got != "https://music.example.com/s" {
		t.Errorf("got %q", got)
	}
	if got := f.URL("http://localhost/s"); got != "http://localhost/s" {
		t.Errorf("localhost should not be rewritten with custom hosts, got %q", got)
	}
}

func TestTracks(t *testing.T) {
	f := New("https://music.example.com")
	in := []core.Track{{ID: "1", Cover: "/c.jpg", StreamURL: "http://localhost:8000/api/stream/1"}}
	out := f.Tracks(in)
	if out[0].Cover != "https://music.example.com/c.jpg" || out[0].StreamURL != "https://music.example.com/api/stream/1" {
		t.Errorf("unexpected %+v", out[0])
	}
	if in[0].Cover != "/c.jpg" {
		t.Error("input slice was mutated")
	}
	if f.Tracks(nil) != nil {
		t.Error("Tracks(nil) should be nil")
	}
}
