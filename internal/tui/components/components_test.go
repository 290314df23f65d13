package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestListWindowFollowsCursor(t *testing.T) {
	var l list
	for range 7 {
		l.SelectNext()
	}

	start, end := l.window(10, 3)
	if start != 5 || end != 8 {
		t.Errorf("window = [%d, %d), want [5, 8)", start, end)
	}

	for range 20 {
		l.SelectPrev()
	}
	start, end = l.window(10, 3)
	if start != 0 || end != 3 {
		t.Errorf("window = [%d, %d), want [0, 3)", start, end)
	}
}

func TestListSelectedClamps(t *testing.T) {
	var l list
	for range 5 {
		l.SelectNext()
	}
	if got := l.Selected(3); got != 2 {
		t.Errorf("Selected(3) = %d, want 2", got)
	}
	if got := l.Selected(0); got != -1 {
		t.Errorf("Selected(0) = %d, want -1", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestBarsShape(t *testing.T) {
	out := Bars([]float64{0, 255, 128}, 2)
	lines := strings.Split(ansi.Strip(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Bars() produced %d rows, want 2", len(lines))
	}
	for _, line := range lines {
		if n := len([]rune(line)); n != 3 {
			t.Errorf("row %q has %d columns, want 3", line, n)
		}
	}
	if got := []rune(lines[0])[1]; got != '█' {
		t.Errorf("full bar top = %q, want █", got)
	}
	if got := []rune(lines[1])[0]; got != ' ' {
		t.Errorf("silent bar bottom = %q, want blank", got)
	}
}
