package wizard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/mewzy/internal/core"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTrackPickerSelects(t *testing.T) {
	tracks := []core.Track{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}, {ID: "c", Title: "C"}}
	var m tea.Model = NewTrackModel("Pick", tracks, "b")

	for _, k := range []string{"down", "down", "down", "up", "enter"} {
		m, _ = m.Update(key(k))
	}

	got := m.(TrackModel).Selected()
	if got == nil || got.ID != "b" {
		t.Fatalf("Selected() = %+v, want b", got)
	}
}

func TestTrackPickerCancel(t *testing.T) {
	var m tea.Model = NewTrackModel("Pick", []core.Track{{ID: "a"}}, "")
	m, cmd := m.Update(key("esc"))
	if cmd == nil {
		t.Error("esc should quit")
	}
	if m.(TrackModel).Selected() != nil {
		t.Error("cancelled picker has a selection")
	}
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		cursor, n, rows    int
		wantStart, wantEnd int
	}{
		{0, 10, 4, 0, 4},
		{6, 10, 4, 3, 7},
		{9, 10, 4, 6, 10},
		{0, 2, 4, 0, 2},
	}
	for _, tt := range tests {
		start, end := visibleRange(tt.cursor, tt.n, tt.rows)
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("visibleRange(%d, %d, %d) = %d, %d, want %d, %d",
				tt.cursor, tt.n, tt.rows, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"abc.def.ghi", false},
		{"Bearer abc", false},
		{"  ", true},
		{"two words", true},
	}
	for _, tt := range tests {
		if err := ValidateToken(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("ValidateToken(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}
