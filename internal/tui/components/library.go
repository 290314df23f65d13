package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/tui/styles"
)

// Library lists browsable tracks (the public feed, or liked songs when
// logged in).
type Library struct {
	list
}

// NewLibrary creates a new Library component
func NewLibrary() *Library {
	return &Library{}
}

// Render renders the library panel
func (l *Library) Render(title string, tracks []core.Track, currentID string, width, height int, focused bool) string {
	heading := styles.PanelTitle(title, focused)

	var content string
	if len(tracks) == 0 {
		content = styles.Muted.Render("Nothing here yet")
	} else {
		content = l.renderTracks(tracks, currentID, width-4, height-4, focused)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, heading, "", content))
}

func (l *Library) renderTracks(tracks []core.Track, currentID string, width, maxLines int, focused bool) string {
	start, end := l.window(len(tracks), maxLines)
	lines := make([]string, 0, end-start)

	for i := start; i < end; i++ {
		t := tracks[i]
		title, artist := fitPair(t.Title, t.Artist, width-6, 8)

		name := title
		if focused && i == l.cursor {
			name = styles.Highlight.Render(name)
		}
		active := ""
		if t.ID == currentID {
			active = styles.Playing.Render(" ●")
		}
		lines = append(lines, selector(focused && i == l.cursor)+name+" "+styles.Muted.Render(artist)+active)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
