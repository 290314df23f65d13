package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/tessro/mewzy/internal/store"
	"github.com/tessro/mewzy/internal/tui/styles"
)

// History displays recently played tracks
type History struct {
	list
	now func() time.Time
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{now: time.Now}
}

// Render renders the history panel
func (h *History) Render(entries []store.RecentItem, width, height int, focused bool) string {
	title := styles.PanelTitle("Recently Played", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4, focused)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (h *History) renderHistory(entries []store.RecentItem, width, maxLines int, focused bool) string {
	start, end := h.window(len(entries), maxLines)
	lines := make([]string, 0, end-start)

	// selector + " - " + gap before the time
	const overhead = 7

	for i := start; i < end; i++ {
		entry := entries[i]
		ago := humanize.RelTime(entry.PlayedAt(), h.now(), "ago", "from now")
		timeWidth := ansi.StringWidth(ago)

		title, artist := fitPair(entry.Title, entry.Artist, width-overhead-timeWidth, 8)
		info := fmt.Sprintf("%s - %s", title, styles.Muted.Render(artist))

		padding := max(1, width-2-ansi.StringWidth(info)-timeWidth)
		line := selector(focused && i == h.cursor) + info +
			lipgloss.NewStyle().Width(padding).Render("") +
			styles.Dim.Render(ago)
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
