package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/mewzy/internal/lyrics"
	"github.com/tessro/mewzy/internal/tui/styles"
)

// Lyrics renders lyrics centred on the active line.
type Lyrics struct{}

func NewLyrics() *Lyrics {
	return &Lyrics{}
}

// Render draws doc with line active highlighted. loading shows a
// placeholder while the document is fetched.
func (c *Lyrics) Render(doc lyrics.Lyrics, active int, loading bool, width, height int) string {
	title := styles.PanelTitle("Lyrics", true)

	var content string
	switch {
	case loading:
		content = styles.Muted.Render("Fetching lyrics...")
	case len(doc.Lines) == 0:
		content = styles.Muted.Render(lyrics.Unavailable)
	default:
		content = c.renderLines(doc, active, width-4, max(1, height-4))
	}

	return styles.FocusedBorder.Padding(0, 1).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, "", content))
}

func (c *Lyrics) renderLines(doc lyrics.Lyrics, active, width, rows int) string {
	start := max(0, active-rows/2)
	end := min(len(doc.Lines), start+rows)
	start = max(0, end-rows)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		text := truncate(doc.Lines[i].Text, width)
		if i == active {
			lines = append(lines, styles.Highlight.Render(text))
		} else {
			lines = append(lines, styles.Dim.Render(text))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}
