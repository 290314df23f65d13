package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/tui/styles"
)

// Queue displays the play queue with a movable cursor
type Queue struct {
	list
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// Render renders the queue panel
func (q *Queue) Render(queue *core.Queue, width, height int, focused bool) string {
	title := styles.PanelTitle("Queue", focused)

	var content string
	if queue == nil || queue.IsEmpty() {
		content = styles.Muted.Render("Queue is empty")
	} else {
		title = styles.PanelTitle(fmt.Sprintf("Queue (%d)", queue.Len()), focused)
		content = q.renderQueue(queue, width-4, height-4, focused)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (q *Queue) renderQueue(queue *core.Queue, width, maxLines int, focused bool) string {
	tracks := queue.Tracks
	start, end := q.window(len(tracks), maxLines-1)
	lines := make([]string, 0, end-start+1)

	// selector + "XX. " + "▶ " + " - "
	const overhead = 11

	for i := start; i < end; i++ {
		track := tracks[i]
		num := fmt.Sprintf("%2d.", i+1)
		title, artist := fitPair(track.Title, track.Artist, width-overhead, 10)

		var line string
		if i == queue.CurrentIndex {
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s - %s", num, title, artist))
		} else {
			line = fmt.Sprintf("%s   %s - %s", styles.Dim.Render(num), title, styles.Muted.Render(artist))
		}
		lines = append(lines, selector(focused && i == q.cursor)+line)
	}

	if end < len(tracks) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
