package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/tui/styles"
	"github.com/tessro/mewzy/internal/visualizer"
)

var barLevels = []rune(" ▁▂▃▄▅▆▇█")

// NowPlaying displays the current track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel. bars are visualizer values in
// 0-255, drawn only when expanded.
func (n *NowPlaying) Render(state *core.PlaybackState, bars []float64, width, height int, focused, expanded bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if state == nil || state.Track == nil {
		content = styles.Muted.Render("Nothing playing. Pick a track from the library.")
	} else {
		content = n.renderTrack(state, width-4)
		if expanded {
			rows := max(1, height-14)
			content = lipgloss.JoinVertical(lipgloss.Left, content, "", Bars(bars, rows))
		}
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (n *NowPlaying) renderTrack(state *core.PlaybackState, width int) string {
	track := state.Track

	icon := styles.StatusIcon(state.Playing, state.Buffering)
	title := styles.Title.Width(max(1, width-4)).Render(truncate(track.Title, width-4))
	artist := styles.Subtitle.Render(truncate(track.Artist, width-2))

	progressWidth := max(10, width-16)
	progress := fmt.Sprintf("%s %s %s",
		core.FormatClock(state.Position),
		styles.ProgressBar(state.ProgressPercent(), progressWidth),
		durationLabel(state))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"",
		progress,
		"",
		n.renderSettings(state.Settings),
	)
}

func durationLabel(state *core.PlaybackState) string {
	if state.Duration > 0 {
		return core.FormatClock(state.Duration)
	}
	if s := state.Track.Duration.String(); s != "" {
		return s
	}
	return "--:--"
}

func (n *NowPlaying) renderSettings(s core.Settings) string {
	vol := fmt.Sprintf("🔊 %d%%", int(math.Round(s.Volume*100)))
	if s.Muted {
		vol = "🔇 muted"
	}

	repeat := "repeat off"
	switch s.Repeat {
	case core.RepeatAll:
		repeat = "🔁 all"
	case core.RepeatOne:
		repeat = "🔂 one"
	}

	shuffle := "shuffle off"
	if s.Shuffle {
		shuffle = "🔀 on"
	}

	return styles.Muted.Render(strings.Join([]string{vol, repeat, shuffle}, "   "))
}

// Bars draws visualizer values as columns rows tall.
func Bars(values []float64, rows int) string {
	if len(values) == 0 || rows <= 0 {
		return ""
	}
	steps := float64(rows * (len(barLevels) - 1))
	lines := make([]string, rows)
	for r := range rows {
		// r counts rows from the top
		floor := float64((rows - 1 - r) * (len(barLevels) - 1))
		var b strings.Builder
		for _, v := range values {
			h := visualizer.Height(v, 0, steps)
			cell := int(math.Round(h - floor))
			cell = max(0, min(len(barLevels)-1, cell))
			b.WriteRune(barLevels[cell])
		}
		lines[r] = b.String()
	}
	return styles.Highlight.Render(strings.Join(lines, "\n"))
}
