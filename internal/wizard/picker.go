package wizard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/mewzy/internal/core"
)

// TrackModel is the bubbletea model for the track picker.
type TrackModel struct {
	title     string
	tracks    []core.Track
	currentID string
	cursor    int
	selected  *core.Track
	width     int
	height    int
}

// Styles for track picker
var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	pickerItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	pickerActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	pickerDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// NewTrackModel creates a picker over tracks. The track with currentID, if
// any, is marked as playing.
func NewTrackModel(title string, tracks []core.Track, currentID string) TrackModel {
	return TrackModel{
		title:     title,
		tracks:    tracks,
		currentID: currentID,
		width:     80,
		height:    20,
	}
}

// Init initializes the model.
func (m TrackModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m TrackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter", " ":
			if len(m.tracks) > 0 && m.cursor < len(m.tracks) {
				t := m.tracks[m.cursor]
				m.selected = &t
				return m, tea.Quit
			}

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.tracks)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = max(0, len(m.tracks)-1)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the model.
func (m TrackModel) View() string {
	var b strings.Builder

	b.WriteString(pickerTitleStyle.Render("🎵 " + m.title))
	b.WriteString("\n\n")

	if len(m.tracks) == 0 {
		b.WriteString(pickerDimStyle.Render("No tracks found"))
		b.WriteString("\n")
	} else {
		start, end := visibleRange(m.cursor, len(m.tracks), max(1, m.height-6))
		for i := start; i < end; i++ {
			t := m.tracks[i]
			var line strings.Builder

			if t.ID == m.currentID {
				line.WriteString(pickerActiveStyle.Render("● "))
			} else {
				line.WriteString(pickerDimStyle.Render("○ "))
			}
			line.WriteString(t.Title)
			if t.Artist != "" {
				line.WriteString(pickerDimStyle.Render(" - " + t.Artist))
			}
			if d := t.Duration.String(); d != "" {
				line.WriteString(pickerDimStyle.Render(" (" + d + ")"))
			}

			if i == m.cursor {
				b.WriteString(pickerSelectedStyle.Render("▸ " + line.String()))
			} else {
				b.WriteString(pickerItemStyle.Render("  " + line.String()))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(pickerDimStyle.Render("↑/↓ navigate • enter play • esc quit"))

	return b.String()
}

func visibleRange(cursor, n, rows int) (int, int) {
	start := max(0, cursor-rows+1)
	return start, min(n, start+rows)
}

// Selected returns the selected track, or nil if none.
func (m TrackModel) Selected() *core.Track {
	return m.selected
}

// RunTrackPicker runs the picker and returns the chosen track.
func RunTrackPicker(title string, tracks []core.Track, currentID string) (*core.Track, error) {
	p := tea.NewProgram(NewTrackModel(title, tracks, currentID), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(TrackModel).Selected(), nil
}
