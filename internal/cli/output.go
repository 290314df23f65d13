package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tessro/mewzy/internal/core"
)

// Table wraps a go-pretty table writer.
type Table struct {
	t table.Writer
}

// NewTable creates a new table on stdout with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Format.Header = text.FormatDefault
	if len(headers) > 0 {
		row := make(table.Row, len(headers))
		for i, h := range headers {
			row[i] = h
		}
		t.AppendHeader(row)
	}
	return &Table{t: t}
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	t.t.AppendRow(row)
}

// Flush writes the table output.
func (t *Table) Flush() {
	t.t.Render()
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// trackTable prints tracks with their position. The track at current is
// marked with the play icon.
func trackTable(tracks []core.Track, current int) {
	tbl := NewTable("", "#", "TITLE", "ARTIST", "LENGTH", "ID")
	for i, t := range tracks {
		tbl.Row(
			StatusIcon(i == current),
			strconv.Itoa(i+1),
			TruncateString(t.Title, 40),
			TruncateString(t.Artist, 30),
			t.Duration.String(),
			t.ID,
		)
	}
	tbl.Flush()
}

// StatusIcon returns an icon for the given boolean status.
func StatusIcon(active bool) string {
	if active {
		return "▶"
	}
	return " "
}

// TruncateString truncates s to maxLen cells, adding "…" if truncated.
func TruncateString(s string, maxLen int) string {
	return ansi.Truncate(s, maxLen, "…")
}

// FormatProgress formats a progress bar.
func FormatProgress(position, duration float64, width int) string {
	if duration <= 0 {
		return strings.Repeat("─", width)
	}

	filled := int(position / duration * float64(width))
	filled = max(0, min(filled, width))

	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

// trackLine formats "Title · Artist" for plain output.
func trackLine(t core.Track) string {
	if t.Artist == "" {
		return t.Title
	}
	return fmt.Sprintf("%s · %s", t.Title, t.Artist)
}
