package components

import "github.com/charmbracelet/x/ansi"

// truncate shortens s to max display cells, marking the cut with "...".
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= max {
		return s
	}
	if max <= 3 {
		return ansi.Truncate(s, max, "")
	}
	return ansi.Truncate(s, max, "...")
}

// fitPair truncates a title and artist to share width cells, giving the
// artist at least a third of the space.
func fitPair(title, artist string, available, minArtist int) (string, string) {
	if ansi.StringWidth(title)+ansi.StringWidth(artist) <= available {
		return title, artist
	}
	artistSpace := max(available/3, minArtist)
	artistSpace = min(artistSpace, available-minArtist)
	artistSpace = min(artistSpace, ansi.StringWidth(artist))
	return truncate(title, available-artistSpace), truncate(artist, artistSpace)
}
