package components

import "github.com/tessro/mewzy/internal/tui/styles"

// list is a cursor over a scrollable list of rows.
type list struct {
	cursor int
	offset int
}

// SelectNext moves the cursor down
func (l *list) SelectNext() {
	l.cursor++
}

// SelectPrev moves the cursor up
func (l *list) SelectPrev() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// Selected returns the cursor index, clamped to a list of n rows. It is -1
// for an empty list.
func (l *list) Selected(n int) int {
	if n == 0 {
		return -1
	}
	return max(0, min(l.cursor, n-1))
}

// window clamps the cursor to n rows and returns the visible range for a
// panel showing visible rows, scrolled so the cursor stays in view.
func (l *list) window(n, visible int) (start, end int) {
	visible = max(1, visible)
	l.cursor = max(0, min(l.cursor, n-1))
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}
	l.offset = max(0, min(l.offset, max(0, n-visible)))
	return l.offset, min(n, l.offset+visible)
}

func selector(selected bool) string {
	if selected {
		return styles.Highlight.Render("▸ ")
	}
	return "  "
}
