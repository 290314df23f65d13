package mediakeys

import (
	"context"
	"strings"

	"github.com/tessro/mewzy/internal/core"
)

const (
	shortSeek  = 5.0
	longSeek   = 10.0
	volumeStep = 0.1
)

// FocusProbe reports whether a text input currently has focus.
type FocusProbe func() bool

// View is the expandable player view the keyboard can toggle.
type View interface {
	ToggleExpanded()
	Collapse()
}

// Dispatcher maps key names, as reported by bubbletea, to transport
// operations.
type Dispatcher struct {
	t       core.Transport
	view    View
	focused FocusProbe
}

// NewDispatcher creates a dispatcher. view and focused may be nil.
func NewDispatcher(t core.Transport, view View, focused FocusProbe) *Dispatcher {
	return &Dispatcher{t: t, view: view, focused: focused}
}

// Handle runs the operation bound to key and reports whether key was bound.
// Nothing runs while a text input has focus.
func (d *Dispatcher) Handle(ctx context.Context, key string) bool {
	if d.focused != nil && d.focused() {
		return false
	}

	// Letter shortcuts ignore case, except N and P which mean shift.
	if len(key) == 1 && key != "N" && key != "P" {
		key = strings.ToLower(key)
	}

	switch key {
	case " ", "space", "k":
		d.t.TogglePlay()
	case "N", "shift+n":
		d.t.Next(ctx)
	case "P", "shift+p":
		d.t.Previous(ctx)
	case "left":
		d.t.SeekBy(-shortSeek)
	case "right":
		d.t.SeekBy(shortSeek)
	case "j":
		d.t.SeekBy(-longSeek)
	case "l":
		d.t.SeekBy(longSeek)
	case "up":
		d.t.AdjustVolume(volumeStep)
	case "down":
		d.t.AdjustVolume(-volumeStep)
	case "m":
		d.t.ToggleMute()
	case "f":
		if d.view == nil {
			return false
		}
		d.view.ToggleExpanded()
	case "esc":
		if d.view == nil {
			return false
		}
		d.view.Collapse()
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		d.t.SeekFraction(float64(key[0]-'0') / 10)
	default:
		return false
	}
	return true
}
