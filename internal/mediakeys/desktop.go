package mediakeys

import (
	"log/slog"
	"strings"

	"github.com/gen2brain/beeep"
)

// DesktopSurface shows a desktop notification whenever the track changes.
// Desktop notifications carry no buttons, so action handlers are ignored.
type DesktopSurface struct {
	notify func(title, message string) error
}

// NewDesktopSurface creates a surface that posts through the OS
// notification service.
func NewDesktopSurface() *DesktopSurface {
	return &DesktopSurface{notify: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
}

func (d *DesktopSurface) SetMetadata(m Metadata) {
	if m.Title == "" {
		return
	}
	msg := m.Title
	if m.Artist != "" {
		msg = strings.Join([]string{m.Title, m.Artist}, " · ")
	}
	if err := d.notify("Now playing", msg); err != nil {
		slog.Debug("desktop notification failed", "error", err)
	}
}

func (d *DesktopSurface) SetPlaybackState(bool) {}

func (d *DesktopSurface) SetActionHandler(Action, func()) {}
