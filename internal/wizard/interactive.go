package wizard

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/tessro/mewzy/internal/core"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{enabled: true}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptTrack launches the track picker if interactive mode is available.
// Returns the selected track, or nil if cancelled or not interactive.
func (i *Interactive) PromptTrack(title string, tracks []core.Track, currentID string) (*core.Track, error) {
	if !i.CanInteract() || len(tracks) == 0 {
		return nil, nil
	}
	return RunTrackPicker(title, tracks, currentID)
}

// PromptToken asks for a bearer token. It returns an empty string when not
// interactive.
func (i *Interactive) PromptToken(server string) (string, error) {
	if !i.CanInteract() {
		return "", nil
	}

	var token string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Paste your access token").
				Description("Copy it from your profile page on " + server).
				EchoMode(huh.EchoModePassword).
				Validate(ValidateToken).
				Value(&token),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("login cancelled: %w", err)
	}
	return strings.TrimSpace(token), nil
}

// ValidateToken rejects blank tokens and tokens containing whitespace.
func ValidateToken(s string) error {
	s = strings.TrimPrefix(strings.TrimSpace(s), "Bearer ")
	if s == "" {
		return errors.New("token is required")
	}
	if strings.ContainsAny(s, " \t\n") {
		return errors.New("token must not contain spaces")
	}
	return nil
}

// NeedsTrack returns true if a track argument is required but missing.
func NeedsTrack(args []string) bool {
	return len(args) == 0
}
