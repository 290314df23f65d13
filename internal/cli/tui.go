package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/tui"
)

var (
	tuiRefresh   int
	tuiNoRestore bool
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive player",
	Long: `Launch the interactive terminal player.

The player provides a live view with:
  • Now Playing - current track, progress, settings
  • Queue - the play queue
  • Library - your likes, or the public feed as a guest
  • History - recently played tracks

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  Space, k     Play/Pause
  N, P         Next/previous track
  ←/→, j/l     Seek 5s/10s
  ↑/↓          Volume
  0-9          Seek to 0%-90%
  f            Expanded view
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "refresh interval in milliseconds (default: tui.refresh_interval)")
	tuiCmd.Flags().BoolVar(&tuiNoRestore, "fresh", false, "start without restoring the previous session")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(true)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := newStack(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	refresh := cfg.TUI.Refresh()
	if tuiRefresh > 0 {
		refresh = time.Duration(tuiRefresh) * time.Millisecond
	}

	return tui.Run(tui.NewApp(tui.Options{
		Engine:  s.engine,
		Recent:  s.recent,
		API:     s.api,
		Notices: s.notices,
		Surface: s.surface,
		Refresh: refresh,
		Bars:    cfg.TUI.VisualizerBars,
		Theme:   cfg.TUI.Theme,
		Restore: !tuiNoRestore,
	}))
}
