package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/store"
	"github.com/tessro/mewzy/internal/tail"
	"github.com/tessro/mewzy/internal/urlfix"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
	tailInterval  time.Duration
	tailHistory   int
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback changes in real-time",
	Long: `Watch the saved state of a running player and print changes as they happen.

Run 'mewzy ui' or 'mewzy play' in another terminal and follow along.

Events tracked:
  - Track changes (new song started)
  - Track completions (song finished)
  - Track skips (song skipped before completion)
  - Queue changes
  - Volume changes

Templates see .Type, .Time, .ID, .Title, .Artist, .Duration, .Position,
.Queue and .Volume, e.g. --format '{{.Artist}} - {{.Title}}'.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	tailCmd.Flags().DurationVarP(&tailInterval, "interval", "i", 5*time.Second, "fallback poll interval")
	tailCmd.Flags().IntVarP(&tailHistory, "history", "n", 5, "recent tracks to show on start")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	db, state, err := openState(urlfix.New(cfg.API.BaseURL, cfg.API.StaleHosts...))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
	)

	ctx := cmd.Context()
	showInitialState(ctx, state, formatter)

	watcher := tail.NewWatcher(state, db.Path(), tailInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return ignoreCanceled(<-errCh)
			}
			fmt.Println(formatter.Format(event))

		case err := <-errCh:
			return ignoreCanceled(err)
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// showInitialState prints recently played tracks and the saved track.
func showInitialState(ctx context.Context, state *store.State, formatter *tail.Formatter) {
	if tailHistory > 0 {
		if items, err := state.Recent(ctx); err == nil {
			items = limit(items, tailHistory)
			// Oldest first so the newest ends up at the bottom.
			for i := len(items) - 1; i >= 0; i-- {
				item := items[i]
				timestamp := ""
				if tailTimestamp {
					timestamp = item.PlayedAt().Local().Format("15:04:05") + " "
				}
				emoji := ""
				if !tailNoEmoji {
					emoji = "⏪ "
				}
				fmt.Printf("%s%s%s\n", timestamp, emoji, trackLine(item.Track))
			}
		}
	}

	res := state.Load(ctx)
	if res.Data.Track != nil {
		fmt.Println(formatter.Format(tail.Event{
			Type:      tail.EventTrackChange,
			Timestamp: time.Now(),
			Current:   &res.Data,
		}))
	}
}
