package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/api"
	"github.com/tessro/mewzy/internal/core"
	mewzyerrors "github.com/tessro/mewzy/internal/errors"
	"github.com/tessro/mewzy/internal/history"
	"github.com/tessro/mewzy/internal/store"
)

var (
	historyRemote bool
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played tracks",
	Long: `Show the tracks played on this machine, newest first.

With --remote the listening history stored on the server is shown instead,
together with the saved resume position of each track.`,
	RunE: runHistoryList,
}

var historyRemoveCmd = &cobra.Command{
	Use:     "rm <track-id>",
	Aliases: []string{"remove"},
	Short:   "Remove a track from history",
	Long:    `Remove a track from the local history and, when logged in, from the server.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runHistoryRemove,
}

func init() {
	historyCmd.Flags().BoolVar(&historyRemote, "remote", false, "show server history (requires login)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show (0 for all)")
	historyCmd.AddCommand(historyRemoveCmd)
	rootCmd.AddCommand(historyCmd)
}

// openRecent opens the recent log with its server side.
func openRecent() (*history.Recent, *remote, func(), error) {
	r, err := openRemote(nil)
	if err != nil {
		return nil, nil, nil, err
	}
	db, state, err := openState(r.fix)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() { _ = db.Close() }
	return history.NewRecent(state, r.api, r.fix), r, closeDB, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	recent, r, closeDB, err := openRecent()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx := cmd.Context()
	if historyRemote {
		if !r.api.HasToken() {
			return fmt.Errorf("%w: server history needs a login", mewzyerrors.ErrFeatureUnavailable)
		}
		items, err := recent.FetchRemote(ctx)
		if err != nil {
			cached, cacheErr := recent.Cached(ctx)
			if cacheErr != nil || len(cached) == 0 {
				return err
			}
			fmt.Printf("Server unreachable, showing cached history: %v\n", err)
			items = cached
		}
		return printRemoteHistory(limit(items, historyLimit))
	}

	items, err := recent.List(ctx)
	if err != nil {
		return err
	}
	return printLocalHistory(limit(items, historyLimit))
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func printLocalHistory(items []store.RecentItem) error {
	if JSONOutput() {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("Nothing played yet.")
		return nil
	}

	tbl := NewTable("#", "TITLE", "ARTIST", "PLAYED", "ID")
	for i, item := range items {
		tbl.Row(
			strconv.Itoa(i+1),
			TruncateString(item.Title, 40),
			TruncateString(item.Artist, 30),
			humanize.Time(item.PlayedAt()),
			item.ID,
		)
	}
	tbl.Flush()
	return nil
}

func printRemoteHistory(items []api.HistoryItem) error {
	if JSONOutput() {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("No server history.")
		return nil
	}

	tbl := NewTable("#", "TITLE", "ARTIST", "RESUME", "PLAYED", "ID")
	for i, item := range items {
		played := item.PlayedAt
		if t, err := time.Parse(time.RFC3339, item.PlayedAt); err == nil {
			played = humanize.Time(t)
		}
		resume := ""
		if history.ShouldResume(item.ResumeTime, durationOf(item)) {
			resume = core.FormatClock(item.ResumeTime)
		}
		tbl.Row(
			strconv.Itoa(i+1),
			TruncateString(item.Title, 40),
			TruncateString(item.Artist, 30),
			resume,
			played,
			item.ID,
		)
	}
	tbl.Flush()
	return nil
}

func durationOf(item api.HistoryItem) float64 {
	d, _ := item.Duration.Seconds()
	return d
}

func runHistoryRemove(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	recent, _, closeDB, err := openRecent()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := recent.Remove(cmd.Context(), args[0]); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "removed", "id": args[0]})
	}
	fmt.Printf("Removed %s from history.\n", args[0])
	return nil
}
