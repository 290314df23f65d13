package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/store"
	"github.com/tessro/mewzy/internal/urlfix"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved session",
	Long: `Show the track, position and volume saved by the last session.

This is what 'mewzy ui' and 'mewzy play --resume' pick up on start.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusResult struct {
	Track    *core.Track `json:"track"`
	Index    int         `json:"index"`
	Queue    int         `json:"queue_length"`
	Position float64     `json:"position"`
	Volume   float64     `json:"volume"`
}

// loadSnapshot reads the persisted player state. Undecodable keys are
// logged and fall back to their defaults.
func loadSnapshot(ctx context.Context) (store.Snapshot, error) {
	db, state, err := openState(urlfix.New(cfg.API.BaseURL, cfg.API.StaleHosts...))
	if err != nil {
		return store.Snapshot{}, err
	}
	defer func() { _ = db.Close() }()

	res := state.Load(ctx)
	for _, err := range res.Errors {
		slog.Warn("ignoring saved state", "error", err)
	}
	return res.Data, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	snap, err := loadSnapshot(cmd.Context())
	if err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(statusResult{
			Track:    snap.Track,
			Index:    snap.Index,
			Queue:    len(snap.Queue),
			Position: snap.Position,
			Volume:   snap.Volume,
		})
	}

	if snap.Track == nil {
		fmt.Println("Nothing saved. Start something with 'mewzy play <track-id>'.")
		return nil
	}

	t := snap.Track
	fmt.Printf("⏸ %s\n", t.Title)
	if t.Artist != "" {
		fmt.Printf("  %s\n", t.Artist)
	}

	duration, _ := t.Duration.Seconds()
	fmt.Printf("  %s %s / %s\n",
		FormatProgress(snap.Position, duration, 30),
		core.FormatClock(snap.Position),
		t.Duration.String())

	if len(snap.Queue) > 0 {
		fmt.Printf("  Queue: %d of %d\n", snap.Index+1, len(snap.Queue))
	}
	fmt.Printf("  🔊 %d%%\n", int(math.Round(snap.Volume*100)))

	if Verbose() {
		fmt.Printf("  id:     %s\n", t.ID)
		fmt.Printf("  stream: %s\n", t.StreamURL)
	}

	return nil
}
