package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queueLimit int

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the saved queue",
	Long:  `Show the play queue saved by the last session. The current track is marked.`,
	RunE:  runQueueList,
}

func init() {
	queueCmd.Flags().IntVarP(&queueLimit, "limit", "l", 20, "maximum number of tracks to show (0 for all)")
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, args []string) error {
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
		return printJSON(map[string]any{
			"index":  snap.Index,
			"tracks": snap.Queue,
		})
	}

	if len(snap.Queue) == 0 {
		fmt.Println("Queue is empty.")
		return nil
	}

	tracks := snap.Queue
	if queueLimit > 0 && len(tracks) > queueLimit {
		tracks = tracks[:queueLimit]
	}
	trackTable(tracks, snap.Index)
	if len(tracks) < len(snap.Queue) {
		fmt.Printf("  ... and %d more\n", len(snap.Queue)-len(tracks))
	}
	return nil
}
