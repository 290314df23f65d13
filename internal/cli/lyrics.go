package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/lyrics"
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics [track-id]",
	Short: "Print the lyrics of a track",
	Long: `Print the lyrics of a track. Without an id the saved track is used.

Timed lyrics are printed with their timestamps.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLyrics,
}

func init() {
	rootCmd.AddCommand(lyricsCmd)
}

func runLyrics(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	var id string
	if len(args) > 0 {
		id = args[0]
	} else {
		snap, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}
		if snap.Track == nil {
			return fmt.Errorf("no saved track; pass a track id")
		}
		id = snap.Track.ID
	}

	r, err := openRemote(nil)
	if err != nil {
		return err
	}
	doc := lyrics.Load(ctx, r.api, id)

	if JSONOutput() {
		return printJSON(doc)
	}
	for _, line := range doc.Lines {
		if doc.Synced {
			fmt.Printf("[%s] %s\n", core.FormatClock(line.Time), line.Text)
			continue
		}
		fmt.Println(line.Text)
	}
	return nil
}
