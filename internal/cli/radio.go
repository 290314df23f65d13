package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/autoplay"
	"github.com/tessro/mewzy/internal/core"
)

var radioCmd = &cobra.Command{
	Use:   "radio <track-id>",
	Short: "List tracks that would follow a track",
	Long: `Ask the server for a radio continuation of a track.

These are the tracks autoplay appends when the queue runs out.`,
	Args: cobra.ExactArgs(1),
	RunE: runRadio,
}

func init() {
	rootCmd.AddCommand(radioCmd)
}

func runRadio(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	r, err := openRemote(nil)
	if err != nil {
		return err
	}

	seed := core.Track{ID: args[0]}
	tracks := autoplay.New(r.api, r.fix, cfg.API.RadioWait()).Continue(cmd.Context(), seed)

	if JSONOutput() {
		return printJSON(tracks)
	}
	if len(tracks) == 0 {
		fmt.Println("No radio tracks found.")
		return nil
	}
	trackTable(tracks, -1)
	return nil
}
