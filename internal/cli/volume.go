package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/urlfix"
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Show or set the saved volume",
	Long: `Show or set the volume the next session starts with.

Level is 0-100, or relative with a sign (+10, -5).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

func init() {
	rootCmd.AddCommand(volumeCmd)
}

// parseVolume resolves an absolute or signed relative level against the
// current volume. The result is clamped to 0-100.
func parseVolume(arg string, current int) (int, error) {
	level, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid volume level: %s", arg)
	}
	if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
		level += current
	}
	return max(0, min(level, 100)), nil
}

func runVolume(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	db, state, err := openState(urlfix.New(cfg.API.BaseURL, cfg.API.StaleHosts...))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	current := int(math.Round(state.Load(ctx).Data.Volume * 100))
	level := current
	if len(args) > 0 {
		level, err = parseVolume(args[0], current)
		if err != nil {
			return err
		}
		if err := state.SaveVolume(ctx, float64(level)/100); err != nil {
			return fmt.Errorf("failed to save volume: %w", err)
		}
	}

	if JSONOutput() {
		return printJSON(map[string]int{"volume": level})
	}
	fmt.Printf("🔊 %d%%\n", level)
	return nil
}
