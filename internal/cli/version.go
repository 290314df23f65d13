package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tessro/mewzy/internal/session"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// buildInfo describes this binary and the server it is configured for.
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Server    string `json:"server"`
	Audio     bool   `json:"audio"`
}

func currentBuildInfo() buildInfo {
	return buildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Server:    cfg.API.BaseURL,
		Audio:     session.AudioAvailable,
	}
}

// audioLabel names the playback backend compiled into the binary.
func (b buildInfo) audioLabel() string {
	if b.Audio {
		return "speaker (beep)"
	}
	return "unavailable (built without cgo, playback is silent)"
}

func (b buildInfo) write(w io.Writer, verbose bool) {
	fmt.Fprintf(w, "mewzy %s\n", b.Version)
	fmt.Fprintf(w, "  server:     %s\n", b.Server)
	fmt.Fprintf(w, "  audio:      %s\n", b.audioLabel())
	if verbose {
		fmt.Fprintf(w, "  commit:     %s\n", b.Commit)
		fmt.Fprintf(w, "  built:      %s\n", b.BuildDate)
		fmt.Fprintf(w, "  go version: %s\n", b.GoVersion)
		fmt.Fprintf(w, "  platform:   %s\n", b.Platform)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version, server and audio backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentBuildInfo()
		if JSONOutput() {
			return printJSON(info)
		}
		info.write(os.Stdout, Verbose())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
