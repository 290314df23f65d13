package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tessro/mewzy/internal/config"
)

// setupLogging installs the default slog logger at log.level. Output goes to
// log.file when set, otherwise to stderr. Full-screen commands never write
// to the terminal and fall back to mewzy.log in the config directory.
func setupLogging(fullscreen bool) (closeLog func(), err error) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	if Verbose() {
		level = slog.LevelDebug
	}

	path := cfg.Log.File
	if path == "" && fullscreen {
		path = filepath.Join(config.Dir(), "mewzy.log")
	}

	var out io.Writer = os.Stderr
	closeLog = func() {}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeLog = func() { _ = f.Close() }
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closeLog, nil
}
