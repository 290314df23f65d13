package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFrom(t *testing.T) {
	path := writeFile(t, `
[api]
base_url = "https://music.example.com"

[player]
volume = 40
repeat = "one"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "https://music.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Player.Volume != 40 || cfg.Player.Repeat != "one" {
		t.Errorf("Player = %+v", cfg.Player)
	}
	// Defaults fill the rest
	if cfg.API.RadioTimeout != 8 || cfg.TUI.VisualizerBars != 32 || cfg.Log.Level != "info" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	path := writeFile(t, `
[api]
base_url = "https://music.example.com"
timeout = 20
`)
	t.Setenv("MEWZY_API_BASE_URL", "https://override.example.com")
	t.Setenv("MEWZY_LOG_LEVEL", "debug")
	t.Setenv("MEWZY_PLAYER_SHUFFLE_NAVIGATION", "true")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "https://override.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 20 {
		t.Errorf("Timeout = %d, file value should survive", cfg.API.Timeout)
	}
	if cfg.Log.Level != "debug" || !cfg.Player.ShuffleNavigation {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadFromInvalidTOML(t *testing.T) {
	path := writeFile(t, "[api\nbase_url=")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.API.BaseURL = "https://music.example.com"
	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.API.BaseURL != cfg.API.BaseURL || got.Storage.Path != cfg.Storage.Path {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api: invalid base_url"},
		{"volume", func(c *Config) { c.Player.Volume = 101 }, "player: volume"},
		{"repeat", func(c *Config) { c.Player.Repeat = "track" }, "player: invalid repeat mode"},
		{"theme", func(c *Config) { c.TUI.Theme = "neon" }, "tui: invalid theme"},
		{"bars", func(c *Config) { c.TUI.VisualizerBars = 1000 }, "tui: visualizer_bars"},
		{"log", func(c *Config) { c.Log.Level = "trace" }, "log: invalid log level"},
		{"retries", func(c *Config) { c.API.MaxRetries = -1 }, "api: max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Player.Volume = -1
	cfg.Log.Level = "loud"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "player:") || !strings.Contains(err.Error(), "log:") {
		t.Errorf("expected both sections in %q", err)
	}
}
