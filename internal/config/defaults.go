package config

import (
	"os"
	"path/filepath"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "http://localhost:8000",
			StaleHosts:   []string{"localhost", "127.0.0.1"},
			Timeout:      15,
			RadioTimeout: 8,
			MaxRetries:   3,
		},
		Player: PlayerConfig{
			Volume: 100,
			Repeat: "off",
		},
		Storage: StorageConfig{
			Path: filepath.Join(Dir(), "state.db"),
		},
		Auth: AuthConfig{
			TokenFile: filepath.Join(Dir(), "tokens.json"),
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 250,
			VisualizerBars:  32,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the per-user configuration directory for mewzy.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "mewzy")
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// API
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if len(c.API.StaleHosts) == 0 {
		c.API.StaleHosts = d.API.StaleHosts
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = d.API.Timeout
	}
	if c.API.RadioTimeout == 0 {
		c.API.RadioTimeout = d.API.RadioTimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = d.API.MaxRetries
	}

	// Player
	if c.Player.Volume == 0 {
		c.Player.Volume = d.Player.Volume
	}
	if c.Player.Repeat == "" {
		c.Player.Repeat = d.Player.Repeat
	}

	// Storage
	if c.Storage.Path == "" {
		c.Storage.Path = d.Storage.Path
	}

	// Auth
	if c.Auth.TokenFile == "" {
		c.Auth.TokenFile = d.Auth.TokenFile
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}
	if c.TUI.VisualizerBars == 0 {
		c.TUI.VisualizerBars = d.TUI.VisualizerBars
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
