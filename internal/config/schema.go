package config

// Config is the root configuration structure.
type Config struct {
	API     APIConfig     `toml:"api"`
	Player  PlayerConfig  `toml:"player"`
	Storage StorageConfig `toml:"storage"`
	Auth    AuthConfig    `toml:"auth"`
	Notify  NotifyConfig  `toml:"notify"`
	TUI     TUIConfig     `toml:"tui"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig holds remote API settings.
type APIConfig struct {
	BaseURL      string   `toml:"base_url" env:"MEWZY_API_BASE_URL"`
	StaleHosts   []string `toml:"stale_hosts" env:"MEWZY_API_STALE_HOSTS"`
	Timeout      int      `toml:"timeout" env:"MEWZY_API_TIMEOUT"`             // seconds
	RadioTimeout int      `toml:"radio_timeout" env:"MEWZY_API_RADIO_TIMEOUT"` // seconds
	MaxRetries   int      `toml:"max_retries" env:"MEWZY_API_MAX_RETRIES"`
}

// PlayerConfig holds default playback settings.
type PlayerConfig struct {
	Volume            int    `toml:"volume" env:"MEWZY_PLAYER_VOLUME"` // percent
	Repeat            string `toml:"repeat" env:"MEWZY_PLAYER_REPEAT"`
	Shuffle           bool   `toml:"shuffle" env:"MEWZY_PLAYER_SHUFFLE"`
	ShuffleNavigation bool   `toml:"shuffle_navigation" env:"MEWZY_PLAYER_SHUFFLE_NAVIGATION"`
}

// StorageConfig holds local state settings.
type StorageConfig struct {
	Path string `toml:"path" env:"MEWZY_STORAGE_PATH"`
}

// AuthConfig holds token settings.
type AuthConfig struct {
	TokenFile string `toml:"token_file" env:"MEWZY_AUTH_TOKEN_FILE"`
}

// NotifyConfig holds desktop notification settings.
type NotifyConfig struct {
	Desktop bool `toml:"desktop" env:"MEWZY_NOTIFY_DESKTOP"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" env:"MEWZY_TUI_THEME"`
	RefreshInterval int    `toml:"refresh_interval" env:"MEWZY_TUI_REFRESH_INTERVAL"` // milliseconds
	VisualizerBars  int    `toml:"visualizer_bars" env:"MEWZY_TUI_VISUALIZER_BARS"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"MEWZY_LOG_LEVEL"`
	File  string `toml:"file" env:"MEWZY_LOG_FILE"`
}
