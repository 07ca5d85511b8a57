// Package config handles configuration loading for chatview.
package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/diogo/chatview/internal/models"
)

// Event backends
const (
	EventsBackendNone      = "none"
	EventsBackendGoChannel = "gochannel"
	EventsBackendRedis     = "redis"
)

// MarkdownConfig configures markdown rendering inside assistant bubbles
type MarkdownConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Style            string `yaml:"style"`             // glamour style name or path to JSON theme; empty follows the TUI theme
	EnableEmoji      bool   `yaml:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `yaml:"preserve_newlines"` // Preserve original line breaks
	TableWrap        bool   `yaml:"table_wrap"`        // Enable word wrap in table cells
}

// EventsConfig selects where new-message events are published
type EventsConfig struct {
	Backend   string `yaml:"backend"` // "none", "gochannel" or "redis"
	RedisAddr string `yaml:"redis_addr,omitempty"`
}

// HistoryConfig controls transcript persistence
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}

// Config represents the user configuration
type Config struct {
	TUITheme string `yaml:"tui_theme,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`

	// SpeechOutput reads assistant and error messages aloud.
	SpeechOutput bool `yaml:"speech_output"`
	// SpeechCommand overrides the TTS program; empty means auto-detect.
	SpeechCommand string `yaml:"speech_command,omitempty"`

	DisplayLoadingMessage bool `yaml:"display_loading_message"`
	// Stream builds assistant replies incrementally instead of all at once.
	Stream          bool `yaml:"stream"`
	CopyToClipboard bool `yaml:"copy_to_clipboard"`

	Markdown      MarkdownConfig         `yaml:"markdown"`
	MessageStyles *models.MessageStyles  `yaml:"message_styles,omitempty"`
	Avatars       *models.Avatars        `yaml:"avatars,omitempty"`
	Names         *models.Names          `yaml:"names,omitempty"`
	ErrorMessages models.ErrorMessages   `yaml:"error_messages,omitempty"`
	InitMessages  []models.MessageRecord `yaml:"init_messages,omitempty"`

	Events  EventsConfig  `yaml:"events"`
	History HistoryConfig `yaml:"history"`
}

// envOverrides holds the settings that can be overridden from the environment.
// Pointers stay nil when the variable is unset.
type envOverrides struct {
	TUITheme              string `env:"CHATVIEW_TUI_THEME"`
	LogLevel              string `env:"CHATVIEW_LOG_LEVEL"`
	LogFile               string `env:"CHATVIEW_LOG_FILE"`
	SpeechOutput          *bool  `env:"CHATVIEW_SPEECH_OUTPUT"`
	SpeechCommand         string `env:"CHATVIEW_SPEECH_COMMAND"`
	DisplayLoadingMessage *bool  `env:"CHATVIEW_DISPLAY_LOADING_MESSAGE"`
	Stream                *bool  `env:"CHATVIEW_STREAM"`
	EventsBackend         string `env:"CHATVIEW_EVENTS_BACKEND"`
	RedisAddr             string `env:"CHATVIEW_REDIS_ADDR"`
	HistoryEnabled        *bool  `env:"CHATVIEW_HISTORY_ENABLED"`
	HistoryDir            string `env:"CHATVIEW_HISTORY_DIR"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Enabled:          true,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		TUITheme:              "tokyonight",
		LogLevel:              "info",
		DisplayLoadingMessage: true,
		Stream:                true,
		Markdown:              DefaultMarkdownConfig(),
		Events:                EventsConfig{Backend: EventsBackendGoChannel},
		History:               HistoryConfig{Enabled: true},
	}
}

// GetConfigDir returns the configuration directory path.
// CHATVIEW_HOME replaces the default ~/.chatview.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("CHATVIEW_HOME"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	return filepath.Join(home, ".chatview"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", errors.Wrap(err, "failed to create config directory")
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadConfig loads the configuration from the default location
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration from path and applies environment
// overrides. A missing file yields the defaults.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), errors.Wrapf(err, "failed to parse config file %s", path)
		}
	case os.IsNotExist(err):
	default:
		return cfg, errors.Wrapf(err, "failed to read config file %s", path)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return errors.Wrap(err, "failed to parse environment overrides")
	}

	if o.TUITheme != "" {
		cfg.TUITheme = o.TUITheme
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	if o.SpeechOutput != nil {
		cfg.SpeechOutput = *o.SpeechOutput
	}
	if o.SpeechCommand != "" {
		cfg.SpeechCommand = o.SpeechCommand
	}
	if o.DisplayLoadingMessage != nil {
		cfg.DisplayLoadingMessage = *o.DisplayLoadingMessage
	}
	if o.Stream != nil {
		cfg.Stream = *o.Stream
	}
	if o.EventsBackend != "" {
		cfg.Events.Backend = o.EventsBackend
	}
	if o.RedisAddr != "" {
		cfg.Events.RedisAddr = o.RedisAddr
	}
	if o.HistoryEnabled != nil {
		cfg.History.Enabled = *o.HistoryEnabled
	}
	if o.HistoryDir != "" {
		cfg.History.Dir = o.HistoryDir
	}
	return nil
}

// SaveConfig saves the configuration to the default location
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// HistoryDir returns the configured history directory, defaulting to the config dir
func (c Config) HistoryDir() (string, error) {
	if c.History.Dir != "" {
		return c.History.Dir, nil
	}
	return GetConfigDir()
}

// LogPath returns the configured log file, defaulting to chatview.log in the config dir
func (c Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chatview.log"), nil
}
