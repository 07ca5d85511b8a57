package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatview/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "tokyonight", cfg.TUITheme)
	assert.True(t, cfg.DisplayLoadingMessage, "loading indicator is enabled by default")
	assert.True(t, cfg.Stream)
	assert.False(t, cfg.SpeechOutput)
	assert.True(t, cfg.Markdown.Enabled)
	assert.Equal(t, EventsBackendGoChannel, cfg.Events.Backend)
	assert.True(t, cfg.History.Enabled)
	assert.Nil(t, cfg.MessageStyles)
	assert.Nil(t, cfg.Avatars)
	assert.Nil(t, cfg.Names)
}

func TestGetConfigDir_HomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHATVIEW_HOME", dir)

	got, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), path)
}

func TestLoadConfigFrom_MissingFile(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFrom_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
tui_theme: nord
speech_output: true
display_loading_message: false
message_styles:
  default:
    text:
      foreground: "#ffffff"
  ai:
    outer_container:
      border: rounded
      padding: [0, 1]
avatars:
  ai:
    glyph: "*"
names:
  user:
    text: Me
error_messages:
  default:
    text: Something went wrong
  service:
    text: The service is unavailable
    styles:
      text:
        foreground: "#ff0000"
init_messages:
  - role: user
    content: hi
  - role: assistant
    content: hello there
events:
  backend: none
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "nord", cfg.TUITheme)
	assert.True(t, cfg.SpeechOutput)
	assert.False(t, cfg.DisplayLoadingMessage)
	// unset keys keep their defaults
	assert.True(t, cfg.Stream)

	require.NotNil(t, cfg.MessageStyles)
	require.NotNil(t, cfg.MessageStyles.Default)
	assert.Equal(t, "#ffffff", cfg.MessageStyles.Default.Text.Foreground)
	require.NotNil(t, cfg.MessageStyles.AI)
	assert.Equal(t, "rounded", cfg.MessageStyles.AI.OuterContainer.Border)
	assert.Equal(t, []int{0, 1}, cfg.MessageStyles.AI.OuterContainer.Padding)
	assert.Nil(t, cfg.MessageStyles.User)

	require.NotNil(t, cfg.Avatars)
	assert.Equal(t, "*", cfg.Avatars.AI.Glyph)
	require.NotNil(t, cfg.Names)
	assert.Equal(t, "Me", cfg.Names.User.Text)

	assert.Equal(t, "Something went wrong", cfg.ErrorMessages[models.ErrorTypeDefault].Text)
	service := cfg.ErrorMessages[models.ErrorTypeService]
	assert.Equal(t, "The service is unavailable", service.Text)
	require.NotNil(t, service.Styles)
	assert.Equal(t, "#ff0000", service.Styles.Text.Foreground)

	assert.Equal(t, []models.MessageRecord{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello there"},
	}, cfg.InitMessages)
	assert.Equal(t, EventsBackendNone, cfg.Events.Backend)
}

func TestLoadConfigFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tui_theme: [unclosed"), 0o600))

	cfg, err := LoadConfigFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	t.Setenv("CHATVIEW_TUI_THEME", "paper")
	t.Setenv("CHATVIEW_STREAM", "false")
	t.Setenv("CHATVIEW_SPEECH_OUTPUT", "true")
	t.Setenv("CHATVIEW_EVENTS_BACKEND", EventsBackendRedis)
	t.Setenv("CHATVIEW_REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "paper", cfg.TUITheme)
	assert.False(t, cfg.Stream)
	assert.True(t, cfg.SpeechOutput)
	assert.Equal(t, EventsBackendRedis, cfg.Events.Backend)
	assert.Equal(t, "localhost:6379", cfg.Events.RedisAddr)
	// untouched by the environment
	assert.True(t, cfg.DisplayLoadingMessage)
}

func TestLoadConfigFrom_InvalidEnv(t *testing.T) {
	t.Setenv("CHATVIEW_STREAM", "not-a-bool")

	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHATVIEW_HOME", dir)

	cfg := DefaultConfig()
	cfg.TUITheme = "catppuccin"
	cfg.Names = &models.Names{AI: &models.NameConfig{Text: "Bot"}}
	require.NoError(t, SaveConfig(cfg))

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "catppuccin", loaded.TUITheme)
	require.NotNil(t, loaded.Names)
	assert.Equal(t, "Bot", loaded.Names.AI.Text)
}

func TestHistoryDirAndLogPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHATVIEW_HOME", dir)

	cfg := DefaultConfig()
	got, err := cfg.HistoryDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	logPath, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chatview.log"), logPath)

	cfg.History.Dir = "/tmp/elsewhere"
	cfg.LogFile = "/tmp/elsewhere.log"
	got, _ = cfg.HistoryDir()
	assert.Equal(t, "/tmp/elsewhere", got)
	logPath, _ = cfg.LogPath()
	assert.Equal(t, "/tmp/elsewhere.log", logPath)
}
