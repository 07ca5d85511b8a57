package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/diogo/chatview/internal/history"
	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/render"
)

// setupHome points the config directory at a temp dir and writes config
// there when it is non-empty
func setupHome(t *testing.T, config string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("CHATVIEW_HOME", home)
	if config != "" {
		if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(config), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}
	return home
}

// resetFlags restores every flag to its default, since cobra keeps parsed
// values between executions
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() {
		closeLog()
		rootCmd.SetIn(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func seedStore(t *testing.T, home string, convs ...[]models.MessageRecord) *history.Store {
	t.Helper()
	store, err := history.NewStore(home)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	for _, records := range convs {
		if _, err := store.ImportConversation("", records); err != nil {
			t.Fatalf("ImportConversation() error = %v", err)
		}
	}
	return store
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "chatview" {
		t.Errorf("Expected use 'chatview', got %s", rootCmd.Use)
	}

	expected := []string{"chat", "render", "history", "events"}
	for _, name := range expected {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Subcommand %s not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	setupHome(t, "")

	out, err := executeCommand(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "chatview "+Version) {
		t.Errorf("output = %q, want version", out)
	}
}

func TestRootCommand_Help(t *testing.T) {
	setupHome(t, "")

	out, err := executeCommand(t)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("output should show usage, got %q", out)
	}
}

func TestLoadSettings(t *testing.T) {
	home := setupHome(t, "tui_theme: nord\nlog_level: debug\n")

	if _, err := executeCommand(t, "history", "list"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if cfg.TUITheme != "nord" {
		t.Errorf("TUITheme = %s, want nord", cfg.TUITheme)
	}
	if render.GetTUITheme().Name != "nord" {
		t.Errorf("active theme = %s, want nord", render.GetTUITheme().Name)
	}
	if _, err := os.Stat(filepath.Join(home, "chatview.log")); err != nil {
		t.Errorf("log file should be created: %v", err)
	}
}

func TestLoadSettings_FlagOverrides(t *testing.T) {
	setupHome(t, "tui_theme: nord\n")

	if _, err := executeCommand(t, "--theme", "paper", "--log-level", "warn", "history", "list"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if cfg.TUITheme != "paper" {
		t.Errorf("TUITheme = %s, want paper", cfg.TUITheme)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %s, want warn", cfg.LogLevel)
	}
}

func TestLoadSettings_ConfigFlag(t *testing.T) {
	setupHome(t, "")
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("tui_theme: catppuccin\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := executeCommand(t, "--config", path, "history", "list"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if cfg.TUITheme != "catppuccin" {
		t.Errorf("TUITheme = %s, want catppuccin", cfg.TUITheme)
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		args    []string
		wantErr string
	}{
		{"unknown theme", "", []string{"--theme", "neon", "history", "list"}, "unknown theme"},
		{"bad log level", "", []string{"--log-level", "loud", "history", "list"}, "invalid log level"},
		{"broken config", "tui_theme: [", []string{"history", "list"}, "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHome(t, tt.config)

			_, err := executeCommand(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
