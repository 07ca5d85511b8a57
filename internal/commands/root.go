// Package commands provides CLI commands for chatview.
package commands

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/chatview/internal/config"
	"github.com/diogo/chatview/internal/logging"
	"github.com/diogo/chatview/internal/render"
	"github.com/diogo/chatview/internal/tui"
)

var (
	// Global flags
	configFlag   string
	logLevelFlag string
	themeFlag    string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"

	// cfg is loaded before any subcommand runs
	cfg config.Config

	closeLog = func() {}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chatview",
	Short: "Terminal chat transcript viewer",
	Long: `chatview renders a chat conversation as styled message bubbles in the
terminal. It streams replies, keeps a local history, can read replies aloud
and publishes every new message on an event bus.

Examples:
  chatview chat                         Start an interactive chat
  chatview chat --resume @last          Continue the most recent conversation
  chatview render export.json           Print a saved transcript
  chatview history list                 List saved conversations
  chatview events tail                  Follow new messages from another chat`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "chatview %s (built %s)\n", Version, BuildTime)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default ~/.chatview/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&themeFlag, "theme", "", "TUI theme name")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(eventsCmd)
}

// loadSettings reads the config file, then applies flag overrides and the
// logging and theme settings derived from it
func loadSettings(cmd *cobra.Command, args []string) error {
	var err error
	if configFlag != "" {
		cfg, err = config.LoadConfigFrom(configFlag)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return err
	}

	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if themeFlag != "" {
		cfg.TUITheme = themeFlag
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	closeLog, err = logging.Setup(cfg.LogLevel, logPath)
	if err != nil {
		return err
	}

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		return errors.Errorf("unknown theme %q (available: %v)", cfg.TUITheme, render.TUIThemeNames())
	}
	tui.UpdateTheme()
	render.SetDefaults(render.OptionsFromConfig(cfg.Markdown))

	log.Debug().Str("command", cmd.Name()).Str("theme", cfg.TUITheme).Msg("settings loaded")
	return nil
}
