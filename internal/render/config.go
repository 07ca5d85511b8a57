package render

import (
	"os"

	"github.com/diogo/chatview/internal/config"
)

// OptionsFromConfig builds render options from the markdown section of the config.
// An empty style follows the active TUI theme. GLAMOUR_STYLE takes precedence
// over both.
func OptionsFromConfig(md config.MarkdownConfig) Options {
	opts := DefaultOptions().WithStyle(GetTUITheme().MarkdownStyle)

	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	return opts
}
