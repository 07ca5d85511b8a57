package render

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the colors used for bubbles, labels and chrome
type TUITheme struct {
	Name        string
	Description string

	// Base colors
	Surface lipgloss.Color
	Border  lipgloss.Color

	// Bubble colors
	Assistant lipgloss.Color
	User      lipgloss.Color
	Accent    lipgloss.Color
	Error     lipgloss.Color

	// Text colors
	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color

	// MarkdownStyle is the glamour style that matches the palette
	MarkdownStyle string
}

// Built-in TUI themes
var (
	// TokyoNightTheme is the default dark theme
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",

		Surface: lipgloss.Color("#24283b"),
		Border:  lipgloss.Color("#414868"),

		Assistant: lipgloss.Color("#7aa2f7"),
		User:      lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),

		MarkdownStyle: "dark",
	}

	// CatppuccinMochaTheme is based on the Catppuccin Mocha palette
	CatppuccinMochaTheme = TUITheme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",

		Surface: lipgloss.Color("#313244"),
		Border:  lipgloss.Color("#45475a"),

		Assistant: lipgloss.Color("#89b4fa"),
		User:      lipgloss.Color("#a6e3a1"),
		Accent:    lipgloss.Color("#cba6f7"),
		Error:     lipgloss.Color("#f38ba8"),

		Text:     lipgloss.Color("#cdd6f4"),
		TextDim:  lipgloss.Color("#6c7086"),
		TextMute: lipgloss.Color("#45475a"),

		MarkdownStyle: "dark",
	}

	// NordTheme is based on the Nord palette
	NordTheme = TUITheme{
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",

		Surface: lipgloss.Color("#3b4252"),
		Border:  lipgloss.Color("#4c566a"),

		Assistant: lipgloss.Color("#88c0d0"),
		User:      lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Error:     lipgloss.Color("#bf616a"),

		Text:     lipgloss.Color("#eceff4"),
		TextDim:  lipgloss.Color("#7b88a1"),
		TextMute: lipgloss.Color("#4c566a"),

		MarkdownStyle: "dark",
	}

	// PaperTheme is a light theme for bright terminals
	PaperTheme = TUITheme{
		Name:        "paper",
		Description: "Paper - Light theme with muted ink colors",

		Surface: lipgloss.Color("#f4f4f4"),
		Border:  lipgloss.Color("#c8c8c8"),

		Assistant: lipgloss.Color("#2458a6"),
		User:      lipgloss.Color("#3a7d2c"),
		Accent:    lipgloss.Color("#8a3ffc"),
		Error:     lipgloss.Color("#c4302b"),

		Text:     lipgloss.Color("#1f1f1f"),
		TextDim:  lipgloss.Color("#6f6f6f"),
		TextMute: lipgloss.Color("#a8a8a8"),

		MarkdownStyle: "light",
	}
)

var (
	themeMu         sync.RWMutex
	currentTUITheme = TokyoNightTheme
)

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTUITheme = theme
	themeMu.Unlock()
	return true
}

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes returns all built-in TUI themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{
		TokyoNightTheme,
		CatppuccinMochaTheme,
		NordTheme,
		PaperTheme,
	}
}

// TUIThemeNames returns just the theme names
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
