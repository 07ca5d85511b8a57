package render

import (
	"strings"
	"sync"
)

var (
	defaultsMu sync.RWMutex
	defaults   = DefaultOptions()
)

// SetDefaults replaces the options used by MarkdownWithWidth.
func SetDefaults(opts Options) {
	defaultsMu.Lock()
	defaults = opts
	defaultsMu.Unlock()
}

// Defaults returns the options used by MarkdownWithWidth.
func Defaults() Options {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaults
}

// Markdown renders markdown content for terminal display
func Markdown(content string, opts Options) (string, error) {
	entry, err := renderers.acquire(opts)
	if err != nil {
		return "", err
	}
	defer entry.mu.Unlock()

	return entry.renderer.Render(content)
}

// MarkdownWithWidth renders with the package defaults at the given width.
// Trailing newlines added by glamour are trimmed.
func MarkdownWithWidth(content string, width int) (string, error) {
	out, err := Markdown(content, Defaults().WithWidth(width))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
