package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxRenderers bounds the cache. Every terminal resize changes the bubble
// width, and with it the key.
const maxRenderers = 8

// cachedRenderer serializes use of one glamour renderer, which is not safe
// for concurrent Render calls
type cachedRenderer struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	lastUse  uint64
}

type rendererCache struct {
	mu      sync.Mutex
	entries map[Options]*cachedRenderer
	clock   uint64
}

var renderers = &rendererCache{entries: make(map[Options]*cachedRenderer)}

// acquire returns the locked renderer for opts, creating it and evicting the
// least recently used entry when needed. Callers must unlock it.
func (c *rendererCache) acquire(opts Options) (*cachedRenderer, error) {
	c.mu.Lock()
	c.clock++
	entry, ok := c.entries[opts]
	if !ok {
		r, err := newRenderer(opts)
		if err != nil {
			c.mu.Unlock()
			return nil, err
		}
		if len(c.entries) >= maxRenderers {
			c.evictOldest()
		}
		entry = &cachedRenderer{renderer: r}
		c.entries[opts] = entry
	}
	entry.lastUse = c.clock
	c.mu.Unlock()

	entry.mu.Lock()
	return entry, nil
}

func (c *rendererCache) evictOldest() {
	var (
		oldest    Options
		oldestUse uint64
		found     bool
	)
	for opts, e := range c.entries {
		if !found || e.lastUse < oldestUse {
			oldest, oldestUse, found = opts, e.lastUse, true
		}
	}
	if found {
		delete(c.entries, oldest)
	}
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	ropts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}

// ClearCache drops every cached renderer
func ClearCache() {
	renderers.mu.Lock()
	renderers.entries = make(map[Options]*cachedRenderer)
	renderers.mu.Unlock()
}

// CacheSize returns the number of cached renderers
func CacheSize() int {
	renderers.mu.Lock()
	defer renderers.mu.Unlock()
	return len(renderers.entries)
}
