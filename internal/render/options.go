// Package render provides markdown rendering and color themes for the transcript.
package render

// Options configures glamour for one bubble width. Options is comparable and
// keys the renderer cache.
type Options struct {
	Width int
	// Style is a glamour style name or a path to a JSON style
	Style            string
	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
}

// DefaultOptions returns the options used before the config is loaded
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy wrapping at width
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy using style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
