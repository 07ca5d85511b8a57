package models

// StyleBlock is a declarative set of visual properties applied to one node.
// Zero values mean "not set" so that blocks can be layered on top of each other.
type StyleBlock struct {
	Foreground  string `json:"foreground,omitempty" yaml:"foreground,omitempty"`
	Background  string `json:"background,omitempty" yaml:"background,omitempty"`
	BorderColor string `json:"border_color,omitempty" yaml:"border_color,omitempty"`
	// Border is one of "rounded", "normal", "thick", "double", "hidden" or "none"
	Border    string `json:"border,omitempty" yaml:"border,omitempty"`
	Padding   []int  `json:"padding,omitempty" yaml:"padding,omitempty"`
	Margin    []int  `json:"margin,omitempty" yaml:"margin,omitempty"`
	Bold      *bool  `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    *bool  `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline *bool  `json:"underline,omitempty" yaml:"underline,omitempty"`
	// Align is one of "left", "center" or "right"
	Align string `json:"align,omitempty" yaml:"align,omitempty"`
	Width int    `json:"width,omitempty" yaml:"width,omitempty"`
}

// IsZero reports whether no property is set
func (s StyleBlock) IsZero() bool {
	return s.Foreground == "" && s.Background == "" && s.BorderColor == "" &&
		s.Border == "" && len(s.Padding) == 0 && len(s.Margin) == 0 &&
		s.Bold == nil && s.Italic == nil && s.Underline == nil &&
		s.Align == "" && s.Width == 0
}

// Merge returns s with every property set in other copied over it.
// Properties that other leaves unset keep their value from s.
func (s StyleBlock) Merge(other StyleBlock) StyleBlock {
	if other.Foreground != "" {
		s.Foreground = other.Foreground
	}
	if other.Background != "" {
		s.Background = other.Background
	}
	if other.BorderColor != "" {
		s.BorderColor = other.BorderColor
	}
	if other.Border != "" {
		s.Border = other.Border
	}
	if len(other.Padding) > 0 {
		s.Padding = append([]int(nil), other.Padding...)
	}
	if len(other.Margin) > 0 {
		s.Margin = append([]int(nil), other.Margin...)
	}
	if other.Bold != nil {
		s.Bold = other.Bold
	}
	if other.Italic != nil {
		s.Italic = other.Italic
	}
	if other.Underline != nil {
		s.Underline = other.Underline
	}
	if other.Align != "" {
		s.Align = other.Align
	}
	if other.Width != 0 {
		s.Width = other.Width
	}
	return s
}

// MessageStyle holds the style blocks for the three nodes of a bubble
type MessageStyle struct {
	OuterContainer StyleBlock `json:"outer_container,omitempty" yaml:"outer_container,omitempty"`
	InnerContainer StyleBlock `json:"inner_container,omitempty" yaml:"inner_container,omitempty"`
	Text           StyleBlock `json:"text,omitempty" yaml:"text,omitempty"`
}

// MessageStyles holds the per-role custom styles. Default is applied first,
// then the role-specific block.
type MessageStyles struct {
	Default *MessageStyle `json:"default,omitempty" yaml:"default,omitempty"`
	User    *MessageStyle `json:"user,omitempty" yaml:"user,omitempty"`
	AI      *MessageStyle `json:"ai,omitempty" yaml:"ai,omitempty"`
}

// AvatarConfig configures the glyph shown next to a bubble
type AvatarConfig struct {
	Glyph string      `json:"glyph,omitempty" yaml:"glyph,omitempty"`
	Style *StyleBlock `json:"style,omitempty" yaml:"style,omitempty"`
}

// Avatars holds per-role avatar settings
type Avatars struct {
	Default *AvatarConfig `json:"default,omitempty" yaml:"default,omitempty"`
	User    *AvatarConfig `json:"user,omitempty" yaml:"user,omitempty"`
	AI      *AvatarConfig `json:"ai,omitempty" yaml:"ai,omitempty"`
}

// NameConfig configures the label shown above a bubble
type NameConfig struct {
	Text  string      `json:"text,omitempty" yaml:"text,omitempty"`
	Style *StyleBlock `json:"style,omitempty" yaml:"style,omitempty"`
}

// Names holds per-role name label settings
type Names struct {
	Default *NameConfig `json:"default,omitempty" yaml:"default,omitempty"`
	User    *NameConfig `json:"user,omitempty" yaml:"user,omitempty"`
	AI      *NameConfig `json:"ai,omitempty" yaml:"ai,omitempty"`
}
