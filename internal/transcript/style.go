package transcript

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatview/internal/models"
)

// applyMessageStyle layers one message style over the three bubble nodes
func applyMessageStyle(el *Elements, style *models.MessageStyle) {
	if style == nil {
		return
	}
	el.Outer.ApplyStyle(style.OuterContainer)
	el.Inner.ApplyStyle(style.InnerContainer)
	el.Text.ApplyStyle(style.Text)
}

// styler applies the configured custom styles to new bubbles.
// The default block goes first so the role block wins on overlap.
type styler func(el *Elements, isAI bool)

func newStyler(styles *models.MessageStyles) styler {
	if styles == nil {
		return func(*Elements, bool) {}
	}
	return func(el *Elements, isAI bool) {
		applyMessageStyle(el, styles.Default)
		if isAI {
			applyMessageStyle(el, styles.AI)
		} else {
			applyMessageStyle(el, styles.User)
		}
	}
}

// lipglossStyle layers a style block over base
func lipglossStyle(base lipgloss.Style, b models.StyleBlock) lipgloss.Style {
	s := base
	if b.Foreground != "" {
		s = s.Foreground(lipgloss.Color(b.Foreground))
	}
	if b.Background != "" {
		s = s.Background(lipgloss.Color(b.Background))
	}
	if b.Border != "" {
		if border, ok := borderByName(b.Border); ok {
			s = s.BorderStyle(border).BorderTop(true).BorderBottom(true).BorderLeft(true).BorderRight(true)
		} else {
			s = s.UnsetBorderStyle().BorderTop(false).BorderBottom(false).BorderLeft(false).BorderRight(false)
		}
	}
	if b.BorderColor != "" {
		s = s.BorderForeground(lipgloss.Color(b.BorderColor))
	}
	if len(b.Padding) > 0 {
		s = s.Padding(clampSides(b.Padding)...)
	}
	if len(b.Margin) > 0 {
		s = s.Margin(clampSides(b.Margin)...)
	}
	if b.Bold != nil {
		s = s.Bold(*b.Bold)
	}
	if b.Italic != nil {
		s = s.Italic(*b.Italic)
	}
	if b.Underline != nil {
		s = s.Underline(*b.Underline)
	}
	if b.Align != "" {
		s = s.Align(alignByName(b.Align))
	}
	if b.Width > 0 {
		s = s.Width(b.Width)
	}
	return s
}

func borderByName(name string) (lipgloss.Border, bool) {
	switch strings.ToLower(name) {
	case "rounded":
		return lipgloss.RoundedBorder(), true
	case "normal":
		return lipgloss.NormalBorder(), true
	case "thick":
		return lipgloss.ThickBorder(), true
	case "double":
		return lipgloss.DoubleBorder(), true
	case "hidden":
		return lipgloss.HiddenBorder(), true
	default:
		return lipgloss.Border{}, false
	}
}

func alignByName(name string) lipgloss.Position {
	switch strings.ToLower(name) {
	case "center":
		return lipgloss.Center
	case "right":
		return lipgloss.Right
	default:
		return lipgloss.Left
	}
}

// clampSides keeps the 1-4 value CSS shorthand lipgloss accepts
func clampSides(v []int) []int {
	if len(v) > 4 {
		return v[:4]
	}
	return v
}
