package transcript

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/render"
)

// bubbleStyles are the theme defaults custom style blocks are layered on
type bubbleStyles struct {
	theme     string
	user      lipgloss.Style
	assistant lipgloss.Style
	err       lipgloss.Style
	userLabel lipgloss.Style
	aiLabel   lipgloss.Style
	dotOn     lipgloss.Style
	dotOff    lipgloss.Style
}

func newBubbleStyles(theme render.TUITheme) bubbleStyles {
	return bubbleStyles{
		theme: theme.Name,
		user: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.User).
			Padding(0, 1).
			MarginLeft(4),
		assistant: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Assistant).
			Foreground(theme.Text).
			Padding(0, 1).
			MarginRight(4),
		err: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(theme.Error).
			Foreground(theme.Error).
			Bold(true).
			Padding(0, 1).
			MarginRight(4),
		userLabel: lipgloss.NewStyle().Foreground(theme.User).Bold(true),
		aiLabel:   lipgloss.NewStyle().Foreground(theme.Assistant).Bold(true),
		dotOn:     lipgloss.NewStyle().Foreground(theme.Accent),
		dotOff:    lipgloss.NewStyle().Foreground(theme.TextMute),
	}
}

// Render draws every bubble in display order
func (m *Messages) Render() string {
	styles := newBubbleStyles(render.GetTUITheme())
	width := m.bubbleWidth()

	var content strings.Builder
	for i, el := range m.Bubbles() {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderBubble(el, styles, width))
		content.WriteString("\n")
	}
	return content.String()
}

func (m *Messages) bubbleWidth() int {
	w := m.viewport.Width - 6
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Messages) renderBubble(el *Elements, styles bubbleStyles, width int) string {
	key := fmt.Sprintf("%s:%d:%s:%d:%s:%s", styles.theme, width, el.Status, len(el.Inner.children),
		styleKey(el), el.Text.TextContent())
	if el.Status == StatusIdle && el.cacheKey == key {
		return el.cache
	}

	base := styles.assistant
	switch {
	case el.Status == StatusError:
		base = styles.err
	case !el.Role.IsAI():
		base = styles.user
	}

	body := lipglossStyle(lipgloss.NewStyle(), el.Text.Style()).Render(m.renderBody(el, styles, width-4))
	if label := renderLabel(el, styles); label != "" {
		body = label + "\n" + body
	}
	body = lipglossStyle(lipgloss.NewStyle(), el.Inner.Style()).Render(body)
	out := lipglossStyle(base.Width(width), el.Outer.Style()).Render(body)

	if el.Status == StatusIdle {
		el.cacheKey, el.cache = key, out
	}
	return out
}

// styleKey fingerprints the style blocks applied to a bubble
func styleKey(el *Elements) string {
	data, err := json.Marshal([]models.StyleBlock{el.Outer.Style(), el.Inner.Style(), el.Text.Style()})
	if err != nil {
		return ""
	}
	return string(data)
}

func (m *Messages) renderBody(el *Elements, styles bubbleStyles, width int) string {
	text := el.Text.TextContent()
	switch el.Status {
	case StatusLoading:
		return renderDots(m.frame, styles)
	case StatusIdle:
		if m.markdown && el.Role.IsAI() && text != "" {
			if out, err := render.MarkdownWithWidth(text, width); err == nil {
				return out
			}
		}
	}
	return text
}

// renderLabel joins the avatar and name decorations of a bubble
func renderLabel(el *Elements, styles bubbleStyles) string {
	base := styles.userLabel
	if el.Role.IsAI() {
		base = styles.aiLabel
	}

	var parts []string
	if avatar := el.Inner.ChildWithClass(models.ClassAvatar); avatar != nil {
		parts = append(parts, lipglossStyle(base, avatar.Style()).Render(avatar.TextContent()))
	}
	if name := el.Inner.ChildWithClass(models.ClassName); name != nil {
		parts = append(parts, lipglossStyle(base, name.Style()).Render(name.TextContent()))
	}
	return strings.Join(parts, " ")
}

// renderDots draws the three flashing dots of a loading placeholder
func renderDots(frame int, styles bubbleStyles) string {
	lit := (frame / 3) % 4
	var b strings.Builder
	for i := 0; i < 3; i++ {
		if i < lit {
			b.WriteString(styles.dotOn.Render("●"))
		} else {
			b.WriteString(styles.dotOff.Render("○"))
		}
	}
	return b.String()
}

// scrollToBottom refreshes the viewport content and moves to its end
func (m *Messages) scrollToBottom() {
	m.viewport.SetContent(m.Render())
	m.viewport.GotoBottom()
}

// Refresh re-renders the viewport content, following the bottom if it was there.
// Hosts call it after appending streamed text.
func (m *Messages) Refresh() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.Render())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// Animate advances the loading animation and reports whether a placeholder
// is still animating
func (m *Messages) Animate() bool {
	last := m.lastElements()
	if last == nil || last.Status != StatusLoading {
		return false
	}
	m.frame++
	m.Refresh()
	return true
}

// SetSize resizes the viewport and re-renders
func (m *Messages) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.scrollToBottom()
}

// Update forwards scroll input to the viewport
func (m *Messages) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// View returns the visible part of the transcript
func (m *Messages) View() string {
	return m.viewport.View()
}

// AtBottom reports whether the viewport shows the end of the transcript
func (m *Messages) AtBottom() bool {
	return m.viewport.AtBottom()
}

// ScrollOffset returns the first visible line
func (m *Messages) ScrollOffset() int {
	return m.viewport.YOffset
}

// ScrollPercent returns the scroll position between 0 and 1
func (m *Messages) ScrollPercent() float64 {
	return m.viewport.ScrollPercent()
}

// Width returns the viewport width
func (m *Messages) Width() int {
	return m.viewport.Width
}
