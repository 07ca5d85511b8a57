package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatview/internal/history"
)

// ConversationLister lists saved conversations, newest first
type ConversationLister interface {
	ListConversations() ([]*history.Conversation, error)
}

type conversationsLoadedMsg struct {
	conversations []*history.Conversation
	err           error
}

// PickerModel lets the user resume a saved conversation or start a new one
type PickerModel struct {
	store ConversationLister

	conversations []*history.Conversation
	cursor        int // 0 is "New conversation"

	loading   bool
	err       error
	confirmed bool
	selected  *history.Conversation

	width  int
	height int
	ready  bool
}

// NewPickerModel creates a picker over store
func NewPickerModel(store ConversationLister) PickerModel {
	return PickerModel{store: store, loading: true}
}

// Init starts loading conversations
func (m PickerModel) Init() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		convs, err := store.ListConversations()
		return conversationsLoadedMsg{conversations: convs, err: err}
	}
}

// Update handles navigation keys
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case conversationsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.conversations = msg.conversations

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "up", "k":
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.conversations)
			}
		case "down", "j":
			m.cursor++
			if m.cursor > len(m.conversations) {
				m.cursor = 0
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.conversations)
		case "enter":
			m.confirmed = true
			if m.cursor > 0 {
				m.selected = m.conversations[m.cursor-1]
			}
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the picker
func (m PickerModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}
	if m.loading {
		return loadingStyle.Render("  Loading conversations...")
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("  Error: %v", m.err))
	}

	width := max(m.width-4, 40)
	header := headerStyle.Width(width).Render(titleStyle.Render("Select Conversation"))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		panelStyle.Width(width).Render(m.renderList()),
		m.renderStatusBar(width),
	)
}

func (m PickerModel) renderList() string {
	items := []string{m.renderItem(0, "+ New conversation", "")}

	if len(m.conversations) == 0 {
		items = append(items, hintStyle.Render("  No saved conversations"))
		return lipgloss.JoinVertical(lipgloss.Left, items...)
	}

	visible := max(5, (m.height-12)/2)
	offset := 0
	if m.cursor >= visible {
		offset = m.cursor - visible + 1
	}
	end := min(offset+visible, len(m.conversations)+1)

	for i := max(offset, 1); i < end; i++ {
		conv := m.conversations[i-1]
		when := history.FormatRelativeTime(conv.UpdatedAt)
		if n := len(conv.Messages); n > 0 {
			when = fmt.Sprintf("%s, %d messages", when, n)
		}
		items = append(items, m.renderItem(i, conv.Title, when))
	}

	if offset > 0 {
		items = append([]string{hintStyle.Render("  ...")}, items...)
	}
	if end < len(m.conversations)+1 {
		items = append(items, hintStyle.Render("  ..."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m PickerModel) renderItem(index int, title, detail string) string {
	cursor, style := "  ", itemStyle
	if index == m.cursor {
		cursor, style = cursorStyle.Render("> "), itemSelectedStyle
	}
	line := cursor + style.Render(title)
	if detail != "" {
		line += hintStyle.Render(" - " + detail)
	}
	return line
}

func (m PickerModel) renderStatusBar(width int) string {
	var items []string
	for _, s := range [][2]string{{"↑/↓", "Navigate"}, {"Enter", "Select"}, {"Esc", "Quit"}} {
		items = append(items, statusKeyStyle.Render(s[0])+statusDescStyle.Render(" "+s[1]))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  |  "))
}

// Result returns the chosen conversation, nil for a new one, and whether the
// user confirmed a choice at all
func (m PickerModel) Result() (*history.Conversation, bool) {
	return m.selected, m.confirmed
}

// PickConversation runs the picker full screen
func PickConversation(store ConversationLister) (*history.Conversation, bool, error) {
	final, err := tea.NewProgram(NewPickerModel(store), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, false, err
	}
	pm, ok := final.(PickerModel)
	if !ok {
		return nil, false, nil
	}
	conv, confirmed := pm.Result()
	return conv, confirmed, nil
}
