package tui

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/chatview/internal/errors"
	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/transcript"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI. Every reply message carries the id of the
// request it answers so late results of a cancelled request are dropped.
type (
	replyMsg struct {
		id   int
		text string
	}
	streamOpenedMsg struct {
		id     int
		stream Stream
	}
	streamChunkMsg struct {
		id   int
		text string
	}
	streamDoneMsg struct {
		id int
	}
	errMsg struct {
		id  int
		err error
	}
	clipboardMsg struct {
		err error
	}
)

// cancelledText is shown when the user aborts a reply
const cancelledText = "Reply cancelled."

// Options configures the chat model
type Options struct {
	// Transcript is the base transcript configuration. Its size is managed
	// by the model.
	Transcript transcript.Config
	Responder  Responder

	// Stream builds replies chunk by chunk
	Stream bool
	// CopyToClipboard copies every finished reply
	CopyToClipboard bool
	// Timeout bounds a single reply; zero means no limit
	Timeout time.Duration

	Title  string
	Logger zerolog.Logger
}

// Model represents the TUI state
type Model struct {
	opts     Options
	messages *transcript.Messages

	// UI components
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading        bool
	ready          bool
	animationFrame int
	notice         string
	err            error

	// In-flight reply
	request    int
	ctx        context.Context
	cancel     context.CancelFunc
	stream     Stream
	streamEl   *transcript.Node
	streamText string

	writeClipboard func(string) error

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(opts Options) Model {
	if opts.Responder == nil {
		opts.Responder = EchoResponder{Delay: 60 * time.Millisecond}
	}
	if opts.Title == "" {
		opts.Title = "chatview"
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		opts:           opts,
		messages:       transcript.New(opts.Transcript),
		textarea:       ta,
		spinner:        s,
		ctx:            context.Background(),
		cancel:         func() {},
		writeClipboard: clipboard.WriteAll,
	}
}

// Transcript returns the hosted transcript
func (m Model) Transcript() *transcript.Messages {
	return m.messages
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 4      // Panel border and padding

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4
		m.messages.SetSize(contentWidth-4, vpHeight)
		m.textarea.SetWidth(contentWidth - 4)
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.loading {
				m.cancelReply()
				return m, nil
			}
			return m, tea.Quit

		case "ctrl+y":
			return m, m.copyLastReply()

		case "enter":
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
				m.cancel()
				return m, tea.Quit
			}

			m.textarea.Reset()
			return m, m.send(input)
		}

	case streamOpenedMsg:
		if msg.id != m.request {
			return m, nil
		}
		m.stream = msg.stream
		return m, readChunk(m.ctx, msg.id, msg.stream)

	case streamChunkMsg:
		if msg.id != m.request {
			return m, nil
		}
		if m.streamEl == nil {
			m.streamEl = m.messages.AddNewStreamedMessage()
		}
		transcript.UpdateStreamedMessage(msg.text, m.streamEl)
		m.streamText += msg.text
		m.messages.Refresh()
		return m, readChunk(m.ctx, msg.id, m.stream)

	case streamDoneMsg:
		if msg.id != m.request {
			return m, nil
		}
		if m.streamEl == nil {
			m.fail(errors.ErrEmptyReply)
			return m, nil
		}
		text := m.streamText
		m.messages.FinaliseStreamedMessage(text)
		m.finish()
		return m, m.autoCopy(text)

	case replyMsg:
		if msg.id != m.request {
			return m, nil
		}
		if msg.text == "" {
			m.fail(errors.ErrEmptyReply)
			return m, nil
		}
		m.messages.AddNewMessage(msg.text, true, true)
		m.finish()
		return m, m.autoCopy(msg.text)

	case errMsg:
		if msg.id != m.request {
			return m, nil
		}
		m.fail(msg.err)
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.err = msg.err
			m.notice = ""
		} else {
			m.notice = "Copied last reply to clipboard"
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			m.messages.Animate()
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if key, ok := msg.(tea.KeyMsg); !ok || isScrollKey(key) {
		cmds = append(cmds, m.messages.Update(msg))
	}

	return m, tea.Batch(cmds...)
}

// isScrollKey reports keys the transcript scrolls on. Letters and space
// belong to the textarea.
func isScrollKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		return true
	}
	return false
}

// send shows the user message and a placeholder, then asks the responder
func (m *Model) send(input string) tea.Cmd {
	m.messages.AddNewMessage(input, false, true)
	m.messages.AddLoadingMessage()

	m.cancel()
	m.request++
	if m.opts.Timeout > 0 {
		m.ctx, m.cancel = context.WithTimeout(context.Background(), m.opts.Timeout)
	} else {
		m.ctx, m.cancel = context.WithCancel(context.Background())
	}

	m.loading = true
	m.err = nil
	m.notice = ""
	m.animationFrame = 0
	m.stream, m.streamEl, m.streamText = nil, nil, ""

	return tea.Batch(
		m.respond(m.ctx, m.request, m.messages.Records()),
		m.spinner.Tick,
		animationTick(),
	)
}

// respond creates a command asking the responder for a reply
func (m Model) respond(ctx context.Context, id int, history []models.MessageRecord) tea.Cmd {
	responder, stream := m.opts.Responder, m.opts.Stream
	return func() tea.Msg {
		s, err := responder.Respond(ctx, history)
		if err != nil {
			return errMsg{id: id, err: err}
		}
		if stream {
			return streamOpenedMsg{id: id, stream: s}
		}
		text, err := Collect(ctx, s)
		if err != nil {
			return errMsg{id: id, err: err}
		}
		return replyMsg{id: id, text: text}
	}
}

// readChunk creates a command reading the next chunk of a stream
func readChunk(ctx context.Context, id int, s Stream) tea.Cmd {
	return func() tea.Msg {
		chunk, err := s.Next(ctx)
		if err == io.EOF {
			return streamDoneMsg{id: id}
		}
		if err != nil {
			return errMsg{id: id, err: err}
		}
		return streamChunkMsg{id: id, text: chunk}
	}
}

// fail shows err as an error bubble and ends the request
func (m *Model) fail(err error) {
	m.opts.Logger.Error().Err(err).Int("request", m.request).Msg("reply failed")
	m.messages.AddNewErrorMessage(errors.Classify(err), err.Error())
	m.err = err
	m.finish()
}

// cancelReply aborts the in-flight request. Its late results are ignored.
func (m *Model) cancelReply() {
	m.cancel()
	m.messages.AddNewErrorMessage(models.ErrorTypeDefault, cancelledText)
	m.request++
	m.finish()
}

func (m *Model) finish() {
	m.loading = false
	m.stream, m.streamEl, m.streamText = nil, nil, ""
	m.cancel()
}

func (m Model) autoCopy(text string) tea.Cmd {
	if !m.opts.CopyToClipboard {
		return nil
	}
	return copyCmd(m.writeClipboard, text)
}

func (m Model) copyLastReply() tea.Cmd {
	records := m.messages.Records()
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Role.IsAI() {
			return copyCmd(m.writeClipboard, records[i].Content)
		}
	}
	return func() tea.Msg {
		return clipboardMsg{err: stderrors.New("no reply to copy yet")}
	}
}

func copyCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: write(text)}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	mode := "batch"
	if m.opts.Stream {
		mode = "stream"
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ "+m.opts.Title),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(fmt.Sprintf("%d messages", len(m.messages.Records()))),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(mode),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	if len(m.messages.Bubbles()) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.messages.View()
	}
	sections = append(sections, messagesAreaStyle.Width(contentWidth).Render(messagesContent))

	// Input
	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	switch {
	case m.err != nil:
		sections = append(sections, FormatError(m.err))
	case m.notice != "":
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.messages.Width()

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to "+m.opts.Title),
		"",
		welcomeStyle.Width(width).Render("Start a conversation by typing a message below"),
		"",
	)

	return content
}

// renderLoadingAnimation renders the thinking indicator of the input panel
func (m Model) renderLoadingAnimation() string {
	frame := m.animationFrame

	barWidth := 20
	barChars := []string{"█", "█", "█", "█", "▓", "▒", "░"}
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Waiting for a reply ")
	hint := hintStyle.Render("(esc to cancel)")

	return fmt.Sprintf("%s %s %s %s", m.spinner.View(), bar.String(), text, hint)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	escDesc := "Quit"
	if m.loading {
		escDesc = "Cancel"
	}
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", escDesc},
		{"Ctrl+Y", "Copy"},
		{"↑↓/PgUp/PgDn", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// RunChat starts the chat TUI
func RunChat(opts Options) error {
	p := tea.NewProgram(
		NewChatModel(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
