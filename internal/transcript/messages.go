// Package transcript renders a chat conversation as a stack of message bubbles.
//
// Messages owns a container node holding the bubbles in display order, a side
// table of the node sets making up each bubble, and the list of finalized
// message records. Every structural change scrolls the hosting viewport to
// its bottom. The component is not safe for concurrent use; hosts drive it
// from a single goroutine, the bubbletea update loop in practice.
package transcript

import (
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/diogo/chatview/internal/models"
)

// Status is the lifecycle state of a bubble
type Status int

// Bubble states
const (
	StatusIdle Status = iota
	StatusLoading
	StatusStreaming
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusStreaming:
		return "streaming"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Elements is the set of nodes making up one bubble, nested Outer > Inner > Text
type Elements struct {
	Outer  *Node
	Inner  *Node
	Text   *Node
	Role   models.Role
	Status Status
	// RecordIndex is the position of the bubble's record, or -1 if it has none
	RecordIndex int

	cacheKey string
	cache    string
}

// Event is a structured notification dispatched to hosts
type Event struct {
	Name   string
	Detail models.NewMessageEvent
}

// Dispatcher receives transcript events
type Dispatcher interface {
	Dispatch(ev Event)
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(ev Event)

// Dispatch calls f
func (f DispatcherFunc) Dispatch(ev Event) { f(ev) }

// Speaker reads text aloud
type Speaker interface {
	Speak(text string)
}

// SpeakerFunc adapts a function to Speaker
type SpeakerFunc func(text string)

// Speak calls f
func (f SpeakerFunc) Speak(text string) { f(text) }

// OnNewMessage is called synchronously for every finalized message
type OnNewMessage func(message models.MessageRecord, isInitial bool)

// Config is read once by New. Every optional field may be left unset.
type Config struct {
	MessageStyles *models.MessageStyles
	Avatars       *models.Avatars
	Names         *models.Names
	ErrorMessages models.ErrorMessages

	OnNewMessage OnNewMessage
	Dispatcher   Dispatcher

	// SpeechOutput reads assistant and error messages through Speaker
	SpeechOutput bool
	Speaker      Speaker

	// DisplayLoadingMessage defaults to true when nil
	DisplayLoadingMessage *bool

	InitMessages []models.MessageRecord

	// Markdown renders finalized assistant bubbles through glamour
	Markdown bool

	Width  int
	Height int
}

// Default viewport size used when the config leaves it unset
const (
	DefaultWidth  = 80
	DefaultHeight = 20
)

// Messages is the transcript component
type Messages struct {
	container *Node
	refs      []*Elements
	bubbles   map[*Node]*Elements
	records   []models.MessageRecord
	streaming *Elements

	style          styler
	decorators     []Decorator
	errorMessages  models.ErrorMessages
	speak          func(text string)
	outputs        []func(models.NewMessageEvent)
	displayLoading bool
	markdown       bool

	viewport viewport.Model
	frame    int
}

// New builds a transcript from cfg and replays cfg.InitMessages into it
func New(cfg Config) *Messages {
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	m := &Messages{
		container:      NewNode(models.ClassMessagesContainer),
		bubbles:        make(map[*Node]*Elements),
		style:          newStyler(cfg.MessageStyles),
		errorMessages:  cfg.ErrorMessages,
		speak:          func(string) {},
		displayLoading: cfg.DisplayLoadingMessage == nil || *cfg.DisplayLoadingMessage,
		markdown:       cfg.Markdown,
		viewport:       viewport.New(width, height),
	}

	if cfg.Avatars != nil {
		m.decorators = append(m.decorators, AvatarDecorator(*cfg.Avatars))
	}
	if cfg.Names != nil {
		m.decorators = append(m.decorators, NameDecorator(*cfg.Names))
	}
	if cfg.SpeechOutput && cfg.Speaker != nil {
		speaker := cfg.Speaker
		m.speak = func(text string) {
			if text != "" {
				speaker.Speak(text)
			}
		}
	}
	if cb := cfg.OnNewMessage; cb != nil {
		m.outputs = append(m.outputs, func(ev models.NewMessageEvent) {
			cb(ev.Message, ev.IsInitial)
		})
	}
	if d := cfg.Dispatcher; d != nil {
		m.outputs = append(m.outputs, func(ev models.NewMessageEvent) {
			d.Dispatch(Event{Name: models.EventNewMessage, Detail: ev})
		})
	}

	m.populateInitialMessages(cfg.InitMessages)
	return m
}

func (m *Messages) populateInitialMessages(initMessages []models.MessageRecord) {
	for _, msg := range initMessages {
		m.addNewMessage(msg.Content, msg.Role.IsAI(), true, true)
	}
}

// AddNewMessage displays a finalized message. A trailing loading placeholder
// is reused in place for assistant messages. When update is true the message
// is recorded and listeners are notified.
func (m *Messages) AddNewMessage(text string, isAI, update bool) *Elements {
	return m.addNewMessage(text, isAI, update, false)
}

func (m *Messages) addNewMessage(text string, isAI, update, isInitial bool) *Elements {
	el := m.createNewMessageElement(text, isAI, update)
	m.scrollToBottom()
	if isAI {
		m.speak(text)
	}
	if update {
		m.sendClientUpdate(text, isAI, isInitial)
	}
	return el
}

// AddLoadingMessage shows an assistant placeholder with animated dots.
// It does nothing when the loading indicator is disabled or a placeholder
// is already waiting at the tail.
func (m *Messages) AddLoadingMessage() {
	if !m.displayLoading {
		return
	}
	if last := m.lastElements(); last != nil && isDangling(last) {
		m.scrollToBottom()
		return
	}
	el := m.createMessageElements("", true, false)
	el.Text.AddClass(models.ClassLoadingText)
	el.Status = StatusLoading
	el.Text.AppendChild(NewNode(models.ClassDotsFlashing))
	m.container.AppendChild(el.Outer)
	m.scrollToBottom()
}

// AddNewStreamedMessage opens an empty assistant bubble for incremental text
// and returns its text node. Nothing is recorded or notified until
// FinaliseStreamedMessage.
func (m *Messages) AddNewStreamedMessage() *Node {
	el := m.createNewMessageElement("", true, false)
	el.Text.AddClass(models.ClassStreamed)
	el.Status = StatusStreaming
	m.streaming = el
	m.scrollToBottom()
	return el.Text
}

// UpdateStreamedMessage appends a raw text fragment to a streamed bubble
func UpdateStreamedMessage(text string, textElement *Node) {
	textElement.AppendText(text)
}

// FinaliseStreamedMessage notifies listeners of the completed stream and
// records it. The streamed text itself is already in the tree.
func (m *Messages) FinaliseStreamedMessage(text string) {
	if el := m.streaming; el != nil {
		el.Status = StatusIdle
		el.RecordIndex = len(m.records)
		m.records = append(m.records, models.NewRecord(text, true))
		m.streaming = nil
		m.Refresh()
	}
	m.sendClientUpdate(text, true, false)
	m.speak(text)
}

// AddNewErrorMessage removes a dangling placeholder left by a failed reply
// and displays an error bubble. The text comes from the errType template,
// then the default template, then message, then FallbackErrorText.
// Error bubbles are neither recorded nor notified.
func (m *Messages) AddNewErrorMessage(errType models.ErrorType, message string) *Elements {
	m.removeMessageOnError()

	el := createBaseElements()
	el.Role = models.RoleAssistant
	el.Status = StatusError
	el.Text.AddClass(models.ClassErrorText)

	text := m.errorMessages.ResolveText(errType, message)
	el.Text.SetText(text)
	applyMessageStyle(el, m.errorMessages.ResolveStyles(errType))

	m.bubbles[el.Outer] = el
	m.container.AppendChild(el.Outer)
	m.scrollToBottom()
	m.speak(text)
	return el
}

// Records returns a copy of the finalized message records
func (m *Messages) Records() []models.MessageRecord {
	out := make([]models.MessageRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Elements returns the side table of message bubbles in display order.
// Error bubbles are not part of it.
func (m *Messages) Elements() []*Elements {
	out := make([]*Elements, len(m.refs))
	copy(out, m.refs)
	return out
}

// Bubbles returns every rendered bubble in display order, errors included
func (m *Messages) Bubbles() []*Elements {
	var out []*Elements
	for _, outer := range m.container.children {
		if el, ok := m.bubbles[outer]; ok {
			out = append(out, el)
		}
	}
	return out
}

// Container returns the node holding every bubble
func (m *Messages) Container() *Node {
	return m.container
}

// Streaming returns the bubble currently being streamed, or nil
func (m *Messages) Streaming() *Elements {
	return m.streaming
}

func createBaseElements() *Elements {
	outer := NewNode()
	inner := NewNode(models.ClassInnerContainer)
	outer.AppendChild(inner)
	text := NewNode(models.ClassMessageText)
	inner.AppendChild(text)
	return &Elements{Outer: outer, Inner: inner, Text: text, RecordIndex: -1}
}

func (m *Messages) addInnerContainerElements(el *Elements, text string, isAI bool) {
	if isAI {
		el.Text.AddClass(models.ClassMessageText, models.ClassAIText)
	} else {
		el.Text.AddClass(models.ClassMessageText, models.ClassUserText)
	}
	el.Text.SetText(text)
	for _, d := range m.decorators {
		d.Decorate(el.Inner, isAI)
	}
}

func (m *Messages) createMessageElements(text string, isAI, addToMessages bool) *Elements {
	el := createBaseElements()
	el.Role = models.RoleFor(isAI)
	m.addInnerContainerElements(el, text, isAI)
	m.style(el, isAI)

	m.refs = append(m.refs, el)
	m.bubbles[el.Outer] = el
	if addToMessages {
		el.RecordIndex = len(m.records)
		m.records = append(m.records, models.NewRecord(text, isAI))
	}
	return el
}

func (m *Messages) createNewMessageElement(text string, isAI, addToMessages bool) *Elements {
	last := m.lastElements()
	if last != nil && last.Status == StatusStreaming && isDangling(last) {
		// an abandoned stream that never received text
		m.removeElements(last)
		last = m.lastElements()
	}
	if last != nil && last.Status == StatusLoading {
		if isAI {
			last.Text.RemoveClass(models.ClassLoadingText)
			last.Text.SetText(text)
			last.Status = StatusIdle
			if addToMessages {
				last.RecordIndex = len(m.records)
				m.records = append(m.records, models.NewRecord(text, true))
			}
			return last
		}
		// a user turn never lands below a stale placeholder
		m.removeElements(last)
	}

	el := m.createMessageElements(text, isAI, addToMessages)
	m.container.AppendChild(el.Outer)
	return el
}

func (m *Messages) sendClientUpdate(text string, isAI, isInitial bool) {
	ev := models.NewMessageEvent{Message: models.NewRecord(text, isAI), IsInitial: isInitial}
	for _, out := range m.outputs {
		out(ev)
	}
}

func (m *Messages) lastElements() *Elements {
	if len(m.refs) == 0 {
		return nil
	}
	return m.refs[len(m.refs)-1]
}

// isDangling reports a placeholder that never received content
func isDangling(el *Elements) bool {
	return el.Status == StatusLoading ||
		(el.Status == StatusStreaming && el.Text.TextContent() == "")
}

func (m *Messages) removeMessageOnError() {
	if last := m.lastElements(); last != nil && isDangling(last) {
		m.removeElements(last)
	}
}

// removeElements drops the tail bubble from the tree and the side table
func (m *Messages) removeElements(el *Elements) {
	el.Outer.Remove()
	delete(m.bubbles, el.Outer)
	if last := m.lastElements(); last == el {
		m.refs = m.refs[:len(m.refs)-1]
	}
	if m.streaming == el {
		m.streaming = nil
	}
}
