package commands

import (
	"github.com/rs/zerolog"

	"github.com/diogo/chatview/internal/history"
	"github.com/diogo/chatview/internal/speech"
	"github.com/diogo/chatview/internal/tui"
)

// SpeakerCloser reads replies aloud until closed
type SpeakerCloser interface {
	Speak(text string)
	Close() error
}

// Dependencies holds the pieces of the chat command that need a terminal or
// external programs, so tests can replace them.
type Dependencies struct {
	// RunChat runs the chat TUI until the user quits.
	RunChat func(opts tui.Options) error

	// PickConversation lets the user choose a saved conversation.
	PickConversation func(store tui.ConversationLister) (*history.Conversation, bool, error)

	// NewSpeaker starts the text-to-speech worker.
	NewSpeaker func(command string, logger zerolog.Logger) (SpeakerCloser, error)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		RunChat:          tui.RunChat,
		PickConversation: tui.PickConversation,
		NewSpeaker: func(command string, logger zerolog.Logger) (SpeakerCloser, error) {
			return speech.New(command, speech.WithLogger(logger))
		},
	}
}

var deps = NewDependencies()
