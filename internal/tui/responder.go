package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/diogo/chatview/internal/errors"
	"github.com/diogo/chatview/internal/models"
)

// Stream yields the chunks of one reply. Next returns io.EOF after the last chunk.
type Stream interface {
	Next(ctx context.Context) (string, error)
}

// Responder produces the assistant reply to a conversation
type Responder interface {
	Respond(ctx context.Context, history []models.MessageRecord) (Stream, error)
}

// ResponderFunc adapts a function to Responder
type ResponderFunc func(ctx context.Context, history []models.MessageRecord) (Stream, error)

// Respond calls f
func (f ResponderFunc) Respond(ctx context.Context, history []models.MessageRecord) (Stream, error) {
	return f(ctx, history)
}

// SliceStream replays fixed chunks with an optional delay between them
type SliceStream struct {
	Chunks []string
	Delay  time.Duration
	// Err is returned instead of io.EOF once the chunks run out
	Err error

	pos int
}

// Next returns the next chunk
func (s *SliceStream) Next(ctx context.Context) (string, error) {
	if s.pos >= len(s.Chunks) {
		if s.Err != nil {
			return "", s.Err
		}
		return "", io.EOF
	}
	if s.Delay > 0 && s.pos > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.Delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	chunk := s.Chunks[s.pos]
	s.pos++
	return chunk, nil
}

// Collect reads a stream to the end
func Collect(ctx context.Context, s Stream) (string, error) {
	var sb strings.Builder
	for {
		chunk, err := s.Next(ctx)
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
	}
}

// EchoResponder answers by quoting the last user message word by word.
// Messages starting with /fail or /timeout produce the matching error, which
// makes the error bubbles easy to try out.
type EchoResponder struct {
	Delay time.Duration
}

// Respond implements Responder
func (e EchoResponder) Respond(ctx context.Context, history []models.MessageRecord) (Stream, error) {
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			last = history[i].Content
			break
		}
	}

	switch {
	case strings.HasPrefix(last, "/fail"):
		return nil, errors.NewServiceError(strings.TrimSpace(strings.TrimPrefix(last, "/fail")))
	case strings.HasPrefix(last, "/timeout"):
		return &SliceStream{
			Chunks: []string{"Thinking"},
			Delay:  e.Delay,
			Err:    errors.NewTimeoutError("no reply"),
		}, nil
	}

	reply := fmt.Sprintf("You said:\n\n> %s", last)
	return &SliceStream{Chunks: splitWords(reply), Delay: e.Delay}, nil
}

// splitWords cuts text into chunks that keep their trailing whitespace
func splitWords(text string) []string {
	var chunks []string
	start := 0
	for i := 1; i < len(text); i++ {
		if isSpace(text[i-1]) && !isSpace(text[i]) {
			chunks = append(chunks, text[start:i])
			start = i
		}
	}
	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	return chunks
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}
