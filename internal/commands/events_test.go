package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/diogo/chatview/internal/config"
	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/transcript"
)

func TestEventsCommand(t *testing.T) {
	if eventsCmd.Use != "events" {
		t.Errorf("Expected use 'events', got %s", eventsCmd.Use)
	}
	if len(eventsCmd.Commands()) != 1 || eventsCmd.Commands()[0].Name() != "tail" {
		t.Error("events should have a tail subcommand")
	}
}

func TestTailEvents_RequiresRedis(t *testing.T) {
	for _, backend := range []string{config.EventsBackendNone, config.EventsBackendGoChannel} {
		err := tailEvents(context.Background(), config.EventsConfig{Backend: backend}, &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "use redis") {
			t.Errorf("backend %s: error = %v", backend, err)
		}
	}
}

func TestEventsTail_Command(t *testing.T) {
	setupHome(t, "events:\n  backend: gochannel\n")

	if _, err := executeCommand(t, "events", "tail"); err == nil {
		t.Error("tailing an in-process backend should fail")
	}
}

func TestPrintEvent(t *testing.T) {
	user := transcript.Event{
		Name:   models.EventNewMessage,
		Detail: models.NewMessageEvent{Message: models.MessageRecord{Role: models.RoleUser, Content: "hi"}},
	}
	seeded := transcript.Event{
		Name: models.EventNewMessage,
		Detail: models.NewMessageEvent{
			Message:   models.MessageRecord{Role: models.RoleAssistant, Content: "Welcome"},
			IsInitial: true,
		},
	}

	tests := []struct {
		name    string
		json    bool
		initial bool
		event   transcript.Event
		want    string
	}{
		{"text", false, false, user, "[user] hi\n"},
		{"json", true, false, user, `{"message":{"role":"user","content":"hi"},"isInitial":false}` + "\n"},
		{"seeded skipped", false, false, seeded, ""},
		{"seeded included", false, true, seeded, "[assistant] Welcome\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tailJSONFlag, tailInitialFlag = tt.json, tt.initial
			t.Cleanup(func() { tailJSONFlag, tailInitialFlag = false, false })

			var out bytes.Buffer
			if err := printEvent(&out, tt.event); err != nil {
				t.Fatalf("printEvent() error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}
