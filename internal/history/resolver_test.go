package history

import (
	"errors"
	"strings"
	"testing"

	"github.com/diogo/chatview/internal/models"
)

func titled(t *testing.T, store *Store, title string, records ...models.MessageRecord) *Conversation {
	t.Helper()
	conv, err := store.ImportConversation(title, records)
	if err != nil {
		t.Fatalf("ImportConversation failed: %v", err)
	}
	return conv
}

func TestResolver_References(t *testing.T) {
	store := newTestStore(t)
	oldest := titled(t, store, "Go generics")
	middle := titled(t, store, "Python typing")
	newest := titled(t, store, "Rust lifetimes")

	resolver := NewResolver(store)
	tests := []struct {
		ref  string
		want string
	}{
		{"@last", newest.ID},
		{"@LAST", newest.ID},
		{"@prev", middle.ID},
		{"@first", oldest.ID},
		{"1", newest.ID},
		{"2", middle.ID},
		{middle.ID, middle.ID},
		{"typing", middle.ID},
		{"  GENERICS ", oldest.ID},
	}
	for _, tt := range tests {
		got, err := resolver.Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tt.ref, err)
			continue
		}
		if got.ID != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.ref, got.ID, tt.want)
		}
	}

	// a new message moves a conversation to the top
	_ = store.AddRecord(oldest.ID, models.NewRecord("again", true))
	if got, _ := resolver.Resolve("@last"); got == nil || got.ID != oldest.ID {
		t.Errorf("@last after update = %v, want %s", got, oldest.ID)
	}
}

func TestResolver_LoadsMessages(t *testing.T) {
	store := newTestStore(t)
	conv := seedConversation(t, store, models.NewRecord("hello", false))

	got, err := NewResolver(store).Resolve("@last")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != conv.ID || len(got.Messages) != 1 {
		t.Errorf("got %s with %d messages", got.ID, len(got.Messages))
	}
}

func TestResolver_OpeningMessageFallback(t *testing.T) {
	store := newTestStore(t)
	channels := titled(t, store, "Concurrency",
		models.NewRecord("How do buffered channels block?", false),
		models.NewRecord("They block when full.", true),
	)
	titled(t, store, "Errors",
		models.NewRecord("Should I wrap errors?", false),
		models.NewRecord("Wrap them with context, like buffered output.", true),
	)

	resolver := NewResolver(store)

	// assistant replies are not searched
	got, err := resolver.Resolve("buffered")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != channels.ID {
		t.Errorf("Resolve(buffered) = %s, want %s", got.ID, channels.ID)
	}

	// a title match wins over message text
	titled(t, store, "Buffered IO")
	got, err = resolver.Resolve("buffered")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Title != "Buffered IO" {
		t.Errorf("Resolve(buffered) = %q, want the titled conversation", got.Title)
	}
}

func TestResolver_Errors(t *testing.T) {
	store := newTestStore(t)
	resolver := NewResolver(store)

	if _, err := resolver.Resolve("@last"); err == nil || !strings.Contains(err.Error(), "no conversations") {
		t.Errorf("empty store err = %v", err)
	}

	only := titled(t, store, "Chat about Go")
	if _, err := resolver.Resolve("@prev"); err == nil || !strings.Contains(err.Error(), "at least two") {
		t.Errorf("@prev with one conversation err = %v", err)
	}
	titled(t, store, "Chat about Rust")

	tests := []struct {
		ref     string
		wantMsg string
	}{
		{"", "empty reference"},
		{"5", "out of range"},
		{"0", "out of range"},
		{"@newest", "unknown alias"},
		{"conv-unknown", "conversation not found"},
		{"haskell", "no conversation matching"},
		{"chat", only.ID},
	}
	for _, tt := range tests {
		_, err := resolver.Resolve(tt.ref)
		if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
			t.Errorf("Resolve(%q) err = %v, want %q", tt.ref, err, tt.wantMsg)
		}
	}

	if _, err := resolver.Resolve("conv-unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListAliases(t *testing.T) {
	help := ListAliases()
	for _, a := range aliases {
		if !strings.Contains(help, a.name) {
			t.Errorf("ListAliases missing %s", a.name)
		}
	}
	if !strings.Contains(help, idPrefix) {
		t.Errorf("ListAliases missing the ID form")
	}
}
