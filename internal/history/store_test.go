package history

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/transcript"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if store == nil {
		t.Fatal("NewStore returned nil")
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "history")); os.IsNotExist(err) {
		t.Error("history directory was not created")
	}
}

func TestStore_CreateConversation(t *testing.T) {
	store := newTestStore(t)

	conv, err := store.CreateConversation()
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	if !strings.HasPrefix(conv.ID, "conv-") {
		t.Errorf("ID = %s, want conv- prefix", conv.ID)
	}
	if conv.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
	if len(conv.Messages) != 0 {
		t.Errorf("expected 0 messages, got %d", len(conv.Messages))
	}

	other, _ := store.CreateConversation()
	if other.ID == conv.ID {
		t.Error("conversation IDs are not unique")
	}
}

func TestStore_GetConversation_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetConversation("conv-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_AddRecord(t *testing.T) {
	store := newTestStore(t)
	conv, _ := store.CreateConversation()

	records := []models.MessageRecord{
		{Role: models.RoleUser, Content: "Hello"},
		{Role: models.RoleAssistant, Content: "Hi there"},
	}
	for _, rec := range records {
		if err := store.AddRecord(conv.ID, rec); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
	}

	got, _ := store.GetConversation(conv.ID)
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[1].Role != models.RoleAssistant {
		t.Errorf("Role = %s, want assistant", got.Messages[1].Role)
	}
	if got.Messages[0].Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
	if got.Title != "Hello" {
		t.Errorf("Title = %s, want Hello", got.Title)
	}

	recs := got.Records()
	if len(recs) != 2 || recs[0] != records[0] || recs[1] != records[1] {
		t.Errorf("Records() = %v, want %v", recs, records)
	}
}

func TestStore_AddRecord_TruncatesLongTitle(t *testing.T) {
	store := newTestStore(t)
	conv, _ := store.CreateConversation()

	_ = store.AddRecord(conv.ID, models.MessageRecord{Role: models.RoleUser, Content: strings.Repeat("é", 80)})

	got, _ := store.GetConversation(conv.ID)
	if want := strings.Repeat("é", 50) + "..."; got.Title != want {
		t.Errorf("Title = %s, want %s", got.Title, want)
	}
}

func TestStore_AddRecord_AssistantFirstKeepsTitle(t *testing.T) {
	store := newTestStore(t)
	conv, _ := store.CreateConversation()

	_ = store.AddRecord(conv.ID, models.MessageRecord{Role: models.RoleAssistant, Content: "Welcome"})

	got, _ := store.GetConversation(conv.ID)
	if got.Title != conv.Title {
		t.Errorf("Title = %s, want %s", got.Title, conv.Title)
	}
}

func TestStore_ImportConversation(t *testing.T) {
	store := newTestStore(t)

	conv, err := store.ImportConversation("Imported", []models.MessageRecord{
		{Role: models.RoleUser, Content: "q"},
		{Role: models.RoleAssistant, Content: "a"},
	})
	if err != nil {
		t.Fatalf("ImportConversation failed: %v", err)
	}

	got, _ := store.GetConversation(conv.ID)
	if got.Title != "Imported" || len(got.Messages) != 2 {
		t.Errorf("got %q with %d messages", got.Title, len(got.Messages))
	}
}

func TestStore_Recorder(t *testing.T) {
	store := newTestStore(t)
	conv := seedConversation(t, store, models.MessageRecord{Role: models.RoleUser, Content: "earlier"})

	m := transcript.New(transcript.Config{
		InitMessages: conv.Records(),
		OnNewMessage: store.Recorder(conv.ID, zerolog.Nop()),
	})
	m.AddNewMessage("now", false, true)
	m.AddLoadingMessage()
	m.AddNewMessage("reply", true, true)
	m.AddNewErrorMessage(models.ErrorTypeService, "")

	got, _ := store.GetConversation(conv.ID)
	var contents []string
	for _, msg := range got.Messages {
		contents = append(contents, msg.Content)
	}
	if want := "earlier,now,reply"; strings.Join(contents, ",") != want {
		t.Errorf("stored = %v, want %s", contents, want)
	}
}

func TestStore_Recorder_LogsFailure(t *testing.T) {
	store := newTestStore(t)
	var buf bytes.Buffer

	store.Recorder("conv-missing", zerolog.New(&buf))(models.NewRecord("x", false), false)

	if !strings.Contains(buf.String(), "failed to save message") {
		t.Errorf("log = %s", buf.String())
	}
}

func seedConversation(t *testing.T, store *Store, records ...models.MessageRecord) *Conversation {
	t.Helper()
	conv, err := store.ImportConversation("", records)
	if err != nil {
		t.Fatalf("ImportConversation failed: %v", err)
	}
	return conv
}

func TestStore_DeleteConversation(t *testing.T) {
	store := newTestStore(t)
	conv, _ := store.CreateConversation()

	if err := store.DeleteConversation(conv.ID); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}
	if _, err := store.GetConversation(conv.ID); err == nil {
		t.Error("expected error after deletion")
	}
	if err := store.DeleteConversation(conv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_ListConversations(t *testing.T) {
	store := newTestStore(t)

	first, _ := store.CreateConversation()
	second, _ := store.CreateConversation()
	_ = store.AddRecord(first.ID, models.NewRecord("bump", false))

	convs, err := store.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	if convs[0].ID != first.ID || convs[1].ID != second.ID {
		t.Error("conversations not sorted by most recent update")
	}
}

func TestStore_ListConversations_SkipsCorrupted(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)
	_, _ = store.CreateConversation()

	_ = os.WriteFile(filepath.Join(tmpDir, "history", "broken.json"), []byte("{"), 0o644)
	_ = os.WriteFile(filepath.Join(tmpDir, "history", "notes.txt"), []byte("x"), 0o644)

	convs, _ := store.ListConversations()
	if len(convs) != 1 {
		t.Errorf("expected 1 conversation, got %d", len(convs))
	}
}

func TestStore_UpdateTitle(t *testing.T) {
	store := newTestStore(t)
	conv, _ := store.CreateConversation()

	if err := store.UpdateTitle(conv.ID, "Renamed"); err != nil {
		t.Fatalf("UpdateTitle failed: %v", err)
	}
	got, _ := store.GetConversation(conv.ID)
	if got.Title != "Renamed" {
		t.Errorf("Title = %s, want Renamed", got.Title)
	}
}

func TestStore_ClearAll_RemovesOnlyJSONFiles(t *testing.T) {
	tmpDir := t.TempDir()
	store, _ := NewStore(tmpDir)
	_, _ = store.CreateConversation()
	_, _ = store.CreateConversation()

	other := filepath.Join(tmpDir, "history", "keep.txt")
	_ = os.WriteFile(other, []byte("x"), 0o644)

	if err := store.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	convs, _ := store.ListConversations()
	if len(convs) != 0 {
		t.Errorf("expected 0 conversations, got %d", len(convs))
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("non-JSON file was removed")
	}
}

func TestStore_PathTraversalStaysInHistoryDir(t *testing.T) {
	store := newTestStore(t)

	path := store.conversationPath("../../etc/passwd")
	if filepath.Dir(path) != store.baseDir {
		t.Errorf("path %s escapes %s", path, store.baseDir)
	}
}
