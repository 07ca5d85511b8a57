// Package history provides local transcript storage.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/transcript"
)

// ErrNotFound is returned for unknown conversation IDs
var ErrNotFound = errors.New("conversation not found")

// idPrefix starts every conversation ID
const idPrefix = "conv-"

// Message is one stored transcript record
type Message struct {
	Role      models.Role `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Conversation is a stored transcript
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// Records returns the conversation as transcript records, ready to seed a
// new transcript
func (c *Conversation) Records() []models.MessageRecord {
	records := make([]models.MessageRecord, len(c.Messages))
	for i, msg := range c.Messages {
		records[i] = models.MessageRecord{Role: msg.Role, Content: msg.Content}
	}
	return records
}

// Store manages conversation persistence, one JSON file per conversation
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a store under baseDir/history
func NewStore(baseDir string) (*Store, error) {
	historyDir := filepath.Join(baseDir, "history")
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create history directory")
	}

	return &Store{
		baseDir: historyDir,
	}, nil
}

// CreateConversation creates an empty conversation
func (s *Store) CreateConversation() (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv := &Conversation{
		ID:        generateConvID(),
		Title:     fmt.Sprintf("Chat %s", now.Format("2006-01-02 15:04")),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []Message{},
	}

	if err := s.saveConversation(conv); err != nil {
		return nil, err
	}

	return conv, nil
}

// ImportConversation stores records as a new conversation
func (s *Store) ImportConversation(title string, records []models.MessageRecord) (*Conversation, error) {
	conv, err := s.CreateConversation()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		appendRecord(conv, rec)
	}
	if title != "" {
		conv.Title = title
	}
	return conv, s.saveConversation(conv)
}

// GetConversation retrieves a conversation by ID
func (s *Store) GetConversation(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadConversation(id)
}

// ListConversations returns all conversations, most recently updated first
func (s *Store) ListConversations() ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read history directory")
	}

	var conversations []*Conversation
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		conv, err := s.loadConversation(id)
		if err != nil {
			continue // Skip corrupted files
		}
		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})

	return conversations, nil
}

// AddRecord appends a finalized transcript record to a conversation
func (s *Store) AddRecord(id string, rec models.MessageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.loadConversation(id)
	if err != nil {
		return err
	}

	appendRecord(conv, rec)
	return s.saveConversation(conv)
}

// appendRecord adds rec and titles the conversation after its first user turn
func appendRecord(conv *Conversation, rec models.MessageRecord) {
	now := time.Now()
	conv.Messages = append(conv.Messages, Message{
		Role:      rec.Role,
		Content:   rec.Content,
		Timestamp: now,
	})
	conv.UpdatedAt = now

	if rec.Role == models.RoleUser && len(conv.Messages) == 1 {
		title := strings.TrimSpace(rec.Content)
		if r := []rune(title); len(r) > 50 {
			title = string(r[:50]) + "..."
		}
		if title != "" {
			conv.Title = title
		}
	}
}

// Recorder returns a transcript callback persisting new messages into the
// conversation. Seeded messages are already stored and are skipped.
func (s *Store) Recorder(id string, logger zerolog.Logger) transcript.OnNewMessage {
	return func(message models.MessageRecord, isInitial bool) {
		if isInitial {
			return
		}
		if err := s.AddRecord(id, message); err != nil {
			logger.Error().Err(err).Str("conversation", id).Msg("failed to save message")
		}
	}
}

// DeleteConversation removes a conversation
func (s *Store) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.conversationPath(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(ErrNotFound, id)
		}
		return errors.Wrap(err, "failed to delete conversation")
	}

	return nil
}

// UpdateTitle renames a conversation
func (s *Store) UpdateTitle(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.loadConversation(id)
	if err != nil {
		return err
	}

	conv.Title = title
	conv.UpdatedAt = time.Now()

	return s.saveConversation(conv)
}

// ClearAll deletes all conversations
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return errors.Wrap(err, "failed to read history directory")
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.baseDir, entry.Name())
		if err := os.Remove(path); err != nil {
			return errors.Wrapf(err, "failed to delete %s", entry.Name())
		}
	}

	return nil
}

func (s *Store) conversationPath(id string) string {
	return filepath.Join(s.baseDir, filepath.Base(id)+".json")
}

func (s *Store) loadConversation(id string) (*Conversation, error) {
	path := s.conversationPath(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrNotFound, id)
		}
		return nil, errors.Wrap(err, "failed to read conversation")
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, errors.Wrap(err, "failed to parse conversation")
	}

	return &conv, nil
}

func (s *Store) saveConversation(conv *Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversation")
	}

	path := s.conversationPath(conv.ID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write conversation")
	}

	return nil
}

func generateConvID() string {
	return idPrefix + uuid.NewString()
}
