package models

import "strings"

// Role identifies who authored a transcript message
type Role string

// Known roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RoleFor returns the role for the isAI flag used throughout the transcript API
func RoleFor(isAI bool) Role {
	if isAI {
		return RoleAssistant
	}
	return RoleUser
}

// ParseRole normalizes the role names found in exported conversations.
// Anything that is not clearly an assistant turn is treated as the user.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assistant", "ai", "model", "bot":
		return RoleAssistant
	default:
		return RoleUser
	}
}

// IsAI reports whether the role is the assistant
func (r Role) IsAI() bool {
	return r == RoleAssistant
}

// MessageRecord is one finalized turn of the displayed conversation
type MessageRecord struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// NewRecord builds a record from text and the isAI flag
func NewRecord(text string, isAI bool) MessageRecord {
	return MessageRecord{Role: RoleFor(isAI), Content: text}
}

// NewMessageEvent is the payload delivered to new-message listeners
type NewMessageEvent struct {
	Message   MessageRecord `json:"message"`
	IsInitial bool          `json:"isInitial"`
}
