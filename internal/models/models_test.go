package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleFor(t *testing.T) {
	assert.Equal(t, RoleAssistant, RoleFor(true))
	assert.Equal(t, RoleUser, RoleFor(false))
	assert.True(t, RoleAssistant.IsAI())
	assert.False(t, RoleUser.IsAI())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
	}{
		{"assistant", RoleAssistant},
		{"Model", RoleAssistant},
		{" ai ", RoleAssistant},
		{"bot", RoleAssistant},
		{"user", RoleUser},
		{"human", RoleUser},
		{"", RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseRole(tt.input))
		})
	}
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("hi", false)
	assert.Equal(t, MessageRecord{Role: RoleUser, Content: "hi"}, rec)
}

func TestStyleBlockMerge(t *testing.T) {
	yes := true
	no := false

	base := StyleBlock{Foreground: "#fff", Border: "rounded", Bold: &yes, Padding: []int{1}}
	merged := base.Merge(StyleBlock{Foreground: "#000", Bold: &no})

	assert.Equal(t, "#000", merged.Foreground)
	assert.Equal(t, "rounded", merged.Border)
	require.NotNil(t, merged.Bold)
	assert.False(t, *merged.Bold)
	assert.Equal(t, []int{1}, merged.Padding)

	// the receiver is not modified
	assert.Equal(t, "#fff", base.Foreground)
}

func TestStyleBlockIsZero(t *testing.T) {
	assert.True(t, StyleBlock{}.IsZero())
	assert.False(t, StyleBlock{Width: 10}.IsZero())
}

func TestErrorMessagesResolveText(t *testing.T) {
	full := ErrorMessages{
		ErrorTypeService: {Text: "service down"},
		ErrorTypeDefault: {Text: "something broke"},
	}
	defaultOnly := ErrorMessages{
		ErrorTypeDefault: {Text: "something broke"},
	}

	tests := []struct {
		name     string
		messages ErrorMessages
		errType  ErrorType
		message  string
		expected string
	}{
		{"type template wins", full, ErrorTypeService, "caller", "service down"},
		{"default template", defaultOnly, ErrorTypeService, "caller", "something broke"},
		{"caller message", nil, ErrorTypeService, "caller", "caller"},
		{"hardcoded fallback", nil, ErrorTypeService, "", FallbackErrorText},
		{"empty template text falls through", ErrorMessages{ErrorTypeService: {}}, ErrorTypeService, "", FallbackErrorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.messages.ResolveText(tt.errType, tt.message))
		})
	}
}

func TestErrorMessagesResolveStyles(t *testing.T) {
	typeStyle := &MessageStyle{Text: StyleBlock{Foreground: "#f00"}}
	defaultStyle := &MessageStyle{Text: StyleBlock{Foreground: "#0f0"}}

	both := ErrorMessages{
		ErrorTypeService: {Styles: typeStyle},
		ErrorTypeDefault: {Styles: defaultStyle},
	}
	assert.Same(t, typeStyle, both.ResolveStyles(ErrorTypeService))
	assert.Same(t, defaultStyle, both.ResolveStyles(ErrorTypeSpeechToText))

	var none ErrorMessages
	assert.Nil(t, none.ResolveStyles(ErrorTypeService))
}
