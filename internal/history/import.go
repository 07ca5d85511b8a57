package history

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/diogo/chatview/internal/models"
)

// ErrNoMessages is returned when an import holds no usable messages
var ErrNoMessages = errors.New("no messages found")

// ImportRecords extracts transcript records from a JSON export. path is a
// gjson path to the message array; when empty, "messages" and then the
// document root are tried. System and tool turns are skipped.
func ImportRecords(data []byte, path string) ([]models.MessageRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	list, err := messageArray(data, path)
	if err != nil {
		return nil, err
	}

	var records []models.MessageRecord
	list.ForEach(func(_, item gjson.Result) bool {
		role := firstString(item, "role", "author", "sender", "from")
		switch strings.ToLower(role) {
		case "system", "tool", "function":
			return true
		}

		content := messageContent(item)
		if content == "" {
			return true
		}
		records = append(records, models.MessageRecord{
			Role:    models.ParseRole(role),
			Content: content,
		})
		return true
	})

	if len(records) == 0 {
		return nil, ErrNoMessages
	}
	return records, nil
}

func messageArray(data []byte, path string) (gjson.Result, error) {
	if path != "" {
		list := gjson.GetBytes(data, path)
		if !list.IsArray() {
			return gjson.Result{}, errors.Errorf("path %q is not an array", path)
		}
		return list, nil
	}

	if list := gjson.GetBytes(data, "messages"); list.IsArray() {
		return list, nil
	}
	if root := gjson.ParseBytes(data); root.IsArray() {
		return root, nil
	}
	return gjson.Result{}, ErrNoMessages
}

// messageContent reads plain string content, OpenAI-style content parts
// and Gemini-style parts
func messageContent(item gjson.Result) string {
	for _, key := range []string{"content", "text", "message"} {
		v := item.Get(key)
		switch {
		case v.Type == gjson.String:
			return v.String()
		case v.IsArray():
			return joinParts(v)
		}
	}
	if parts := item.Get("parts"); parts.IsArray() {
		return joinParts(parts)
	}
	return ""
}

func joinParts(parts gjson.Result) string {
	var texts []string
	parts.ForEach(func(_, part gjson.Result) bool {
		switch {
		case part.Type == gjson.String:
			texts = append(texts, part.String())
		case part.Get("text").Exists():
			texts = append(texts, part.Get("text").String())
		}
		return true
	})
	return strings.Join(texts, "\n")
}

func firstString(item gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := item.Get(key); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
