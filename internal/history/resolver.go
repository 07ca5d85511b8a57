package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/diogo/chatview/internal/models"
)

// alias is a named reference into the recency-ordered conversation list
type alias struct {
	name string
	help string
	pick func(recent []*Conversation) *Conversation
}

var aliases = []alias{
	{"@last", "Most recently updated conversation", func(c []*Conversation) *Conversation {
		return c[0]
	}},
	{"@prev", "The conversation before @last", func(c []*Conversation) *Conversation {
		if len(c) < 2 {
			return nil
		}
		return c[1]
	}},
	{"@first", "Oldest conversation", func(c []*Conversation) *Conversation {
		return c[len(c)-1]
	}},
}

// Resolver turns the references users type on the command line into
// stored conversations
type Resolver struct {
	store *Store
}

// NewResolver creates a resolver over store
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve loads the conversation ref points at. A reference is an alias,
// a 1-based position in the recency list, a full ID, or text found in
// exactly one title. Text that matches no title is tried against the
// opening user message of each conversation.
func (r *Resolver) Resolve(ref string) (*Conversation, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("empty reference")
	}

	recent, err := r.store.ListConversations()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}
	if len(recent) == 0 {
		return nil, errors.New("no conversations found")
	}

	if strings.HasPrefix(ref, "@") {
		name := strings.ToLower(ref)
		for _, a := range aliases {
			if a.name != name {
				continue
			}
			if conv := a.pick(recent); conv != nil {
				return conv, nil
			}
			return nil, errors.Errorf("%s needs at least two conversations", a.name)
		}
		return nil, errors.Errorf("unknown alias %s", ref)
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(recent) {
			return nil, errors.Errorf("index %d out of range (1-%d)", index, len(recent))
		}
		return recent[index-1], nil
	}

	if strings.HasPrefix(ref, idPrefix) {
		for _, conv := range recent {
			if conv.ID == ref {
				return conv, nil
			}
		}
		return nil, errors.Wrap(ErrNotFound, ref)
	}

	query := strings.ToLower(ref)
	matches := filter(recent, func(c *Conversation) bool {
		return strings.Contains(strings.ToLower(c.Title), query)
	})
	if len(matches) == 0 {
		matches = filter(recent, func(c *Conversation) bool {
			return strings.Contains(strings.ToLower(openingMessage(c)), query)
		})
	}

	switch len(matches) {
	case 0:
		return nil, errors.Errorf("no conversation matching '%s'", ref)
	case 1:
		return matches[0], nil
	default:
		candidates := make([]string, len(matches))
		for i, m := range matches {
			candidates[i] = fmt.Sprintf("%s (%s)", m.ID, m.Title)
		}
		return nil, errors.Errorf("multiple conversations match '%s': %s",
			ref, strings.Join(candidates, ", "))
	}
}

func filter(convs []*Conversation, keep func(*Conversation) bool) []*Conversation {
	var out []*Conversation
	for _, c := range convs {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// openingMessage returns the first user message, which is what a
// conversation is usually remembered by
func openingMessage(c *Conversation) string {
	for _, msg := range c.Messages {
		if msg.Role == models.RoleUser {
			return msg.Content
		}
	}
	return ""
}

// ListAliases describes the accepted references for command help
func ListAliases() string {
	var b strings.Builder
	b.WriteString("Conversation references:\n")
	for _, a := range aliases {
		fmt.Fprintf(&b, "  %-14s %s\n", a.name, a.help)
	}
	fmt.Fprintf(&b, "  %-14s %s\n", "1, 2, 3", "Position in the list, most recent first")
	fmt.Fprintf(&b, "  %-14s %s\n", idPrefix+"...", "Full conversation ID")
	fmt.Fprintf(&b, "  %-14s %s", "text", "Title, or else opening message, containing text")
	return b.String()
}
