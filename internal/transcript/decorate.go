package transcript

import "github.com/diogo/chatview/internal/models"

// Decorator adds avatar or name decoration to a bubble's inner container
type Decorator interface {
	Decorate(inner *Node, isAI bool)
}

// DecoratorFunc adapts a function to Decorator
type DecoratorFunc func(inner *Node, isAI bool)

// Decorate calls f
func (f DecoratorFunc) Decorate(inner *Node, isAI bool) {
	f(inner, isAI)
}

// Default decoration values
const (
	DefaultAIGlyph   = "✦"
	DefaultUserGlyph = "⬤"
	DefaultAIName    = "Assistant"
	DefaultUserName  = "You"
)

// AvatarDecorator prepends a glyph node tagged "avatar"
func AvatarDecorator(avatars models.Avatars) Decorator {
	return DecoratorFunc(func(inner *Node, isAI bool) {
		glyph := DefaultUserGlyph
		if isAI {
			glyph = DefaultAIGlyph
		}
		var style models.StyleBlock

		for _, c := range []*models.AvatarConfig{avatars.Default, roleAvatar(avatars, isAI)} {
			if c == nil {
				continue
			}
			if c.Glyph != "" {
				glyph = c.Glyph
			}
			if c.Style != nil {
				style = style.Merge(*c.Style)
			}
		}

		avatar := NewNode(models.ClassAvatar, roleClass(models.ClassAvatar, isAI))
		avatar.AppendText(glyph)
		avatar.ApplyStyle(style)
		inner.PrependChild(avatar)
	})
}

// NameDecorator prepends a label node tagged "name"
func NameDecorator(names models.Names) Decorator {
	return DecoratorFunc(func(inner *Node, isAI bool) {
		label := DefaultUserName
		if isAI {
			label = DefaultAIName
		}
		var style models.StyleBlock

		for _, c := range []*models.NameConfig{names.Default, roleName(names, isAI)} {
			if c == nil {
				continue
			}
			if c.Text != "" {
				label = c.Text
			}
			if c.Style != nil {
				style = style.Merge(*c.Style)
			}
		}

		name := NewNode(models.ClassName, roleClass(models.ClassName, isAI))
		name.AppendText(label)
		name.ApplyStyle(style)
		inner.PrependChild(name)
	})
}

func roleAvatar(a models.Avatars, isAI bool) *models.AvatarConfig {
	if isAI {
		return a.AI
	}
	return a.User
}

func roleName(n models.Names, isAI bool) *models.NameConfig {
	if isAI {
		return n.AI
	}
	return n.User
}

func roleClass(prefix string, isAI bool) string {
	if isAI {
		return "ai-" + prefix
	}
	return "user-" + prefix
}
