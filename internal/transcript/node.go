package transcript

import (
	"slices"
	"strings"

	"github.com/diogo/chatview/internal/models"
)

// Node is one element of the transcript's visual tree. It carries class-name
// tags, an applied style block, raw text segments and child nodes.
type Node struct {
	classes  []string
	style    models.StyleBlock
	segments []string
	children []*Node
	parent   *Node
}

// NewNode creates a detached node tagged with classes
func NewNode(classes ...string) *Node {
	n := &Node{}
	n.AddClass(classes...)
	return n
}

// AddClass tags the node, ignoring tags it already has
func (n *Node) AddClass(classes ...string) {
	for _, c := range classes {
		if c != "" && !n.HasClass(c) {
			n.classes = append(n.classes, c)
		}
	}
}

// RemoveClass drops a tag
func (n *Node) RemoveClass(class string) {
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool { return c == class })
}

// HasClass reports whether the node carries the tag
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.classes, class)
}

// Classes returns a copy of the node's tags in insertion order
func (n *Node) Classes() []string {
	return slices.Clone(n.classes)
}

// SetText replaces the node's content, children included, with text
func (n *Node) SetText(text string) {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.segments = nil
	if text != "" {
		n.segments = []string{text}
	}
}

// AppendText appends a raw text segment
func (n *Node) AppendText(text string) {
	n.segments = append(n.segments, text)
}

// TextContent returns the node's own text segments joined together.
// Decoration children do not contribute.
func (n *Node) TextContent() string {
	return strings.Join(n.segments, "")
}

// AppendChild attaches child as the last child of n, detaching it first
func (n *Node) AppendChild(child *Node) {
	child.Remove()
	child.parent = n
	n.children = append(n.children, child)
}

// PrependChild attaches child as the first child of n
func (n *Node) PrependChild(child *Node) {
	child.Remove()
	child.parent = n
	n.children = append([]*Node{child}, n.children...)
}

// Remove detaches the node from its parent
func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	p := n.parent
	p.children = slices.DeleteFunc(p.children, func(c *Node) bool { return c == n })
	n.parent = nil
}

// Children returns a copy of the child list
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Parent returns the parent node or nil
func (n *Node) Parent() *Node {
	return n.parent
}

// ChildWithClass returns the first direct child carrying class
func (n *Node) ChildWithClass(class string) *Node {
	for _, c := range n.children {
		if c.HasClass(class) {
			return c
		}
	}
	return nil
}

// Style returns the style block applied to the node
func (n *Node) Style() models.StyleBlock {
	return n.style
}

// ApplyStyle layers block over the node's current style
func (n *Node) ApplyStyle(block models.StyleBlock) {
	n.style = n.style.Merge(block)
}
