// Package dom holds the read-only Document Snapshot the rules run against:
// a tree of element and text nodes, each element carrying its computed
// style. Snapshots are built either from static HTML (Parse) or from the
// JSON wire format a browser host captures (Decode).
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// NodeType distinguishes elements from text.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Style is the computed style view of an element. Values are resolved CSS
// strings as a browser's getComputedStyle would report them ("16px",
// "700", "rgb(0, 0, 0)").
type Style struct {
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
	Display         string `json:"display"`
	Visibility      string `json:"visibility"`
	Opacity         string `json:"opacity"`
	LineHeight      string `json:"lineHeight"`
	LetterSpacing   string `json:"letterSpacing"`
	WordSpacing     string `json:"wordSpacing"`
	OutlineStyle    string `json:"outlineStyle,omitempty"`
	BoxShadow       string `json:"boxShadow,omitempty"`
	Width           string `json:"width,omitempty"`
	Height          string `json:"height,omitempty"`
}

// Node is an element or text node. Parent is navigational only.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    map[string]string
	Text     string
	Style    *Style
	Parent   *Node
	Children []*Node

	src *html.Node
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode
}

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// HasAttr reports whether the attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// ID returns the id attribute, or "".
func (n *Node) ID() string {
	v, _ := n.Attr("id")
	return strings.TrimSpace(v)
}

// Classes returns the class tokens in document order.
func (n *Node) Classes() []string {
	v, _ := n.Attr("class")
	return strings.Fields(v)
}

// ElementChildren returns the element children of n.
func (n *Node) ElementChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// SiblingIndex returns the zero-based position of n among its parent's
// element children and the number of such children. A node without a
// parent is the only child of the document.
func (n *Node) SiblingIndex() (index, count int) {
	if n.Parent == nil {
		return 0, 1
	}
	siblings := n.Parent.ElementChildren()
	for i, s := range siblings {
		if s == n {
			index = i
		}
	}
	return index, len(siblings)
}

// TextContent concatenates the text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Type == TextNode {
		return n.Text
	}
	var sb strings.Builder
	n.Walk(func(d *Node) bool {
		if d.Type == TextNode {
			sb.WriteString(d.Text)
		}
		return true
	})
	return sb.String()
}

// HasDirectText reports whether n has a text child with non-whitespace content.
func (n *Node) HasDirectText() bool {
	for _, c := range n.Children {
		if c.Type == TextNode && strings.TrimSpace(c.Text) != "" {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor-or-self element with the given tag.
func (n *Node) Closest(tag string) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == ElementNode && cur.Tag == tag {
			return cur
		}
	}
	return nil
}

// Walk visits n and its descendants depth-first in document order. When fn
// returns false the subtree below the visited node is skipped.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
