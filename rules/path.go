package rules

import (
	"fmt"
	"strings"

	"github.com/wcag-scan/backend/dom"
)

// Namer produces a structural locator for an element.
type Namer interface {
	Locate(n *dom.Node) string
}

// PathNamer builds CSS-selector-like locators such as
// "main#content > ul.items > li:nth-child(3)". The walk stops at an element
// with an id, or after MaxDepth levels.
type PathNamer struct {
	MaxDepth int
}

// DefaultNamer is shared by every rule in the default roster.
var DefaultNamer Namer = PathNamer{MaxDepth: 6}

// Locate returns the locator for n, or "" when n is not an element.
func (p PathNamer) Locate(n *dom.Node) string {
	if !n.IsElement() {
		return ""
	}
	depth := p.MaxDepth
	if depth <= 0 {
		depth = 6
	}

	var segments []string
	for cur := n; cur.IsElement() && len(segments) < depth; cur = cur.Parent {
		seg := cur.Tag
		if id := cur.ID(); id != "" {
			segments = append(segments, seg+"#"+id)
			break
		}
		if classes := cur.Classes(); len(classes) > 0 {
			seg += "." + classes[0]
		}
		if idx, count := cur.SiblingIndex(); count > 1 {
			seg += fmt.Sprintf(":nth-child(%d)", idx+1)
		}
		segments = append(segments, seg)
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, " > ")
}
