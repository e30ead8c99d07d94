package rules

import (
	"github.com/wcag-scan/backend/color"
	"github.com/wcag-scan/backend/dom"
)

// opaqueAlpha is the alpha at which a background layer counts as opaque.
const opaqueAlpha = 0.99

// ResolveBackground returns the nearest opaque background color of n or its
// ancestors, stopping below the document root. Transparent-to-root trees
// resolve to white.
func ResolveBackground(n *dom.Node) color.Color {
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		if cur.Style == nil {
			continue
		}
		if bg := color.Parse(cur.Style.BackgroundColor); bg.Alpha >= opaqueAlpha {
			return bg
		}
	}
	return color.White
}
