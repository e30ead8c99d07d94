package rules

import (
	"strings"

	"github.com/wcag-scan/backend/dom"
)

// Reflow and text spacing thresholds.
const (
	ReflowWidth      = 320
	MinLineHeight    = 1.5
	MinLetterSpacing = 0.12
	MinWordSpacing   = 0.16
)

// LayoutRule checks reflow and text spacing.
type LayoutRule struct {
	base
}

// NewLayoutRule creates the layout-typography rule.
func NewLayoutRule(namer Namer) *LayoutRule {
	return &LayoutRule{newBase(Info{
		Name:        "layout-typography",
		Description: "Checks responsive layout",
		WCAGRef:     "1.4.10 Reflow",
		WCAGLink:    understandingLink("1.4.10 Reflow"),
	}, namer)}
}

func (r *LayoutRule) Scan(doc *dom.Document) ([]Issue, error) {
	issues := []Issue{}

	doc.Walk(func(n *dom.Node) bool {
		if !n.IsElement() {
			return false
		}
		if n.Style != nil {
			if w, ok := pxOf(n.Style.Width); ok && w > ReflowWidth {
				issues = append(issues, r.issue(n, SeverityModerate, "Element may cause horizontal scrolling",
					"", "1.4.10 Reflow", understandingLink("1.4.10 Reflow")))
			}
		}
		return true
	})

	for _, el := range doc.Query("p, span, div, li") {
		if el.Style != nil && tightSpacing(el.Style) {
			issues = append(issues, r.issue(el, SeverityLow, "Insufficient text spacing",
				"", "1.4.12 Text Spacing", understandingLink("1.4.12 Text Spacing")))
		}
	}
	return issues, nil
}

// tightSpacing reports whether an authored spacing value falls below the
// text spacing minimums. "normal" and zero values count as unset.
func tightSpacing(st *dom.Style) bool {
	size, err := ParseFontSize(st.FontSize)
	if err != nil {
		return false
	}
	if lh, ok := lineHeightRatio(st.LineHeight, size); ok && lh < MinLineHeight {
		return true
	}
	if ls, ok := emOf(st.LetterSpacing, size); ok && ls != 0 && ls < MinLetterSpacing {
		return true
	}
	if ws, ok := emOf(st.WordSpacing, size); ok && ws != 0 && ws < MinWordSpacing {
		return true
	}
	return false
}

func lineHeightRatio(v string, fontSize float64) (float64, bool) {
	v = strings.TrimSpace(v)
	n, ok := leadingFloat(v)
	if !ok || n <= 0 {
		return 0, false
	}
	switch {
	case strings.HasSuffix(v, "px"):
		return n / fontSize, true
	case strings.HasSuffix(v, "%"):
		return n / 100, true
	}
	return n, true
}

func emOf(v string, fontSize float64) (float64, bool) {
	v = strings.TrimSpace(v)
	n, ok := leadingFloat(v)
	if !ok {
		return 0, false
	}
	if strings.HasSuffix(v, "px") {
		return n / fontSize, true
	}
	return n, true
}
