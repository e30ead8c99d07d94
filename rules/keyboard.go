package rules

import (
	"github.com/wcag-scan/backend/dom"
)

var focusStyled = map[string]bool{"a": true, "button": true, "input": true, "select": true, "textarea": true}

// KeyboardRule checks focus visibility and dialog focus management.
type KeyboardRule struct {
	base
}

// NewKeyboardRule creates the keyboard-accessibility rule.
func NewKeyboardRule(namer Namer) *KeyboardRule {
	return &KeyboardRule{newBase(Info{
		Name:        "keyboard-accessibility",
		Description: "Checks keyboard accessibility and focus management",
		WCAGRef:     "WCAG 2.1.1, 2.4.3, 2.4.7",
		WCAGLink:    understandingBase + "keyboard",
	}, namer)}
}

func (r *KeyboardRule) Scan(doc *dom.Document) ([]Issue, error) {
	issues := []Issue{}

	for _, el := range doc.Query(`a[href], button, input, select, textarea, [tabindex]`) {
		if ti, _ := el.Attr("tabindex"); ti == "-1" {
			continue
		}
		if t, _ := el.Attr("type"); el.Tag == "input" && t == "hidden" {
			continue
		}

		if el.Style != nil && (el.Style.Display == "none" || el.Style.Visibility == "hidden") {
			issues = append(issues, r.issue(el, SeverityModerate, "Focusable hidden element",
				"Element is focusable but not visible to keyboard users",
				"2.4.3 Focus Order", understandingBase+"focus-order.html"))
		}

		if focusStyled[el.Tag] && !hasFocusStyle(el) {
			issues = append(issues, r.issue(el, SeverityCritical, "Missing focus indicator",
				"Interactive element lacks visible focus styles",
				"2.4.7 Focus Visible", understandingBase+"focus-visible.html"))
		}
	}

	for _, d := range doc.Query(`[role="dialog"], [role="alertdialog"]`) {
		if modal, _ := d.Attr("aria-modal"); modal != "true" {
			issues = append(issues, r.issue(d, SeverityCritical, "Potential keyboard trap in dialog",
				"Dialog may trap keyboard focus without proper aria-modal attribute",
				"2.1.2 No Keyboard Trap", understandingBase+"no-keyboard-trap.html"))
		}
	}
	return issues, nil
}

// hasFocusStyle is false only when outline and box-shadow are both known
// to be "none". An unreported style counts as present.
func hasFocusStyle(el *dom.Node) bool {
	if el.HasAttr("data-focus-style") || el.Style == nil {
		return true
	}
	return el.Style.OutlineStyle != "none" || el.Style.BoxShadow != "none"
}
