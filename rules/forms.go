package rules

import (
	"fmt"

	"github.com/wcag-scan/backend/dom"
)

const formControlSelector = `input:not([type="hidden"]):not([type="submit"]):not([type="reset"]):not([type="button"]), ` +
	`select, textarea, [role="combobox"], [role="slider"], [role="spinbutton"]`

var (
	infoRelationshipsRef  = "1.3.1 Info and Relationships"
	infoRelationshipsLink = understandingBase + "info-and-relationships.html"
)

// FormLabelsRule checks that form controls have an accessible name.
type FormLabelsRule struct {
	base
}

// NewFormLabelsRule creates the form-labels rule.
func NewFormLabelsRule(namer Namer) *FormLabelsRule {
	return &FormLabelsRule{newBase(Info{
		Name:        "form-labels",
		Description: "Checks form controls have proper labels",
		WCAGRef:     "WCAG 1.3.1, 4.1.2",
		WCAGLink:    understandingBase + "labels-or-instructions.html",
	}, namer)}
}

func (r *FormLabelsRule) Scan(doc *dom.Document) ([]Issue, error) {
	issues := []Issue{}

	labelled := make(map[string]bool)
	for _, l := range doc.Query("label[for]") {
		v, _ := l.Attr("for")
		labelled[v] = true
	}

	for _, c := range doc.Query(formControlSelector) {
		controlType, ok := c.Attr("type")
		if !ok || controlType == "" {
			controlType = c.Tag
		}
		id := c.ID()
		hasAria := c.HasAttr("aria-label") || c.HasAttr("aria-labelledby")

		if id != "" {
			if !labelled[id] {
				issues = append(issues, r.issue(c, SeverityCritical, "Missing explicit label",
					fmt.Sprintf("Form control of type %s has no associated label", controlType),
					infoRelationshipsRef, infoRelationshipsLink))
			}
		} else if c.Closest("label") == nil && !hasAria {
			issues = append(issues, r.issue(c, SeverityCritical, "Missing accessible name",
				fmt.Sprintf("Form control of type %s has no accessible name", controlType),
				"4.1.2 Name, Role, Value", understandingBase+"name-role-value.html"))
		}

		if c.HasAttr("placeholder") && !hasAria && (id == "" || !labelled[id]) {
			issues = append(issues, r.issue(c, SeverityModerate, "Placeholder used as label",
				"Placeholder text should not be used as a replacement for proper labeling",
				infoRelationshipsRef, infoRelationshipsLink))
		}
	}
	return issues, nil
}
