package rules

import (
	"regexp"
	"strings"

	"github.com/wcag-scan/backend/dom"
)

var (
	sensoryPhrases = []string{"click the green button", "see the right sidebar", "shown in red"}
	statusWords    = regexp.MustCompile(`(?i)important|error|warning|success`)
	textAlternates = []string{"aria-label", "aria-labelledby", "alt", "title"}
)

// SensoryRule flags instructions that depend on sensory characteristics and
// status text conveyed by color alone.
type SensoryRule struct {
	base
}

// NewSensoryRule creates the sensory-alerts rule.
func NewSensoryRule(namer Namer) *SensoryRule {
	return &SensoryRule{newBase(Info{
		Name:        "sensory-alerts",
		Description: "Checks non-visual cues",
		WCAGRef:     "1.3.3 Sensory Characteristics",
		WCAGLink:    understandingLink("1.3.3 Sensory Characteristics"),
	}, namer)}
}

func (r *SensoryRule) Scan(doc *dom.Document) ([]Issue, error) {
	issues := []Issue{}

	for _, el := range doc.Query("p, span, div, li") {
		text := strings.ToLower(el.TextContent())
		for _, phrase := range sensoryPhrases {
			if strings.Contains(text, phrase) {
				issues = append(issues, r.sensoryIssue(el, SeverityModerate,
					"Reliance on sensory characteristics", "1.3.3 Sensory Characteristics"))
			}
		}
	}

	for _, el := range doc.Query(`[style*="color"]`) {
		if statusWords.MatchString(el.TextContent()) && !hasTextAlternate(el) {
			issues = append(issues, r.sensoryIssue(el, SeverityCritical,
				"Color as sole information carrier", "1.4.1 Use of Color"))
		}
	}
	return issues, nil
}

func (r *SensoryRule) sensoryIssue(n *dom.Node, sev Severity, message, ref string) Issue {
	return r.issue(n, sev, message, "", ref, understandingLink(ref))
}

// hasTextAlternate reports whether el or any descendant carries a textual
// alternative attribute.
func hasTextAlternate(el *dom.Node) bool {
	found := false
	el.Walk(func(n *dom.Node) bool {
		if found || !n.IsElement() {
			return false
		}
		for _, a := range textAlternates {
			if n.HasAttr(a) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
