package rules

import (
	"fmt"
	"regexp"

	"github.com/wcag-scan/backend/dom"
)

const altRef = "1.1.1 Non-text Content"

var suspiciousAlt = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^image`),
	regexp.MustCompile(`(?i)^img`),
	regexp.MustCompile(`(?i)^picture`),
	regexp.MustCompile(`(?i)^photo`),
	regexp.MustCompile(`(?i)^graphic`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`(?i)^[a-z]$`),
	regexp.MustCompile(`(?i)^spacer`),
	regexp.MustCompile(`(?i)^div$`),
}

// AltTextRule checks images for missing or non-descriptive alternatives.
type AltTextRule struct {
	base
}

// NewAltTextRule creates the alt-text rule.
func NewAltTextRule(namer Namer) *AltTextRule {
	return &AltTextRule{newBase(Info{
		Name:        "alt-text",
		Description: "Checks for missing or inappropriate alt text on images",
		WCAGRef:     "WCAG 1.1.1",
		WCAGLink:    understandingBase + "non-text-content.html",
	}, namer)}
}

func (r *AltTextRule) Scan(doc *dom.Document) ([]Issue, error) {
	issues := []Issue{}
	link := r.info.WCAGLink

	for _, img := range doc.Query(`img, [role="img"], input[type="image"]`) {
		if isDecorative(img) {
			continue
		}
		alt, ok := img.Attr("alt")
		switch {
		case !ok:
			issues = append(issues, r.issue(img, SeverityCritical, "Missing alt attribute",
				"Image is not marked as decorative and has no alt text", altRef, link))
		case alt == "":
			if isLargeImage(img) {
				issues = append(issues, r.issue(img, SeverityModerate, "Empty alt text on potentially meaningful image",
					"Large image with empty alt text - verify if it should be decorative", altRef, link))
			}
		case isSuspiciousAlt(alt):
			issues = append(issues, r.issue(img, SeverityModerate, "Potentially non-descriptive alt text",
				fmt.Sprintf("Alt text may not be descriptive: %q", alt), altRef, link))
		}
	}
	return issues, nil
}

func isDecorative(n *dom.Node) bool {
	role, _ := n.Attr("role")
	hidden, _ := n.Attr("aria-hidden")
	return role == "presentation" || hidden == "true"
}

// isLargeImage reports whether both rendered dimensions exceed 50px.
// Unknown dimensions count as small.
func isLargeImage(n *dom.Node) bool {
	if n.Style == nil {
		return false
	}
	w, okW := pxOf(n.Style.Width)
	h, okH := pxOf(n.Style.Height)
	return okW && okH && w > 50 && h > 50
}

func isSuspiciousAlt(alt string) bool {
	for _, re := range suspiciousAlt {
		if re.MatchString(alt) {
			return true
		}
	}
	return false
}
