package rules

import (
	"regexp"
	"strings"

	"github.com/wcag-scan/backend/dom"
)

const understandingBase = "https://www.w3.org/WAI/WCAG22/Understanding/"

// base carries the metadata and namer shared by the attribute rules.
type base struct {
	info  Info
	namer Namer
}

func newBase(info Info, namer Namer) base {
	if namer == nil {
		namer = DefaultNamer
	}
	return base{info: info, namer: namer}
}

func (b base) Info() Info {
	return b.info
}

func (b base) issue(n *dom.Node, sev Severity, message, details, ref, link string) Issue {
	return Issue{
		Message:  message,
		Severity: sev,
		Element:  b.namer.Locate(n),
		Details:  details,
		WCAGRef:  ref,
		WCAGLink: link,
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// understandingLink derives an Understanding document URL from a reference
// such as "1.4.2 Audio Control".
func understandingLink(ref string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(ref), "-"), "-")
	return understandingBase + slug
}

// pxOf reads a px length; ok is false for keywords such as "auto".
func pxOf(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	return leadingFloat(s)
}
