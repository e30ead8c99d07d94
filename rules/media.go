package rules

import (
	"github.com/wcag-scan/backend/dom"
)

// MediaRule checks captions, audio description and autoplay control.
type MediaRule struct {
	base
}

// NewMediaRule creates the media-accessibility rule.
func NewMediaRule(namer Namer) *MediaRule {
	return &MediaRule{newBase(Info{
		Name:        "media-accessibility",
		Description: "Checks video/audio accessibility",
		WCAGRef:     "1.2.2 Captions (Prerecorded)",
		WCAGLink:    understandingLink("1.2.2 Captions (Prerecorded)"),
	}, namer)}
}

func (r *MediaRule) Scan(doc *dom.Document) ([]Issue, error) {
	issues := []Issue{}

	videos := doc.Query("video")
	for _, v := range videos {
		if len(doc.QueryWithin(v, `track[kind="captions"]`)) == 0 {
			issues = append(issues, r.mediaIssue(v, SeverityCritical, "Video missing captions", "1.2.2 Captions (Prerecorded)"))
		}
	}
	for _, v := range videos {
		if len(doc.QueryWithin(v, "track")) == 0 {
			issues = append(issues, r.mediaIssue(v, SeverityModerate, "Video missing audio description", "1.2.3 Audio Description"))
		}
	}

	// Duration is unknown without playback, so autoplay without controls is
	// always reported.
	for _, a := range doc.Query("audio[autoplay]") {
		if !a.HasAttr("controls") {
			issues = append(issues, r.mediaIssue(a, SeverityCritical, "Auto-playing audio without control", "1.4.2 Audio Control"))
		}
	}
	return issues, nil
}

func (r *MediaRule) mediaIssue(n *dom.Node, sev Severity, message, ref string) Issue {
	return r.issue(n, sev, message, "", ref, understandingLink(ref))
}
