package rules

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/wcag-scan/backend/color"
	"github.com/wcag-scan/backend/dom"
)

const (
	contrastName   = "pro-color-contrast"
	contrastPrefix = "color-contrast-"
	sampleLength   = 50
	visibleAlpha   = 0.1
)

// ContrastContext is the structured payload attached to contrast issues.
type ContrastContext struct {
	TextSample     string         `json:"textSample"`
	FontSize       float64        `json:"fontSize"`
	FontWeight     float64        `json:"fontWeight"`
	TextColor      string         `json:"textColor"`
	BgColor        string         `json:"bgColor"`
	ComputedStyles ComputedStyles `json:"computedStyles"`
}

// ComputedStyles are the raw style strings the verdict was based on.
type ComputedStyles struct {
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
}

// ContrastRule checks WCAG 1.4.3 contrast minimum for every visible element
// carrying direct text. Each distinct (text color, background, size,
// weight) combination is reported at most once per scan.
type ContrastRule struct {
	namer  Namer
	logger *slog.Logger
}

// NewContrastRule creates the contrast rule.
func NewContrastRule(namer Namer, logger *slog.Logger) *ContrastRule {
	if namer == nil {
		namer = DefaultNamer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContrastRule{namer: namer, logger: logger}
}

func (r *ContrastRule) Info() Info {
	return Info{
		Name:        contrastName,
		Description: "Advanced color contrast analysis with element detection",
		WCAGRef:     "1.4.3",
		WCAGLink:    "https://www.w3.org/WAI/WCAG22/Understanding/contrast-minimum.html",
	}
}

func (r *ContrastRule) Scan(doc *dom.Document) ([]Issue, error) {
	issues := []Issue{}
	seen := make(map[string]struct{})

	for _, el := range TextElements(doc) {
		st, err := Snapshot(el)
		if err != nil {
			r.logger.Warn("rules: contrast check skipped element",
				"rule", contrastName, "element", r.namer.Locate(el), "error", err)
			continue
		}
		if st.TextColor.Alpha < visibleAlpha || st.Background.Alpha < visibleAlpha {
			continue
		}

		key := fmt.Sprintf("%s-%s-%g-%g", st.TextColor.RGB, st.Background.RGB, st.FontSize, st.FontWeight)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		ratio := color.ContrastRatio(st.TextColor, st.Background)
		required := RequiredRatio(st.FontSize, st.FontWeight)
		if ratio >= required {
			continue
		}
		issues = append(issues, r.issue(el, st, ratio, required))
	}
	return issues, nil
}

func (r *ContrastRule) issue(el *dom.Node, st StyleSnapshot, ratio, required float64) Issue {
	path := r.namer.Locate(el)
	info := r.Info()

	kind := "Normal text"
	if IsLargeText(st.FontSize, st.FontWeight) {
		kind = "Large text"
	}

	return Issue{
		ID:       contrastPrefix + IssueHash(path, st.TextColor.Hex, st.Background.Hex),
		Message:  fmt.Sprintf("Insufficient color contrast (%.1f:1)", ratio),
		Severity: SeverityCritical,
		Element:  path,
		Details: fmt.Sprintf("Text color: %s, Background: %s\nRequired: %s:1 (%s)",
			st.TextColor.Hex, st.Background.Hex, strconv.FormatFloat(required, 'f', -1, 64), kind),
		WCAGRef:  info.WCAGRef,
		WCAGLink: info.WCAGLink,
		Context: ContrastContext{
			TextSample: sample(el),
			FontSize:   st.FontSize,
			FontWeight: st.FontWeight,
			TextColor:  st.TextColor.Hex,
			BgColor:    st.Background.Hex,
			ComputedStyles: ComputedStyles{
				Color:           el.Style.Color,
				BackgroundColor: el.Style.BackgroundColor,
				FontSize:        el.Style.FontSize,
				FontWeight:      el.Style.FontWeight,
			},
		},
	}
}

// sample returns the trimmed element text, cut to sampleLength runes.
func sample(el *dom.Node) string {
	runes := []rune(strings.TrimSpace(el.TextContent()))
	if len(runes) > sampleLength {
		runes = runes[:sampleLength]
	}
	return string(runes)
}

// TextElements returns the visible elements below body that have direct,
// non-whitespace text. Hidden elements prune their whole subtree.
func TextElements(doc *dom.Document) []*dom.Node {
	start := doc.Body()
	if start == nil {
		return nil
	}
	var out []*dom.Node
	start.Walk(func(n *dom.Node) bool {
		if !n.IsElement() || isHidden(n.Style) {
			return false
		}
		if n != start && n.HasDirectText() {
			out = append(out, n)
		}
		return true
	})
	return out
}

func isHidden(st *dom.Style) bool {
	if st == nil {
		return false
	}
	if st.Display == "none" || st.Visibility == "hidden" {
		return true
	}
	if op, ok := leadingFloat(st.Opacity); ok && op == 0 {
		return true
	}
	return false
}
