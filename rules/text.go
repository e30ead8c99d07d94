package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wcag-scan/backend/color"
	"github.com/wcag-scan/backend/dom"
)

// Large-text thresholds in CSS pixels as reported by the snapshot.
const (
	LargeTextSize     = 18
	LargeBoldTextSize = 14
	BoldWeight        = 700
)

// IsLargeText reports whether text qualifies for the relaxed contrast minimum.
func IsLargeText(fontSize, fontWeight float64) bool {
	return fontSize >= LargeTextSize || (fontSize >= LargeBoldTextSize && fontWeight >= BoldWeight)
}

// RequiredRatio returns the minimum contrast ratio for the text size.
func RequiredRatio(fontSize, fontWeight float64) float64 {
	if IsLargeText(fontSize, fontWeight) {
		return color.MinRatioLarge
	}
	return color.MinRatioNormal
}

// StyleSnapshot is the resolved presentation of one text element.
type StyleSnapshot struct {
	FontSize   float64
	FontWeight float64
	TextColor  color.Color
	Background color.Color
}

// Snapshot resolves the text style of n, including its effective background.
func Snapshot(n *dom.Node) (StyleSnapshot, error) {
	if n.Style == nil {
		return StyleSnapshot{}, ErrStyleMissing
	}
	size, err := ParseFontSize(n.Style.FontSize)
	if err != nil {
		return StyleSnapshot{}, err
	}
	weight, err := ParseFontWeight(n.Style.FontWeight)
	if err != nil {
		return StyleSnapshot{}, err
	}
	return StyleSnapshot{
		FontSize:   size,
		FontWeight: weight,
		TextColor:  color.Parse(n.Style.Color),
		Background: ResolveBackground(n),
	}, nil
}

// ParseFontSize reads the numeric prefix of a computed font size ("16px").
func ParseFontSize(s string) (float64, error) {
	v, ok := leadingFloat(s)
	if !ok || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadFontSize, s)
	}
	return v, nil
}

// ParseFontWeight reads a numeric weight, mapping "normal" and "bold" to
// 400 and 700.
func ParseFontWeight(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return 400, nil
	case "bold":
		return 700, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadFontWeight, s)
	}
	return v, nil
}

// leadingFloat parses the longest numeric prefix of s.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || ((c == '-' || c == '+') && end == 0) {
			end++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
