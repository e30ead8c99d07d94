// Package color parses CSS color expressions into a normalized RGBA model and
// computes WCAG relative luminance and contrast ratios.
package color

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Color is a normalized RGBA color. R, G and B are in [0,1]; Alpha is in [0,1].
// RGB and Hex are identity keys derived from the 8-bit channels.
type Color struct {
	R     float64 `json:"r"`
	G     float64 `json:"g"`
	B     float64 `json:"b"`
	Alpha float64 `json:"alpha"`
	RGB   string  `json:"rgb"`
	Hex   string  `json:"hex"`
}

var (
	rgbPattern = regexp.MustCompile(`(?i)^rgba?\((\d+),\s*(\d+),\s*(\d+)(?:,\s*([\d.]+))?\)$`)
	hexPattern = regexp.MustCompile(`(?i)^#([0-9a-f]{3,8})$`)
)

// Transparent is the zero color. Alpha 0 means the layer is ignored when
// resolving backgrounds.
var Transparent = FromRGB(0, 0, 0, 0)

// White is the opaque fallback background.
var White = FromRGB(255, 255, 255, 1)

// Black is opaque black.
var Black = FromRGB(0, 0, 0, 1)

// FromRGB builds a Color from 8-bit channels and an alpha in [0,1].
func FromRGB(r, g, b uint8, alpha float64) Color {
	return Color{
		R:     float64(r) / 255,
		G:     float64(g) / 255,
		B:     float64(b) / 255,
		Alpha: alpha,
		RGB:   fmt.Sprintf("%d,%d,%d", r, g, b),
		Hex:   RGBToHex(r, g, b),
	}
}

// RGBToHex formats 8-bit channels as a lowercase #rrggbb string.
func RGBToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Parse converts an rgb()/rgba() or hex expression into a Color.
// Empty input, "transparent" and anything unrecognized (named colors
// included) yield Transparent; parsing never fails.
func Parse(expr string) Color {
	s := strings.TrimSpace(expr)
	if s == "" || strings.EqualFold(s, "transparent") {
		return Transparent
	}

	if m := rgbPattern.FindStringSubmatch(s); m != nil {
		r, g, b := channel(m[1]), channel(m[2]), channel(m[3])
		alpha := 1.0
		if m[4] != "" {
			a, err := strconv.ParseFloat(m[4], 64)
			if err != nil {
				return Transparent
			}
			alpha = clamp01(a)
		}
		return FromRGB(r, g, b, alpha)
	}

	if m := hexPattern.FindStringSubmatch(s); m != nil {
		return parseHex(strings.ToLower(m[1]))
	}

	return Transparent
}

// parseHex decodes 3, 4, 6 or 8 hex digits. Shorthand forms are expanded
// by doubling each digit.
func parseHex(digits string) Color {
	switch len(digits) {
	case 3, 4:
		var sb strings.Builder
		for _, c := range digits {
			sb.WriteRune(c)
			sb.WriteRune(c)
		}
		digits = sb.String()
	case 6, 8:
	default:
		return Transparent
	}

	r := hexByte(digits[0:2])
	g := hexByte(digits[2:4])
	b := hexByte(digits[4:6])
	alpha := 1.0
	if len(digits) == 8 {
		alpha = float64(hexByte(digits[6:8])) / 255
	}
	return FromRGB(r, g, b, alpha)
}

func hexByte(s string) uint8 {
	v, _ := strconv.ParseUint(s, 16, 8)
	return uint8(v)
}

// channel parses a decimal channel, clamping to 255 so the hex key keeps
// two digits per channel.
func channel(s string) uint8 {
	v, err := strconv.Atoi(s)
	if err != nil || v > 255 {
		return 255
	}
	return uint8(v)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// IsTransparent reports whether the color has zero alpha.
func (c Color) IsTransparent() bool {
	return c.Alpha == 0
}

// String returns the rgba() form of the color.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%s, %s)", strings.ReplaceAll(c.RGB, ",", ", "), strconv.FormatFloat(c.Alpha, 'f', -1, 64))
}
