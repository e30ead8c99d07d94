package color

import "math"

// Minimum contrast ratios from WCAG 1.4.3.
const (
	MinRatioNormal = 4.5
	MinRatioLarge  = 3.0
)

// linearize converts an sRGB channel in [0,1] to linear light.
func linearize(c float64) float64 {
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RelativeLuminance returns the WCAG relative luminance of c, ignoring alpha.
// https://www.w3.org/WAI/GL/wiki/Relative_luminance
func RelativeLuminance(c Color) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

// ContrastRatio returns the WCAG contrast ratio between a and b, in [1, 21].
// The result is symmetric in its arguments.
func ContrastRatio(a, b Color) float64 {
	l1 := RelativeLuminance(a)
	l2 := RelativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}
