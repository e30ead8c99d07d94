package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

const defaultFontSize = 16.0

var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "section": true, "article": true,
	"aside": true, "header": true, "footer": true, "main": true, "nav": true, "form": true,
	"fieldset": true, "ul": true, "ol": true, "dl": true, "dd": true, "dt": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "figure": true, "figcaption": true, "address": true,
	"hr": true, "table": true, "details": true, "dialog": true,
}

var hiddenTags = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "meta": true,
	"link": true, "template": true, "noscript": true, "base": true,
}

var headingSizes = map[string]float64{
	"h1": 32, "h2": 24, "h3": 18.72, "h4": 16, "h5": 13.28, "h6": 10.72,
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32, "xxx-large": 48,
}

// inheritStyle starts an element's style from its parent's inherited
// properties and the initial values of the rest.
func inheritStyle(parent *Style) *Style {
	st := &Style{
		Color:           "rgb(0, 0, 0)",
		BackgroundColor: "rgba(0, 0, 0, 0)",
		FontSize:        formatPx(defaultFontSize),
		FontWeight:      "400",
		Display:         "inline",
		Visibility:      "visible",
		Opacity:         "1",
		LineHeight:      "normal",
		LetterSpacing:   "normal",
		WordSpacing:     "0px",
	}
	if parent != nil {
		st.Color = parent.Color
		st.FontSize = parent.FontSize
		st.FontWeight = parent.FontWeight
		st.Visibility = parent.Visibility
		st.LineHeight = parent.LineHeight
		st.LetterSpacing = parent.LetterSpacing
		st.WordSpacing = parent.WordSpacing
	}
	return st
}

func applyTagDefaults(n *Node, st *Style) {
	switch {
	case hiddenTags[n.Tag]:
		st.Display = "none"
	case blockTags[n.Tag]:
		st.Display = "block"
	case n.Tag == "li":
		st.Display = "list-item"
	}
	if n.HasAttr("hidden") {
		st.Display = "none"
	}

	if size, ok := headingSizes[n.Tag]; ok {
		st.FontSize = formatPx(size)
		st.FontWeight = "700"
	}
	switch n.Tag {
	case "b", "strong", "th":
		st.FontWeight = "700"
	case "small":
		st.FontSize = formatPx(pxValue(st.FontSize, defaultFontSize) * 5 / 6)
	case "a":
		if n.HasAttr("href") {
			st.Color = "rgb(0, 0, 238)"
		}
	}

	if w, ok := n.Attrs["width"]; ok {
		st.Width = dimension(w)
	}
	if h, ok := n.Attrs["height"]; ok {
		st.Height = dimension(h)
	}
}

// apply assigns one declared property onto st.
func (b *builder) apply(st, parent *Style, property, value string) {
	lower := strings.ToLower(value)
	if lower == "inherit" && parent != nil {
		applyInherit(st, parent, property)
		return
	}

	switch property {
	case "color":
		st.Color = resolveColor(lower, st.Color)
	case "background-color":
		st.BackgroundColor = resolveColor(lower, st.Color)
	case "background":
		if c, ok := colorFromShorthand(lower, st.Color); ok {
			st.BackgroundColor = c
		}
	case "font-size":
		parentSize := defaultFontSize
		if parent != nil {
			parentSize = pxValue(parent.FontSize, defaultFontSize)
		}
		if px, ok := b.fontSizePx(lower, parentSize); ok {
			st.FontSize = formatPx(px)
		}
	case "font-weight":
		st.FontWeight = fontWeight(lower, st.FontWeight)
	case "display":
		st.Display = lower
	case "visibility":
		st.Visibility = lower
	case "opacity":
		st.Opacity = lower
	case "line-height":
		st.LineHeight = lower
	case "letter-spacing":
		st.LetterSpacing = lower
	case "word-spacing":
		st.WordSpacing = lower
	case "outline-style":
		st.OutlineStyle = lower
	case "outline":
		st.OutlineStyle = outlineStyle(lower)
	case "box-shadow":
		st.BoxShadow = lower
	case "width":
		st.Width = lower
	case "height":
		st.Height = lower
	}
}

func applyInherit(st, parent *Style, property string) {
	switch property {
	case "color":
		st.Color = parent.Color
	case "background-color", "background":
		st.BackgroundColor = parent.BackgroundColor
	case "font-size":
		st.FontSize = parent.FontSize
	case "font-weight":
		st.FontWeight = parent.FontWeight
	case "visibility":
		st.Visibility = parent.Visibility
	case "opacity":
		st.Opacity = parent.Opacity
	}
}

// resolveColor turns named colors into rgb() the way a computed style does.
// Hex and functional notations pass through unchanged.
func resolveColor(value, current string) string {
	switch value {
	case "currentcolor":
		return current
	case "transparent":
		return "rgba(0, 0, 0, 0)"
	}
	if c, ok := colornames.Map[value]; ok {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return value
}

// colorFromShorthand finds the color component of a background shorthand.
func colorFromShorthand(value, current string) (string, bool) {
	if i := strings.Index(value, "rgb"); i >= 0 {
		if j := strings.Index(value[i:], ")"); j >= 0 {
			return value[i : i+j+1], true
		}
	}
	for _, tok := range strings.Fields(value) {
		if strings.HasPrefix(tok, "#") {
			return tok, true
		}
		if _, ok := colornames.Map[tok]; ok || tok == "transparent" || tok == "currentcolor" {
			return resolveColor(tok, current), true
		}
	}
	return "", false
}

func (b *builder) fontSizePx(value string, parentSize float64) (float64, bool) {
	if px, ok := fontSizeKeywords[value]; ok {
		return px, true
	}
	switch value {
	case "smaller":
		return parentSize * 5 / 6, true
	case "larger":
		return parentSize * 1.2, true
	}

	num, unit := splitNumber(value)
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "px", "":
		return v, true
	case "pt":
		return v * 4 / 3, true
	case "em":
		return v * parentSize, true
	case "rem":
		root := b.rootSize
		if root == 0 {
			root = defaultFontSize
		}
		return v * root, true
	case "%":
		return v * parentSize / 100, true
	}
	return 0, false
}

func fontWeight(value, current string) string {
	switch value {
	case "normal":
		return "400"
	case "bold":
		return "700"
	case "bolder":
		if w, err := strconv.Atoi(current); err == nil && w >= 600 {
			return "900"
		}
		return "700"
	case "lighter":
		if w, err := strconv.Atoi(current); err == nil && w > 500 {
			return "400"
		}
		return "100"
	}
	if _, err := strconv.Atoi(value); err == nil {
		return value
	}
	return current
}

// pxValue parses the numeric prefix of a px length, falling back to def.
func pxValue(s string, def float64) float64 {
	num, _ := splitNumber(s)
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return def
	}
	return v
}

func splitNumber(s string) (num, unit string) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && (s[i] == '-' || s[i] == '+' || s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	return s[:i], strings.ToLower(s[i:])
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// dimension converts an HTML width/height attribute into a CSS length.
func dimension(attr string) string {
	attr = strings.TrimSpace(attr)
	if strings.HasSuffix(attr, "%") {
		return attr
	}
	if _, err := strconv.ParseFloat(attr, 64); err == nil {
		return attr + "px"
	}
	return attr
}

var outlineStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true, "double": true,
	"groove": true, "ridge": true, "inset": true, "outset": true, "auto": true,
}

// outlineStyle extracts the style keyword from an outline shorthand.
func outlineStyle(value string) string {
	if value == "0" {
		return "none"
	}
	for _, tok := range strings.Fields(value) {
		if outlineStyles[tok] {
			return tok
		}
	}
	return "none"
}
