package rules

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// IssueHash joins parts with "-" and folds them with the 31-multiplier
// rolling hash over UTF-16 code units, wrapping at 32 bits. The absolute
// value is rendered in base 36 and cut to 8 characters. IDs stay stable
// across scans of an unchanged page; collisions are possible.
func IssueHash(parts ...string) string {
	s := strings.Join(parts, "-")
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	out := strconv.FormatInt(v, 36)
	if len(out) > 8 {
		out = out[:8]
	}
	return out
}
