package wiki

import (
	"regexp"
	"strings"
)

// zeroWidth strips the invisible characters that host pages routinely embed
// in copy (ZWSP, ZWNJ, ZWJ, BOM, word joiner). They would otherwise defeat
// exact trigger matching.
var zeroWidth = strings.NewReplacer(
	"\u200b", "", // zero width space
	"\u200c", "", // zero width non-joiner
	"\u200d", "", // zero width joiner
	"\u2060", "", // word joiner
	"\ufeff", "", // BOM
)

// Normalize produces the canonical form used on both sides of a dictionary
// lookup: zero-width characters stripped, whitespace collapsed, lowercased.
func Normalize(s string) string {
	s = zeroWidth.Replace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

var trailingCount = regexp.MustCompile(`\(\d+\)$`)

// TrimDecorations strips the label decorations hosts append to headings:
// trailing colons and parenthesized counts like "Deals (3)". Applied
// repeatedly until a fixed point so "Deals (3):" also reduces to "deals".
func TrimDecorations(s string) string {
	for {
		trimmed := strings.TrimSpace(s)
		trimmed = strings.TrimRight(trimmed, ":")
		trimmed = strings.TrimSpace(trimmed)
		trimmed = trailingCount.ReplaceAllString(trimmed, "")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s {
			return trimmed
		}
		s = trimmed
	}
}

// pluralVariants returns the alternate forms under which text may still hit
// a trigger: the simple English pluralization bridge, checked in both
// directions (singular text vs. plural trigger and vice versa).
func pluralVariants(t string) []string {
	var out []string

	// Text is plural, trigger singular.
	if n := len(t); n > 3 && strings.HasSuffix(t, "ies") {
		out = append(out, t[:n-3]+"y")
	}
	if n := len(t); n > 2 && strings.HasSuffix(t, "es") {
		out = append(out, t[:n-2])
	}
	if n := len(t); n > 1 && strings.HasSuffix(t, "s") {
		out = append(out, t[:n-1])
	}

	// Text is singular, trigger plural.
	if strings.HasSuffix(t, "y") {
		out = append(out, t[:len(t)-1]+"ies")
	}
	out = append(out, t+"s", t+"es")

	return out
}
