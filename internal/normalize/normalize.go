// Package normalize holds the text normalization used across the pipeline.
//
// Two forms exist. Text is the canonical lowercase form used for cleaning and
// track identity. Ingest is the display form applied while loading exports: it
// strips "(feat. ...)" / "[feat. ...]" annotations but keeps the original casing.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var featRegex = regexp.MustCompile(`(?is)\s*\(feat\..*?\)|\s*\[feat\..*?\]`)

// Text trims s, collapses whitespace runs to one space, lowercases it and
// puts it in NFC form. Text(Text(s)) == Text(s).
func Text(s string) string {
	s = Collapse(s)
	s = strings.ToLower(s)
	return norm.NFC.String(s)
}

// Ingest removes featuring annotations, collapses whitespace and trims s.
// Casing is preserved.
func Ingest(s string) string {
	s = StripFeat(Collapse(s))
	return Collapse(s)
}

// Collapse trims s and replaces every run of Unicode whitespace (unicode.IsSpace,
// so NBSP and U+3000 too) with a single ASCII space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripFeat removes "(feat. ...)" and "[feat. ...]" annotations, case-insensitively.
// Removal repeats until nothing matches so nested annotations do not survive a pass.
func StripFeat(s string) string {
	for {
		next := featRegex.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}
