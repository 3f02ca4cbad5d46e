package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Noise reduction regex
	noiseRegex = regexp.MustCompile(`(?i)\((official video|official audio|official music video|audio|video|lyrics|lyric video|HD|Remastered|Remaster(ed)?)\)|\[(official video|official audio|official music video|audio|video|lyrics|lyric video|HD|Remastered|Remaster(ed)?)\]`)
	featRegex  = regexp.MustCompile(`(?i)\bfeat\.?(\s|$)`)
	spaceRegex = regexp.MustCompile(`\s{2,}`)
	splitRegex = regexp.MustCompile(`\s+[-|–—:]\s+`)
)

// NormalizeYTTitle splits a video title into artist and title.
func NormalizeYTTitle(rawTitle string, uploader string) (string, string) {
	t := rawTitle

	// 1. Clean noise
	t = noiseRegex.ReplaceAllString(t, "")
	t = featRegex.ReplaceAllString(t, "ft.$1")
	t = spaceRegex.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)

	// 2. Try to split "Artist - Title"
	parts := splitRegex.Split(t, 2)
	if len(parts) == 2 {
		left, right := parts[0], parts[1]
		if looksLikeArtist(left, right) {
			return capWords(left), capWords(right)
		}
		return capWords(right), capWords(left)
	}

	// 3. Fallback: No clear split, use uploader as artist
	if uploader != "" {
		return capWords(strings.TrimSuffix(uploader, " - Topic")), capWords(t)
	}

	return "", capWords(t)
}

// looksLikeArtist: left contains commas/ft or is short (<=4 words) while right is longer
func looksLikeArtist(left, right string) bool {
	leftLower := strings.ToLower(left)
	if strings.Contains(left, ",") || strings.Contains(leftLower, "ft.") || strings.Contains(leftLower, "feat.") {
		return true
	}

	leftWords := len(strings.Fields(left))
	rightWords := len(strings.Fields(right))

	return leftWords <= 4 && rightWords >= 2
}

// capWords title-cases each word but keeps short all-caps words (DJ, ABBA).
func capWords(s string) string {
	caser := cases.Title(language.Und)
	words := strings.Fields(s)
	for i, w := range words {
		if w == strings.ToUpper(w) && len(w) <= 4 {
			continue
		}
		words[i] = caser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}
