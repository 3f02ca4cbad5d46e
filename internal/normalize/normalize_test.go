package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: " \t\n ", want: ""},
		{name: "trim and lower", input: "  Daft Punk  ", want: "daft punk"},
		{name: "collapse runs", input: "One \t More\n\nTime", want: "one more time"},
		{name: "keeps feat tags", input: "Song (feat. X)", want: "song (feat. x)"},
		{name: "diacritics", input: "Björk  Guðmundsdóttir", want: "björk guðmundsdóttir"},
		{name: "no-break space", input: "Daft\u00a0Punk", want: "daft punk"},
		{name: "mixed unicode spaces", input: "a \u00a0 b", want: "a b"},
		{name: "vertical tab", input: "a\vb", want: "a b"},
		{name: "ideographic space", input: "a\u3000b", want: "a b"},
		{name: "next line", input: "a\u0085b", want: "a b"},
		{name: "decomposed to composed", input: "Père", want: "père"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}

func TestIngest(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "strips paren feat", input: "Get Lucky (feat. Pharrell Williams)", want: "Get Lucky"},
		{name: "strips bracket feat", input: "Get Lucky [Feat. Pharrell]", want: "Get Lucky"},
		{name: "case insensitive", input: "Song (FEAT. Someone)", want: "Song"},
		{name: "keeps casing", input: "  HUMBLE.  ", want: "HUMBLE."},
		{name: "leading annotation", input: "(feat. A) Intro", want: "Intro"},
		{name: "keeps other parens", input: "Song (Live)", want: "Song (Live)"},
		{name: "middle annotation", input: "A (feat. B) Remix", want: "A Remix"},
		{name: "no-break space", input: "Get\u00a0Lucky", want: "Get Lucky"},
		{name: "annotation across lines", input: "Song (feat. A\nB)", want: "Song"},
		{name: "annotation with unicode space", input: "Song\u00a0(feat.\u3000A)", want: "Song"},
		{name: "nested annotation", input: "X (fe(feat. y)at. z)", want: "X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ingest(tt.input))
		})
	}
}

func TestIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Hello   World",
		" Mixed\tCASE\nText ",
		"Song (feat. X) [feat. Y]",
		"(feat. A) (feat. B) C",
		"Ἀθῆναι ΣΟΦΙΑ",
		"Père André",
	}

	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "Text not idempotent for %q", in)

		ing := Ingest(in)
		assert.Equal(t, ing, Ingest(ing), "Ingest not idempotent for %q", in)
	}
}
