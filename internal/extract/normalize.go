// Package extract turns raw text into the comparable forms the analyzers
// scan: folded text, word-bounded term hits, years and numbers.
package extract

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)), // zero-width joiners, BOM, soft hyphen
		)
	},
}

// quotes maps typographic apostrophes to ASCII so "don’t" matches "don't"
var quotes = strings.NewReplacer("\u2019", "'", "\u2018", "'", "\u02bc", "'")

// Fold returns s in NFKC form, case folded, with format characters removed,
// apostrophes unified and whitespace collapsed. Polish diacritics survive folding.
func Fold(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		out = strings.ToLower(s)
	}

	return collapseSpaces(quotes.Replace(out))
}

// collapseSpaces maps any whitespace run to a single space and trims
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
