package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StemSuffix marks a lexicon term that matches as a prefix, e.g. "szokując*"
const StemSuffix = "*"

// ContainsTerm reports whether term occurs in text on word boundaries.
// Both arguments are expected to be folded. A term ending in StemSuffix
// only needs a boundary on its left side.
func ContainsTerm(text, term string) bool {
	stem := strings.HasSuffix(term, StemSuffix)
	if stem {
		term = strings.TrimSuffix(term, StemSuffix)
	}
	if term == "" || text == "" {
		return false
	}

	for off := 0; off < len(text); {
		i := strings.Index(text[off:], term)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(term)
		if boundaryBefore(text, start) && (stem || boundaryAfter(text, end)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		off = start + size
	}
	return false
}

// MatchTerms returns the distinct terms found in text, in lexicon order
func MatchTerms(text string, terms []string) []string {
	var found []string
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		if ContainsTerm(text, term) {
			seen[term] = true
			found = append(found, strings.TrimSuffix(term, StemSuffix))
		}
	}
	return found
}

// ContainsAny reports whether any term occurs in text and returns the first hit
func ContainsAny(text string, terms []string) (string, bool) {
	for _, term := range terms {
		if ContainsTerm(text, term) {
			return strings.TrimSuffix(term, StemSuffix), true
		}
	}
	return "", false
}

// boundaryBefore reports whether the rune before i is not a word rune
func boundaryBefore(s string, i int) bool {
	if i <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWord(r)
}

// boundaryAfter reports whether the rune at i is not a word rune
func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWord(r)
}

// isWord treats letters, digits, combining marks and connector punctuation as word runes
func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Pc, r)
}

// WordBounded reports whether text[start:end] does not cut through a word:
// an edge that is a word rune must border a non-word rune or the text edge
func WordBounded(text string, start, end int) bool {
	if start >= end {
		return false
	}
	first, _ := utf8.DecodeRuneInString(text[start:end])
	last, _ := utf8.DecodeLastRuneInString(text[start:end])
	if isWord(first) && !boundaryBefore(text, start) {
		return false
	}
	if isWord(last) && !boundaryAfter(text, end) {
		return false
	}
	return true
}
