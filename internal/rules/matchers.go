package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/veracity/internal/extract"
)

// Terms emits one hit per distinct term found in the folded text
func Terms(terms ...string) Matcher {
	return MatcherFunc(func(in Input) []Hit {
		var hits []Hit
		for _, term := range extract.MatchTerms(in.Folded, terms) {
			hits = append(hits, Hit{Match: term, Count: 1})
		}
		return hits
	})
}

// Pair emits a single hit when the folded text holds a term from each side
func Pair(left, right []string) Matcher {
	return MatcherFunc(func(in Input) []Hit {
		l, ok := extract.ContainsAny(in.Folded, left)
		if !ok {
			return nil
		}
		r, ok := extract.ContainsAny(in.Folded, right)
		if !ok {
			return nil
		}
		return []Hit{{Match: l + " vs " + r, Count: 1}}
	})
}

// Pattern emits one hit per regexp match on the folded text accepted by keep.
// Matches that start or end inside a word are dropped. A nil keep accepts
// every match; keep receives the submatches and may rewrite the reported text.
func Pattern(re *regexp.Regexp, keep func(groups []string) (string, bool)) Matcher {
	return MatcherFunc(func(in Input) []Hit {
		var hits []Hit
		for _, loc := range re.FindAllStringSubmatchIndex(in.Folded, -1) {
			if !extract.WordBounded(in.Folded, loc[0], loc[1]) {
				continue
			}
			groups := submatches(in.Folded, loc)
			match := strings.TrimSpace(groups[0])
			if keep != nil {
				var ok bool
				if match, ok = keep(groups); !ok {
					continue
				}
			}
			hits = append(hits, Hit{Match: match, Count: 1})
		}
		return hits
	})
}

func submatches(s string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if a, b := loc[2*i], loc[2*i+1]; a >= 0 {
			groups[i] = s[a:b]
		}
	}
	return groups
}

// Alternation compiles lexicon terms into a regexp alternation group.
// Spaces inside a term match sep (a regexp), a trailing StemSuffix matches
// any letters. Longer terms are tried first.
func Alternation(terms []string, sep string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		stem := strings.HasSuffix(t, extract.StemSuffix)
		t = strings.TrimSuffix(t, extract.StemSuffix)
		if t == "" {
			continue
		}
		words := strings.Fields(t)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		p := strings.Join(words, sep)
		if stem {
			p += `\pL*`
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		// matches nothing
		return `(?:[^\x00-\x{10FFFF}])`
	}
	sort.SliceStable(parts, func(i, j int) bool { return len(parts[i]) > len(parts[j]) })
	return "(?:" + strings.Join(parts, "|") + ")"
}

// Once collapses the hits of m to at most one
func Once(m Matcher) Matcher {
	return MatcherFunc(func(in Input) []Hit {
		hits := m.Find(in)
		if len(hits) == 0 {
			return nil
		}
		return hits[:1]
	})
}

// Counter counts something in the input
type Counter func(in Input) int

// Between emits a single hit when lo <= count and (hi <= 0 or count < hi)
func Between(count Counter, lo, hi int) Matcher {
	return MatcherFunc(func(in Input) []Hit {
		n := count(in)
		if n < lo || (hi > 0 && n >= hi) {
			return nil
		}
		return []Hit{{Count: n}}
	})
}

// CountTerms counts the distinct terms present in the folded text
func CountTerms(terms []string) Counter {
	return func(in Input) int {
		return len(extract.MatchTerms(in.Folded, terms))
	}
}
