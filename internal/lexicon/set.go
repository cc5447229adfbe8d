package lexicon

import (
	"strings"

	"github.com/ppiankov/veracity/internal/logger"
)

// Set is the immutable collection of enabled lexicons, ordered by language code
type Set struct {
	lexicons []*Lexicon
}

// NewSet builds a set from already parsed lexicons; later entries replace
// earlier ones of the same language
func NewSet(lexicons ...*Lexicon) (*Set, error) {
	byLang := make(map[string]*Lexicon, len(lexicons))
	for _, l := range lexicons {
		byLang[l.Language] = l
	}
	return newSet(byLang, nil)
}

// LoadOrDefault loads lexicons from cfg and falls back to the embedded set
// with a warning when the extra directory cannot be used
func LoadOrDefault(dir string, languages []string) *Set {
	set, err := Load(dir, languages)
	if err == nil {
		return set
	}
	logger.Named("lexicon").Warn().Err(err).Str("dir", dir).Msg("lexicon load failed, using embedded lexicons")

	set, err = Load("", languages)
	if err == nil {
		return set
	}
	logger.Named("lexicon").Warn().Err(err).Strs("languages", languages).Msg("language filter matched nothing, enabling all embedded lexicons")

	set, err = Load("", nil)
	if err != nil {
		logger.Named("lexicon").Error().Err(err).Msg("embedded lexicons invalid, term rules disabled")
		return &Set{}
	}
	return set
}

// Lexicons returns the enabled lexicons
func (s *Set) Lexicons() []*Lexicon {
	return s.lexicons
}

// Languages returns the enabled language codes
func (s *Set) Languages() []string {
	codes := make([]string, 0, len(s.lexicons))
	for _, l := range s.lexicons {
		codes = append(codes, l.Language)
	}
	return codes
}

// Version identifies the exact lexicon content, e.g. "en@2025.1,pl@2025.1"
func (s *Set) Version() string {
	parts := make([]string, 0, len(s.lexicons))
	for _, l := range s.lexicons {
		parts = append(parts, l.Language+"@"+l.Revision)
	}
	return strings.Join(parts, ",")
}

// Emotional returns the emotional terms of every language
func (s *Set) Emotional() []string {
	return s.collect(func(l *Lexicon) []string { return l.Emotional })
}

// Fear returns the fear terms of every language
func (s *Set) Fear() []string {
	return s.collect(func(l *Lexicon) []string { return l.Fear })
}

// PercentWords returns the spelled-out percent units of every language
func (s *Set) PercentWords() []string {
	return s.collect(func(l *Lexicon) []string { return l.Numeric.PercentWords })
}

// AgeUnits returns the age units of every language
func (s *Set) AgeUnits() []string {
	return s.collect(func(l *Lexicon) []string { return l.Numeric.AgeUnits })
}

// AgeContexts returns the words that introduce an age before the number
func (s *Set) AgeContexts() []string {
	return s.collect(func(l *Lexicon) []string { return l.Numeric.AgeContexts })
}

// CertaintyTerms returns the words that make "100% <term>" a red flag
func (s *Set) CertaintyTerms() []string {
	return s.collect(func(l *Lexicon) []string { return l.Numeric.CertaintyTerms })
}

// RiskTerms returns the words that make "0% <term>" a red flag
func (s *Set) RiskTerms() []string {
	return s.collect(func(l *Lexicon) []string { return l.Numeric.RiskTerms })
}

// ZeroWords returns spelled-out zero words, e.g. "zero"
func (s *Set) ZeroWords() []string {
	return s.collect(func(l *Lexicon) []string { return l.Numeric.ZeroWords })
}

// UnboundedTerms returns infinity-like words
func (s *Set) UnboundedTerms() []string {
	return s.collect(func(l *Lexicon) []string { return l.Numeric.UnboundedTerms })
}

// RelativeTerms returns relative-time expressions
func (s *Set) RelativeTerms() []string {
	return s.collect(func(l *Lexicon) []string { return l.Temporal.RelativeTerms })
}

// Connectors returns the words joining a relative expression to a year
func (s *Set) Connectors() []string {
	return s.collect(func(l *Lexicon) []string { return l.Temporal.Connectors })
}

// collect concatenates a term list across languages, dropping duplicates
func (s *Set) collect(get func(*Lexicon) []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range s.lexicons {
		for _, t := range get(l) {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
