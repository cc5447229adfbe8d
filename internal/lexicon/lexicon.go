// Package lexicon loads the per-language term tables used by the analyzers.
// Lexicons are versioned YAML resources; the built-in ones are embedded and
// a directory of extra files can add or replace languages without code changes.
package lexicon

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/veracity/internal/extract"
)

// SchemaVersion is the only lexicon schema this build understands
const SchemaVersion = 1

//go:embed lexicons/*.yaml
var embedded embed.FS

// ErrUnsupportedVersion is returned for lexicons written for another schema
var ErrUnsupportedVersion = errors.New("lexicon: unsupported schema version")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Lexicon holds the term tables of one language. Terms are folded at load.
type Lexicon struct {
	Version        int                 `yaml:"version" validate:"required"`
	Revision       string              `yaml:"revision" validate:"required"`
	Language       string              `yaml:"language" validate:"required,min=2,max=8"`
	Name           string              `yaml:"name" validate:"required"`
	Contradictions []ContradictionPair `yaml:"contradictions" validate:"dive"`
	Numeric        NumericTerms        `yaml:"numeric"`
	Temporal       TemporalTerms       `yaml:"temporal"`
	Emotional      []string            `yaml:"emotional" validate:"dive,required"`
	Fear           []string            `yaml:"fear" validate:"dive,required"`
	Phrases        []PhraseGroup       `yaml:"phrases" validate:"dive"`
}

// ContradictionPair is two opposite-meaning term sets
type ContradictionPair struct {
	ID    string   `yaml:"id" validate:"required"`
	Left  []string `yaml:"left" validate:"required,min=1,dive,required"`
	Right []string `yaml:"right" validate:"required,min=1,dive,required"`
	Delta float64  `yaml:"delta" validate:"lt=0"`
}

// NumericTerms are the words the numeric impossibility rules anchor on
type NumericTerms struct {
	PercentWords   []string `yaml:"percent_words" validate:"dive,required"`
	AgeUnits       []string `yaml:"age_units" validate:"dive,required"`
	AgeContexts    []string `yaml:"age_contexts" validate:"dive,required"` // words before the number, e.g. "aged"
	CertaintyTerms []string `yaml:"certainty_terms" validate:"dive,required"`
	RiskTerms      []string `yaml:"risk_terms" validate:"dive,required"`
	ZeroWords      []string `yaml:"zero_words" validate:"dive,required"`
	UnboundedTerms []string `yaml:"unbounded_terms" validate:"dive,required"`
}

// TemporalTerms are relative-time expressions and their year connectors
type TemporalTerms struct {
	RelativeTerms []string `yaml:"relative_terms" validate:"dive,required"`
	Connectors    []string `yaml:"connectors" validate:"dive,required"`
}

// PhraseGroup is a list of phrases sharing a category and delta
type PhraseGroup struct {
	ID       string   `yaml:"id" validate:"required"`
	Category string   `yaml:"category" validate:"required,oneof=impossible_claim scientific_impossibility fake_pattern"`
	Label    string   `yaml:"label" validate:"required"`
	Delta    float64  `yaml:"delta" validate:"lt=0"`
	Terms    []string `yaml:"terms" validate:"required,min=1,dive,required"`
}

// Parse decodes, validates and folds one lexicon document
func Parse(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	if lex.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrUnsupportedVersion, lex.Version, SchemaVersion)
	}
	if err := validate.Struct(&lex); err != nil {
		return nil, fmt.Errorf("validate lexicon %q: %w", lex.Language, err)
	}
	lex.fold()
	return &lex, nil
}

// fold normalizes every term the same way analyzed text is normalized
func (l *Lexicon) fold() {
	l.Language = strings.ToLower(strings.TrimSpace(l.Language))
	for i := range l.Contradictions {
		foldAll(l.Contradictions[i].Left)
		foldAll(l.Contradictions[i].Right)
	}
	foldAll(l.Numeric.PercentWords)
	foldAll(l.Numeric.AgeUnits)
	foldAll(l.Numeric.AgeContexts)
	foldAll(l.Numeric.CertaintyTerms)
	foldAll(l.Numeric.RiskTerms)
	foldAll(l.Numeric.ZeroWords)
	foldAll(l.Numeric.UnboundedTerms)
	foldAll(l.Temporal.RelativeTerms)
	foldAll(l.Temporal.Connectors)
	foldAll(l.Emotional)
	foldAll(l.Fear)
	for i := range l.Phrases {
		foldAll(l.Phrases[i].Terms)
	}
}

func foldAll(terms []string) {
	for i, t := range terms {
		terms[i] = extract.Fold(t)
	}
}

// Default returns the embedded lexicons
func Default() (*Set, error) {
	return Load("", nil)
}

// Load reads the embedded lexicons, then every *.yaml file in dir (if set).
// A file from dir replaces the embedded lexicon of the same language.
// languages restricts the result; empty keeps all.
func Load(dir string, languages []string) (*Set, error) {
	byLang := make(map[string]*Lexicon)

	entries, err := fs.Glob(embedded, "lexicons/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list embedded lexicons: %w", err)
	}
	for _, name := range entries {
		data, err := embedded.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		lex, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		byLang[lex.Language] = lex
	}

	if dir != "" {
		files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
		if err != nil {
			return nil, fmt.Errorf("list lexicon dir: %w", err)
		}
		for _, name := range files {
			data, err := os.ReadFile(name)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			lex, err := Parse(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			byLang[lex.Language] = lex
		}
	}

	return newSet(byLang, languages)
}

func newSet(byLang map[string]*Lexicon, languages []string) (*Set, error) {
	keep := make(map[string]bool, len(languages))
	for _, l := range languages {
		keep[strings.ToLower(strings.TrimSpace(l))] = true
	}

	codes := make([]string, 0, len(byLang))
	for code := range byLang {
		if len(keep) == 0 || keep[code] {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("lexicon: no lexicons match languages %v", languages)
	}
	sort.Strings(codes)

	set := &Set{}
	for _, code := range codes {
		set.lexicons = append(set.lexicons, byLang[code])
	}
	return set, nil
}
