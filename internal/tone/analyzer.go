// Package tone detects manipulative emotional language and typographic
// alarm markers: all-caps words, exclamation marks and emoji.
package tone

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/veracity/internal/lexicon"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/rules"
	"github.com/ppiankov/veracity/internal/score"
)

// Analyzer is immutable once built and safe for concurrent use
type Analyzer struct {
	emotional rules.Table
	style     rules.Table
}

// New builds the emotional and style rule tables. Bands within a sub-check
// are exclusive; sub-checks fire independently of each other.
func New(lex *lexicon.Set, cfg model.ToneConfig) *Analyzer {
	if lex == nil {
		lex = &lexicon.Set{}
	}
	return &Analyzer{
		emotional: emotionalRules(lex, cfg),
		style:     styleRules(cfg),
	}
}

// Analyze returns the emotional and style reports for text
func (a *Analyzer) Analyze(text string) (emotional, style model.ComponentReport) {
	in := rules.NewInput(text)
	return report(model.ComponentEmotional, a.emotional.Evaluate(in)),
		report(model.ComponentStyle, a.style.Evaluate(in))
}

// report builds a component report; tone never scales confidence
func report(component string, findings []model.Finding) model.ComponentReport {
	if findings == nil {
		findings = []model.Finding{}
	}
	return model.ComponentReport{
		Component:            component,
		Findings:             findings,
		TotalScore:           score.Round(model.SumFindings(findings), 2),
		Level:                model.LevelNotApplicable,
		ConfidenceMultiplier: 1.0,
	}
}

func emotionalRules(lex *lexicon.Set, cfg model.ToneConfig) rules.Table {
	emotional := rules.CountTerms(lex.Emotional())
	fear := rules.CountTerms(lex.Fear())

	return rules.Table{
		{
			ID:       "emotional.high",
			Category: model.CategoryEmotional,
			Delta:    -2.0,
			Detail:   "High emotional language ({count} emotional words)",
			Matcher:  rules.Between(emotional, cfg.EmotionalHigh, 0),
		},
		{
			ID:       "emotional.moderate",
			Category: model.CategoryEmotional,
			Delta:    -1.0,
			Detail:   "Moderate emotional language ({count} emotional words)",
			Matcher:  rules.Between(emotional, cfg.EmotionalModerate, cfg.EmotionalHigh),
		},
		{
			ID:       "emotional.fear",
			Category: model.CategoryEmotional,
			Delta:    -1.5,
			Detail:   "Fear-mongering language ({count} fear words)",
			Matcher:  rules.Between(fear, cfg.FearMin, 0),
		},
	}
}

func styleRules(cfg model.ToneConfig) rules.Table {
	caps := capsCounter(cfg.CapsMinLength)
	run := cfg.PunctuationRun
	if run < 2 {
		run = 2
	}
	runRe := regexp.MustCompile(`[!?]{` + strconv.Itoa(run) + `,}`)

	return rules.Table{
		{
			ID:       "style.caps_high",
			Category: model.CategoryStyle,
			Delta:    -2.0,
			Detail:   "Excessive ALL CAPS usage ({count} words)",
			Matcher:  rules.Between(caps, cfg.CapsHigh, 0),
		},
		{
			ID:       "style.caps_moderate",
			Category: model.CategoryStyle,
			Delta:    -1.0,
			Detail:   "Multiple ALL CAPS words ({count} words)",
			Matcher:  rules.Between(caps, cfg.CapsModerate, cfg.CapsHigh),
		},
		{
			ID:       "style.exclamation_high",
			Category: model.CategoryStyle,
			Delta:    -2.0,
			Detail:   "Excessive exclamation marks ({count})",
			Matcher:  rules.Between(countExclamations, cfg.ExclaimHigh, 0),
		},
		{
			ID:       "style.exclamation_moderate",
			Category: model.CategoryStyle,
			Delta:    -1.0,
			Detail:   "Multiple exclamation marks ({count})",
			Matcher:  rules.Between(countExclamations, cfg.ExclaimModerate, cfg.ExclaimHigh),
		},
		{
			ID:       "style.punctuation_run",
			Category: model.CategoryStyle,
			Delta:    -1.5,
			Detail:   "Multiple punctuation marks in sequence ({match})",
			Matcher:  rules.Once(rules.Pattern(runRe, nil)),
		},
		{
			ID:       "style.emoji",
			Category: model.CategoryStyle,
			Delta:    -1.0,
			Detail:   "Excessive emoji usage ({count} emojis)",
			Matcher:  rules.Between(countEmoji, cfg.EmojiMin, 0),
		},
	}
}

// capsCounter counts whitespace tokens longer than minLength runes that have
// upper-case letters and no lower-case ones
func capsCounter(minLength int) rules.Counter {
	return func(in rules.Input) int {
		n := 0
		for _, token := range strings.Fields(in.Raw) {
			if utf8.RuneCountInString(token) > minLength && isUpperToken(token) {
				n++
			}
		}
		return n
	}
}

func isUpperToken(token string) bool {
	upper := false
	for _, r := range token {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			upper = true
		}
	}
	return upper
}

func countExclamations(in rules.Input) int {
	return strings.Count(in.Raw, "!")
}

// emoji blocks: emoticons, misc symbols and pictographs, transport,
// regional indicators, supplemental symbols and pictographs
var emojiRanges = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1},
	},
}

func countEmoji(in rules.Input) int {
	n := 0
	for _, r := range in.Raw {
		if unicode.Is(emojiRanges, r) {
			n++
		}
	}
	return n
}
