// Package consistency detects self-contradictions, numerically impossible
// claims and temporal impossibilities from surface text patterns.
package consistency

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/veracity/internal/extract"
	"github.com/ppiankov/veracity/internal/lexicon"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/rules"
	"github.com/ppiankov/veracity/internal/score"
)

// Breakdown keys
const (
	KeyContradiction = "contradiction"
	KeyNumerical     = "numerical"
	KeyTemporal      = "temporal"
)

// Rule deltas
const (
	deltaImpossiblePercent = -4.0
	deltaImpossibleAge     = -5.0
	deltaZeroPercent       = -1.5
	deltaCertainty         = -2.0
	deltaZeroRisk          = -2.0
	deltaUnbounded         = -1.5
	deltaTemporal          = -3.0
	deltaFutureYear        = -1.0
)

// Analyzer is immutable once built and safe for concurrent use
type Analyzer struct {
	bands          []model.Band
	contradictions rules.Table
	numerical      rules.Table
	temporal       rules.Table
}

// New compiles the rule tables for the given lexicons. referenceDate stands
// in for "now" in every temporal rule.
func New(lex *lexicon.Set, cfg model.ConsistencyConfig, bands []model.Band, referenceDate time.Time) *Analyzer {
	if lex == nil {
		lex = &lexicon.Set{}
	}
	return &Analyzer{
		bands:          bands,
		contradictions: contradictionRules(lex),
		numerical:      numericalRules(lex, cfg),
		temporal:       temporalRules(lex, cfg, referenceDate.Year()),
	}
}

// Analyze scores text. It is a pure function of text and the analyzer.
func (a *Analyzer) Analyze(text string) model.ComponentReport {
	in := rules.NewInput(text)

	contradictions := a.contradictions.Evaluate(in)
	numerical := a.numerical.Evaluate(in)
	temporal := a.temporal.Evaluate(in)

	findings := make([]model.Finding, 0, len(contradictions)+len(numerical)+len(temporal))
	findings = append(findings, contradictions...)
	findings = append(findings, numerical...)
	findings = append(findings, temporal...)

	total := score.Round(model.SumFindings(findings), 2)
	level, multiplier := score.Level(a.bands, total)

	return model.ComponentReport{
		Component:            model.ComponentConsistency,
		Findings:             findings,
		TotalScore:           total,
		Level:                level,
		ConfidenceMultiplier: multiplier,
		Breakdown: map[string]float64{
			KeyContradiction: score.Round(model.SumFindings(contradictions), 2),
			KeyNumerical:     score.Round(model.SumFindings(numerical), 2),
			KeyTemporal:      score.Round(model.SumFindings(temporal), 2),
		},
	}
}

// contradictionRules builds one rule per opposite-meaning pair per language
func contradictionRules(lex *lexicon.Set) rules.Table {
	var table rules.Table
	for _, l := range lex.Lexicons() {
		for _, pair := range l.Contradictions {
			table = append(table, rules.Rule{
				ID:       l.Language + ".contradiction." + pair.ID,
				Category: model.CategoryContradiction,
				Delta:    pair.Delta,
				Detail:   "Contradiction detected: {match}",
				Matcher:  rules.Pair(pair.Left, pair.Right),
			})
		}
	}
	return table
}

// leftGuard keeps "10%" or "5.0%" from reading as 0%
const leftGuard = `(^|[^\d.,])`

func numericalRules(lex *lexicon.Set, cfg model.ConsistencyConfig) rules.Table {
	percentUnit := `(?:%|` + rules.Alternation(lex.PercentWords(), `\s+`) + `)`

	percentRe := regexp.MustCompile(`(` + extract.NumberToken + `)\s*` + percentUnit)
	zeroPercentRe := regexp.MustCompile(leftGuard + `0(?:[.,]0+)?\s*` + percentUnit)
	certaintyRe := regexp.MustCompile(leftGuard + `100(?:[.,]0+)?\s*` + percentUnit + `[\s-]*` +
		rules.Alternation(lex.CertaintyTerms(), `\s+`))
	zeroRiskRe := regexp.MustCompile(`(?:` + leftGuard + `0(?:[.,]0+)?\s*` + percentUnit + `|` +
		rules.Alternation(lex.ZeroWords(), `\s+`) + `)[\s-]*` + rules.Alternation(lex.RiskTerms(), `\s+`))

	// "aged 200", "at age 200 years old", "200-year-old", "200 years of age"
	ageUnits := rules.Alternation(lex.AgeUnits(), `[\s-]+`)
	ageRe := regexp.MustCompile(rules.Alternation(lex.AgeContexts(), `\s+`) + `\s+(\d{1,4})(?:[\s-]+` + ageUnits + `)?` +
		`|(\d{1,4})[\s-]+` + ageUnits)

	return rules.Table{
		{
			ID:       "numeric.percent_over_100",
			Category: model.CategoryNumericImpossibility,
			Delta:    deltaImpossiblePercent,
			Detail:   "Impossible percentage: {match}",
			Matcher: rules.Pattern(percentRe, func(groups []string) (string, bool) {
				v, ok := extract.ParseNumber(groups[1])
				return formatNumber(v) + "%", ok && v > 100 && v <= cfg.PercentCeiling
			}),
		},
		{
			ID:       "numeric.impossible_age",
			Category: model.CategoryNumericImpossibility,
			Delta:    deltaImpossibleAge,
			Detail:   "Impossible age: {match} years",
			Matcher: rules.Pattern(ageRe, func(groups []string) (string, bool) {
				n := groups[1]
				if n == "" {
					n = groups[2]
				}
				age, err := strconv.Atoi(n)
				return n, err == nil && age >= cfg.AgeCeiling
			}),
		},
		{
			ID:       "numeric.exact_zero_percent",
			Category: model.CategoryNumericImpossibility,
			Delta:    deltaZeroPercent,
			Detail:   "Statistical red flag: exactly {match}",
			Matcher:  rules.Once(rules.Pattern(zeroPercentRe, trimGuard)),
		},
		{
			ID:       "numeric.certainty",
			Category: model.CategoryNumericImpossibility,
			Delta:    deltaCertainty,
			Detail:   "Statistical red flag: {match}",
			Matcher:  rules.Once(rules.Pattern(certaintyRe, trimGuard)),
		},
		{
			ID:       "numeric.zero_risk",
			Category: model.CategoryNumericImpossibility,
			Delta:    deltaZeroRisk,
			Detail:   "Statistical red flag: {match}",
			Matcher:  rules.Once(rules.Pattern(zeroRiskRe, trimGuard)),
		},
		{
			ID:       "numeric.unbounded",
			Category: model.CategoryNumericImpossibility,
			Delta:    deltaUnbounded,
			Detail:   "Statistical red flag: '{match}'",
			Matcher:  rules.Once(rules.Terms(lex.UnboundedTerms()...)),
		},
	}
}

func temporalRules(lex *lexicon.Set, cfg model.ConsistencyConfig, refYear int) rules.Table {
	relativeRe := regexp.MustCompile(rules.Alternation(lex.RelativeTerms(), `\s+`) + `\s*,?\s+` +
		rules.Alternation(lex.Connectors(), `\s+`) + `\s+(\d{4})`)
	futureRe := regexp.MustCompile(`20\d{2}`)

	return rules.Table{
		{
			ID:       "temporal.relative_year",
			Category: model.CategoryTemporal,
			Delta:    deltaTemporal,
			Detail:   "Temporal inconsistency: {match}",
			Matcher: rules.Pattern(relativeRe, func(groups []string) (string, bool) {
				y, err := strconv.Atoi(groups[1])
				return strings.Join(strings.Fields(groups[0]), " "), err == nil && abs(y-refYear) > cfg.RelativeWindow
			}),
		},
		{
			ID:       "temporal.future_year",
			Category: model.CategoryTemporal,
			Delta:    deltaFutureYear,
			Detail:   "Suspicious future date: {match}",
			Matcher: rules.Pattern(futureRe, func(groups []string) (string, bool) {
				y, err := strconv.Atoi(groups[0])
				return groups[0], err == nil && y > refYear+cfg.FutureYearWindow
			}),
		},
	}
}

// trimGuard drops the character consumed by leftGuard from the reported match
func trimGuard(groups []string) (string, bool) {
	match := groups[0]
	if len(groups) > 1 {
		match = strings.TrimPrefix(match, groups[1])
	}
	return strings.Join(strings.Fields(match), " "), true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
