// Package factcheck checks the years, measurements and counts a text states
// against the fact table, and scores the impossible-claim phrase tables.
package factcheck

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/veracity/internal/extract"
	"github.com/ppiankov/veracity/internal/knowledge"
	"github.com/ppiankov/veracity/internal/lexicon"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/rules"
	"github.com/ppiankov/veracity/internal/score"
)

// Breakdown keys
const (
	KeyImpossibleClaims = "impossible_claims"
	KeyFactTable        = "fact_table"
)

// Per-check deltas
const (
	deltaDateVerified        = 2.0
	deltaDateContradicted    = -3.0
	deltaMeasurementVerified = 1.5
	deltaCountVerified       = 1.5
	deltaCountContradicted   = -2.0
)

// AuthorityClassifier rates the source of a fact record
type AuthorityClassifier interface {
	Classify(rawURL string) model.AuthorityTier
}

// Verifier is immutable once built and safe for concurrent use
type Verifier struct {
	cfg       model.KnowledgeConfig
	bands     []model.Band
	phrases   rules.Table
	authority AuthorityClassifier
}

// Option configures a Verifier
type Option func(*Verifier)

// WithAuthority attaches source authority tiers to fact checks
func WithAuthority(c AuthorityClassifier) Option {
	return func(v *Verifier) {
		v.authority = c
	}
}

// New creates a verifier scoring the phrase tables of lex
func New(lex *lexicon.Set, cfg model.KnowledgeConfig, bands []model.Band, opts ...Option) *Verifier {
	if lex == nil {
		lex = &lexicon.Set{}
	}
	v := &Verifier{
		cfg:     cfg,
		bands:   bands,
		phrases: phraseRules(lex),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// phraseRules emits one finding per distinct phrase of each group
func phraseRules(lex *lexicon.Set) rules.Table {
	var table rules.Table
	for _, l := range lex.Lexicons() {
		for _, group := range l.Phrases {
			table = append(table, rules.Rule{
				ID:       l.Language + ".phrase." + group.ID,
				Category: model.Category(group.Category),
				Delta:    group.Delta,
				Detail:   group.Label + ": {match}",
				Matcher:  rules.Terms(group.Terms...),
			})
		}
	}
	return table
}

// Verify scores text against the phrase tables and table. A nil or empty
// table only skips the fact checks.
func (v *Verifier) Verify(text string, table *knowledge.Table) model.ComponentReport {
	// 1. Phrase tables
	phraseFindings := v.phrases.Evaluate(rules.NewInput(text))

	// 2. Fact table
	var checks []model.FactCheck
	if matches := table.Match(text); len(matches) > 0 {
		years := extract.Years(text)
		numbers := extract.Numbers(text)
		for _, m := range matches {
			checks = append(checks, v.check(m, years, numbers))
		}
	}

	findings := make([]model.Finding, 0, len(phraseFindings)+len(checks))
	findings = append(findings, phraseFindings...)
	factTotal := 0.0
	for _, c := range checks {
		if c.Status == model.FactMentioned {
			continue
		}
		category := model.CategoryFactVerified
		if c.Status == model.FactContradicted {
			category = model.CategoryFactContradiction
		}
		findings = append(findings, model.Finding{
			Category:   category,
			ScoreDelta: c.ScoreDelta,
			Detail:     c.Detail,
			Rule:       "fact." + c.FactID,
		})
		factTotal += c.ScoreDelta
	}

	// 3. Level and status
	total := score.Round(model.SumFindings(findings), 2)
	level, multiplier := score.Level(v.bands, total)

	return model.ComponentReport{
		Component:            model.ComponentFactCheck,
		Findings:             findings,
		TotalScore:           total,
		Level:                level,
		ConfidenceMultiplier: multiplier,
		Breakdown: map[string]float64{
			KeyImpossibleClaims: score.Round(model.SumFindings(phraseFindings), 2),
			KeyFactTable:        score.Round(factTotal, 2),
		},
		Status: status(checks),
		Checks: checks,
	}
}

// check evaluates one matched record against the extracted years and numbers
func (v *Verifier) check(m knowledge.Match, years []int, numbers []float64) model.FactCheck {
	rec := m.Record
	c := model.FactCheck{
		FactID:           rec.ID,
		Topic:            rec.Topic,
		Status:           model.FactMentioned,
		MatchedKeywords:  m.Keywords,
		Source:           rec.Source,
		ControversyLevel: rec.ControversyLevel,
	}
	if v.authority != nil && rec.Source.URL != "" {
		c.SourceAuthority = v.authority.Classify(rec.Source.URL)
	}

	switch rec.ClaimType {
	case model.ClaimDate, model.ClaimDateRange:
		v.checkDate(&c, rec, years)
	case model.ClaimMeasurement:
		checkMeasurement(&c, rec, numbers)
	case model.ClaimCount:
		v.checkCount(&c, rec, numbers)
	case model.ClaimDefinition:
		c.Detail = fmt.Sprintf("Topic mentioned. This is a %s controversy topic.", controversy(rec))
		if rec.ControversyLevel == model.ControversyHigh {
			c.Detail += " See interpretation note."
		}
	}
	return c
}

// checkDate verifies a year that is expected, or inside the range of a
// date_range record; a wrong year close to the expected ones contradicts it
func (v *Verifier) checkDate(c *model.FactCheck, rec *model.FactRecord, years []int) {
	expected := rec.Value.Years()
	c.Detail = "Topic mentioned without specific date"
	if len(years) == 0 || len(expected) == 0 {
		return
	}

	var correct, wrong []int
	latest := maxInt(expected)
	for _, y := range years {
		switch {
		case containsInt(expected, y) || inRange(rec, y):
			correct = append(correct, y)
		case abs(y-latest) <= v.cfg.ContradictionWindow:
			wrong = append(wrong, y)
		}
	}

	switch {
	case len(correct) > 0:
		c.Status = model.FactVerified
		c.ScoreDelta = deltaDateVerified
		c.Detail = fmt.Sprintf("Correct year for %s: %s", rec.Topic, joinInts(correct))
	case len(wrong) > 0:
		c.Status = model.FactContradicted
		c.ScoreDelta = deltaDateContradicted
		c.Detail = fmt.Sprintf("Incorrect year for %s: %s (expected %s)", rec.Topic, joinInts(wrong), joinInts(expected))
	}
}

// checkMeasurement verifies a number within the unit's tolerance
func checkMeasurement(c *model.FactCheck, rec *model.FactRecord, numbers []float64) {
	c.Detail = "Topic mentioned without specific measurement"
	if rec.Value.Measure == nil {
		return
	}

	target, tol := Tolerance(rec.Value.Unit, *rec.Value.Measure)
	var near []float64
	for _, n := range numbers {
		if math.Abs(n-target) <= tol {
			near = append(near, n)
		}
	}
	if len(near) > 0 {
		c.Status = model.FactVerified
		c.ScoreDelta = deltaMeasurementVerified
		c.Detail = fmt.Sprintf("Correct value for %s: %s %s", rec.Topic, joinFloats(near), rec.Value.Unit)
	}
}

// checkCount verifies an exact count; a nearby wrong count contradicts it
func (v *Verifier) checkCount(c *model.FactCheck, rec *model.FactRecord, numbers []float64) {
	c.Detail = "Topic mentioned without specific count"
	if rec.Value.Count == nil {
		return
	}

	expected := float64(*rec.Value.Count)
	var nearby []float64
	for _, n := range numbers {
		if n == expected {
			c.Status = model.FactVerified
			c.ScoreDelta = deltaCountVerified
			c.Detail = fmt.Sprintf("Correct count for %s: %d", rec.Topic, *rec.Value.Count)
			return
		}
		if math.Abs(n-expected) <= float64(v.cfg.CountWindow) {
			nearby = append(nearby, n)
		}
	}
	if len(nearby) > 0 {
		c.Status = model.FactContradicted
		c.ScoreDelta = deltaCountContradicted
		c.Detail = fmt.Sprintf("Incorrect count for %s: %s (expected %d)", rec.Topic, joinFloats(nearby), *rec.Value.Count)
	}
}

// Tolerance returns the comparable target value and the allowed absolute
// deviation for a measurement in unit
func Tolerance(unit string, expected float64) (target, tol float64) {
	switch unit {
	case model.UnitMetersPerSecond:
		target = expected / 1e6
		return target, target * 0.05
	case model.UnitKilometersPerSecond:
		return expected, expected * 0.05
	case model.UnitCelsius:
		return expected, 2.0
	case model.UnitMetersPerSecondSq:
		return expected, 0.2
	case model.UnitMeters:
		return expected, math.Max(1.0, expected*0.02)
	case model.UnitFeet:
		return expected, math.Max(3.0, expected*0.02)
	default:
		return expected, math.Abs(expected) * 0.05
	}
}

// status summarizes the checks
func status(checks []model.FactCheck) string {
	var verified, contradicted bool
	for _, c := range checks {
		switch c.Status {
		case model.FactContradicted:
			contradicted = true
		case model.FactVerified:
			verified = true
		}
	}
	switch {
	case contradicted:
		return model.FactStatusContradictions
	case verified:
		return model.FactStatusVerified
	case len(checks) > 0:
		return model.FactStatusRelevant
	default:
		return model.FactStatusNoClaims
	}
}

func controversy(rec *model.FactRecord) string {
	if rec.ControversyLevel == "" {
		return model.ControversyLow
	}
	return rec.ControversyLevel
}

func inRange(rec *model.FactRecord, y int) bool {
	return rec.ClaimType == model.ClaimDateRange && y >= rec.Value.StartYear && y <= rec.Value.EndYear
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func maxInt(list []int) int {
	m := list[0]
	for _, x := range list[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func joinInts(list []int) string {
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func joinFloats(list []float64) string {
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}
