// Package rules scores text against declarative rule tables. Each rule pairs
// a matcher with a category and a fixed score delta; one routine evaluates
// every table in the engine.
package rules

import (
	"strconv"
	"strings"

	"github.com/ppiankov/veracity/internal/extract"
	"github.com/ppiankov/veracity/internal/model"
)

// Input is the text under analysis in raw and folded form
type Input struct {
	Raw    string
	Folded string
}

// NewInput folds text once for every matcher
func NewInput(text string) Input {
	return Input{Raw: text, Folded: extract.Fold(text)}
}

// Hit is one match reported by a Matcher. Each hit becomes one Finding.
type Hit struct {
	Match string
	Count int
}

// Matcher finds the hits of a rule in the input
type Matcher interface {
	Find(in Input) []Hit
}

// MatcherFunc adapts a function to Matcher
type MatcherFunc func(in Input) []Hit

// Find calls f
func (f MatcherFunc) Find(in Input) []Hit {
	return f(in)
}

// Rule maps matcher hits to findings. Detail may reference {match} and {count}.
type Rule struct {
	ID       string
	Category model.Category
	Delta    float64
	Detail   string
	Matcher  Matcher
}

// Table is an ordered list of rules
type Table []Rule

// Evaluate runs every rule in order and returns one finding per hit
func (t Table) Evaluate(in Input) []model.Finding {
	var findings []model.Finding
	for _, rule := range t {
		if rule.Matcher == nil {
			continue
		}
		for _, hit := range rule.Matcher.Find(in) {
			findings = append(findings, model.Finding{
				Category:   rule.Category,
				ScoreDelta: rule.Delta,
				Detail:     render(rule.Detail, hit),
				Rule:       rule.ID,
			})
		}
	}
	return findings
}

// render fills the {match} and {count} placeholders
func render(detail string, hit Hit) string {
	if !strings.Contains(detail, "{") {
		return detail
	}
	return strings.NewReplacer(
		"{match}", hit.Match,
		"{count}", strconv.Itoa(hit.Count),
	).Replace(detail)
}
