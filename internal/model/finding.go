package model

// Category classifies a single detected issue
type Category string

const (
	CategoryContradiction           Category = "contradiction"             // Opposite-meaning terms in one text
	CategoryNumericImpossibility    Category = "numeric_impossibility"     // Impossible percentages, ages, statistics
	CategoryTemporal                Category = "temporal"                  // Relative time vs absolute year mismatch
	CategoryFactContradiction       Category = "fact_contradiction"        // Known fact contradicted
	CategoryFactVerified            Category = "fact_verified"             // Known fact confirmed
	CategoryImpossibleClaim         Category = "impossible_claim"          // "miracle cure", "never fails"
	CategoryScientificImpossibility Category = "scientific_impossibility"  // "perpetual motion", "free energy"
	CategoryFakePattern             Category = "fake_pattern"              // "what they don't tell you"
	CategoryEmotional               Category = "emotional"                 // Sensational or fear language
	CategoryStyle                   Category = "style"                     // Caps, exclamation runs, emoji
)

// IsPhraseCategory reports whether c belongs to the phrase tables scored by the fact verifier
func (c Category) IsPhraseCategory() bool {
	switch c {
	case CategoryImpossibleClaim, CategoryScientificImpossibility, CategoryFakePattern:
		return true
	}
	return false
}

// Finding is a single rule-triggered observation about a text.
// Negative deltas push toward FAKE, positive deltas toward REAL.
type Finding struct {
	Category   Category `json:"category" yaml:"category"`
	ScoreDelta float64  `json:"score_delta" yaml:"score_delta"`
	Detail     string   `json:"detail" yaml:"detail"`
	Rule       string   `json:"rule,omitempty" yaml:"rule,omitempty"` // id of the rule that fired
}

// Component names used in reports
const (
	ComponentConsistency = "consistency"
	ComponentFactCheck   = "fact_check"
	ComponentEmotional   = "emotional"
	ComponentStyle       = "style"
)

// LevelNotApplicable is used by components that do not scale confidence
const LevelNotApplicable = "N/A"

// Fact check summary statuses
const (
	FactStatusContradictions = "CONTRADICTIONS_FOUND"
	FactStatusVerified       = "FACTS_VERIFIED"
	FactStatusRelevant       = "RELEVANT_TOPICS"
	FactStatusNoClaims       = "NO_CHECKABLE_CLAIMS"
)

// ComponentReport aggregates one analyzer's findings
type ComponentReport struct {
	Component            string             `json:"component"`
	Findings             []Finding          `json:"findings"`
	TotalScore           float64            `json:"total_score"`
	Level                string             `json:"level"`
	ConfidenceMultiplier float64            `json:"confidence_multiplier"`
	Breakdown            map[string]float64 `json:"breakdown,omitempty"`

	// Fact verifier only
	Status string      `json:"status,omitempty"`
	Checks []FactCheck `json:"checks,omitempty"`
}

// Issues returns the finding details in detection order
func (r ComponentReport) Issues() []string {
	issues := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		issues = append(issues, f.Detail)
	}
	return issues
}

// SumFindings returns the sum of all finding deltas
func SumFindings(findings []Finding) float64 {
	total := 0.0
	for _, f := range findings {
		total += f.ScoreDelta
	}
	return total
}
