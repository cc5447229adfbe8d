package model

// Verdict is the final credibility classification
type Verdict string

const (
	VerdictReal      Verdict = "REAL"
	VerdictFake      Verdict = "FAKE"
	VerdictUncertain Verdict = "UNCERTAIN"
)

// FusionMode records whether an external estimate took part in fusion
type FusionMode string

const (
	ModeFused            FusionMode = "fused"
	ModeVerificationOnly FusionMode = "verification_only"
)

// VerificationReport is the complete, deterministic result for one text
type VerificationReport struct {
	ID                           string     `json:"id"` // Name-based UUID of the inputs
	Verdict                      Verdict    `json:"verdict"`
	FakeProbability              float64    `json:"fake_probability"`
	Confidence                   float64    `json:"confidence"`
	AggregateScore               float64    `json:"aggregate_score"`
	CombinedConfidenceMultiplier float64    `json:"combined_confidence_multiplier"`
	Mode                         FusionMode `json:"mode"`
	ExternalEstimate             *float64   `json:"external_estimate,omitempty"`
	ReferenceDate                string     `json:"reference_date"`

	Consistency ComponentReport `json:"consistency"`
	FactCheck   ComponentReport `json:"fact_check"`
	Emotional   ComponentReport `json:"emotional"`
	Style       ComponentReport `json:"style"`

	// Issue details ordered Consistency, Fact, Emotional, Style
	AllIssues []string `json:"all_issues"`

	KnowledgeVersion string `json:"knowledge_version,omitempty"`
	LexiconVersion   string `json:"lexicon_version,omitempty"`
}

// Components returns the four component reports in issue order
func (r *VerificationReport) Components() []ComponentReport {
	return []ComponentReport{r.Consistency, r.FactCheck, r.Emotional, r.Style}
}

// FindingCount returns the number of findings across all components
func (r *VerificationReport) FindingCount() int {
	n := 0
	for _, c := range r.Components() {
		n += len(c.Findings)
	}
	return n
}

// ArticleReport wraps a verification of fetched web content
type ArticleReport struct {
	URL       string              `json:"url"`
	Title     string              `json:"title,omitempty"`
	Adapter   string              `json:"adapter"`
	FetchMeta FetchMeta           `json:"fetch_meta"`
	TextBytes int                 `json:"text_bytes"`
	Report    *VerificationReport `json:"report"`
}
