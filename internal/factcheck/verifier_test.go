package factcheck

import (
	"math"
	"testing"

	"github.com/ppiankov/veracity/internal/knowledge"
	"github.com/ppiankov/veracity/internal/lexicon"
	"github.com/ppiankov/veracity/internal/model"
)

func newVerifier(t *testing.T, opts ...Option) (*Verifier, *knowledge.Table) {
	t.Helper()
	lex, err := lexicon.Default()
	if err != nil {
		t.Fatalf("load lexicons: %v", err)
	}
	table, err := knowledge.Default()
	if err != nil {
		t.Fatalf("load facts: %v", err)
	}
	cfg := model.DefaultConfig()
	return New(lex, cfg.Knowledge, cfg.Bands.FactCheck, opts...), table
}

func TestVerify_FactTable(t *testing.T) {
	v, table := newVerifier(t)

	tests := []struct {
		desc       string
		text       string
		wantStatus model.FactCheckStatus
		wantDetail string
		wantTotal  float64
		wantLevel  string
		wantReport string
	}{
		{
			desc:       "wrong year within window",
			text:       "COVID-19 pandemic started in 2015 according to experts.",
			wantStatus: model.FactContradicted,
			wantDetail: "Incorrect year for COVID-19 pandemic: 2015 (expected 2019)",
			wantTotal:  -3.0,
			wantLevel:  "MOSTLY_VERIFIED",
			wantReport: model.FactStatusContradictions,
		},
		{
			desc:       "correct year",
			text:       "The coronavirus emerged in 2019.",
			wantStatus: model.FactVerified,
			wantDetail: "Correct year for COVID-19 pandemic: 2019",
			wantTotal:  2.0,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusVerified,
		},
		{
			desc:       "range endpoints",
			text:       "World War II started in 1939 and ended in 1945.",
			wantStatus: model.FactVerified,
			wantDetail: "Correct year for World War II: 1939, 1945",
			wantTotal:  2.0,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusVerified,
		},
		{
			desc:       "year inside range",
			text:       "The Second World War raged on in 1942.",
			wantStatus: model.FactVerified,
			wantDetail: "Correct year for World War II: 1942",
			wantTotal:  2.0,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusVerified,
		},
		{
			desc:       "year outside range",
			text:       "The Second World War ended in 1955.",
			wantStatus: model.FactContradicted,
			wantDetail: "Incorrect year for World War II: 1955 (expected 1939, 1945)",
			wantTotal:  -3.0,
			wantLevel:  "MOSTLY_VERIFIED",
			wantReport: model.FactStatusContradictions,
		},
		{
			desc:       "distant year is only a mention",
			text:       "Covid is nothing like the plague of 1347.",
			wantStatus: model.FactMentioned,
			wantDetail: "Topic mentioned without specific date",
			wantTotal:  0,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusRelevant,
		},
		{
			desc:       "thousands grouped height",
			text:       "Mount Everest is 8,849 meters tall.",
			wantStatus: model.FactVerified,
			wantDetail: "Correct value for Height of Mount Everest: 8849 meters",
			wantTotal:  1.5,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusVerified,
		},
		{
			desc:       "height out of tolerance",
			text:       "Mount Everest is 9,500 meters tall.",
			wantStatus: model.FactMentioned,
			wantDetail: "Topic mentioned without specific measurement",
			wantTotal:  0,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusRelevant,
		},
		{
			desc:       "speed within five percent",
			text:       "The speed of light is approximately 300,000 kilometers per second.",
			wantStatus: model.FactVerified,
			wantDetail: "Correct value for Speed of light: 300000 km/s",
			wantTotal:  1.5,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusVerified,
		},
		{
			desc:       "temperature",
			text:       "Human body temperature is normally around 37 degrees Celsius.",
			wantStatus: model.FactVerified,
			wantDetail: "Correct value for Normal human body temperature: 37 celsius",
			wantTotal:  1.5,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusVerified,
		},
		{
			desc:       "gravity with decimal comma",
			text:       "Przyspieszenie ziemskie wynosi 9,81 m/s².",
			wantStatus: model.FactVerified,
			wantDetail: "Correct value for Gravitational acceleration on Earth: 9.81 m/s2",
			wantTotal:  1.5,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusVerified,
		},
		{
			desc:       "nearby wrong count",
			text:       "There are 9 planets in the solar system including Pluto.",
			wantStatus: model.FactContradicted,
			wantDetail: "Incorrect count for Planets in the Solar System: 9 (expected 8)",
			wantTotal:  -2.0,
			wantLevel:  "MOSTLY_VERIFIED",
			wantReport: model.FactStatusContradictions,
		},
		{
			desc:       "exact count",
			text:       "Our solar system has 8 planets.",
			wantStatus: model.FactVerified,
			wantDetail: "Correct count for Planets in the Solar System: 8",
			wantTotal:  1.5,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusVerified,
		},
		{
			desc:       "definition",
			text:       "Climate change is widely discussed.",
			wantStatus: model.FactMentioned,
			wantDetail: "Topic mentioned. This is a high controversy topic. See interpretation note.",
			wantTotal:  0,
			wantLevel:  "VERIFIED",
			wantReport: model.FactStatusRelevant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			report := v.Verify(tt.text, table)

			if len(report.Checks) != 1 {
				t.Fatalf("Expected 1 check, got %d: %+v", len(report.Checks), report.Checks)
			}
			check := report.Checks[0]
			if check.Status != tt.wantStatus {
				t.Errorf("Expected status %s, got %s", tt.wantStatus, check.Status)
			}
			if check.Detail != tt.wantDetail {
				t.Errorf("Expected detail %q, got %q", tt.wantDetail, check.Detail)
			}
			if report.TotalScore != tt.wantTotal {
				t.Errorf("Expected total %.2f, got %.2f", tt.wantTotal, report.TotalScore)
			}
			if report.Level != tt.wantLevel {
				t.Errorf("Expected level %s, got %s", tt.wantLevel, report.Level)
			}
			if report.Status != tt.wantReport {
				t.Errorf("Expected report status %s, got %s", tt.wantReport, report.Status)
			}

			// mentioned checks never become findings
			wantFindings := 1
			if tt.wantStatus == model.FactMentioned {
				wantFindings = 0
			}
			if len(report.Findings) != wantFindings {
				t.Errorf("Expected %d findings, got %d", wantFindings, len(report.Findings))
			}
		})
	}
}

func TestVerify_Phrases(t *testing.T) {
	v, table := newVerifier(t)

	tests := []struct {
		desc        string
		text        string
		wantDetails []string
		wantTotal   float64
		wantLevel   string
	}{
		{
			desc:        "impossible claim",
			text:        "Scientists reveal 200% effective miracle cure that doctors hate!",
			wantDetails: []string{"Impossible claim: miracle cure"},
			wantTotal:   -4.0,
			wantLevel:   "SUSPICIOUS",
		},
		{
			desc:        "polish scientific impossibilities",
			text:        "Perpetuum mobile i darmowa energia już w sklepach",
			wantDetails: []string{"Scientific impossibility: perpetuum mobile", "Scientific impossibility: darmowa energia"},
			wantTotal:   -6.0,
			wantLevel:   "SUSPICIOUS",
		},
		{
			desc:        "fake pattern with typographic apostrophe",
			text:        "Here is what they don’t tell you",
			wantDetails: []string{"Fake news pattern: what they don't tell you"},
			wantTotal:   -2.5,
			wantLevel:   "MOSTLY_VERIFIED",
		},
		{
			desc:      "nothing checkable",
			text:      "Government announces new environmental protection research program.",
			wantTotal: 0,
			wantLevel: "VERIFIED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			report := v.Verify(tt.text, table)
			issues := report.Issues()
			if len(issues) != len(tt.wantDetails) {
				t.Fatalf("Expected issues %q, got %q", tt.wantDetails, issues)
			}
			for i := range issues {
				if issues[i] != tt.wantDetails[i] {
					t.Errorf("issue %d: expected %q, got %q", i, tt.wantDetails[i], issues[i])
				}
			}
			if report.TotalScore != tt.wantTotal {
				t.Errorf("Expected total %.2f, got %.2f", tt.wantTotal, report.TotalScore)
			}
			if report.Level != tt.wantLevel {
				t.Errorf("Expected level %s, got %s", tt.wantLevel, report.Level)
			}
			if report.Breakdown[KeyImpossibleClaims] != tt.wantTotal {
				t.Errorf("Expected impossible_claims breakdown %.2f, got %.2f", tt.wantTotal, report.Breakdown[KeyImpossibleClaims])
			}
			if report.Status != model.FactStatusNoClaims {
				t.Errorf("Expected status %s, got %s", model.FactStatusNoClaims, report.Status)
			}
		})
	}
}

func TestVerify_EmptyTable(t *testing.T) {
	v, _ := newVerifier(t)

	for _, table := range []*knowledge.Table{nil, knowledge.Empty()} {
		report := v.Verify("COVID-19 pandemic started in 2015", table)
		if len(report.Checks) != 0 || len(report.Findings) != 0 {
			t.Errorf("Expected no checks against an empty table, got %+v", report.Checks)
		}
		if report.Level != "VERIFIED" || report.TotalScore != 0 {
			t.Errorf("Expected VERIFIED/0, got %s/%.2f", report.Level, report.TotalScore)
		}
		if report.Status != model.FactStatusNoClaims {
			t.Errorf("Expected %s, got %s", model.FactStatusNoClaims, report.Status)
		}
	}
}

func TestVerify_FixtureTable(t *testing.T) {
	table, err := knowledge.Parse([]byte(`
version: fixture
facts:
  - id: bridge
    topic: Golden Gate Bridge opening
    keywords: [golden gate]
    claim_type: date
    value: {year: 1937}
    source: {name: NPS, url: "https://www.nps.gov/goga/"}
  - id: tower
    topic: Eiffel Tower height
    keywords: [eiffel]
    claim_type: measurement
    value: {measure: 330, unit: meters}
`))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := newVerifier(t, WithAuthority(stubAuthority{}))

	report := v.Verify("The Golden Gate opened in 1937; the Eiffel tower stands 324 meters tall.", table)
	if len(report.Checks) != 2 {
		t.Fatalf("Expected 2 checks, got %d", len(report.Checks))
	}
	if report.TotalScore != 3.5 {
		t.Errorf("Expected total 3.5, got %.2f", report.TotalScore)
	}
	if report.Breakdown[KeyFactTable] != 3.5 {
		t.Errorf("Expected fact_table breakdown 3.5, got %.2f", report.Breakdown[KeyFactTable])
	}
	if report.Checks[0].SourceAuthority != model.TierPrimary {
		t.Errorf("Expected primary source authority, got %s", report.Checks[0].SourceAuthority)
	}
	if report.Checks[1].SourceAuthority != model.TierUnknown {
		t.Errorf("Expected unknown authority without a source URL, got %s", report.Checks[1].SourceAuthority)
	}
	for _, f := range report.Findings {
		if f.Category != model.CategoryFactVerified || f.ScoreDelta <= 0 {
			t.Errorf("Expected positive fact_verified finding, got %+v", f)
		}
	}
}

func TestTolerance(t *testing.T) {
	tests := []struct {
		unit       string
		expected   float64
		wantTarget float64
		wantTol    float64
	}{
		{model.UnitKilometersPerSecond, 299792, 299792, 14989.6},
		{model.UnitMetersPerSecond, 299792458, 299.792458, 14.9896229},
		{model.UnitCelsius, 37, 37, 2},
		{model.UnitMetersPerSecondSq, 9.81, 9.81, 0.2},
		{model.UnitMeters, 8849, 8849, 176.98},
		{model.UnitMeters, 20, 20, 1},
		{model.UnitFeet, 100, 100, 3},
		{model.UnitFeet, 29032, 29032, 580.64},
	}

	for _, tt := range tests {
		target, tol := Tolerance(tt.unit, tt.expected)
		if math.Abs(target-tt.wantTarget) > 1e-6 || math.Abs(tol-tt.wantTol) > 1e-6 {
			t.Errorf("Tolerance(%s, %v): expected %v±%v, got %v±%v", tt.unit, tt.expected, tt.wantTarget, tt.wantTol, target, tol)
		}
	}
}

type stubAuthority struct{}

func (stubAuthority) Classify(string) model.AuthorityTier {
	return model.TierPrimary
}
