package tone

import (
	"testing"

	"github.com/ppiankov/veracity/internal/lexicon"
	"github.com/ppiankov/veracity/internal/model"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	lex, err := lexicon.Default()
	if err != nil {
		t.Fatalf("load lexicons: %v", err)
	}
	return New(lex, model.DefaultConfig().Tone)
}

func TestAnalyze_Emotional(t *testing.T) {
	a := newAnalyzer(t)

	tests := []struct {
		desc        string
		text        string
		wantDetails []string
		wantTotal   float64
	}{
		{"high", "SHOCKING and explosive bombshell revealed", []string{"High emotional language (4 emotional words)"}, -2.0},
		{"moderate", "A shocking and amazing result", []string{"Moderate emotional language (2 emotional words)"}, -1.0},
		{"single word", "An amazing result", nil, 0},
		{"fear", "Danger and threats everywhere, a crisis", []string{"Fear-mongering language (3 fear words)"}, -1.5},
		{"polish", "Szokujące i niewiarygodne: spisek ujawniony", []string{"High emotional language (4 emotional words)"}, -2.0},
		{"polish fear", "Zagrożenie i katastrofa", []string{"Fear-mongering language (2 fear words)"}, -1.5},
		{"repeated word counts once", "shocking shocking shocking", nil, 0},
		{"emotional and fear together", "Shocking, terrifying danger and threat", []string{
			"Moderate emotional language (2 emotional words)",
			"Fear-mongering language (2 fear words)",
		}, -2.5},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			emotional, _ := a.Analyze(tt.text)
			assertIssues(t, emotional, tt.wantDetails, tt.wantTotal)
			if emotional.Component != model.ComponentEmotional {
				t.Errorf("Expected component %s, got %s", model.ComponentEmotional, emotional.Component)
			}
		})
	}
}

func TestAnalyze_Style(t *testing.T) {
	a := newAnalyzer(t)

	tests := []struct {
		desc        string
		text        string
		wantDetails []string
		wantTotal   float64
	}{
		{"many caps words", "THIS IS HUGE NEWS", []string{"Excessive ALL CAPS usage (3 words)"}, -2.0},
		{"two caps words", "NEWS TODAY friends", []string{"Multiple ALL CAPS words (2 words)"}, -1.0},
		{"short caps ignored", "US and UK sign a deal", nil, 0},
		{"punctuation counts toward length", "US, UK, EU. sign a deal", []string{"Excessive ALL CAPS usage (3 words)"}, -2.0},
		{"three exclamations", "Wow! Really! Yes!", []string{"Multiple exclamation marks (3)"}, -1.0},
		{"run of exclamations", "Buy now!!!", []string{
			"Multiple exclamation marks (3)",
			"Multiple punctuation marks in sequence (!!!)",
		}, -2.5},
		{"mixed run", "What?!?!", []string{"Multiple punctuation marks in sequence (?!?!)"}, -1.5},
		{"five exclamations", "A! B! C! D! E!", []string{"Excessive exclamation marks (5)"}, -2.0},
		{"emoji", "Great news \U0001F600\U0001F600\U0001F680\U0001F525\U0001F92F", []string{"Excessive emoji usage (5 emojis)"}, -1.0},
		{"few emoji", "Nice \U0001F600\U0001F600", nil, 0},
		{"plain", "The committee met on Tuesday.", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, style := a.Analyze(tt.text)
			assertIssues(t, style, tt.wantDetails, tt.wantTotal)
			if style.Level != model.LevelNotApplicable || style.ConfidenceMultiplier != 1.0 {
				t.Errorf("Expected N/A level with multiplier 1.0, got %s/%.2f", style.Level, style.ConfidenceMultiplier)
			}
		})
	}
}

func TestAnalyze_Empty(t *testing.T) {
	a := newAnalyzer(t)
	emotional, style := a.Analyze("")

	if len(emotional.Findings) != 0 || len(style.Findings) != 0 {
		t.Errorf("Expected no findings, got %v %v", emotional.Findings, style.Findings)
	}
	if emotional.Findings == nil {
		t.Error("Expected empty, non-nil findings for stable JSON output")
	}
}

func assertIssues(t *testing.T, report model.ComponentReport, want []string, wantTotal float64) {
	t.Helper()
	issues := report.Issues()
	if len(issues) != len(want) {
		t.Fatalf("Expected issues %q, got %q", want, issues)
	}
	for i := range issues {
		if issues[i] != want[i] {
			t.Errorf("issue %d: expected %q, got %q", i, want[i], issues[i])
		}
	}
	if report.TotalScore != wantTotal {
		t.Errorf("Expected total %.2f, got %.2f", wantTotal, report.TotalScore)
	}
}
