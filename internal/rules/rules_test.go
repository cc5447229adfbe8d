package rules

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/ppiankov/veracity/internal/model"
)

func TestTable_Evaluate(t *testing.T) {
	percentRe := regexp.MustCompile(`(\d+)\s*%`)
	table := Table{
		{
			ID:       "pair",
			Category: model.CategoryContradiction,
			Delta:    -3.0,
			Detail:   "Contradiction detected: {match}",
			Matcher:  Pair([]string{"always"}, []string{"never", "rarely"}),
		},
		{
			ID:       "percent",
			Category: model.CategoryNumericImpossibility,
			Delta:    -4.0,
			Detail:   "Impossible percentage: {match}",
			Matcher: Pattern(percentRe, func(groups []string) (string, bool) {
				v, err := strconv.Atoi(groups[1])
				return groups[1] + "%", err == nil && v > 100
			}),
		},
		{
			ID:       "phrases",
			Category: model.CategoryImpossibleClaim,
			Delta:    -4.0,
			Detail:   "Impossible claim: '{match}'",
			Matcher:  Terms("miracle cure", "never fails"),
		},
	}

	findings := table.Evaluate(NewInput("It ALWAYS works and never fails: a miracle cure, 200% and 300% better, 50% cheaper"))

	want := []model.Finding{
		{Category: model.CategoryContradiction, ScoreDelta: -3.0, Detail: "Contradiction detected: always vs never", Rule: "pair"},
		{Category: model.CategoryNumericImpossibility, ScoreDelta: -4.0, Detail: "Impossible percentage: 200%", Rule: "percent"},
		{Category: model.CategoryNumericImpossibility, ScoreDelta: -4.0, Detail: "Impossible percentage: 300%", Rule: "percent"},
		{Category: model.CategoryImpossibleClaim, ScoreDelta: -4.0, Detail: "Impossible claim: 'miracle cure'", Rule: "phrases"},
		{Category: model.CategoryImpossibleClaim, ScoreDelta: -4.0, Detail: "Impossible claim: 'never fails'", Rule: "phrases"},
	}

	if len(findings) != len(want) {
		t.Fatalf("Expected %d findings, got %d: %+v", len(want), len(findings), findings)
	}
	for i := range want {
		if findings[i] != want[i] {
			t.Errorf("finding %d: expected %+v, got %+v", i, want[i], findings[i])
		}
	}
}

func TestTable_EvaluateEmpty(t *testing.T) {
	table := Table{{ID: "nil matcher"}, {ID: "terms", Matcher: Terms("shocking")}}
	if findings := table.Evaluate(NewInput("")); len(findings) != 0 {
		t.Errorf("Expected no findings, got %+v", findings)
	}
}

func TestBetween(t *testing.T) {
	count := CountTerms([]string{"shocking", "explosive", "bombshell"})
	tests := []struct {
		desc   string
		text   string
		lo, hi int
		want   int
	}{
		{"below lower bound", "shocking", 2, 3, 0},
		{"inside band", "shocking and explosive", 2, 3, 1},
		{"at upper bound", "shocking explosive bombshell", 2, 3, 0},
		{"open upper bound", "shocking explosive bombshell", 3, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			hits := Between(count, tt.lo, tt.hi).Find(NewInput(tt.text))
			if len(hits) != tt.want {
				t.Errorf("Expected %d hits, got %d", tt.want, len(hits))
			}
		})
	}
}

func TestOnce(t *testing.T) {
	m := Once(Pattern(regexp.MustCompile(`!`), nil))
	if hits := m.Find(NewInput("wow!!!")); len(hits) != 1 {
		t.Errorf("Expected 1 hit, got %d", len(hits))
	}
	if hits := m.Find(NewInput("calm")); len(hits) != 0 {
		t.Errorf("Expected no hits, got %d", len(hits))
	}
}

func TestRender(t *testing.T) {
	got := render("High emotional language ({count} emotional words)", Hit{Count: 4})
	if got != "High emotional language (4 emotional words)" {
		t.Errorf("Unexpected detail: %s", got)
	}
}

func TestAlternation(t *testing.T) {
	tests := []struct {
		name    string
		terms   []string
		want    string
		matches []string
		misses  []string
	}{
		{
			name:    "stems and phrases, longest first",
			terms:   []string{"a b", "shock*"},
			want:    `(?:shock\pL*|a\s+b)`,
			matches: []string{"shocking", "shock", "a   b"},
			misses:  []string{"ab", "shoc"},
		},
		{
			name:    "metacharacters are quoted",
			terms:   []string{"100%", "c++"},
			matches: []string{"c++", "100%"},
			misses:  []string{"ccc"},
		},
		{
			name:   "empty list matches nothing",
			terms:  []string{"", "*"},
			misses: []string{"", "anything"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Alternation(tt.terms, `\s+`)
			if tt.want != "" && got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			re := regexp.MustCompile(`^` + got + `$`)
			for _, s := range tt.matches {
				if !re.MatchString(s) {
					t.Errorf("Expected %q to match %q", got, s)
				}
			}
			for _, s := range tt.misses {
				if re.MatchString(s) {
					t.Errorf("Expected %q not to match %q", got, s)
				}
			}
		})
	}
}

func TestPattern_WordBoundaries(t *testing.T) {
	m := Pattern(regexp.MustCompile(`cure`), nil)

	hits := m.Find(NewInput("A cure, not a curex or precure."))
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d: %+v", len(hits), hits)
	}
	if hits[0].Match != "cure" {
		t.Errorf("Expected 'cure', got %q", hits[0].Match)
	}
}

func TestCountTerms(t *testing.T) {
	count := CountTerms([]string{"shocking", "urgent", "secret"})
	if got := count(NewInput("SHOCKING urgent news, shocking!")); got != 2 {
		t.Errorf("Expected 2 distinct terms, got %d", got)
	}
}
