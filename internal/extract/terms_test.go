package extract

import (
	"reflect"
	"testing"
)

func TestContainsTerm(t *testing.T) {
	tests := []struct {
		desc string
		text string
		term string
		want bool
	}{
		{"whole word", "they always lie", "always", true},
		{"substring inside word", "a small town", "all", false},
		{"start of text", "all of them", "all", true},
		{"end of text with punctuation", "it is all.", "all", true},
		{"multi word term", "no one came", "no one", true},
		{"multi word term inside word", "piano one", "no one", false},
		{"polish diacritic boundary", "nikt nie wie", "nikt", true},
		{"polish inside word", "zażaden", "żaden", false},
		{"stem matches inflection", "to szokujące wieści", "szokując*", true},
		{"stem needs left boundary", "nieszokujące", "szokując*", false},
		{"second occurrence bounded", "smallest all", "all", true},
		{"empty term", "anything", "", false},
		{"empty text", "", "all", false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := ContainsTerm(tt.text, tt.term); got != tt.want {
				t.Errorf("ContainsTerm(%q, %q) = %v, want %v", tt.text, tt.term, got, tt.want)
			}
		})
	}
}

func TestMatchTerms(t *testing.T) {
	got := MatchTerms("shocking and explosive, truly shocking", []string{"shocking", "explosive", "bombshell", "shocking"})
	want := []string{"shocking", "explosive"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestContainsAny(t *testing.T) {
	hit, ok := ContainsAny("they never listen", []string{"rarely", "never"})
	if !ok || hit != "never" {
		t.Errorf("Expected hit never, got %q (%v)", hit, ok)
	}
	if _, ok := ContainsAny("nothing here", []string{"never"}); ok {
		t.Error("Expected no hit")
	}
}
