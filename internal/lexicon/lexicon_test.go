package lexicon

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefault_LoadsEmbeddedLexicons(t *testing.T) {
	set, err := Default()
	if err != nil {
		t.Fatalf("Expected embedded lexicons to load, got %v", err)
	}

	if got := set.Languages(); !reflect.DeepEqual(got, []string{"en", "pl"}) {
		t.Errorf("Expected languages [en pl], got %v", got)
	}
	if set.Version() != "en@2025.1,pl@2025.1" {
		t.Errorf("Unexpected version %q", set.Version())
	}

	for _, lex := range set.Lexicons() {
		if len(lex.Contradictions) == 0 {
			t.Errorf("%s: expected contradiction pairs", lex.Language)
		}
		if len(lex.Emotional) == 0 || len(lex.Fear) == 0 {
			t.Errorf("%s: expected emotional and fear terms", lex.Language)
		}
		if len(lex.Phrases) != 3 {
			t.Errorf("%s: expected 3 phrase groups, got %d", lex.Language, len(lex.Phrases))
		}
	}
}

func TestParse_FoldsTerms(t *testing.T) {
	lex, err := Parse([]byte(`
version: 1
revision: test
language: EN
name: Test
emotional: [SHOCKING]
fear: ["Danger*"]
`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if lex.Language != "en" {
		t.Errorf("Expected language folded to en, got %s", lex.Language)
	}
	if lex.Emotional[0] != "shocking" || lex.Fear[0] != "danger*" {
		t.Errorf("Expected folded terms, got %v %v", lex.Emotional, lex.Fear)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		desc    string
		doc     string
		wantErr string
	}{
		{"bad yaml", "version: [", "decode lexicon"},
		{"wrong version", "version: 2\nrevision: x\nlanguage: en\nname: x", "unsupported schema version"},
		{"missing name", "version: 1\nrevision: x\nlanguage: en", "Name"},
		{"positive contradiction delta", `
version: 1
revision: x
language: en
name: x
contradictions:
  - id: p
    left: [a]
    right: [b]
    delta: 1.0
`, "Delta"},
		{"unknown phrase category", `
version: 1
revision: x
language: en
name: x
phrases:
  - id: p
    category: rumor
    label: x
    delta: -1
    terms: [x]
`, "Category"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	_, err := Parse([]byte("version: 3\nrevision: x\nlanguage: en\nname: x"))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestLoad_DirectoryAddsLanguage(t *testing.T) {
	dir := t.TempDir()
	doc := `
version: 1
revision: "1"
language: de
name: Deutsch
contradictions:
  - id: frequency
    left: [immer]
    right: [nie]
    delta: -3.0
emotional: [schockierend]
fear: [gefahr]
`
	if err := os.WriteFile(filepath.Join(dir, "de.yaml"), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := set.Languages(); !reflect.DeepEqual(got, []string{"de", "en", "pl"}) {
		t.Errorf("Expected [de en pl], got %v", got)
	}

	only, err := Load(dir, []string{"de"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := only.Emotional(); !reflect.DeepEqual(got, []string{"schockierend"}) {
		t.Errorf("Expected only German emotional terms, got %v", got)
	}
}

func TestLoad_UnknownLanguage(t *testing.T) {
	if _, err := Load("", []string{"xx"}); err == nil {
		t.Error("Expected error for unmatched language filter")
	}
}

func TestLoadOrDefault_FallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("version: ["), 0644); err != nil {
		t.Fatal(err)
	}

	set := LoadOrDefault(dir, nil)
	if got := set.Languages(); !reflect.DeepEqual(got, []string{"en", "pl"}) {
		t.Errorf("Expected fallback to embedded lexicons, got %v", got)
	}

	set = LoadOrDefault("", []string{"xx"})
	if len(set.Languages()) != 2 {
		t.Errorf("Expected all embedded lexicons when filter matches nothing, got %v", set.Languages())
	}
}

func TestSet_CollectDedupes(t *testing.T) {
	set, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, term := range set.Fear() {
		if seen[term] {
			t.Errorf("Duplicate fear term %q", term)
		}
		seen[term] = true
	}
	if !seen["ryzyk*"] || !seen["risk"] {
		t.Errorf("Expected fear terms from both languages, got %v", set.Fear())
	}
}
