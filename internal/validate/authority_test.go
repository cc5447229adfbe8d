package validate

import (
	"testing"

	"github.com/ppiankov/veracity/internal/model"
)

func TestAuthorityClassifier_Classify(t *testing.T) {
	config := &model.AuthorityConfig{
		PrimaryDomains:   []string{"who.int", "nasa.gov", "gov.uk"},
		SecondaryDomains: []string{"wikipedia.org", "britannica.com"},
		PathPatterns: []model.PathPattern{
			{Pattern: `^/(?:publications|reports)/`, Tier: "primary"},
			{Pattern: `^/blog/`, Tier: "tertiary"},
			{Pattern: `([`, Tier: "primary"},
		},
		DomainMap: map[string]string{
			"nationalgeographic.com": "secondary",
			"en.wikipedia.org":       "tertiary",
		},
	}
	classifier := NewAuthorityClassifier(config)

	tests := []struct {
		desc     string
		url      string
		expected model.AuthorityTier
	}{
		{"primary exact", "https://who.int/emergencies", model.TierPrimary},
		{"primary subdomain", "https://www.who.int/news", model.TierPrimary},
		{"primary suffix", "https://data.gov.uk/dataset", model.TierPrimary},
		{"port stripped", "https://nasa.gov:8443/missions", model.TierPrimary},
		{"secondary", "https://www.britannica.com/place/Mount-Everest", model.TierSecondary},
		{"domain map wins over lists", "https://en.wikipedia.org/wiki/Mount_Everest", model.TierTertiary},
		{"domain map secondary", "https://nationalgeographic.com/science", model.TierSecondary},
		{"host case ignored", "https://WWW.WHO.INT/", model.TierPrimary},
		{"path pattern", "https://example.org/publications/2024", model.TierPrimary},
		{"path pattern tertiary", "https://example.org/blog/post", model.TierTertiary},
		{"gov tld", "https://www.cdc.gov/covid", model.TierPrimary},
		{"edu tld", "https://mit.edu/research", model.TierPrimary},
		{"polish gov", "https://stat.gov.pl/obszary", model.TierPrimary},
		{"unknown", "https://randomsite.com/page", model.TierTertiary},
		{"lookalike domain", "https://notwho.int/page", model.TierTertiary},
		{"no scheme", "not-a-url", model.TierTertiary},
		{"malformed", "://missing-scheme", model.TierTertiary},
		{"empty", "", model.TierTertiary},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.Classify(tt.url); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, got)
			}
		})
	}
}

func TestAuthorityClassifier_Defaults(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)

	tests := []struct {
		url      string
		expected model.AuthorityTier
	}{
		{"https://www.who.int/emergencies/diseases/novel-coronavirus-2019", model.TierPrimary},
		{"https://www.nationalgeographic.com/science/article/mount-everest-height-revised", model.TierSecondary},
		{"https://tourism-board.org/visit", model.TierTertiary},
	}

	for _, tt := range tests {
		if got := classifier.Classify(tt.url); got != tt.expected {
			t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, got)
		}
	}
}

func TestParseTierString(t *testing.T) {
	tests := []struct {
		input    string
		expected model.AuthorityTier
	}{
		{"primary", model.TierPrimary},
		{"PRIMARY", model.TierPrimary},
		{"1", model.TierPrimary},
		{" secondary ", model.TierSecondary},
		{"2", model.TierSecondary},
		{"tertiary", model.TierTertiary},
		{"3", model.TierTertiary},
		{"unknown", model.TierTertiary},
		{"", model.TierTertiary},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseTierString(tt.input); got != tt.expected {
				t.Errorf("Expected %v for %q, got %v", tt.expected, tt.input, got)
			}
		})
	}
}
