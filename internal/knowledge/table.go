// Package knowledge holds the fact table: verifiable records loaded once at
// startup and shared read-only by every verification.
package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/veracity/internal/extract"
	"github.com/ppiankov/veracity/internal/logger"
	"github.com/ppiankov/veracity/internal/model"
)

//go:embed facts.yaml
var embeddedFacts []byte

// ErrEmptyTable is returned when a fact document holds no records
var ErrEmptyTable = errors.New("knowledge: table has no facts")

var validate = validator.New(validator.WithRequiredStructEnabled())

// document is the on-disk layout. JSON documents decode through the same path.
type document struct {
	Version       string             `yaml:"version"`
	ReferenceDate string             `yaml:"reference_date"`
	Facts         []model.FactRecord `yaml:"facts"`
}

// Info describes a loaded table
type Info struct {
	Version       string `json:"version" yaml:"version"`
	ReferenceDate string `json:"reference_date" yaml:"reference_date"`
	Facts         int    `json:"facts" yaml:"facts"`
	Source        string `json:"source" yaml:"source"`
}

// Table is an immutable collection of fact records. A nil *Table behaves
// like an empty one.
type Table struct {
	info     Info
	records  []model.FactRecord
	keywords [][]string // folded keywords, parallel to records
	byID     map[string]int
}

// Match is a record whose keywords appear in a text
type Match struct {
	Record   *model.FactRecord
	Keywords []string
}

// Parse decodes and validates a fact document
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode facts: %w", err)
	}
	if len(doc.Facts) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		info: Info{
			Version:       doc.Version,
			ReferenceDate: doc.ReferenceDate,
			Facts:         len(doc.Facts),
		},
		records:  doc.Facts,
		keywords: make([][]string, len(doc.Facts)),
		byID:     make(map[string]int, len(doc.Facts)),
	}
	if t.info.Version == "" {
		t.info.Version = "unknown"
	}

	for i := range t.records {
		rec := &t.records[i]
		if err := validateRecord(rec); err != nil {
			return nil, err
		}
		if _, dup := t.byID[rec.ID]; dup {
			return nil, fmt.Errorf("fact %q: duplicate id", rec.ID)
		}
		t.byID[rec.ID] = i

		folded := make([]string, len(rec.Keywords))
		for j, kw := range rec.Keywords {
			folded[j] = extract.Fold(kw)
		}
		t.keywords[i] = folded
	}

	return t, nil
}

// validateRecord checks struct tags and that the value fits the claim type
func validateRecord(rec *model.FactRecord) error {
	if err := validate.Struct(rec); err != nil {
		return fmt.Errorf("fact %q: %w", rec.ID, err)
	}

	v := rec.Value
	switch rec.ClaimType {
	case model.ClaimDate:
		if len(v.Years()) == 0 {
			return fmt.Errorf("fact %q: date claim needs a year", rec.ID)
		}
	case model.ClaimDateRange:
		if v.StartYear == 0 || v.EndYear == 0 || v.StartYear > v.EndYear {
			return fmt.Errorf("fact %q: date_range claim needs start_year <= end_year", rec.ID)
		}
	case model.ClaimMeasurement:
		if v.Measure == nil || v.Unit == "" {
			return fmt.Errorf("fact %q: measurement claim needs measure and unit", rec.ID)
		}
	case model.ClaimCount:
		if v.Count == nil || *v.Count <= 0 {
			return fmt.Errorf("fact %q: count claim needs a positive count", rec.ID)
		}
	}
	return nil
}

// Default returns the embedded fact table
func Default() (*Table, error) {
	t, err := Parse(embeddedFacts)
	if err != nil {
		return nil, fmt.Errorf("embedded facts: %w", err)
	}
	t.info.Source = "embedded"
	return t, nil
}

// Load reads a fact document from path, or the embedded table when path is empty
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.info.Source = path
	return t, nil
}

// LoadOrEmpty loads the table and degrades to an empty one on any error.
// Fact checks are skipped against an empty table; verification still runs.
func LoadOrEmpty(path string) *Table {
	t, err := Load(path)
	if err != nil {
		logger.Named("knowledge").Warn().Err(err).Str("path", path).Msg("fact table unavailable, fact checks disabled")
		return Empty()
	}
	return t
}

// Empty returns a table with no records
func Empty() *Table {
	return &Table{info: Info{Version: "empty", Source: "none"}}
}

// Info returns the table metadata
func (t *Table) Info() Info {
	if t == nil {
		return Empty().info
	}
	return t.info
}

// Version returns the table version
func (t *Table) Version() string {
	return t.Info().Version
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns the records in document order. Callers must not modify them.
func (t *Table) Records() []model.FactRecord {
	if t == nil {
		return nil
	}
	return t.records
}

// Get returns the record with the given id
func (t *Table) Get(id string) (*model.FactRecord, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return &t.records[i], true
}

// Match returns the records with at least one keyword in text, in document
// order. Keywords match as case-insensitive substrings.
func (t *Table) Match(text string) []Match {
	if t.Len() == 0 || text == "" {
		return nil
	}

	folded := extract.Fold(text)
	var matches []Match
	for i := range t.records {
		var hit []string
		for j, kw := range t.keywords[i] {
			if kw != "" && strings.Contains(folded, kw) {
				hit = append(hit, t.records[i].Keywords[j])
			}
		}
		if len(hit) > 0 {
			matches = append(matches, Match{Record: &t.records[i], Keywords: hit})
		}
	}
	return matches
}
