package model

// ClaimType selects how a fact record is checked against a text
type ClaimType string

const (
	ClaimDate        ClaimType = "date"
	ClaimDateRange   ClaimType = "date_range"
	ClaimMeasurement ClaimType = "measurement"
	ClaimCount       ClaimType = "count"
	ClaimDefinition  ClaimType = "definition"
)

// Controversy levels are informational only and never change a score
const (
	ControversyLow    = "low"
	ControversyMedium = "medium"
	ControversyHigh   = "high"
)

// Measurement units understood by the fact verifier
const (
	UnitKilometersPerSecond = "km/s"
	UnitMetersPerSecond     = "m/s"
	UnitCelsius             = "celsius"
	UnitMetersPerSecondSq   = "m/s2"
	UnitMeters              = "meters"
	UnitFeet                = "feet"
)

// FactRecord is one verifiable knowledge-base entry. Records are loaded once
// and shared read-only.
type FactRecord struct {
	ID                 string     `json:"id" yaml:"id" validate:"required"`
	Topic              string     `json:"topic" yaml:"topic" validate:"required"`
	Statement          string     `json:"statement,omitempty" yaml:"statement,omitempty"`
	Keywords           []string   `json:"keywords" yaml:"keywords" validate:"required,min=1,dive,required"`
	ClaimType          ClaimType  `json:"claim_type" yaml:"claim_type" validate:"required,oneof=date date_range measurement count definition"`
	Value              FactValue  `json:"value" yaml:"value"`
	Source             FactSource `json:"source" yaml:"source"`
	ControversyLevel   string     `json:"controversy_level" yaml:"controversy_level" validate:"omitempty,oneof=low medium high"`
	InterpretationNote string     `json:"interpretation_note,omitempty" yaml:"interpretation_note,omitempty"`
}

// FactValue holds the expected value; which fields are set depends on ClaimType
type FactValue struct {
	Year          int      `json:"year,omitempty" yaml:"year,omitempty" validate:"omitempty,min=1000,max=2999"`
	StartYear     int      `json:"start_year,omitempty" yaml:"start_year,omitempty" validate:"omitempty,min=1000,max=2999"`
	EndYear       int      `json:"end_year,omitempty" yaml:"end_year,omitempty" validate:"omitempty,min=1000,max=2999"`
	EmergenceYear int      `json:"emergence_year,omitempty" yaml:"emergence_year,omitempty" validate:"omitempty,min=1000,max=2999"`
	Measure       *float64 `json:"measure,omitempty" yaml:"measure,omitempty"`
	Unit          string   `json:"unit,omitempty" yaml:"unit,omitempty" validate:"omitempty,oneof=km/s m/s celsius m/s2 meters feet"`
	Count         *int     `json:"count,omitempty" yaml:"count,omitempty"`
}

// Years returns the non-zero expected years in declaration order
func (v FactValue) Years() []int {
	var years []int
	for _, y := range []int{v.Year, v.StartYear, v.EndYear, v.EmergenceYear} {
		if y != 0 {
			years = append(years, y)
		}
	}
	return years
}

// FactSource attributes a record; informational only
type FactSource struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
}

// FactCheckStatus is the outcome of checking one record against a text
type FactCheckStatus string

const (
	FactVerified     FactCheckStatus = "verified"
	FactContradicted FactCheckStatus = "contradicted"
	FactMentioned    FactCheckStatus = "mentioned"
)

// FactCheck records how one matched record was evaluated. Mentioned checks
// carry no score and produce no Finding.
type FactCheck struct {
	FactID           string          `json:"fact_id"`
	Topic            string          `json:"topic"`
	Status           FactCheckStatus `json:"status"`
	MatchedKeywords  []string        `json:"matched_keywords"`
	Detail           string          `json:"detail"`
	ScoreDelta       float64         `json:"score_delta"`
	Source           FactSource      `json:"source"`
	SourceAuthority  AuthorityTier   `json:"source_authority,omitempty"`
	ControversyLevel string          `json:"controversy_level,omitempty"`
}
