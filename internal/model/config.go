package model

import (
	"math"
	"os"
	"path/filepath"
	"time"
)

// Config holds every tunable of the verification engine and its outer tooling
type Config struct {
	Fusion       FusionConfig       `yaml:"fusion" mapstructure:"fusion"`
	Bands        BandsConfig        `yaml:"bands" mapstructure:"bands"`
	Consistency  ConsistencyConfig  `yaml:"consistency" mapstructure:"consistency"`
	Tone         ToneConfig         `yaml:"tone" mapstructure:"tone"`
	Knowledge    KnowledgeConfig    `yaml:"knowledge" mapstructure:"knowledge"`
	Lexicon      LexiconConfig      `yaml:"lexicon" mapstructure:"lexicon"`
	Estimator    EstimatorConfig    `yaml:"estimator" mapstructure:"estimator"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Authority    AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// FusionConfig holds the fusion weights and verdict thresholds
type FusionConfig struct {
	FakeThreshold float64 `yaml:"fake_threshold" mapstructure:"fake_threshold"` // adjusted > this is FAKE
	RealThreshold float64 `yaml:"real_threshold" mapstructure:"real_threshold"` // adjusted < this is REAL

	// With an external estimate
	StrongPenaltyBelow  float64 `yaml:"strong_penalty_below" mapstructure:"strong_penalty_below"`
	StrongPenaltyWeight float64 `yaml:"strong_penalty_weight" mapstructure:"strong_penalty_weight"`
	PenaltyBelow        float64 `yaml:"penalty_below" mapstructure:"penalty_below"`
	PenaltyWeight       float64 `yaml:"penalty_weight" mapstructure:"penalty_weight"`
	BonusAbove          float64 `yaml:"bonus_above" mapstructure:"bonus_above"`
	BonusWeight         float64 `yaml:"bonus_weight" mapstructure:"bonus_weight"`

	// Verification-only mode
	BaseProbability       float64 `yaml:"base_probability" mapstructure:"base_probability"`
	ScoreWeight           float64 `yaml:"score_weight" mapstructure:"score_weight"`
	NoFindingsBias        bool    `yaml:"no_findings_bias" mapstructure:"no_findings_bias"`
	NoFindingsProbability float64 `yaml:"no_findings_probability" mapstructure:"no_findings_probability"`
	NoFindingsConfidence  float64 `yaml:"no_findings_confidence" mapstructure:"no_findings_confidence"`
}

// Band maps a score floor to a qualitative level and confidence multiplier.
// The last band of a list catches every score below the previous floors.
type Band struct {
	Min        float64 `yaml:"min" mapstructure:"min"`
	Level      string  `yaml:"level" mapstructure:"level"`
	Multiplier float64 `yaml:"multiplier" mapstructure:"multiplier"`
}

// BandsConfig holds the level bands of the confidence-scaling components
type BandsConfig struct {
	Consistency []Band `yaml:"consistency" mapstructure:"consistency"`
	FactCheck   []Band `yaml:"fact_check" mapstructure:"fact_check"`
}

// ConsistencyConfig holds numeric and temporal limits
type ConsistencyConfig struct {
	PercentCeiling   float64 `yaml:"percent_ceiling" mapstructure:"percent_ceiling"` // impossible range is (100, ceiling]
	AgeCeiling       int     `yaml:"age_ceiling" mapstructure:"age_ceiling"`
	RelativeWindow   int     `yaml:"relative_window" mapstructure:"relative_window"`       // years allowed between "yesterday in YYYY" and now
	FutureYearWindow int     `yaml:"future_year_window" mapstructure:"future_year_window"` // years beyond now before a date is suspicious
}

// ToneConfig holds the emotional and style thresholds
type ToneConfig struct {
	EmotionalHigh     int `yaml:"emotional_high" mapstructure:"emotional_high"`
	EmotionalModerate int `yaml:"emotional_moderate" mapstructure:"emotional_moderate"`
	FearMin           int `yaml:"fear_min" mapstructure:"fear_min"`
	CapsHigh          int `yaml:"caps_high" mapstructure:"caps_high"`
	CapsModerate      int `yaml:"caps_moderate" mapstructure:"caps_moderate"`
	CapsMinLength     int `yaml:"caps_min_length" mapstructure:"caps_min_length"` // tokens must be longer than this
	ExclaimHigh       int `yaml:"exclaim_high" mapstructure:"exclaim_high"`
	ExclaimModerate   int `yaml:"exclaim_moderate" mapstructure:"exclaim_moderate"`
	PunctuationRun    int `yaml:"punctuation_run" mapstructure:"punctuation_run"`
	EmojiMin          int `yaml:"emoji_min" mapstructure:"emoji_min"`
}

// KnowledgeConfig locates the fact table and its comparison windows
type KnowledgeConfig struct {
	Path                string `yaml:"path" mapstructure:"path"` // empty uses the embedded table
	ContradictionWindow int    `yaml:"contradiction_window" mapstructure:"contradiction_window"`
	CountWindow         int    `yaml:"count_window" mapstructure:"count_window"`
}

// LexiconConfig selects lexicon resources
type LexiconConfig struct {
	Dir       string   `yaml:"dir" mapstructure:"dir"`             // extra *.yaml lexicons, override embedded ones by language
	Languages []string `yaml:"languages" mapstructure:"languages"` // empty enables all
}

// EstimatorConfig configures the optional external fake-probability estimator
type EstimatorConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "", "openai", "anthropic", "ollama"
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CacheConfig configures report caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// HTTPConfig configures article, feed and source fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// AuthorityConfig classifies fact source domains
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	PathPatterns     []PathPattern     `yaml:"path_patterns" mapstructure:"path_patterns"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// PathPattern assigns a tier to URLs whose path matches Pattern
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits calls per host (estimator endpoints and fetches)
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
	Format        string `yaml:"format" mapstructure:"format"` // "text", "json", "markdown"
}

// LogConfig configures the zerolog root logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "console" or "json"
}

// DefaultConsistencyBands returns the five-step consistency bands
func DefaultConsistencyBands() []Band {
	return []Band{
		{Min: -1.0, Level: "EXCELLENT", Multiplier: 1.0},
		{Min: -3.0, Level: "GOOD", Multiplier: 0.95},
		{Min: -5.0, Level: "MODERATE", Multiplier: 0.85},
		{Min: -8.0, Level: "POOR", Multiplier: 0.70},
		{Min: math.Inf(-1), Level: "VERY_POOR", Multiplier: 0.50},
	}
}

// DefaultFactCheckBands returns the four-step fact verification bands
func DefaultFactCheckBands() []Band {
	return []Band{
		{Min: 0, Level: "VERIFIED", Multiplier: 1.0},
		{Min: -3.0, Level: "MOSTLY_VERIFIED", Multiplier: 0.90},
		{Min: -6.0, Level: "SUSPICIOUS", Multiplier: 0.75},
		{Min: math.Inf(-1), Level: "HIGHLY_SUSPICIOUS", Multiplier: 0.50},
	}
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		Fusion: FusionConfig{
			FakeThreshold:         0.55,
			RealThreshold:         0.45,
			StrongPenaltyBelow:    -5.0,
			StrongPenaltyWeight:   0.08,
			PenaltyBelow:          -3.0,
			PenaltyWeight:         0.06,
			BonusAbove:            2.0,
			BonusWeight:           0.05,
			BaseProbability:       0.5,
			ScoreWeight:           0.08,
			NoFindingsBias:        true,
			NoFindingsProbability: 0.35,
			NoFindingsConfidence:  0.30,
		},
		Bands: BandsConfig{
			Consistency: DefaultConsistencyBands(),
			FactCheck:   DefaultFactCheckBands(),
		},
		Consistency: ConsistencyConfig{
			PercentCeiling:   999,
			AgeCeiling:       150,
			RelativeWindow:   1,
			FutureYearWindow: 1,
		},
		Tone: ToneConfig{
			EmotionalHigh:     3,
			EmotionalModerate: 2,
			FearMin:           2,
			CapsHigh:          3,
			CapsModerate:      2,
			CapsMinLength:     2,
			ExclaimHigh:       5,
			ExclaimModerate:   3,
			PunctuationRun:    3,
			EmojiMin:          5,
		},
		Knowledge: KnowledgeConfig{
			ContradictionWindow: 50,
			CountWindow:         3,
		},
		Estimator: EstimatorConfig{
			Timeout:   30,
			MaxTokens: 200,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Veracity/0.1 (+https://github.com/ppiankov/veracity)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"who.int", "cdc.gov", "nasa.gov", "nist.gov", "noaa.gov",
				"europa.eu", "un.org", "gov.uk", "gov.pl", "iau.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "britannica.com", "nationalgeographic.com",
				"reuters.com", "apnews.com", "bbc.co.uk", "nature.com", "science.org",
			},
			PathPatterns: []PathPattern{
				{Pattern: `^/(?:publications|reports|statistics)/`, Tier: "primary"},
			},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			Format:        "text",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "veracity-cache")
	}
	return filepath.Join(home, ".veracity", "cache")
}
