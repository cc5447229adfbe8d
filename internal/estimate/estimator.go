// Package estimate provides external fake-probability estimators whose
// output the fusion engine combines with rule-based verification.
package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnknownProvider is returned for an unsupported provider name
	ErrUnknownProvider = errors.New("unknown estimator provider")

	// ErrOutOfRange is returned when an estimate falls outside [0, 1]
	ErrOutOfRange = errors.New("estimate outside [0, 1]")

	// ErrMalformed is returned when a provider reply carries no estimate
	ErrMalformed = errors.New("malformed estimate reply")
)

// Estimator returns the probability in [0, 1] that a text is fake
type Estimator interface {
	// Name returns the provider name
	Name() string

	// Estimate scores text; errors leave the caller in verification-only mode
	Estimate(ctx context.Context, text string) (float64, error)
}

// Config holds estimator provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "static", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// maxPromptRunes bounds the text sent to a provider
const maxPromptRunes = 8000

const systemPrompt = "You are a news credibility classifier. You answer only with JSON."

// BuildPrompt asks for a single JSON object holding the fake probability
func BuildPrompt(text string) string {
	if utf8.RuneCountInString(text) > maxPromptRunes {
		runes := []rune(text)
		text = string(runes[:maxPromptRunes]) + " [...]"
	}

	return fmt.Sprintf(`Estimate the probability that the following text is fake news or disinformation.

Respond with exactly one JSON object and nothing else:
{"fake_probability": <number between 0 and 1>}

Text:
"""
%s
"""`, text)
}

type reply struct {
	FakeProbability *float64 `json:"fake_probability"`
}

// ParseProbability reads {"fake_probability": x} from a provider reply.
// Code fences and prose around the object are tolerated; anything else is
// ErrMalformed and values outside [0, 1] are ErrOutOfRange.
func ParseProbability(content string) (float64, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return 0, fmt.Errorf("%w: no JSON object in %q", ErrMalformed, truncate(content, 80))
	}

	var r reply
	if err := json.Unmarshal([]byte(content[start:end+1]), &r); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if r.FakeProbability == nil {
		return 0, fmt.Errorf("%w: missing fake_probability", ErrMalformed)
	}
	return CheckRange(*r.FakeProbability)
}

// CheckRange rejects NaN and values outside [0, 1]
func CheckRange(p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, p)
	}
	return p, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
