package estimate

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// NewEstimator creates the estimator named by config.Provider. An empty
// provider disables estimation and returns nil.
func NewEstimator(config Config) (Estimator, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIEstimator(config)

	case "anthropic", "claude":
		return NewAnthropicEstimator(config)

	case "ollama":
		return NewOllamaEstimator(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %s (supported: openai, anthropic, ollama)", ErrUnknownProvider, config.Provider)
	}
}

// ConfigFromModel merges the estimator and proxy settings of the app config
func ConfigFromModel(est model.EstimatorConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:   est.Provider,
		Model:      est.Model,
		APIKey:     est.APIKey,
		BaseURL:    est.BaseURL,
		Timeout:    est.Timeout,
		MaxTokens:  est.MaxTokens,
		HTTPProxy:  httpCfg.HTTPProxy,
		HTTPSProxy: httpCfg.HTTPSProxy,
		NoProxy:    httpCfg.NoProxy,
	}
}

// Waiter blocks until a call for key may proceed
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// RateLimited spaces calls to an estimator through a Waiter keyed by the
// estimator name
type RateLimited struct {
	next   Estimator
	waiter Waiter
}

// NewRateLimited wraps next; a nil waiter leaves it unlimited
func NewRateLimited(next Estimator, waiter Waiter) *RateLimited {
	return &RateLimited{next: next, waiter: waiter}
}

// Name returns the wrapped estimator name
func (r *RateLimited) Name() string {
	return r.next.Name()
}

// Estimate waits for clearance, then delegates
func (r *RateLimited) Estimate(ctx context.Context, text string) (float64, error) {
	if r.waiter != nil {
		if err := r.waiter.Wait(ctx, r.next.Name()); err != nil {
			return 0, fmt.Errorf("rate limit: %w", err)
		}
	}
	return r.next.Estimate(ctx, text)
}
