package cli

import (
	"fmt"
	"time"

	"github.com/ppiankov/veracity/internal/cache"
	"github.com/ppiankov/veracity/internal/estimate"
	"github.com/ppiankov/veracity/internal/logger"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/validate"
	"github.com/ppiankov/veracity/internal/worker"
)

// newPipeline wires the configured cache, estimator, fetcher and authority
// classifier into a pipeline. A non-nil override replaces the configured
// estimator.
func newPipeline(cfg *model.Config, override estimate.Estimator) (*pipeline.Pipeline, error) {
	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)

	opts := []pipeline.Option{
		pipeline.WithCache(cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL)),
		pipeline.WithAuthority(validate.NewAuthorityClassifier(&cfg.Authority)),
		pipeline.WithFetcher(pipeline.NewFetcher(cfg.HTTP, pipeline.WithLimiter(limiter))),
	}

	if referenceDate != "" {
		date, err := time.Parse(pipeline.ReferenceDateLayout, referenceDate)
		if err != nil {
			return nil, fmt.Errorf("invalid --reference-date %q: %w", referenceDate, err)
		}
		opts = append(opts, pipeline.WithReferenceDate(date))
	}

	switch {
	case override != nil:
		opts = append(opts, pipeline.WithEstimator(override))
	case cfg.Estimator.Provider != "":
		est, err := estimate.NewEstimator(estimate.ConfigFromModel(cfg.Estimator, cfg.HTTP))
		if err != nil {
			return nil, fmt.Errorf("estimator: %w", err)
		}
		logger.Named("cli").Debug().Str("estimator", est.Name()).Msg("external estimator enabled")
		opts = append(opts, pipeline.WithEstimator(estimate.NewRateLimited(est, limiter)))
	}

	return pipeline.New(cfg, opts...), nil
}
