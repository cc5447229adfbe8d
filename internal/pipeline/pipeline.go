// Package pipeline wires the analyzers, the fact table and the fusion policy
// into a single verification call, and adds article and feed intake around it.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/veracity/internal/cache"
	"github.com/ppiankov/veracity/internal/consistency"
	"github.com/ppiankov/veracity/internal/estimate"
	"github.com/ppiankov/veracity/internal/extract/adapters"
	"github.com/ppiankov/veracity/internal/factcheck"
	"github.com/ppiankov/veracity/internal/knowledge"
	"github.com/ppiankov/veracity/internal/lexicon"
	"github.com/ppiankov/veracity/internal/logger"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/score"
	"github.com/ppiankov/veracity/internal/tone"
)

// ReferenceDateLayout formats the reference date in reports and cache keys
const ReferenceDateLayout = "2006-01-02"

// Pipeline is immutable once built and safe for concurrent use
type Pipeline struct {
	config        *model.Config
	table         *knowledge.Table
	lexicons      *lexicon.Set
	referenceDate time.Time

	consistency *consistency.Analyzer
	tone        *tone.Analyzer
	facts       *factcheck.Verifier
	scorer      *score.Scorer

	cache     cache.Cache
	estimator estimate.Estimator
	authority factcheck.AuthorityClassifier
	fetcher   *Fetcher
	adapters  *adapters.Registry
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithTable uses table instead of the configured knowledge path
func WithTable(table *knowledge.Table) Option {
	return func(p *Pipeline) { p.table = table }
}

// WithLexicons uses set instead of the configured lexicons
func WithLexicons(set *lexicon.Set) Option {
	return func(p *Pipeline) { p.lexicons = set }
}

// WithReferenceDate fixes the date temporal rules treat as now
func WithReferenceDate(date time.Time) Option {
	return func(p *Pipeline) { p.referenceDate = date }
}

// WithCache stores reports in c
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithAuthority rates fact sources in fact checks
func WithAuthority(a factcheck.AuthorityClassifier) Option {
	return func(p *Pipeline) { p.authority = a }
}

// WithEstimator consults est when Verify gets no estimate
func WithEstimator(est estimate.Estimator) Option {
	return func(p *Pipeline) { p.estimator = est }
}

// WithFetcher replaces the article fetcher
func WithFetcher(f *Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// New creates a pipeline. Resources not given as options are loaded from
// cfg; a broken knowledge or lexicon resource degrades with a warning.
func New(cfg *model.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		def := model.DefaultConfig()
		cfg = &def
	}

	p := &Pipeline{config: cfg}
	for _, opt := range opts {
		opt(p)
	}

	// 1. Shared read-only resources
	if p.table == nil {
		p.table = knowledge.LoadOrEmpty(cfg.Knowledge.Path)
	}
	if p.lexicons == nil {
		p.lexicons = lexicon.LoadOrDefault(cfg.Lexicon.Dir, cfg.Lexicon.Languages)
	}
	if p.referenceDate.IsZero() {
		p.referenceDate = time.Now().UTC()
	}
	p.referenceDate = time.Date(p.referenceDate.Year(), p.referenceDate.Month(), p.referenceDate.Day(), 0, 0, 0, 0, time.UTC)
	if p.cache == nil {
		p.cache = cache.Nop{}
	}

	// 2. Analyzers
	var factOpts []factcheck.Option
	if p.authority != nil {
		factOpts = append(factOpts, factcheck.WithAuthority(p.authority))
	}
	p.consistency = consistency.New(p.lexicons, cfg.Consistency, cfg.Bands.Consistency, p.referenceDate)
	p.tone = tone.New(p.lexicons, cfg.Tone)
	p.facts = factcheck.New(p.lexicons, cfg.Knowledge, cfg.Bands.FactCheck, factOpts...)
	p.scorer = score.NewScorer(cfg.Fusion)

	// 3. Article intake
	if p.fetcher == nil {
		p.fetcher = NewFetcher(cfg.HTTP)
	}
	p.adapters = adapters.NewRegistry()

	return p
}

// Table returns the fact table in use
func (p *Pipeline) Table() *knowledge.Table {
	return p.table
}

// Lexicons returns the lexicon set in use
func (p *Pipeline) Lexicons() *lexicon.Set {
	return p.lexicons
}

// ReferenceDate returns the date temporal rules treat as now
func (p *Pipeline) ReferenceDate() time.Time {
	return p.referenceDate
}

// Fuse verifies text sequentially. It is a pure function of its inputs and
// the pipeline's resources and never fails.
func (p *Pipeline) Fuse(text string, estimate *float64) *model.VerificationReport {
	cons := p.consistency.Analyze(text)
	fact := p.facts.Verify(text, p.table)
	emotional, style := p.tone.Analyze(text)
	return p.assemble(text, estimate, cons, fact, emotional, style)
}

// Verify is Fuse with the analyzers fanned out, the configured estimator
// consulted when estimate is nil, and reports cached by their ID
func (p *Pipeline) Verify(ctx context.Context, text string, estimate *float64) (*model.VerificationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. Reports fused with the configured estimator are also cached under
	// a key naming the estimator, so a hit skips the estimator call
	var estimatorKey string
	if estimate == nil && p.estimator != nil {
		estimatorKey = cache.Key(p.estimatorReportID(text))
		if cached, ok := p.cached(estimatorKey); ok {
			return cached, nil
		}
	}

	// 2. External estimate
	estimate = p.resolveEstimate(ctx, text, estimate)
	if estimate == nil {
		estimatorKey = "" // failed estimates are retried next time
	}

	// 3. Cache
	key := cache.Key(p.ReportID(text, estimate))
	if cached, ok := p.cached(key); ok {
		return cached, nil
	}

	// 4. Independent analyzers, merged at the barrier below
	var (
		cons, fact       model.ComponentReport
		emotional, style model.ComponentReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cons = p.consistency.Analyze(text)
		return gctx.Err()
	})
	g.Go(func() error {
		fact = p.facts.Verify(text, p.table)
		return gctx.Err()
	})
	g.Go(func() error {
		emotional, style = p.tone.Analyze(text)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	// 5. Fusion
	report := p.assemble(text, estimate, cons, fact, emotional, style)

	// 6. Store
	if data, err := json.Marshal(report); err == nil {
		for _, k := range []string{key, estimatorKey} {
			if k == "" {
				continue
			}
			if err := p.cache.Set(k, data, 0); err != nil {
				logger.C(ctx).Warn().Err(err).Str("report_id", report.ID).Msg("report cache write failed")
			}
		}
	}

	return report, nil
}

// cached returns the report stored under key. Corrupt entries are dropped.
func (p *Pipeline) cached(key string) (*model.VerificationReport, bool) {
	data, ok := p.cache.Get(key)
	if !ok {
		return nil, false
	}
	var report model.VerificationReport
	if err := json.Unmarshal(data, &report); err != nil {
		_ = p.cache.Delete(key)
		return nil, false
	}
	return &report, true
}

// resolveEstimate returns given, or asks the estimator. Estimator failures
// fall back to verification-only mode.
func (p *Pipeline) resolveEstimate(ctx context.Context, text string, given *float64) *float64 {
	if given != nil || p.estimator == nil {
		return given
	}

	v, err := p.estimator.Estimate(ctx, text)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("estimator", p.estimator.Name()).
			Msg("external estimate unavailable, using verification only")
		return nil
	}
	return &v
}

// ReportID derives the report identifier from everything that determines
// the report
func (p *Pipeline) ReportID(text string, estimate *float64) uuid.UUID {
	est := "none"
	if estimate != nil {
		est = strconv.FormatFloat(*estimate, 'g', -1, 64)
	}
	return cache.ID(
		text,
		est,
		p.table.Version(),
		p.lexicons.Version(),
		p.referenceDate.Format(ReferenceDateLayout),
	)
}

// estimatorReportID identifies the report of text fused with whatever the
// configured estimator returns
func (p *Pipeline) estimatorReportID(text string) uuid.UUID {
	return cache.ID(
		text,
		"estimator:"+p.estimator.Name(),
		p.table.Version(),
		p.lexicons.Version(),
		p.referenceDate.Format(ReferenceDateLayout),
	)
}

// assemble fuses the component reports into the final report
func (p *Pipeline) assemble(text string, estimate *float64, cons, fact, emotional, style model.ComponentReport) *model.VerificationReport {
	res := p.scorer.Calculate([]model.ComponentReport{cons, fact, emotional, style}, estimate)

	report := &model.VerificationReport{
		ID:                           p.ReportID(text, estimate).String(),
		Verdict:                      res.Verdict,
		FakeProbability:              res.FakeProbability,
		Confidence:                   res.Confidence,
		AggregateScore:               res.AggregateScore,
		CombinedConfidenceMultiplier: res.CombinedMultiplier,
		Mode:                         res.Mode,
		ExternalEstimate:             res.Estimate,
		ReferenceDate:                p.referenceDate.Format(ReferenceDateLayout),
		Consistency:                  cons,
		FactCheck:                    fact,
		Emotional:                    emotional,
		Style:                        style,
		KnowledgeVersion:             p.table.Version(),
		LexiconVersion:               p.lexicons.Version(),
	}

	report.AllIssues = make([]string, 0, report.FindingCount())
	for _, c := range report.Components() {
		report.AllIssues = append(report.AllIssues, c.Issues()...)
	}

	return report
}

// ErrNoContent is returned when a fetched page has no extractable text
var ErrNoContent = errors.New("no text content")

// VerifyURL fetches an article, extracts its text and verifies it. The
// headline is verified together with the body.
func (p *Pipeline) VerifyURL(ctx context.Context, rawURL string) (*model.ArticleReport, error) {
	log := logger.C(ctx)

	// 1. Fetch
	log.Info().Str("url", rawURL).Msg("fetching article")
	res, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	// 2. Extract
	article, adapterName, err := p.adapters.Extract(res.HTML, res.FinalURL, res.Meta.ContentType)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", res.FinalURL, err)
	}
	if strings.TrimSpace(article.Text) == "" {
		return nil, fmt.Errorf("extract %s: %w", res.FinalURL, ErrNoContent)
	}
	title := article.Title
	if title == "" {
		title = res.Subject
	}
	log.Debug().Str("adapter", adapterName).Int("paragraphs", article.Paragraphs).
		Int("bytes", len(article.Text)).Msg("article extracted")

	// 3. Verify
	text := article.Text
	if article.Title != "" && !strings.HasPrefix(text, article.Title) {
		text = article.Title + "\n" + text
	}
	report, err := p.Verify(ctx, text, nil)
	if err != nil {
		return nil, err
	}

	return &model.ArticleReport{
		URL:       res.FinalURL,
		Title:     title,
		Adapter:   adapterName,
		FetchMeta: res.Meta,
		TextBytes: len(text),
		Report:    report,
	}, nil
}
