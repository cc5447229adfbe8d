package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/veracity/internal/logger"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
)

const (
	checkMaxAttempts  = 3
	defaultMaxWorkers = 8
	staleAfterDays    = 365
)

// checkSleepFunc is the sleep function used between retries (injectable for tests)
var checkSleepFunc = time.Sleep

// SourceChecker checks the source URLs cited by fact records
type SourceChecker struct {
	httpClient *http.Client
	userAgent  string
	maxWorkers int
	authority  *AuthorityClassifier
	now        func() time.Time
}

// NewSourceChecker creates a checker fetching with cfg
func NewSourceChecker(cfg model.HTTPConfig, maxWorkers int, authConfig *model.AuthorityConfig) *SourceChecker {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &SourceChecker{
		httpClient: util.NewHTTPClient(cfg),
		userAgent:  cfg.UserAgent,
		maxWorkers: maxWorkers,
		authority:  NewAuthorityClassifier(authConfig),
		now:        time.Now,
	}
}

// Check checks every record's source concurrently. Results follow the
// record order; records without a source URL are reported, not fetched.
func (c *SourceChecker) Check(ctx context.Context, records []model.FactRecord) []model.SourceCheck {
	results := make([]model.SourceCheck, len(records))

	g := new(errgroup.Group)
	g.SetLimit(c.maxWorkers)
	for i, rec := range records {
		i, rec := i, rec
		if rec.Source.URL == "" {
			results[i] = model.SourceCheck{FactID: rec.ID, Error: "no source url"}
			continue
		}
		g.Go(func() error {
			results[i] = c.checkWithRetry(ctx, rec.ID, rec.Source.URL)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// checkOne issues a HEAD request, falling back to GET for servers that
// reject HEAD
func (c *SourceChecker) checkOne(ctx context.Context, factID, rawURL string) model.SourceCheck {
	result := model.SourceCheck{
		FactID:    factID,
		URL:       rawURL,
		Authority: c.authority.Classify(rawURL),
	}

	if err := ctx.Err(); err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result
	}

	resp, err := c.do(ctx, http.MethodHead, rawURL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		_ = resp.Body.Close()
		resp, err = c.do(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		// Unreachable counts as dead unless the caller gave up
		result.Error = err.Error()
		result.IsDead = ctx.Err() == nil
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.IsAccessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.IsDead = true
	}

	if final := resp.Request.URL.String(); final != rawURL {
		result.RedirectURL = final
	}

	if lastModified := resp.Header.Get("Last-Modified"); lastModified != "" {
		if t, err := http.ParseTime(lastModified); err == nil {
			result.LastModified = &t
			ageDays := int(c.now().Sub(t).Hours() / 24)
			result.Age = &ageDays
			result.IsStale = ageDays > staleAfterDays
		}
	}

	return result
}

func (c *SourceChecker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// checkWithRetry retries transient failures with exponential backoff
func (c *SourceChecker) checkWithRetry(ctx context.Context, factID, rawURL string) model.SourceCheck {
	var result model.SourceCheck
	for attempt := 0; attempt < checkMaxAttempts; attempt++ {
		result = c.checkOne(ctx, factID, rawURL)
		if !isRetryableSourceCheck(result) || ctx.Err() != nil {
			return result
		}
		if attempt < checkMaxAttempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			logger.C(ctx).Debug().Str("fact_id", factID).Int("status", result.StatusCode).
				Dur("backoff", backoff).Msg("retrying source check")
			checkSleepFunc(backoff)
		}
	}
	return result
}

// isRetryableSourceCheck returns true for results that indicate transient failures
func isRetryableSourceCheck(result model.SourceCheck) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	s := strings.ToLower(result.Error)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
