package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/veracity/internal/extract"
	"github.com/ppiankov/veracity/internal/logger"
	"github.com/ppiankov/veracity/internal/worker"
)

// FeedReader turns RSS/Atom entries into batch items
type FeedReader struct {
	fetcher *Fetcher
	parser  *gofeed.Parser
}

// NewFeedReader creates a feed reader fetching through fetcher
func NewFeedReader(fetcher *Fetcher) *FeedReader {
	return &FeedReader{
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
	}
}

// Read fetches and parses a feed. Each entry becomes one item holding its
// title and its description with markup removed. limit <= 0 keeps all.
func (r *FeedReader) Read(ctx context.Context, feedURL string, limit int) (string, []worker.Item, error) {
	res, err := r.fetcher.FetchWithRetry(ctx, feedURL)
	if err != nil {
		return "", nil, fmt.Errorf("fetch feed: %w", err)
	}

	feed, err := r.parser.ParseString(res.HTML)
	if err != nil {
		return "", nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]worker.Item, 0, len(feed.Items))
	for i, entry := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		text := entryText(entry)
		if text == "" {
			continue
		}
		id := entry.GUID
		if id == "" {
			id = entry.Link
		}
		source := entry.Link
		if source == "" {
			source = fmt.Sprintf("%s#%d", feedURL, i+1)
		}
		items = append(items, worker.Item{ID: id, Text: text, Source: source})
	}

	return strings.TrimSpace(feed.Title), items, nil
}

// entryText joins the title with the description, or the full content when
// the entry has no description
func entryText(entry *gofeed.Item) string {
	body := entry.Description
	if strings.TrimSpace(body) == "" {
		body = entry.Content
	}

	var parts []string
	if title := strings.TrimSpace(extract.StripTags(entry.Title)); title != "" {
		parts = append(parts, title)
	}
	if text := strings.TrimSpace(extract.StripTags(body)); text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}

// FeedReport is the result of verifying every entry of a feed
type FeedReport struct {
	URL     string                 `json:"url"`
	Title   string                 `json:"title,omitempty"`
	Results []*worker.VerifyResult `json:"results"`
	Summary worker.Summary         `json:"summary"`
}

// VerifyFeed verifies up to limit feed entries on the worker pool
func (p *Pipeline) VerifyFeed(ctx context.Context, feedURL string, limit int, progress worker.ProgressFunc) (*FeedReport, error) {
	log := logger.C(ctx)

	// 1. Read entries
	title, items, err := NewFeedReader(p.fetcher).Read(ctx, feedURL, limit)
	if err != nil {
		return nil, err
	}
	log.Info().Str("feed", feedURL).Int("items", len(items)).Msg("feed loaded")

	// 2. Verify concurrently
	results := p.VerifyBatch(ctx, items, progress)

	return &FeedReport{
		URL:     feedURL,
		Title:   title,
		Results: results,
		Summary: worker.Summarize(results),
	}, nil
}

// VerifyBatch verifies items on the worker pool, returning results in input order
func (p *Pipeline) VerifyBatch(ctx context.Context, items []worker.Item, progress worker.ProgressFunc) []*worker.VerifyResult {
	processor := worker.NewBatchProcessor(p, p.config.Concurrency.Workers)
	if progress != nil {
		processor.OnProgress(progress)
	}
	return processor.ProcessItems(ctx, items)
}
