package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// Verifier defines the interface for verifying one text
type Verifier interface {
	Verify(ctx context.Context, text string, estimate *float64) (*model.VerificationReport, error)
}

// Item is one text to verify. Source names where it came from (a file
// line or feed entry link).
type Item struct {
	ID       string   `json:"id,omitempty"`
	Text     string   `json:"text"`
	Estimate *float64 `json:"estimate,omitempty"`
	Source   string   `json:"source,omitempty"`
}

// VerifyJob represents a text verification job
type VerifyJob struct {
	Index    int
	Item     Item
	Verifier Verifier
}

// Execute executes the verification job
func (j *VerifyJob) Execute(ctx context.Context) Result {
	report, err := j.Verifier.Verify(ctx, j.Item.Text, j.Item.Estimate)
	return &VerifyResult{
		Index:  j.Index,
		Item:   j.Item,
		Report: report,
		Error:  err,
	}
}

// VerifyResult represents the result of a verification job
type VerifyResult struct {
	Index  int                       `json:"index"`
	Item   Item                      `json:"item"`
	Report *model.VerificationReport `json:"report,omitempty"`
	Error  error                     `json:"-"`
}

// GetError returns the error from the verification result
func (r *VerifyResult) GetError() error {
	return r.Error
}

// MarshalJSON adds the error message
func (r *VerifyResult) MarshalJSON() ([]byte, error) {
	type alias VerifyResult
	out := struct {
		*alias
		Error string `json:"error,omitempty"`
	}{alias: (*alias)(r)}
	if r.Error != nil {
		out.Error = r.Error.Error()
	}
	return json.Marshal(out)
}

// BatchProcessor verifies many texts concurrently
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
	progress    ProgressFunc
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// OnProgress registers a callback run after every finished item
func (b *BatchProcessor) OnProgress(fn ProgressFunc) {
	b.progress = fn
}

// ProcessItems verifies items concurrently and returns results in input order
func (b *BatchProcessor) ProcessItems(ctx context.Context, items []Item) []*VerifyResult {
	if len(items) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(b.concurrency)
	pool.OnProgress(b.progress)
	pool.Start(ctx)

	submitted := 0
	for i, item := range items {
		if !pool.Submit(&VerifyJob{Index: i, Item: item, Verifier: b.verifier}) {
			break
		}
		submitted++
	}

	results := pool.Wait()

	out := make([]*VerifyResult, 0, len(items))
	for _, result := range results {
		out = append(out, result.(*VerifyResult))
	}

	// Items never submitted because ctx was cancelled
	for i := submitted; i < len(items); i++ {
		out = append(out, &VerifyResult{Index: i, Item: items[i], Error: ctx.Err()})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ProcessFile reads items from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerifyResult, error) {
	items, err := ReadItemsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	return b.ProcessItems(ctx, items), nil
}

// ReadItemsFromFile reads items from a file, "-" reading stdin
func ReadItemsFromFile(filePath string) ([]Item, error) {
	if filePath == "-" {
		return ReadItems(os.Stdin, "stdin")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadItems(file, filePath)
}

// ReadItems reads one text per line, or one JSON object
// {"id", "text", "estimate"} per line. Blank lines and # comments are
// skipped and repeated items are dropped.
func ReadItems(r io.Reader, name string) ([]Item, error) {
	var items []Item
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		item := Item{Text: line}
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), &item); err != nil {
				return nil, fmt.Errorf("%s:%d: decode item: %w", name, lineNo, err)
			}
			if item.Estimate != nil && (*item.Estimate < 0 || *item.Estimate > 1) {
				return nil, fmt.Errorf("%s:%d: estimate %v outside [0, 1]", name, lineNo, *item.Estimate)
			}
		}
		item.Source = name + ":" + strconv.Itoa(lineNo)

		key := dedupeKey(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}

func dedupeKey(item Item) string {
	if item.Estimate == nil {
		return item.Text
	}
	return item.Text + "\x00" + strconv.FormatFloat(*item.Estimate, 'g', -1, 64)
}
