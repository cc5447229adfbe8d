package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/veracity/internal/logger"
	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
	batchJSON    string
	batchMD      string
	batchQuiet   bool
)

// BatchReport is the JSON document written by batch and feed
type BatchReport struct {
	ID      string                 `json:"id"`
	Input   string                 `json:"input"`
	Results []*worker.VerifyResult `json:"results"`
	Summary worker.Summary         `json:"summary"`
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many texts from a file in parallel",
	Long: `Batch verifies every text in a file concurrently:
- plain text: one text per line
- JSONL: one {"id": ..., "text": ..., "estimate": ...} object per line
- blank lines and lines starting with # are skipped, duplicates dropped

Results keep input order. A summary with verdict counts and fake
probability statistics is printed at the end.

Example:
  veracity batch headlines.txt
  veracity batch items.jsonl --concurrency 8 --json results.json --md results.md
  cat headlines.txt | veracity batch -`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchJSON, "json", "", "write JSON results to path")
	batchCmd.Flags().StringVar(&batchMD, "md", "", "write Markdown results to path")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVarP(&batchQuiet, "quiet", "q", false, "do not print per-item results")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	batchID := uuid.NewString()
	ctx = logger.WithBatch(ctx, batchID)

	// 1. Read items
	items, err := worker.ReadItemsFromFile(file)
	if err != nil {
		return fmt.Errorf("read items: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d items from %s\n", len(items), file)
	fmt.Fprintf(os.Stderr, "⚙️  Verifying with %d workers...\n", cfg.Concurrency.Workers)

	// 2. Verify
	p, err := newPipeline(cfg, nil)
	if err != nil {
		return err
	}
	results := p.VerifyBatch(ctx, items, progressPrinter(len(items)))
	fmt.Fprintln(os.Stderr)

	return reportBatch(cmd, cfg.Output.IncludeFooter, &BatchReport{
		ID:      batchID,
		Input:   file,
		Results: results,
		Summary: worker.Summarize(results),
	}, batchJSON, batchMD, batchQuiet)
}

// progressPrinter prints a running count on stderr
func progressPrinter(total int) worker.ProgressFunc {
	return func(done, failed int) {
		fmt.Fprintf(os.Stderr, "\r  %d/%d done, %d failed", done, total, failed)
	}
}

// reportBatch prints per-item lines and the summary, and writes files
func reportBatch(cmd *cobra.Command, includeFooter bool, report *BatchReport, jsonPath, mdPath string, quiet bool) error {
	renderer := pipeline.NewRenderer(includeFooter)
	out := cmd.OutOrStdout()

	if !quiet {
		for _, res := range report.Results {
			if res.Report == nil {
				fmt.Fprintf(out, "✗ %s: %v\n", res.Item.Source, res.Error)
				continue
			}
			fmt.Fprintf(out, "%-9s %.2f  %s\n", res.Report.Verdict, res.Report.FakeProbability, res.Item.Source)
		}
	}
	renderer.RenderBatchSummary(out, report.Summary)

	if jsonPath != "" {
		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ JSON results: %s\n", jsonPath)
	}
	if mdPath != "" {
		if err := renderer.RenderBatchMarkdown(report.Results, report.Summary, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown results: %s\n", mdPath)
	}
	return nil
}
