package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/veracity/internal/worker"
)

var (
	feedLimit   int
	feedTimeout time.Duration
	feedJSON    string
	feedMD      string
)

// feedCmd represents the feed command
var feedCmd = &cobra.Command{
	Use:   "feed <url>",
	Short: "Verify every entry of an RSS or Atom feed",
	Long: `Feed fetches an RSS or Atom feed and verifies each entry (title and
description) on the worker pool.

Example:
  veracity feed https://example.com/rss.xml
  veracity feed https://example.com/atom.xml --limit 20 --md feed.md`,
	Args: cobra.ExactArgs(1),
	RunE: runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().IntVar(&feedLimit, "limit", 50, "maximum entries to verify (0 for all)")
	feedCmd.Flags().DurationVar(&feedTimeout, "timeout", 5*time.Minute, "total timeout")
	feedCmd.Flags().StringVar(&feedJSON, "json", "", "write JSON results to path")
	feedCmd.Flags().StringVar(&feedMD, "md", "", "write Markdown results to path")
	feedCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runFeed(cmd *cobra.Command, args []string) error {
	feedURL := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	p, err := newPipeline(cfg, nil)
	if err != nil {
		return err
	}

	var progress worker.ProgressFunc
	if verbose {
		progress = func(done, failed int) {
			fmt.Fprintf(os.Stderr, "\r  %d done, %d failed", done, failed)
		}
	}

	feed, err := p.VerifyFeed(ctx, feedURL, feedLimit, progress)
	if err != nil {
		return fmt.Errorf("feed failed: %w", err)
	}
	if feed.Title != "" {
		fmt.Fprintf(os.Stderr, "✓ %s: %d entries\n", feed.Title, len(feed.Results))
	}

	return reportBatch(cmd, cfg.Output.IncludeFooter, &BatchReport{
		ID:      uuid.NewString(),
		Input:   feedURL,
		Results: feed.Results,
		Summary: feed.Summary,
	}, feedJSON, feedMD, false)
}
