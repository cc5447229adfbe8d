package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/veracity/internal/estimate"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/pipeline"
)

// ErrFakeVerdict is returned by --fail-on-fake when the verdict is FAKE
var ErrFakeVerdict = errors.New("verdict: FAKE")

var (
	verifyFile       string
	verifyURL        string
	verifyEstimate   float64
	verifyFormat     string
	outJSON          string
	outMD            string
	verifyTimeout    time.Duration
	verifyFailOnFake bool
	noFooter         bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [text...]",
	Short: "Verify a text, a file or a web article",
	Long: `Verify scores one text and explains the score:
- consistency: contradictions, impossible numbers, impossible dates
- fact check: agreement with the fact table, impossible-claim phrases
- tone: emotional and stylistic manipulation

The text comes from the arguments, --file, --url, or standard input.

Example:
  veracity verify "Scientists reveal 200% effective miracle cure!"
  veracity verify --file article.txt --md report.md
  veracity verify --url https://en.wikipedia.org/wiki/Mount_Everest --json report.json
  echo "COVID-19 started in 2015" | veracity verify --estimate 0.7 --format json`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Input flags
	verifyCmd.Flags().StringVarP(&verifyFile, "file", "f", "", "read text from file (- for stdin)")
	verifyCmd.Flags().StringVarP(&verifyURL, "url", "u", "", "fetch and verify a web article")
	verifyCmd.Flags().Float64Var(&verifyEstimate, "estimate", 0, "external fake probability in [0, 1] to fuse")

	// Output flags
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "", "stdout format: text, json, markdown (default: output.format)")
	verifyCmd.Flags().StringVar(&outJSON, "json", "", "write JSON report to path")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "write Markdown report to path")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	verifyCmd.Flags().BoolVar(&verifyFailOnFake, "fail-on-fake", false, "exit non-zero when the verdict is FAKE")

	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	format := verifyFormat
	if format == "" {
		format = cfg.Output.Format
	}

	var override estimate.Estimator
	if cmd.Flags().Changed("estimate") {
		static, err := estimate.NewStatic(verifyEstimate)
		if err != nil {
			return fmt.Errorf("--estimate: %w", err)
		}
		override = static
	}

	p, err := newPipeline(cfg, override)
	if err != nil {
		return err
	}
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	// 1. Web article
	if verifyURL != "" {
		if len(args) > 0 || verifyFile != "" {
			return fmt.Errorf("--url cannot be combined with text or --file")
		}
		article, err := p.VerifyURL(ctx, verifyURL)
		if err != nil {
			return fmt.Errorf("verify failed: %w", err)
		}
		if err := writeFiles(renderer, article, outJSON, outMD, func(path string) error {
			return renderer.RenderArticleMarkdown(article, path)
		}); err != nil {
			return err
		}
		if err := printReport(cmd.OutOrStdout(), renderer, format, article, renderer.ArticleMarkdown(article), article.Report); err != nil {
			return err
		}
		return verdictError(article.Report)
	}

	// 2. Text
	text, err := readInput(cmd.InOrStdin(), args, verifyFile)
	if err != nil {
		return err
	}
	report, err := p.Verify(ctx, text, nil)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	if err := writeFiles(renderer, report, outJSON, outMD, func(path string) error {
		return renderer.RenderMarkdown(report, path)
	}); err != nil {
		return err
	}
	if err := printReport(cmd.OutOrStdout(), renderer, format, report, renderer.Markdown(report), report); err != nil {
		return err
	}
	return verdictError(report)
}

// readInput returns the text from args, a file, or piped stdin
func readInput(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case len(args) > 0 && file != "":
		return "", fmt.Errorf("text arguments cannot be combined with --file")
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file == "-":
		return readAll(stdin, "stdin")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}

	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no input: pass text, --file, --url, or pipe text on stdin")
		}
	}
	return readAll(stdin, "stdin")
}

func readAll(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

// writeFiles writes the JSON and Markdown report files that were asked for
func writeFiles(renderer *pipeline.Renderer, v any, jsonPath, mdPath string, renderMD func(string) error) error {
	if jsonPath != "" {
		if err := renderer.RenderJSON(v, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ JSON report: %s\n", jsonPath)
	}
	if mdPath != "" {
		if err := renderMD(mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown report: %s\n", mdPath)
	}
	return nil
}

// printReport writes the report to stdout in format
func printReport(w io.Writer, renderer *pipeline.Renderer, format string, v any, markdown string, report *model.VerificationReport) error {
	switch strings.ToLower(format) {
	case "json":
		return renderer.WriteJSON(w, v)
	case "markdown", "md":
		_, err := io.WriteString(w, markdown)
		return err
	case "text", "":
		renderer.RenderSummary(w, report)
		return nil
	default:
		return fmt.Errorf("unknown format %q (supported: text, json, markdown)", format)
	}
}

func verdictError(report *model.VerificationReport) error {
	if verifyFailOnFake && report.Verdict == model.VerdictFake {
		return ErrFakeVerdict
	}
	return nil
}
