package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/worker"
)

const footer = "_Generated by veracity. Scores are heuristic signals, not a substitute for editorial fact-checking._\n"

// Renderer writes reports as JSON, Markdown and terminal summaries
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new Renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes v as indented JSON to path; "-" writes to stdout
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeOutput(path, append(data, '\n'))
}

// WriteJSON writes v as indented JSON to w
func (r *Renderer) WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderMarkdown writes the Markdown form of a report to path
func (r *Renderer) RenderMarkdown(report *model.VerificationReport, path string) error {
	return writeOutput(path, []byte(r.Markdown(report)))
}

// RenderArticleMarkdown writes the Markdown form of an article report to path
func (r *Renderer) RenderArticleMarkdown(article *model.ArticleReport, path string) error {
	return writeOutput(path, []byte(r.ArticleMarkdown(article)))
}

// RenderBatchMarkdown writes the Markdown form of batch results to path
func (r *Renderer) RenderBatchMarkdown(results []*worker.VerifyResult, summary worker.Summary, path string) error {
	return writeOutput(path, []byte(r.BatchMarkdown(results, summary)))
}

// Markdown renders a single report
func (r *Renderer) Markdown(report *model.VerificationReport) string {
	var b strings.Builder
	b.WriteString("# Verification Report\n\n")
	r.writeReport(&b, report, "##")
	r.writeFooter(&b)
	return b.String()
}

// ArticleMarkdown renders an article report
func (r *Renderer) ArticleMarkdown(article *model.ArticleReport) string {
	var b strings.Builder
	title := article.Title
	if title == "" {
		title = article.URL
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **URL:** %s\n", article.URL)
	fmt.Fprintf(&b, "- **Adapter:** %s\n", article.Adapter)
	fmt.Fprintf(&b, "- **HTTP status:** %d\n", article.FetchMeta.StatusCode)
	if article.FetchMeta.LastModified != "" {
		fmt.Fprintf(&b, "- **Last-Modified:** %s\n", article.FetchMeta.LastModified)
	}
	fmt.Fprintf(&b, "- **Text:** %d bytes\n\n", article.TextBytes)
	r.writeReport(&b, article.Report, "##")
	r.writeFooter(&b)
	return b.String()
}

// BatchMarkdown renders the summary table and one section per item
func (r *Renderer) BatchMarkdown(results []*worker.VerifyResult, summary worker.Summary) string {
	var b strings.Builder
	b.WriteString("# Batch Verification Report\n\n")

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Items:** %d (%d verified, %d failed)\n", summary.Total, summary.Verified, summary.Failed)
	for _, v := range []model.Verdict{model.VerdictFake, model.VerdictUncertain, model.VerdictReal} {
		fmt.Fprintf(&b, "- **%s:** %d\n", v, summary.Verdicts[v])
	}
	if summary.Verified > 0 {
		fmt.Fprintf(&b, "- **Fake probability:** mean %.2f, median %.2f, p90 %.2f, stddev %.2f\n",
			summary.MeanFakeProbability, summary.MedianFakeProbability,
			summary.P90FakeProbability, summary.StdDevFakeProbability)
		fmt.Fprintf(&b, "- **Mean confidence:** %.2f\n", summary.MeanConfidence)
		fmt.Fprintf(&b, "- **Aggregate score:** mean %.2f, min %.2f\n", summary.MeanAggregateScore, summary.MinAggregateScore)
	}
	b.WriteString("\n")

	b.WriteString("| # | Source | Verdict | Fake probability | Confidence | Issues |\n")
	b.WriteString("|---|--------|---------|------------------|------------|--------|\n")
	for _, res := range results {
		if res.Report == nil {
			msg := "no report"
			if res.Error != nil {
				msg = res.Error.Error()
			}
			fmt.Fprintf(&b, "| %d | %s | ERROR | - | - | %s |\n", res.Index+1, tableCell(res.Item.Source), tableCell(msg))
			continue
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %.2f | %.2f | %d |\n", res.Index+1, tableCell(res.Item.Source),
			res.Report.Verdict, res.Report.FakeProbability, res.Report.Confidence, len(res.Report.AllIssues))
	}
	b.WriteString("\n")

	for _, res := range results {
		if res.Report == nil {
			continue
		}
		label := res.Item.ID
		if label == "" {
			label = res.Item.Source
		}
		fmt.Fprintf(&b, "## %d. %s\n\n", res.Index+1, label)
		fmt.Fprintf(&b, "> %s\n\n", excerpt(res.Item.Text, 200))
		r.writeReport(&b, res.Report, "###")
	}

	r.writeFooter(&b)
	return b.String()
}

// RenderSummary prints a short terminal summary of a report
func (r *Renderer) RenderSummary(w io.Writer, report *model.VerificationReport) {
	fmt.Fprintf(w, "\nVerdict: %s\n", report.Verdict)
	fmt.Fprintf(w, "Fake probability: %.2f  Confidence: %.2f  (%s)\n", report.FakeProbability, report.Confidence, report.Mode)
	fmt.Fprintf(w, "Aggregate score: %+.2f  Multiplier: %.3f\n", report.AggregateScore, report.CombinedConfidenceMultiplier)
	for _, c := range report.Components() {
		fmt.Fprintf(w, "  %-12s %+6.2f  %s\n", c.Component, c.TotalScore, c.Level)
	}
	if len(report.AllIssues) > 0 {
		fmt.Fprintf(w, "Issues (%d):\n", len(report.AllIssues))
		for _, issue := range report.AllIssues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}
}

// RenderBatchSummary prints a short terminal summary of a batch
func (r *Renderer) RenderBatchSummary(w io.Writer, summary worker.Summary) {
	fmt.Fprintf(w, "\nItems: %d  Verified: %d  Failed: %d\n", summary.Total, summary.Verified, summary.Failed)
	fmt.Fprintf(w, "FAKE: %d  UNCERTAIN: %d  REAL: %d\n",
		summary.Verdicts[model.VerdictFake], summary.Verdicts[model.VerdictUncertain], summary.Verdicts[model.VerdictReal])
	if summary.Verified > 0 {
		fmt.Fprintf(w, "Fake probability: mean %.2f  median %.2f  p90 %.2f\n",
			summary.MeanFakeProbability, summary.MedianFakeProbability, summary.P90FakeProbability)
	}
}

func (r *Renderer) writeReport(b *strings.Builder, report *model.VerificationReport, heading string) {
	fmt.Fprintf(b, "**Verdict: %s**\n\n", report.Verdict)
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(b, "| Fake probability | %.2f |\n", report.FakeProbability)
	fmt.Fprintf(b, "| Confidence | %.2f |\n", report.Confidence)
	fmt.Fprintf(b, "| Aggregate score | %+.2f |\n", report.AggregateScore)
	fmt.Fprintf(b, "| Confidence multiplier | %.3f |\n", report.CombinedConfidenceMultiplier)
	fmt.Fprintf(b, "| Mode | %s |\n", report.Mode)
	if report.ExternalEstimate != nil {
		fmt.Fprintf(b, "| External estimate | %.2f |\n", *report.ExternalEstimate)
	}
	fmt.Fprintf(b, "| Reference date | %s |\n", report.ReferenceDate)
	if report.KnowledgeVersion != "" {
		fmt.Fprintf(b, "| Knowledge version | %s |\n", report.KnowledgeVersion)
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "%s Components\n\n", heading)
	b.WriteString("| Component | Score | Level | Multiplier | Findings |\n")
	b.WriteString("|-----------|-------|-------|------------|----------|\n")
	for _, c := range report.Components() {
		fmt.Fprintf(b, "| %s | %+.2f | %s | %.2f | %d |\n", c.Component, c.TotalScore, c.Level, c.ConfidenceMultiplier, len(c.Findings))
	}
	b.WriteString("\n")

	// phrase-table hits get their own section
	var findings, phrases []model.Finding
	for _, c := range report.Components() {
		for _, f := range c.Findings {
			if f.Category.IsPhraseCategory() {
				phrases = append(phrases, f)
			} else {
				findings = append(findings, f)
			}
		}
	}
	writeFindings(b, heading+" Findings", findings)
	writeFindings(b, heading+" Phrase Matches", phrases)

	if len(report.FactCheck.Checks) > 0 {
		fmt.Fprintf(b, "%s Fact Checks (%s)\n\n", heading, report.FactCheck.Status)
		for _, c := range report.FactCheck.Checks {
			fmt.Fprintf(b, "- **%s** (%s): %s", c.Topic, c.Status, c.Detail)
			if c.Source.URL != "" {
				fmt.Fprintf(b, " [%s](%s)", c.Source.Name, c.Source.URL)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func writeFindings(b *strings.Builder, title string, findings []model.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n\n", title)
	for _, f := range findings {
		fmt.Fprintf(b, "- `%s` %+.1f %s\n", f.Category, f.ScoreDelta, f.Detail)
	}
	b.WriteString("\n")
}

func (r *Renderer) writeFooter(b *strings.Builder) {
	if r.includeFooter {
		b.WriteString("---\n")
		b.WriteString(footer)
	}
}

// writeOutput writes data to path, creating parent directories; "-" is stdout
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func tableCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", "\\|"), "\n", " ")
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
