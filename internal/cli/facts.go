package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/veracity/internal/knowledge"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/validate"
)

var (
	checkTimeout time.Duration
	checkJSON    string
	checkWorkers int
)

// factsCmd represents the facts command
var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Inspect and check the fact table",
	Long: `Inspect the fact table used by the fact checker.

The embedded table is used unless --facts (or knowledge.path) names a YAML
document with the same schema.`,
}

var factsInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show fact table metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		info := table.Info()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Source:          %s\n", info.Source)
		fmt.Fprintf(out, "Version:         %s\n", info.Version)
		fmt.Fprintf(out, "Reference date:  %s\n", info.ReferenceDate)
		fmt.Fprintf(out, "Facts:           %d\n", info.Facts)
		return nil
	},
}

var factsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List fact records",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tTOPIC\tKEYWORDS")
		for _, rec := range table.Records() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.ID, rec.ClaimType, rec.Topic, strings.Join(rec.Keywords, ", "))
		}
		return w.Flush()
	},
}

var factsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one fact record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		rec, ok := table.Get(args[0])
		if !ok {
			return fmt.Errorf("no fact record %q", args[0])
		}
		data, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var factsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that fact sources are still reachable",
	Long: `Check sends a HEAD request to every source URL cited by the fact table
and reports dead, stale (older than a year) and redirected sources together
with their authority tier.`,
	RunE: runFactsCheck,
}

func init() {
	rootCmd.AddCommand(factsCmd)
	factsCmd.AddCommand(factsInfoCmd)
	factsCmd.AddCommand(factsListCmd)
	factsCmd.AddCommand(factsShowCmd)
	factsCmd.AddCommand(factsCheckCmd)

	factsCheckCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout")
	factsCheckCmd.Flags().StringVar(&checkJSON, "json", "", "write JSON results to path")
	factsCheckCmd.Flags().IntVar(&checkWorkers, "concurrency", 8, "number of concurrent checks")
}

// loadTable loads the configured table, failing on errors the verify path
// would only warn about
func loadTable() (*knowledge.Table, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	table, err := knowledge.Load(cfg.Knowledge.Path)
	if err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}
	return table, nil
}

func runFactsCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := knowledge.Load(cfg.Knowledge.Path)
	if err != nil {
		return fmt.Errorf("load facts: %w", err)
	}

	checker := validate.NewSourceChecker(cfg.HTTP, checkWorkers, &cfg.Authority)
	results := checker.Check(ctx, table.Records())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FACT\tSTATUS\tHTTP\tAUTHORITY\tURL")
	dead := 0
	for _, r := range results {
		if r.IsDead {
			dead++
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.FactID, sourceStatus(r), r.StatusCode, r.Authority, r.URL)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d sources, %d dead\n", len(results), dead)

	if checkJSON != "" {
		if err := pipeline.NewRenderer(false).RenderJSON(results, checkJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ JSON results: %s\n", checkJSON)
	}
	return nil
}

func sourceStatus(r model.SourceCheck) string {
	switch {
	case r.IsDead:
		return "dead"
	case !r.IsAccessible && r.Error != "":
		return "error"
	case !r.IsAccessible:
		return "unavailable"
	case r.IsStale:
		return "stale"
	case r.RedirectURL != "":
		return "redirected"
	default:
		return "ok"
	}
}
