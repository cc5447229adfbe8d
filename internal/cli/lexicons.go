package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/veracity/internal/lexicon"
)

// lexiconsCmd represents the lexicons command
var lexiconsCmd = &cobra.Command{
	Use:   "lexicons",
	Short: "List the enabled lexicons",
	Long: `List the language lexicons the analyzers use. Lexicons are embedded;
YAML files in --lexicon-dir replace the embedded lexicon of the same
language or add a new one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		set, err := lexicon.Load(cfg.Lexicon.Dir, cfg.Lexicon.Languages)
		if err != nil {
			return fmt.Errorf("load lexicons: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tNAME\tREVISION\tPAIRS\tPHRASE GROUPS")
		for _, l := range set.Lexicons() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", l.Language, l.Name, l.Revision, len(l.Contradictions), len(l.Phrases))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nVersion: %s\n", set.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lexiconsCmd)
}
