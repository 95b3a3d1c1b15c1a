package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhang-3000/meituan/internal/eval"
)

var errReportsDiffer = errors.New("reports differ")

var compareCmd = &cobra.Command{
	Use:   "compare [report-a] [report-b]",
	Short: "Compare two evaluation reports",
	Long: `Compare two text reports or JSON/YAML summaries line by line, ignoring
run IDs and timestamps. Exits non-zero when the metrics differ, which makes
it usable to check that rescoring with --skip-oracle reproduces a run.

Example:
  fabeval compare results/evaluation/a.txt results/evaluation/b.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	diff, err := eval.NewDiffGenerator().CompareFiles(args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), diff.Text)
	if !diff.Equal {
		return errReportsDiffer
	}
	return nil
}
