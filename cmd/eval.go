package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zhang-3000/meituan/internal/config"
	"github.com/zhang-3000/meituan/internal/eval"
	"github.com/zhang-3000/meituan/internal/journal"
	"github.com/zhang-3000/meituan/internal/llm"
	"github.com/zhang-3000/meituan/internal/observability"
	"github.com/zhang-3000/meituan/internal/oracle"
	"github.com/zhang-3000/meituan/internal/retry"
)

var (
	evalVerbose  bool
	evalSaveJSON string
	evalSaveYAML string
)

var evalCmd = &cobra.Command{
	Use:   "eval [input-table]",
	Short: "Evaluate predicted FAB attributes against labels",
	Long: `Run the two evaluation stages over an xlsx or csv table with the columns
category, F, A, B, pred_F, pred_A, pred_B.

The output table (input columns plus llm_judge_results, llm_call_count,
precision_error, recall_error, classification_error) and a text report
are written to <output-dir>/<output-prefix>_<timestamp>.

Example:
  fabeval eval data/3_hangye.xlsx
  fabeval eval results/evaluation/fab_evaluation_20260106_140509.xlsx --skip-oracle
  fabeval eval data.xlsx --segments 台球,健身中心 --journal run.db --model judge`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	flags := evalCmd.Flags()
	flags.String("output-dir", "", "Output directory (default results/evaluation)")
	flags.String("output-prefix", "", "Output file prefix (default fab_evaluation)")
	flags.String("output-format", "", "Output table format: xlsx or csv")
	flags.StringSlice("segments", nil, "Tracked segments, in report order")
	flags.Bool("skip-oracle", false, "Score from the llm_judge_results column without calling the model")
	flags.String("journal", "", "SQLite journal used to resume an interrupted oracle stage")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	flags.StringP("model", "m", "", "Oracle model: a named selection or provider/model")
	flags.Duration("interval", 0, "Minimum spacing between model calls")
	flags.Int("max-attempts", 0, "Attempts per consultation")
	flags.String("prompt-file", "", "Judge prompt template overriding the built-in one")
	flags.BoolVarP(&evalVerbose, "verbose", "v", false, "Verbose output")
	flags.StringVar(&evalSaveJSON, "save-json", "", "Save the summary as JSON to the specified file")
	flags.StringVar(&evalSaveYAML, "save-yaml", "", "Save the summary as YAML to the specified file")

	for key, flag := range map[string]string{
		"output.dir":          "output-dir",
		"output.prefix":       "output-prefix",
		"output.format":       "output-format",
		"segments":            "segments",
		"skip_oracle":         "skip-oracle",
		"journal":             "journal",
		"metrics_file":        "metrics-file",
		"oracle.model":        "model",
		"oracle.interval":     "interval",
		"oracle.max_attempts": "max-attempts",
		"oracle.prompt_file":  "prompt-file",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		viper.Set("input", args[0])
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)

	table, err := eval.LoadTable(cfg.Input)
	if err != nil {
		return err
	}
	logger.Info().Str("input", cfg.Input).Int("rows", table.Len()).Msg("Loaded input table")

	metrics := observability.NewMetrics()

	runnerOpts := []eval.RunnerOption{
		eval.WithSegments(cfg.Segments),
		eval.WithSkipOracle(cfg.SkipOracle),
		eval.WithLogger(&logger),
		eval.WithMetrics(metrics),
	}

	var consultant eval.Consulter
	if !cfg.SkipOracle {
		c, err := newConsultant(cfg, metrics, &logger)
		if err != nil {
			return err
		}
		consultant = c
	}

	if cfg.Journal != "" && !cfg.SkipOracle {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return err
		}
		defer j.Close()
		runnerOpts = append(runnerOpts, eval.WithJournal(j))
	}

	runner := eval.NewRunner(consultant, runnerOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx, table)
	if err != nil {
		if errors.Is(err, context.Canceled) && cfg.Journal != "" {
			logger.Warn().Str("journal", cfg.Journal).Msg("Interrupted, rerun with the same journal to resume")
		}
		return fmt.Errorf("evaluation failed: %w", err)
	}
	result.Input = cfg.Input

	tablePath, reportPath := eval.OutputPaths(cfg.Output.Dir, cfg.Output.Prefix, cfg.Output.Format, result.ExecutedAt)
	if err := table.Save(tablePath); err != nil {
		return fmt.Errorf("failed to save output table: %w", err)
	}

	reporter := eval.NewReporter(evalVerbose)
	if err := reporter.SaveText(result, reportPath); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	reporter.Report(result)
	fmt.Printf("\nResults table: %s\n", tablePath)
	fmt.Printf("Report: %s\n", reportPath)

	if evalSaveJSON != "" {
		if err := reporter.SaveJSON(result, evalSaveJSON); err != nil {
			return fmt.Errorf("failed to save JSON results: %w", err)
		}
		fmt.Printf("Summary saved to: %s\n", evalSaveJSON)
	}

	if evalSaveYAML != "" {
		if err := reporter.SaveYAML(result, evalSaveYAML); err != nil {
			return fmt.Errorf("failed to save YAML results: %w", err)
		}
		fmt.Printf("Summary saved to: %s\n", evalSaveYAML)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
	}

	return nil
}

func newConsultant(cfg *config.Config, metrics *observability.Metrics, logger *zerolog.Logger) (*oracle.Consultant, error) {
	llmCfg, err := cfg.OracleLLM()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve oracle model: %w", err)
	}

	client, err := llm.NewClient(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	prompt, err := oracle.LoadPrompt(cfg.Oracle.PromptFile)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("provider", llmCfg.Provider).
		Str("model", client.Model()).
		Dur("interval", cfg.Oracle.Interval).
		Int("max_attempts", cfg.Oracle.MaxAttempts).
		Msg("Oracle configured")

	return oracle.New(client,
		oracle.WithInterval(cfg.Oracle.Interval),
		oracle.WithPolicy(retry.Policy{
			MaxAttempts:   cfg.Oracle.MaxAttempts,
			Wait:          cfg.Oracle.ErrorWait,
			ThrottledWait: cfg.Oracle.RateLimitWait,
			IsThrottled:   llm.IsRateLimited,
		}),
		oracle.WithPrompt(prompt),
		oracle.WithLogger(logger),
		oracle.WithMetrics(metrics),
	), nil
}
