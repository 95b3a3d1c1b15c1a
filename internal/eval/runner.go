package eval

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/zhang-3000/meituan/internal/attr"
	"github.com/zhang-3000/meituan/internal/config"
	"github.com/zhang-3000/meituan/internal/consult"
	"github.com/zhang-3000/meituan/internal/journal"
	"github.com/zhang-3000/meituan/internal/observability"
	"github.com/zhang-3000/meituan/internal/oracle"
	"github.com/zhang-3000/meituan/internal/score"
	"github.com/zhang-3000/meituan/internal/sheet"
)

// ErrNoConsultations is returned when the consulting stage is skipped but
// the table carries no consultation log.
var ErrNoConsultations = errors.New("table has no " + ColumnConsultations + " column")

// Consulter answers equivalence questions. *oracle.Consultant implements
// it.
type Consulter interface {
	Consult(ctx context.Context, candidate string, comparison []string) oracle.Verdict
}

// Checkpointer stores the consultation log of finished rows.
// *journal.Journal implements it.
type Checkpointer interface {
	Lookup(ctx context.Context, row int, fingerprint string) (journal.Entry, bool, error)
	Record(ctx context.Context, e journal.Entry) error
}

// Runner evaluates a table in two stages: consult the oracle for every
// value without an exact match, then score every tracked row from the
// logged consultations.
type Runner struct {
	consulter  Consulter
	segments   []string
	skipOracle bool
	journal    Checkpointer
	logger     *zerolog.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewRunner creates a new evaluation runner
func NewRunner(consulter Consulter, opts ...RunnerOption) *Runner {
	nop := zerolog.Nop()
	r := &Runner{
		consulter: consulter,
		segments:  config.DefaultSegments,
		logger:    &nop,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

// WithSegments sets the tracked segments and their report order.
func WithSegments(segments []string) RunnerOption {
	return func(r *Runner) {
		if len(segments) > 0 {
			r.segments = segments
		}
	}
}

// WithSkipOracle scores from the consultation log already in the table.
func WithSkipOracle(skip bool) RunnerOption {
	return func(r *Runner) {
		r.skipOracle = skip
	}
}

// WithJournal restores and records per-row consultations.
func WithJournal(j Checkpointer) RunnerOption {
	return func(r *Runner) {
		r.journal = j
	}
}

func WithLogger(logger *zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *observability.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

func (r *Runner) tracked(segment string) bool {
	return attr.Contains(r.segments, segment)
}

// Run evaluates table in place: the consultation log, call count and
// error trace columns are written into it.
func (r *Runner) Run(ctx context.Context, table *sheet.Table) (*Result, error) {
	if err := table.Require(InputColumns...); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:         ulid.Make().String(),
		ExecutedAt:    r.now(),
		Rows:          table.Len(),
		SkippedOracle: r.skipOracle,
	}
	logger := r.logger.With().Str("run_id", result.RunID).Logger()

	if r.skipOracle {
		if _, ok := table.Column(ColumnConsultations); !ok {
			return nil, ErrNoConsultations
		}
		logger.Info().Msg("Skipping oracle stage, scoring saved consultations")
	} else {
		if err := r.consult(ctx, &logger, table, result); err != nil {
			return result, err
		}
	}

	r.score(&logger, table, result)
	result.Duration = r.now().Sub(result.ExecutedAt)

	logger.Info().
		Int("tracked", result.Tracked).
		Int("oracle_calls", result.OracleCalls).
		Float64("precision", result.Total.Precision()).
		Float64("recall", result.Total.Recall()).
		Float64("f1", result.Total.F1()).
		Float64("classification_accuracy", result.Total.ClassificationAccuracy()).
		Msg("Evaluation finished")

	return result, nil
}

// consult runs the first stage.
func (r *Runner) consult(ctx context.Context, logger *zerolog.Logger, table *sheet.Table, result *Result) error {
	for row := 0; row < table.Len(); row++ {
		table.Set(row, ColumnConsultations, "")
		table.Set(row, ColumnCalls, "0")
	}

	logger.Info().Int("rows", table.Len()).Msg("Consulting oracle")

	for row := 0; row < table.Len(); row++ {
		rec := RecordAt(table, row)
		if !r.tracked(rec.Segment) || rec.Empty() {
			continue
		}

		fingerprint := journal.Fingerprint(rec.Cells...)
		if r.journal != nil {
			entry, ok, err := r.journal.Lookup(ctx, row, fingerprint)
			if err != nil {
				return err
			}
			if ok {
				table.Set(row, ColumnConsultations, entry.Log)
				table.Set(row, ColumnCalls, strconv.Itoa(entry.Calls))
				result.Restored++
				result.RestoredCalls += entry.Calls
				result.OracleCalls += entry.Calls
				logger.Debug().Int("row", row).Str("from_run", entry.RunID).Msg("Restored consultations from journal")
				continue
			}
		}

		log := consult.NewLog()
		for _, q := range score.Plan(rec.Label, rec.Predicted) {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("oracle stage interrupted at row %d: %w", row, err)
			}

			v := r.consulter.Consult(ctx, q.Value, q.Comparison)
			if !v.Answered() && ctx.Err() != nil {
				return fmt.Errorf("oracle stage interrupted at row %d: %w", row, ctx.Err())
			}
			log.Add(q.Origin, q.Value, v)
		}

		table.Set(row, ColumnConsultations, log.String())
		table.Set(row, ColumnCalls, strconv.Itoa(log.Len()))
		result.OracleCalls += log.Len()

		logger.Debug().
			Int("row", row).
			Str("segment", rec.Segment).
			Int("calls", log.Len()).
			Msg("Row consulted")

		if r.journal != nil {
			err := r.journal.Record(ctx, journal.Entry{
				Fingerprint: fingerprint,
				RowIndex:    row,
				RunID:       result.RunID,
				Calls:       log.Len(),
				Log:         log.String(),
				RecordedAt:  r.now(),
			})
			if err != nil {
				return err
			}
		}
	}

	logger.Info().
		Int("oracle_calls", result.OracleCalls).
		Int("restored_rows", result.Restored).
		Msg("Oracle stage finished")

	return nil
}

// score runs the second stage.
func (r *Runner) score(logger *zerolog.Logger, table *sheet.Table, result *Result) {
	acc := score.NewAccumulator(r.segments)

	for row := 0; row < table.Len(); row++ {
		table.Set(row, ColumnPrecisionErrors, "")
		table.Set(row, ColumnRecallErrors, "")
		table.Set(row, ColumnClassificationErrors, "")
	}

	for row := 0; row < table.Len(); row++ {
		rec := RecordAt(table, row)
		if !r.tracked(rec.Segment) {
			continue
		}
		result.Tracked++

		if rec.Empty() {
			acc.Observe(rec.Segment, score.Outcome{Skipped: true})
			r.metrics.ObserveRecord(rec.Segment, true)
			continue
		}

		log, err := consult.Parse(table.Get(row, ColumnConsultations))
		if err != nil {
			logger.Warn().Err(err).Int("row", row).Msg("Unreadable consultation log, scoring without it")
			log = consult.NewLog()
		}
		result.LoggedConsultations += log.Len()

		outcome := score.ScoreRecord(rec.Label, rec.Predicted, log)
		table.Set(row, ColumnPrecisionErrors, strings.Join(outcome.PrecisionErrors, ";"))
		table.Set(row, ColumnRecallErrors, strings.Join(outcome.RecallErrors, ";"))
		table.Set(row, ColumnClassificationErrors, strings.Join(outcome.ClassificationErrors, ";"))

		acc.Observe(rec.Segment, outcome)
		r.metrics.ObserveRecord(rec.Segment, false)

		logger.Debug().
			Int("row", row).
			Str("segment", rec.Segment).
			Int("precision_hits", outcome.Delta.PrecisionHits).
			Int("predicted", outcome.Delta.PrecisionTotal).
			Int("recall_hits", outcome.Delta.RecallHits).
			Int("labeled", outcome.Delta.RecallTotal).
			Msg("Row scored")
	}

	result.Total = acc.Total()
	result.Segments = acc.Segments()
}
