package eval

import (
	"time"

	"github.com/zhang-3000/meituan/internal/attr"
	"github.com/zhang-3000/meituan/internal/score"
)

// Column names of the evaluation table.
const (
	ColumnSegment    = "category"
	ColumnLabelF     = "F"
	ColumnLabelA     = "A"
	ColumnLabelB     = "B"
	ColumnPredictedF = "pred_F"
	ColumnPredictedA = "pred_A"
	ColumnPredictedB = "pred_B"

	ColumnConsultations        = "llm_judge_results"
	ColumnCalls                = "llm_call_count"
	ColumnPrecisionErrors      = "precision_error"
	ColumnRecallErrors         = "recall_error"
	ColumnClassificationErrors = "classification_error"
)

// InputColumns must be present in every input table.
var InputColumns = []string{
	ColumnSegment,
	ColumnLabelF, ColumnLabelA, ColumnLabelB,
	ColumnPredictedF, ColumnPredictedA, ColumnPredictedB,
}

// Record is one parsed row of the table.
type Record struct {
	Row       int
	Segment   string
	Label     attr.Attributes
	Predicted attr.Attributes
	// Cells holds the raw input cells in InputColumns order.
	Cells []string
}

// Empty reports whether neither side has any attribute.
func (r Record) Empty() bool {
	return r.Label.Empty() && r.Predicted.Empty()
}

// Result is the outcome of one evaluation run.
type Result struct {
	RunID      string
	Input      string
	ExecutedAt time.Time
	Duration   time.Duration
	// Rows is the number of data rows in the table; Tracked the number
	// whose segment is in the allow-list.
	Rows    int
	Tracked int
	// OracleCalls sums the llm_call_count column: consultations made by
	// this run plus RestoredCalls. Restored counts rows whose
	// consultations came from the journal.
	OracleCalls   int
	Restored      int
	RestoredCalls int
	// LoggedConsultations is the number of consultations read back while
	// scoring.
	LoggedConsultations int
	SkippedOracle       bool
	Total               score.Counters
	Segments            []score.SegmentStats
}
