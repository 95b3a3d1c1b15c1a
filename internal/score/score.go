// Package score turns parsed attributes and logged oracle verdicts into
// precision, recall and classification counters.
//
// Predicted values are checked against the label side (precision) and
// labeled values against the predicted side (recall). An exact match in
// either list of the opposite side is a hit; otherwise the logged oracle
// verdict for the value decides. Classification is judged on the
// precision side only: A and B values should be subjective and F values
// objective.
package score

import (
	"github.com/zhang-3000/meituan/internal/attr"
	"github.com/zhang-3000/meituan/internal/consult"
)

// Outcome is the contribution of one record.
type Outcome struct {
	Delta                Counters
	PrecisionErrors      []string
	RecallErrors         []string
	ClassificationErrors []string
	// Skipped is set when both sides of the record are empty.
	Skipped bool
}

// Trace formats a value for the error columns, e.g. "a,轻便".
func Trace(c attr.Category, value string) string {
	return string(c) + "," + value
}

// ScoreRecord scores one record. Values with neither an exact match nor a
// log entry count as unresolved.
func ScoreRecord(label, pred attr.Attributes, log *consult.Log) Outcome {
	if label.Empty() && pred.Empty() {
		return Outcome{Skipped: true}
	}

	out := Outcome{
		PrecisionErrors:      []string{},
		RecallErrors:         []string{},
		ClassificationErrors: []string{},
	}

	labelSubjective, labelObjective := label.Subjective(), label.Objective()
	for _, c := range attr.Categories {
		for _, v := range pred.Values(c) {
			out.scorePredicted(c, v, labelSubjective, labelObjective, log)
		}
	}
	out.Delta.PrecisionTotal = pred.Len()
	out.Delta.ClassTotal = pred.Len()

	predSubjective, predObjective := pred.Subjective(), pred.Objective()
	for _, c := range attr.Categories {
		for _, v := range label.Values(c) {
			out.scoreLabeled(c, v, predSubjective, predObjective, log)
		}
	}
	out.Delta.RecallTotal = label.Len()

	return out
}

func (o *Outcome) scorePredicted(c attr.Category, v string, subjective, objective []string, log *consult.Log) {
	inSubjective := attr.Contains(subjective, v)
	if inSubjective || attr.Contains(objective, v) {
		o.Delta.PrecisionHits++
		o.classify(c, v, inSubjective == c.Subjective())
		return
	}

	verdict, ok := log.Lookup(consult.OriginFor(consult.SidePredicted, c), v)
	if !ok || !verdict.Answered() {
		o.PrecisionErrors = append(o.PrecisionErrors, Trace(c, v))
		return
	}

	j := verdict.Judgment()
	if !j.Equivalent {
		return
	}
	o.Delta.PrecisionHits++
	o.classify(c, v, j.Agrees(c))
}

func (o *Outcome) classify(c attr.Category, v string, correct bool) {
	if correct {
		o.Delta.ClassHits++
		return
	}
	o.ClassificationErrors = append(o.ClassificationErrors, Trace(c, v))
}

func (o *Outcome) scoreLabeled(c attr.Category, v string, subjective, objective []string, log *consult.Log) {
	if attr.Contains(subjective, v) || attr.Contains(objective, v) {
		o.Delta.RecallHits++
		return
	}

	verdict, ok := log.Lookup(consult.OriginFor(consult.SideLabel, c), v)
	if ok && verdict.Answered() && verdict.Judgment().Equivalent {
		o.Delta.RecallHits++
		return
	}
	o.RecallErrors = append(o.RecallErrors, Trace(c, v))
}
