package score

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhang-3000/meituan/internal/attr"
	"github.com/zhang-3000/meituan/internal/consult"
	"github.com/zhang-3000/meituan/internal/oracle"
)

const (
	yesSubjective = `{"judge_1": "是", "judge_2": "主观"}`
	yesObjective  = `{"judge_1": "是", "judge_2": "客观"}`
	noObjective   = `{"judge_1": "否", "judge_2": "客观"}`
)

func answered(raw string) oracle.Verdict {
	return oracle.Verdict{Status: oracle.StatusAnswered, Raw: raw}
}

var unreachable = oracle.Verdict{Status: oracle.StatusUnreachable}

func TestScoreRecord_IdenticalSides(t *testing.T) {
	label := attr.LabelAttributes("材质：棉,颜色：红", "轻便,透气", "耐用")
	pred := attr.PredictedAttributes("材质:棉,颜色:红", "轻便，透气", "耐用")

	assert.Empty(t, Plan(label, pred))

	out := ScoreRecord(label, pred, consult.NewLog())
	assert.Equal(t, Counters{
		PrecisionHits: 5, PrecisionTotal: 5,
		RecallHits: 5, RecallTotal: 5,
		ClassHits: 5, ClassTotal: 5,
	}, out.Delta)
	assert.Equal(t, 1.0, out.Delta.Precision())
	assert.Equal(t, 1.0, out.Delta.Recall())
	assert.Equal(t, 1.0, out.Delta.F1())
	assert.Equal(t, 1.0, out.Delta.ClassificationAccuracy())
	assert.Empty(t, out.PrecisionErrors)
	assert.Empty(t, out.RecallErrors)
	assert.Empty(t, out.ClassificationErrors)
}

func TestScoreRecord_UnreachableOracle(t *testing.T) {
	label := attr.Attributes{A: []string{"结实"}}
	pred := attr.Attributes{A: []string{"耐用"}}

	log := consult.NewLog()
	log.Add(consult.PredictA, "耐用", unreachable)
	log.Add(consult.LabelA, "结实", unreachable)

	out := ScoreRecord(label, pred, log)
	assert.Equal(t, Counters{PrecisionTotal: 1, RecallTotal: 1, ClassTotal: 1}, out.Delta)
	assert.Equal(t, []string{"a,耐用"}, out.PrecisionErrors)
	assert.Equal(t, []string{"a,结实"}, out.RecallErrors)
	assert.Empty(t, out.ClassificationErrors)
}

func TestScoreRecord_MissingLogEntryIsUnresolved(t *testing.T) {
	label := attr.Attributes{B: []string{"结实"}}
	pred := attr.Attributes{B: []string{"耐用"}}

	out := ScoreRecord(label, pred, nil)
	assert.Equal(t, []string{"b,耐用"}, out.PrecisionErrors)
	assert.Equal(t, []string{"b,结实"}, out.RecallErrors)
	assert.Equal(t, 0, out.Delta.PrecisionHits)
}

func TestScoreRecord_ObjectiveMatchedSubjective(t *testing.T) {
	label := attr.Attributes{A: []string{"纯棉"}}
	pred := attr.Attributes{F: []string{"纯棉"}}

	out := ScoreRecord(label, pred, consult.NewLog())
	assert.Equal(t, 1, out.Delta.PrecisionHits)
	assert.Equal(t, 0, out.Delta.ClassHits)
	assert.Equal(t, []string{"f,纯棉"}, out.ClassificationErrors)
	assert.Equal(t, 1, out.Delta.RecallHits)
}

func TestScoreRecord_SubjectiveMatchedObjective(t *testing.T) {
	label := attr.Attributes{F: []string{"红色"}}
	pred := attr.Attributes{B: []string{"红色"}}

	out := ScoreRecord(label, pred, consult.NewLog())
	assert.Equal(t, 1, out.Delta.PrecisionHits)
	assert.Equal(t, []string{"b,红色"}, out.ClassificationErrors)
}

func TestScoreRecord_OraclePath(t *testing.T) {
	label := attr.Attributes{A: []string{"便携"}, F: []string{"全棉"}}
	pred := attr.Attributes{A: []string{"轻便", "好看"}, F: []string{"棉", "大号"}}

	log := consult.NewLog()
	log.Add(consult.PredictA, "轻便", answered(yesSubjective))
	log.Add(consult.PredictA, "好看", answered(noObjective))
	log.Add(consult.PredictF, "棉", answered(yesObjective))
	log.Add(consult.PredictF, "大号", answered(yesSubjective))
	log.Add(consult.LabelA, "便携", answered(yesSubjective))
	log.Add(consult.LabelF, "全棉", answered(noObjective))

	out := ScoreRecord(label, pred, log)
	assert.Equal(t, Counters{
		PrecisionHits: 3, PrecisionTotal: 4,
		RecallHits: 1, RecallTotal: 2,
		ClassHits: 2, ClassTotal: 4,
	}, out.Delta)
	assert.Empty(t, out.PrecisionErrors)
	assert.Equal(t, []string{"f,大号"}, out.ClassificationErrors)
	assert.Equal(t, []string{"f,全棉"}, out.RecallErrors)
}

func TestScoreRecord_UnknownClassIsClassificationError(t *testing.T) {
	label := attr.Attributes{A: []string{"便携"}}
	pred := attr.Attributes{A: []string{"轻便"}}

	log := consult.NewLog()
	log.Add(consult.PredictA, "轻便", answered("是"))

	out := ScoreRecord(label, pred, log)
	assert.Equal(t, 1, out.Delta.PrecisionHits)
	assert.Equal(t, []string{"a,轻便"}, out.ClassificationErrors)
}

func TestScoreRecord_DuplicatesCountTwice(t *testing.T) {
	label := attr.Attributes{A: []string{"轻便"}}
	pred := attr.Attributes{A: []string{"轻便", "轻便"}}

	out := ScoreRecord(label, pred, consult.NewLog())
	assert.Equal(t, 2, out.Delta.PrecisionHits)
	assert.Equal(t, 2, out.Delta.PrecisionTotal)
}

func TestScoreRecord_BothEmptySkipped(t *testing.T) {
	out := ScoreRecord(attr.LabelAttributes("", "nan", "无"), attr.PredictedAttributes("none", " ", ""), nil)
	assert.True(t, out.Skipped)
	assert.Equal(t, Counters{}, out.Delta)
}

func TestScoreRecord_Idempotent(t *testing.T) {
	label := attr.Attributes{A: []string{"便携"}, F: []string{"全棉"}}
	pred := attr.Attributes{A: []string{"轻便"}, F: []string{"棉"}}

	log := consult.NewLog()
	log.Add(consult.PredictA, "轻便", answered(yesSubjective))
	log.Add(consult.PredictF, "棉", unreachable)

	replayed, err := consult.Parse(log.String())
	require.NoError(t, err)

	first := ScoreRecord(label, pred, log)
	second := ScoreRecord(label, pred, replayed)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("replay mismatch (-first +second):\n%s", diff)
	}
}

func TestPlan(t *testing.T) {
	label := attr.Attributes{A: []string{"便携", "耐用"}, B: []string{"好看"}, F: []string{"全棉"}}
	pred := attr.Attributes{A: []string{"轻便", "耐用"}, F: []string{"棉", "棉"}}

	labelComparison := []string{"便携", "耐用", "好看", "全棉"}
	predComparison := []string{"轻便", "耐用", "棉", "棉"}

	want := []Query{
		{Origin: consult.PredictA, Value: "轻便", Comparison: labelComparison},
		{Origin: consult.PredictF, Value: "棉", Comparison: labelComparison},
		{Origin: consult.PredictF, Value: "棉", Comparison: labelComparison},
		{Origin: consult.LabelA, Value: "便携", Comparison: predComparison},
		{Origin: consult.LabelB, Value: "好看", Comparison: predComparison},
		{Origin: consult.LabelF, Value: "全棉", Comparison: predComparison},
	}

	if diff := cmp.Diff(want, Plan(label, pred)); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, Plan(attr.Attributes{}, attr.Attributes{}))
}

func TestCounters_ZeroDenominators(t *testing.T) {
	var c Counters
	assert.Zero(t, c.Precision())
	assert.Zero(t, c.Recall())
	assert.Zero(t, c.F1())
	assert.Zero(t, c.ClassificationAccuracy())

	c = Counters{PrecisionHits: 1, PrecisionTotal: 2, RecallHits: 1, RecallTotal: 4}
	assert.InDelta(t, 1.0/3.0, c.F1(), 1e-9)
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator([]string{"健身中心", "台球", "运动培训"})

	acc.Observe("台球", Outcome{Delta: Counters{PrecisionHits: 1, PrecisionTotal: 2, RecallHits: 1, RecallTotal: 1, ClassHits: 1, ClassTotal: 2}})
	acc.Observe("健身中心", Outcome{Skipped: true})
	acc.Observe("台球", Outcome{Delta: Counters{PrecisionHits: 3, PrecisionTotal: 3, RecallHits: 0, RecallTotal: 2, ClassHits: 2, ClassTotal: 3}})
	acc.Observe("健身中心", Outcome{Delta: Counters{PrecisionTotal: 1, RecallTotal: 1, ClassTotal: 1}})

	segments := acc.Segments()
	require.Len(t, segments, 2)
	assert.Equal(t, "健身中心", segments[0].Segment)
	assert.Equal(t, 2, segments[0].Records)
	assert.Equal(t, "台球", segments[1].Segment)
	assert.Equal(t, 2, segments[1].Records)
	assert.Equal(t, 4, acc.Records())

	var sum Counters
	for _, s := range segments {
		sum.Add(s.Counters)
	}
	assert.Equal(t, acc.Total(), sum)
	assert.Equal(t, Counters{PrecisionHits: 4, PrecisionTotal: 6, RecallHits: 1, RecallTotal: 4, ClassHits: 3, ClassTotal: 6}, acc.Total())
}

func TestAccumulator_DenominatorsNeverDecrease(t *testing.T) {
	acc := NewAccumulator(nil)
	label := attr.Attributes{A: []string{"便携"}}
	pred := attr.Attributes{A: []string{"轻便"}, F: []string{"棉"}}

	prev := acc.Total()
	for i := 0; i < 3; i++ {
		acc.Observe("台球", ScoreRecord(label, pred, nil))
		cur := acc.Total()
		assert.GreaterOrEqual(t, cur.PrecisionTotal, prev.PrecisionTotal)
		assert.GreaterOrEqual(t, cur.RecallTotal, prev.RecallTotal)
		assert.Equal(t, cur.PrecisionTotal, cur.ClassTotal)
		prev = cur
	}
	assert.Equal(t, 6, prev.PrecisionTotal)
	assert.Equal(t, 3, prev.RecallTotal)
}
