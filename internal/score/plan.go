package score

import (
	"github.com/zhang-3000/meituan/internal/attr"
	"github.com/zhang-3000/meituan/internal/consult"
)

// Query is one oracle consultation a record needs before it can be
// scored.
type Query struct {
	Origin     consult.Origin
	Value      string
	Comparison []string
}

// Plan lists the values without an exact match on the opposite side:
// predicted A, B, F then labeled A, B, F. Each comparison set is the
// opposite side's subjective values followed by its objective ones.
// Duplicated values are planned once per occurrence.
func Plan(label, pred attr.Attributes) []Query {
	if label.Empty() && pred.Empty() {
		return nil
	}

	var queries []Query
	queries = appendQueries(queries, consult.SidePredicted, pred, label)
	queries = appendQueries(queries, consult.SideLabel, label, pred)
	return queries
}

func appendQueries(queries []Query, side consult.Side, from, against attr.Attributes) []Query {
	comparison := against.Combined()
	for _, c := range attr.Categories {
		for _, v := range from.Values(c) {
			if attr.Contains(comparison, v) {
				continue
			}
			queries = append(queries, Query{
				Origin:     consult.OriginFor(side, c),
				Value:      v,
				Comparison: comparison,
			})
		}
	}
	return queries
}
