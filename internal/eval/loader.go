package eval

import (
	"fmt"
	"strings"

	"github.com/zhang-3000/meituan/internal/attr"
	"github.com/zhang-3000/meituan/internal/sheet"
)

// LoadTable reads an input table and checks its columns.
func LoadTable(path string) (*sheet.Table, error) {
	t, err := sheet.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load input table: %w", err)
	}

	if err := t.Require(InputColumns...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// RecordAt parses row of t.
func RecordAt(t *sheet.Table, row int) Record {
	cells := make([]string, len(InputColumns))
	for i, col := range InputColumns {
		cells[i] = t.Get(row, col)
	}

	return Record{
		Row:       row,
		Segment:   strings.TrimSpace(t.Get(row, ColumnSegment)),
		Label:     attr.LabelAttributes(t.Get(row, ColumnLabelF), t.Get(row, ColumnLabelA), t.Get(row, ColumnLabelB)),
		Predicted: attr.PredictedAttributes(t.Get(row, ColumnPredictedF), t.Get(row, ColumnPredictedA), t.Get(row, ColumnPredictedB)),
		Cells:     cells,
	}
}
