// Package sheet reads and writes the evaluation table as xlsx or csv.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrMissingColumn     = errors.New("missing column")
	ErrEmptyTable        = errors.New("table has no header row")
	ErrUnsupportedFormat = errors.New("unsupported table format")
)

// Table is a header plus string rows. Rows may be shorter than the
// header; absent cells read as empty.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// New creates an empty table with the given header.
func New(header []string) *Table {
	t := &Table{Header: make([]string, 0, len(header))}
	t.index = make(map[string]int, len(header))
	for _, h := range header {
		t.EnsureColumn(strings.TrimSpace(h))
	}
	return t
}

// Load reads the first sheet of an xlsx file or a csv file.
func Load(path string) (*Table, error) {
	var (
		records [][]string
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		records, err = readXLSX(path)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTable)
	}

	t := New(records[0])
	t.Rows = records[1:]
	return t, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// Save writes the table; the format follows the file extension.
func (t *Table) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return t.writeXLSX(path)
	case ".csv":
		return t.writeCSV(path)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func (t *Table) writeXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range t.records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (t *Table) writeCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(t.records()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// records returns the header and rows padded to the header width.
func (t *Table) records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Header)
	for _, row := range t.Rows {
		padded := make([]string, len(t.Header))
		copy(padded, row)
		out = append(out, padded)
	}
	return out
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of a header.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// EnsureColumn returns the index of name, appending it to the header if
// absent.
func (t *Table) EnsureColumn(name string) int {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	t.index[name] = len(t.Header)
	t.Header = append(t.Header, name)
	return len(t.Header) - 1
}

// Require checks that every name is a header.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.index[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Get returns the cell of row under column name, or "" when either is
// absent.
func (t *Table) Get(row int, name string) string {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Set writes a cell, creating the column and widening the row as needed.
func (t *Table) Set(row int, name, value string) {
	if row < 0 || row >= len(t.Rows) {
		return
	}
	i := t.EnsureColumn(name)
	for len(t.Rows[row]) <= i {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][i] = value
}
