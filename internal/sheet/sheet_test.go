package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	t := New([]string{"category", "F", "A", "B", "pred_F", "pred_A", "pred_B"})
	t.Rows = [][]string{
		{"台球", "材质：棉", "轻便", "", "材质:棉", "轻便"},
		{"健身中心", "", "透气,耐用", "好看", "", "耐用", "好看"},
	}
	return t
}

func TestTable_GetSet(t *testing.T) {
	tbl := sample()

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "台球", tbl.Get(0, "category"))
	assert.Equal(t, "", tbl.Get(0, "pred_B"))
	assert.Equal(t, "", tbl.Get(5, "category"))
	assert.Equal(t, "", tbl.Get(0, "nope"))

	tbl.Set(0, "llm_call_count", "3")
	i, ok := tbl.Column("llm_call_count")
	require.True(t, ok)
	assert.Equal(t, 7, i)
	assert.Equal(t, "3", tbl.Get(0, "llm_call_count"))
	assert.Equal(t, "", tbl.Get(1, "llm_call_count"))

	assert.Equal(t, 7, tbl.EnsureColumn("llm_call_count"))
}

func TestTable_Require(t *testing.T) {
	tbl := sample()
	require.NoError(t, tbl.Require("category", "F", "pred_B"))

	err := tbl.Require("category", "label", "score")
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "label, score")
}

func TestTable_RoundTrip(t *testing.T) {
	for _, ext := range []string{".xlsx", ".csv"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "table"+ext)
			tbl := sample()
			tbl.Set(1, "precision_error", "a,耐用;b,好看")

			require.NoError(t, tbl.Save(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tbl.Header, loaded.Header)
			assert.Equal(t, 2, loaded.Len())
			for _, col := range tbl.Header {
				for row := 0; row < tbl.Len(); row++ {
					assert.Equal(t, tbl.Get(row, col), loaded.Get(row, col), "row %d column %s", row, col)
				}
			}
		})
	}
}

func TestLoad_CSVWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffcategory,A\n台球,\"轻便,耐用\"\n"), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"category", "A"}, tbl.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "轻便,耐用", tbl.Get(0, "A"))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "in.json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Load(empty)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = Load(filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)
}
