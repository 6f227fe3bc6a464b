package excel

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dummycoder/domain/dataset"
)

func exportToWorkbook(t *testing.T, ds *dataset.Dataset) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewDataWriter(DefaultExcelConfig()).Export(context.Background(), ds, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExport_RowsAndHeader(t *testing.T) {
	ds, err := dataset.FromRows([]string{"id", "Hobby", "Hobby_Hiking"}, [][]dataset.Cell{
		{"1", "Reading, Hiking", 1},
		{"2", nil, 0},
	})
	require.NoError(t, err)

	f := exportToWorkbook(t, ds)
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "Hobby", "Hobby_Hiking"}, rows[0])
	assert.Equal(t, []string{"1", "Reading, Hiking", "1"}, rows[1])
	assert.Equal(t, []string{"2", "", "0"}, rows[2])
}

func TestExport_BoldHeader(t *testing.T) {
	ds, err := dataset.FromRows([]string{"a", "b"}, [][]dataset.Cell{{"x", "y"}})
	require.NoError(t, err)

	f := exportToWorkbook(t, ds)

	for _, cell := range []string{"A1", "B1"} {
		styleID, err := f.GetCellStyle("Sheet1", cell)
		require.NoError(t, err)
		style, err := f.GetStyle(styleID)
		require.NoError(t, err)
		require.NotNil(t, style.Font, cell)
		assert.True(t, style.Font.Bold, cell)
	}

	styleID, err := f.GetCellStyle("Sheet1", "A2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.True(t, style.Font == nil || !style.Font.Bold)
}

func TestExport_Autofit(t *testing.T) {
	ds, err := dataset.FromRows([]string{"id", "Comment"}, [][]dataset.Cell{
		{"1", "short"},
		{"12345678", "a much longer comment"},
		{"3", strings.Repeat("x", 400)},
	})
	require.NoError(t, err)

	f := exportToWorkbook(t, ds)

	width, err := f.GetColWidth("Sheet1", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("12345678")+2), width)

	width, err = f.GetColWidth("Sheet1", "B")
	require.NoError(t, err)
	assert.Equal(t, float64(excelize.MaxColumnWidth), width)
}

func TestExport_HeaderWiderThanCells(t *testing.T) {
	ds, err := dataset.FromRows([]string{"Hobby_Reading"}, [][]dataset.Cell{{1}, {0}})
	require.NoError(t, err)

	f := exportToWorkbook(t, ds)

	width, err := f.GetColWidth("Sheet1", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Hobby_Reading")+2), width)
}

func TestExport_ZeroRows(t *testing.T) {
	ds, err := dataset.FromRows([]string{"Hobby"}, nil)
	require.NoError(t, err)

	f := exportToWorkbook(t, ds)
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hobby"}}, rows)
}

func TestCellValue(t *testing.T) {
	testCases := []struct {
		name     string
		in       dataset.Cell
		want     interface{}
		rendered string
	}{
		{"missing", nil, nil, ""},
		{"indicator", 1, 1, "1"},
		{"integer text", "42", int64(42), "42"},
		{"negative integer", "-7", int64(-7), "-7"},
		{"leading zero stays text", "007", "007", "007"},
		{"plus sign stays text", "+5", "+5", "+5"},
		{"negative zero stays text", "-0", "-0", "-0"},
		{"zero", "0", int64(0), "0"},
		{"plus decimal stays text", "+1.5", "+1.5", "+1.5"},
		{"decimal text", "3.25", 3.25, "3.25"},
		{"hex float stays text", "0x1.8p1", "0x1.8p1", "0x1.8p1"},
		{"padded number stays text", " 3.5", " 3.5", " 3.5"},
		{"plain text", "Red, Blue", "Red, Blue", "Red, Blue"},
		{"bool", true, true, "true"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, rendered := cellValue(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.rendered, rendered)
		})
	}
}
