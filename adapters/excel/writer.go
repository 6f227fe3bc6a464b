package excel

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"dummycoder/domain/dataset"
	"dummycoder/internal"
	"dummycoder/internal/errors"
)

// DataWriter serializes datasets to a styled single-sheet workbook
type DataWriter struct {
	config ExcelConfig
	logger *internal.Logger
}

// NewDataWriter creates a writer using the given presentation settings
func NewDataWriter(config ExcelConfig) *DataWriter {
	defaults := DefaultExcelConfig()
	if config.OutputSheet == "" {
		config.OutputSheet = defaults.OutputSheet
	}
	if config.MaxColumnWidth <= 0 {
		config.MaxColumnWidth = defaults.MaxColumnWidth
	}
	if config.WidthPadding < 0 {
		config.WidthPadding = 0
	}
	return &DataWriter{config: config, logger: internal.DefaultLogger.With("DataWriter")}
}

// Export writes ds as an .xlsx workbook to w. The header row is bold and every
// column is as wide as its widest rendered cell plus the configured padding.
func (wr *DataWriter) Export(ctx context.Context, ds *dataset.Dataset, w io.Writer) error {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	sheet := wr.config.OutputSheet
	if defaultSheet := f.GetSheetName(0); defaultSheet != sheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return errors.Wrap(err, "failed to name output sheet")
		}
	}

	columns := ds.Columns()
	widths := make([]int, len(columns))

	header := make([]interface{}, len(columns))
	for c, col := range columns {
		header[c] = col.Name
		widths[c] = utf8.RuneCountInString(col.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header row")
	}

	for r := 0; r < ds.RowCount(); r++ {
		if r%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return errors.Cancelled(err)
			}
		}

		row := make([]interface{}, len(columns))
		for c, col := range columns {
			value, rendered := cellValue(col.Values[r])
			row[c] = value
			if n := utf8.RuneCountInString(rendered); n > widths[c] {
				widths[c] = n
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return errors.Wrap(err, "failed to address data row")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write row %d", r+1)
		}
	}

	if len(columns) > 0 {
		if err := wr.styleHeader(f, sheet, len(columns)); err != nil {
			return err
		}
		if err := wr.autofit(f, sheet, widths); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}

	wr.logger.Debug("workbook written in %.2fms (%d columns, %d rows)",
		float64(time.Since(start).Nanoseconds())/1e6, len(columns), ds.RowCount())
	return nil
}

func (wr *DataWriter) styleHeader(f *excelize.File, sheet string, columnCount int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}
	last, err := excelize.CoordinatesToCellName(columnCount, 1)
	if err != nil {
		return errors.Wrap(err, "failed to address header row")
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return errors.Wrap(err, "failed to style header row")
	}
	return nil
}

func (wr *DataWriter) autofit(f *excelize.File, sheet string, widths []int) error {
	for c, chars := range widths {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return errors.Wrap(err, "failed to address column")
		}
		width := math.Min(float64(chars)+wr.config.WidthPadding, wr.config.MaxColumnWidth)
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return errors.Wrapf(err, "failed to set width of column %s", name)
		}
	}
	return nil
}

// cellValue returns what to store in the workbook for a cell and how it renders.
// Numeric text is stored as a number so spreadsheets can compute with it;
// anything else is stored as text. Missing cells stay empty.
func cellValue(cell dataset.Cell) (interface{}, string) {
	switch v := cell.(type) {
	case nil:
		return nil, ""
	case int:
		return v, strconv.Itoa(v)
	case string:
		if n, ok := parseInteger(v); ok {
			return n, v
		}
		if x, ok := parseDecimal(v); ok {
			return x, v
		}
		return v, v
	default:
		rendered := cast.ToString(v)
		if rendered == "" {
			rendered = fmt.Sprint(v)
		}
		return v, rendered
	}
}

// parseInteger accepts plain base-10 integers without leading zeros, an
// explicit plus sign or a negative zero, so text such as "007", "+5" or "-0"
// keeps its form.
func parseInteger(s string) (int64, bool) {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" || (len(digits) > 1 && digits[0] == '0') || strings.Trim(digits, "0123456789") != "" {
		return 0, false
	}
	if s == "-0" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseDecimal(s string) (float64, bool) {
	if s == "" || s[0] == '+' || strings.TrimSpace(s) != s || !strings.Contains(s, ".") || strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(x, 0) || math.IsNaN(x) {
		return 0, false
	}
	return x, true
}
