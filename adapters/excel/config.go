package excel

import (
	"github.com/xuri/excelize/v2"
)

// ExcelConfig holds configuration for loading uploads and exporting results
type ExcelConfig struct {
	// SheetName is the worksheet read from .xlsx uploads. Empty means the first sheet.
	SheetName string `json:"sheet_name"`
	// CSVDelimiter is the field delimiter for .csv uploads. It is unrelated to
	// the multi-response separator used inside cells.
	CSVDelimiter rune `json:"csv_delimiter"`
	// OutputSheet is the name of the single worksheet written on export.
	OutputSheet string `json:"output_sheet"`
	// WidthPadding is added to the widest rendered cell of each column.
	WidthPadding float64 `json:"width_padding"`
	// MaxColumnWidth caps autofit widths.
	MaxColumnWidth float64 `json:"max_column_width"`
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		CSVDelimiter:   ',',
		OutputSheet:    "Sheet1",
		WidthPadding:   2,
		MaxColumnWidth: excelize.MaxColumnWidth,
	}
}
