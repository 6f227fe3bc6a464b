package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dummycoder/domain/dataset"
	"dummycoder/internal"
	"dummycoder/internal/errors"
)

const utf8BOM = "\ufeff"

// DataReader parses uploaded CSV and Excel files into datasets
type DataReader struct {
	config ExcelConfig
	logger *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ExcelConfig) *DataReader {
	if config.CSVDelimiter == 0 {
		config.CSVDelimiter = ','
	}
	return &DataReader{config: config, logger: internal.DefaultLogger.With("DataReader")}
}

// Load reads the upload in r, choosing the parser from filename's extension.
// Every cell is kept as text; the first row is the header.
func (r *DataReader) Load(ctx context.Context, src io.Reader, filename string) (*dataset.Dataset, error) {
	fileType, ok := DetectFileType(filename)
	if !ok {
		return nil, errors.UnsupportedFormat(filename)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled(err)
	}

	r.logger.Debug("Starting to read %s file: %s", fileType, filename)
	readStart := time.Now()

	var rows [][]string
	var err error
	switch fileType {
	case FileTypeCSV:
		rows, err = r.readCSVRows(src)
	case FileTypeXLSX:
		rows, err = r.readExcelRows(src)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("%s read in %.2fms (%d rows)", strings.ToUpper(string(fileType)), float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no header row", filename))
	}
	return r.processRows(rows)
}

// readExcelRows reads the configured (or first) worksheet
func (r *DataReader) readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := r.config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("Excel file contains no worksheets")
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, errors.InvalidInput(fmt.Sprintf("worksheet %q not found", sheet))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read %s: %w", sheet, err))
	}
	return rows, nil
}

// readCSVRows reads all CSV records; ragged rows are allowed
func (r *DataReader) readCSVRows(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.Comma = r.config.CSVDelimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read CSV file: %w", err))
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

// processRows converts raw string rows into a dataset
func (r *DataReader) processRows(rows [][]string) (*dataset.Dataset, error) {
	headers := normalizeHeaders(rows[0])

	records := make([][]dataset.Cell, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make([]dataset.Cell, len(headers))
		for j := range headers {
			if j < len(row) {
				record[j] = row[j]
			} else {
				record[j] = ""
			}
		}
		records = append(records, record)
	}

	ds, err := dataset.FromRows(headers, records)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	r.logger.Debug("file processed (%d columns, %d rows)", ds.ColumnCount(), ds.RowCount())
	return ds, nil
}

// normalizeHeaders trims header names, names blank headers "Unnamed: N" and
// disambiguates repeats as "name.1", "name.2", ...
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]bool, len(raw))

	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for n := 1; used[name]; n++ {
				name = fmt.Sprintf("%s.%d", base, n)
			}
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}
