package excel

import (
	"path/filepath"
	"strings"
)

// FileType is the kind of tabular file an upload contains
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// MIMEType is the content type of exported workbooks.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DetectFileType picks the parser from the file extension.
func DetectFileType(filename string) (FileType, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FileTypeCSV, true
	case ".xlsx", ".xlsm":
		return FileTypeXLSX, true
	default:
		return "", false
	}
}
