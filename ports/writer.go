package ports

import (
	"context"
	"io"

	"dummycoder/domain/dataset"
)

// DatasetExporter serializes a finished dataset for download.
// Presentation (styling, widths) is entirely the exporter's concern.
type DatasetExporter interface {
	Export(ctx context.Context, ds *dataset.Dataset, w io.Writer) error
}
