package ports

import (
	"context"
	"io"

	"dummycoder/domain/dataset"
)

// DatasetLoader parses an uploaded tabular file into a dataset.
// Implementations pick the format from the filename.
type DatasetLoader interface {
	Load(ctx context.Context, r io.Reader, filename string) (*dataset.Dataset, error)
}
