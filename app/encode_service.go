package app

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/spf13/cast"

	"dummycoder/domain/core"
	"dummycoder/domain/dataset"
	"dummycoder/domain/dummy"
	"dummycoder/internal"
	"dummycoder/internal/errors"
	"dummycoder/ports"
)

// sampleRows is how many rows Inspect returns for previewing a file
const sampleRows = 5

// EncodeRequest describes one dummy-coding run over an uploaded file
type EncodeRequest struct {
	RequestID     core.RequestID
	Filename      string
	File          io.Reader
	Columns       []string
	Separator     string
	KeepOriginals bool
	// ConflictPolicy overrides the service default when set.
	ConflictPolicy dummy.ConflictPolicy
}

// EncodeOutcome is the result of a run. Workbook is empty for previews.
type EncodeOutcome struct {
	RequestID   core.RequestID   `json:"request_id"`
	Columns     []string         `json:"columns"`
	RowCount    int              `json:"row_count"`
	ColumnCount int              `json:"column_count"`
	Universes   []dummy.Universe `json:"universes"`
	Report      UniverseReport   `json:"report"`
	Workbook    []byte           `json:"-"`
}

// Inspection summarizes an uploaded file so the user can pick target columns
type Inspection struct {
	Filename string              `json:"filename"`
	Columns  []string            `json:"columns"`
	RowCount int                 `json:"row_count"`
	Sample   []map[string]string `json:"sample"`
}

// EncodeService runs the load -> encode -> export pipeline for a single request.
// It keeps no state between calls.
type EncodeService struct {
	loader         ports.DatasetLoader
	exporter       ports.DatasetExporter
	conflictPolicy dummy.ConflictPolicy
	logger         *internal.Logger
}

// NewEncodeService wires the service to its collaborators
func NewEncodeService(loader ports.DatasetLoader, exporter ports.DatasetExporter, conflictPolicy dummy.ConflictPolicy) *EncodeService {
	if conflictPolicy == "" {
		conflictPolicy = dummy.ConflictFail
	}
	return &EncodeService{
		loader:         loader,
		exporter:       exporter,
		conflictPolicy: conflictPolicy,
		logger:         internal.DefaultLogger.With("EncodeService"),
	}
}

// Inspect loads the file and reports its columns, row count and a few sample rows.
func (s *EncodeService) Inspect(ctx context.Context, file io.Reader, filename string) (*Inspection, error) {
	ds, err := s.loader.Load(ctx, file, filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", filename)
	}

	names := ds.Names()
	n := ds.RowCount()
	if n > sampleRows {
		n = sampleRows
	}
	sample := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		row := ds.Row(i)
		sample[i] = make(map[string]string, len(names))
		for c, name := range names {
			sample[i][name] = cellString(row[c])
		}
	}

	return &Inspection{
		Filename: filename,
		Columns:  names,
		RowCount: ds.RowCount(),
		Sample:   sample,
	}, nil
}

// Preview encodes the file and returns the universes without building a workbook.
func (s *EncodeService) Preview(ctx context.Context, req EncodeRequest) (*EncodeOutcome, error) {
	outcome, _, err := s.encode(ctx, &req)
	return outcome, err
}

// Run encodes the file and exports the result as an .xlsx workbook.
func (s *EncodeService) Run(ctx context.Context, req EncodeRequest) (*EncodeOutcome, error) {
	outcome, encoded, err := s.encode(ctx, &req)
	if err != nil {
		return nil, err
	}

	exportStart := time.Now()
	var buf bytes.Buffer
	if err := s.exporter.Export(ctx, encoded, &buf); err != nil {
		return nil, errors.Wrap(err, "failed to export encoded dataset")
	}
	outcome.Workbook = buf.Bytes()

	s.logger.Info("%s exported %d bytes in %.2fms", req.RequestID.String(), len(outcome.Workbook),
		float64(time.Since(exportStart).Nanoseconds())/1e6)
	return outcome, nil
}

func (s *EncodeService) encode(ctx context.Context, req *EncodeRequest) (*EncodeOutcome, *dataset.Dataset, error) {
	if req.RequestID.IsEmpty() {
		req.RequestID = core.NewRequestID()
	}
	if req.File == nil {
		return nil, nil, errors.InvalidInput("no file uploaded")
	}
	if len(req.Columns) == 0 {
		return nil, nil, errors.InvalidInput("select at least one multi-response column")
	}
	policy := req.ConflictPolicy
	if policy == "" {
		policy = s.conflictPolicy
	}

	s.logger.Debug("%s encoding %s: columns=%v separator=%q keep_originals=%t",
		req.RequestID.String(), req.Filename, req.Columns, req.Separator, req.KeepOriginals)

	ds, err := s.loader.Load(ctx, req.File, req.Filename)
	if err != nil {
		if errors.HasCode(err, errors.CodeCancelled) {
			s.logger.Info("%s cancelled during load", req.RequestID.String())
		} else {
			s.logger.Error("%s FAILED - load: %v", req.RequestID.String(), err)
		}
		return nil, nil, errors.Wrapf(err, "failed to load %s", req.Filename)
	}

	encodeStart := time.Now()
	result, err := dummy.Encode(ctx, ds, req.Columns, req.Separator, req.KeepOriginals, dummy.WithConflictPolicy(policy))
	if err != nil {
		if errors.HasCode(err, errors.CodeCancelled) {
			s.logger.Info("%s cancelled during encode", req.RequestID.String())
		} else {
			s.logger.Warn("%s FAILED - encode: %v", req.RequestID.String(), err)
		}
		return nil, nil, err
	}

	indicators := 0
	for _, u := range result.Universes {
		indicators += len(u.Indicators)
	}
	s.logger.Info("%s added %d indicator columns in %.2fms", req.RequestID.String(), indicators,
		float64(time.Since(encodeStart).Nanoseconds())/1e6)

	return &EncodeOutcome{
		RequestID:   req.RequestID,
		Columns:     result.Dataset.Names(),
		RowCount:    result.Dataset.RowCount(),
		ColumnCount: result.Dataset.ColumnCount(),
		Universes:   result.Universes,
		Report:      RenderUniverseReport(result.Universes),
	}, result.Dataset, nil
}

func cellString(cell dataset.Cell) string {
	if cell == nil {
		return ""
	}
	return cast.ToString(cell)
}
