// Package batch runs dummy coding over several local files described by a YAML job.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"dummycoder/app"
	"dummycoder/domain/dummy"
	"dummycoder/internal"
	"dummycoder/internal/errors"
)

// Defaults apply to every entry that does not set the field itself
type Defaults struct {
	Separator      *string `yaml:"separator"`
	KeepOriginals  *bool   `yaml:"keep_originals"`
	ConflictPolicy string  `yaml:"conflict_policy"`
}

// Entry is one input file and how to encode it
type Entry struct {
	Input          string   `yaml:"input"`
	Output         string   `yaml:"output"`
	Columns        []string `yaml:"columns"`
	Separator      *string  `yaml:"separator"`
	KeepOriginals  *bool    `yaml:"keep_originals"`
	ConflictPolicy string   `yaml:"conflict_policy"`
}

// Job is the parsed YAML document
type Job struct {
	Concurrency int      `yaml:"concurrency"`
	Defaults    Defaults `yaml:"defaults"`
	Entries     []Entry  `yaml:"jobs"`

	// FallbackSeparator applies when neither the entry nor the defaults set
	// a separator. An empty value means whole-cell tokens.
	FallbackSeparator string `yaml:"-"`

	// baseDir resolves relative paths; it is the directory of the job file.
	baseDir string
}

// Result reports what happened to one entry
type Result struct {
	Input     string
	Output    string
	RowCount  int
	Universes []dummy.Universe
}

// LoadJob reads and validates a job file
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read job file %s", path)
	}
	job, err := ParseJob(data)
	if err != nil {
		return nil, err
	}
	job.baseDir = filepath.Dir(path)
	if err := job.checkOutputs(); err != nil {
		return nil, err
	}
	return job, nil
}

// ParseJob decodes a job document; relative paths resolve against the working directory.
func ParseJob(data []byte) (*Job, error) {
	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("invalid job file: %w", err))
	}
	if len(job.Entries) == 0 {
		return nil, errors.InvalidInput("job file lists no jobs")
	}
	if _, err := dummy.ParseConflictPolicy(job.Defaults.ConflictPolicy); err != nil {
		return nil, err
	}
	for i, entry := range job.Entries {
		if strings.TrimSpace(entry.Input) == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("job %d has no input", i+1))
		}
		if len(entry.Columns) == 0 {
			return nil, errors.InvalidInput(fmt.Sprintf("job %d (%s) selects no columns", i+1, entry.Input))
		}
		if _, err := dummy.ParseConflictPolicy(entry.ConflictPolicy); err != nil {
			return nil, err
		}
	}
	if job.Concurrency <= 0 {
		job.Concurrency = 4
	}
	job.FallbackSeparator = ","
	job.baseDir = "."
	if err := job.checkOutputs(); err != nil {
		return nil, err
	}
	return &job, nil
}

// checkOutputs rejects jobs where two entries would write the same workbook
func (j *Job) checkOutputs() error {
	seen := make(map[string]int, len(j.Entries))
	for i, entry := range j.Entries {
		output := j.outputPath(entry)
		key := filepath.Clean(output)
		if abs, err := filepath.Abs(output); err == nil {
			key = abs
		}
		if first, ok := seen[key]; ok {
			return errors.InvalidInput(fmt.Sprintf("jobs %d and %d both write %s", first+1, i+1, output))
		}
		seen[key] = i
	}
	return nil
}

func (j *Job) outputPath(entry Entry) string {
	output := entry.Output
	if output == "" {
		output = strings.TrimSuffix(entry.Input, filepath.Ext(entry.Input)) + "_dummy_coded.xlsx"
	}
	return j.resolve(output)
}

// Run encodes every entry concurrently. Entries share nothing; the first
// failure cancels the rest and is returned.
func Run(ctx context.Context, svc *app.EncodeService, job *Job) ([]Result, error) {
	results := make([]Result, len(job.Entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(job.Concurrency)

	for i := range job.Entries {
		i := i
		g.Go(func() error {
			res, err := runEntry(ctx, svc, job, job.Entries[i])
			if err != nil {
				return errors.Wrapf(err, "job %d (%s)", i+1, job.Entries[i].Input)
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runEntry(ctx context.Context, svc *app.EncodeService, job *Job, entry Entry) (*Result, error) {
	input := job.resolve(entry.Input)
	output := job.outputPath(entry)

	separator := job.FallbackSeparator
	if job.Defaults.Separator != nil {
		separator = *job.Defaults.Separator
	}
	if entry.Separator != nil {
		separator = *entry.Separator
	}

	keepOriginals := true
	if job.Defaults.KeepOriginals != nil {
		keepOriginals = *job.Defaults.KeepOriginals
	}
	if entry.KeepOriginals != nil {
		keepOriginals = *entry.KeepOriginals
	}

	policy, _ := dummy.ParseConflictPolicy(job.Defaults.ConflictPolicy)
	if entry.ConflictPolicy != "" {
		policy, _ = dummy.ParseConflictPolicy(entry.ConflictPolicy)
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	defer f.Close()

	outcome, err := svc.Run(ctx, app.EncodeRequest{
		Filename:       input,
		File:           f,
		Columns:        entry.Columns,
		Separator:      separator,
		KeepOriginals:  keepOriginals,
		ConflictPolicy: policy,
	})
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}
	if err := os.WriteFile(output, outcome.Workbook, 0644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", output)
	}

	internal.DefaultLogger.With("Batch").Info("%s -> %s (%d rows, %d columns)", input, output, outcome.RowCount, outcome.ColumnCount)
	return &Result{
		Input:     input,
		Output:    output,
		RowCount:  outcome.RowCount,
		Universes: outcome.Universes,
	}, nil
}

func (j *Job) resolve(path string) string {
	if filepath.IsAbs(path) || j.baseDir == "" {
		return path
	}
	return filepath.Join(j.baseDir, path)
}
