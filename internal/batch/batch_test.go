package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dummycoder/adapters/excel"
	"dummycoder/app"
	"dummycoder/domain/dummy"
	"dummycoder/internal/errors"
)

func newService() *app.EncodeService {
	config := excel.DefaultExcelConfig()
	return app.NewEncodeService(excel.NewDataReader(config), excel.NewDataWriter(config), dummy.ConflictFail)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseJob_Defaults(t *testing.T) {
	job, err := ParseJob([]byte(`
defaults:
  separator: ";"
jobs:
  - input: a.csv
    columns: [Hobby]
`))
	require.NoError(t, err)

	assert.Equal(t, 4, job.Concurrency)
	require.Len(t, job.Entries, 1)
	assert.Equal(t, []string{"Hobby"}, job.Entries[0].Columns)
	require.NotNil(t, job.Defaults.Separator)
	assert.Equal(t, ";", *job.Defaults.Separator)
	assert.Nil(t, job.Entries[0].KeepOriginals)
	assert.Equal(t, ",", job.FallbackSeparator)
}

func TestParseJob_DuplicateOutputs(t *testing.T) {
	testCases := map[string]string{
		"repeated input":      "jobs:\n  - input: a.csv\n    columns: [x]\n  - input: a.csv\n    columns: [y]\n",
		"same stem":           "jobs:\n  - input: wave1.csv\n    columns: [x]\n  - input: wave1.xlsx\n    columns: [x]\n",
		"explicit vs default": "jobs:\n  - input: a.csv\n    columns: [x]\n  - input: b.csv\n    output: ./a_dummy_coded.xlsx\n    columns: [x]\n",
	}

	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJob([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Contains(t, err.Error(), "jobs 1 and 2")
		})
	}
}

func TestParseJob_DistinctOutputsForSameInput(t *testing.T) {
	_, err := ParseJob([]byte("jobs:\n  - input: a.csv\n    columns: [x]\n  - input: a.csv\n    output: a_pets.xlsx\n    columns: [y]\n"))
	require.NoError(t, err)
}

func TestParseJob_Invalid(t *testing.T) {
	testCases := map[string]string{
		"not yaml":     "jobs: [",
		"no jobs":      "concurrency: 2\n",
		"no input":     "jobs:\n  - columns: [a]\n",
		"no columns":   "jobs:\n  - input: a.csv\n",
		"bad policy":   "defaults:\n  conflict_policy: overwrite\njobs:\n  - input: a.csv\n    columns: [a]\n",
		"entry policy": "jobs:\n  - input: a.csv\n    columns: [a]\n    conflict_policy: nope\n",
	}

	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJob([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

func TestRun_EncodesEveryEntry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hobbies.csv", "id,Hobby\n1,\"Reading, Hiking\"\n2,Hiking\n")
	writeFile(t, dir, "pets.csv", "id,Pets\n1,cat|dog\n2,\n")
	jobPath := writeFile(t, dir, "job.yaml", `
concurrency: 2
defaults:
  keep_originals: false
jobs:
  - input: hobbies.csv
    columns: [Hobby]
  - input: pets.csv
    output: out/pets.xlsx
    columns: [Pets]
    separator: "|"
    keep_originals: true
`)

	job, err := LoadJob(jobPath)
	require.NoError(t, err)

	results, err := Run(context.Background(), newService(), job)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join(dir, "hobbies_dummy_coded.xlsx"), results[0].Output)
	assert.Equal(t, []string{"Hiking", "Reading"}, results[0].Universes[0].Values)
	assert.Equal(t, filepath.Join(dir, "out", "pets.xlsx"), results[1].Output)
	assert.Equal(t, []string{"cat", "dog"}, results[1].Universes[0].Values)

	f, err := excelize.OpenFile(results[1].Output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Pets", "Pets_cat", "Pets_dog"}, rows[0])

	f2, err := excelize.OpenFile(results[0].Output)
	require.NoError(t, err)
	defer f2.Close()
	rows, err = f2.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Hobby_Hiking", "Hobby_Reading"}, rows[0])
}

func TestRun_FallbackSeparator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pets.csv", "Pets\ncat;dog\n")
	jobPath := writeFile(t, dir, "job.yaml", "jobs:\n  - input: pets.csv\n    columns: [Pets]\n")

	job, err := LoadJob(jobPath)
	require.NoError(t, err)
	job.FallbackSeparator = ";"

	results, err := Run(context.Background(), newService(), job)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, results[0].Universes[0].Values)
}

func TestRun_FirstErrorIsReturned(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.csv", "Hobby\nHiking\n")
	jobPath := writeFile(t, dir, "job.yaml", `
jobs:
  - input: ok.csv
    columns: [Hobby]
  - input: ok.csv
    output: other.xlsx
    columns: [Missing]
`)

	job, err := LoadJob(jobPath)
	require.NoError(t, err)

	_, err = Run(context.Background(), newService(), job)
	require.Error(t, err)
	assert.Equal(t, errors.CodeColumnNotFound, errors.GetCode(err))
	assert.Contains(t, err.Error(), "job 2")
}

func TestRun_MissingInputFile(t *testing.T) {
	job, err := ParseJob([]byte("jobs:\n  - input: /definitely/not/here.csv\n    columns: [a]\n"))
	require.NoError(t, err)

	_, err = Run(context.Background(), newService(), job)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
