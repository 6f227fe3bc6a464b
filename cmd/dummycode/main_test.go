package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithEnv(t, nil, args...)
}

func executeWithEnv(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DEFAULT_SEPARATOR", ",")
	t.Setenv("CONFLICT_POLICY", "fail")
	for key, value := range env {
		t.Setenv(key, value)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "survey.csv")
	require.NoError(t, os.WriteFile(input, []byte("id,Pets\n1,cat;dog\n2,dog\n"), 0644))
	output := filepath.Join(dir, "coded.xlsx")

	out, err := execute(t, "encode", "--in", input, "--columns", "Pets", "--sep", ";", "--drop-originals", "--out", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Unique responses in Pets: [cat, dog]")

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "Pets_cat", "Pets_dog"},
		{"1", "1", "1"},
		{"2", "0", "1"},
	}, rows)
}

func TestEncodeCommand_DefaultOutputName(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "survey.csv")
	require.NoError(t, os.WriteFile(input, []byte("Hobby\n\"Reading, Hiking\"\n"), 0644))

	_, err := execute(t, "encode", "--in", input, "--columns", "Hobby")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "survey_dummy_coded.xlsx"))
}

func TestEncodeCommand_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "survey.csv")
	require.NoError(t, os.WriteFile(input, []byte("Hobby\nHiking\n"), 0644))

	_, err := execute(t, "encode", "--in", input, "--columns", "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nope")
}

func TestColumnsCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "survey.csv")
	require.NoError(t, os.WriteFile(input, []byte("id,Hobby\n1,a\n2,b\n"), 0644))

	out, err := execute(t, "columns", "--in", input)
	require.NoError(t, err)
	assert.Equal(t, "id\nHobby\n2 rows\n", out)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("Hobby\n\"Reading, Hiking\"\n"), 0644))
	job := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(job, []byte("jobs:\n  - input: a.csv\n    columns: [Hobby]\n"), 0644))

	out, err := execute(t, "batch", job)
	require.NoError(t, err)
	assert.Contains(t, out, "Unique responses in Hobby: [Hiking, Reading]")
	assert.FileExists(t, filepath.Join(dir, "a_dummy_coded.xlsx"))
}

func TestBatchCommand_UsesDefaultSeparator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pets.csv"), []byte("Pets\ncat|dog\n"), 0644))
	job := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(job, []byte("jobs:\n  - input: pets.csv\n    columns: [Pets]\n"), 0644))

	out, err := executeWithEnv(t, map[string]string{"DEFAULT_SEPARATOR": "|"}, "batch", job)
	require.NoError(t, err)
	assert.Contains(t, out, "Unique responses in Pets: [cat, dog]")
}

func TestBatchCommand_RejectsSharedOutput(t *testing.T) {
	dir := t.TempDir()
	job := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(job, []byte("jobs:\n  - input: wave1.csv\n    columns: [x]\n  - input: wave1.xlsx\n    columns: [x]\n"), 0644))

	_, err := execute(t, "batch", job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both write")
}
