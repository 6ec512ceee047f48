package reportstore_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/genpipe/memtrim/api"
	"github.com/genpipe/memtrim/internal/reportstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(runUuid string) *api.Report {
	start := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	return &api.Report{
		RunUuid:    runUuid,
		StartTime:  start.Format(time.RFC3339),
		FinishTime: start.Add(3 * time.Second).Format(time.RFC3339),
		Stages: []api.StageResult{
			{Index: api.StageModelUnload, Name: api.StageNames[api.StageModelUnload], Status: api.StageOk},
			{Index: api.StageOSTrim, Name: api.StageNames[api.StageOSTrim], Status: api.StageOk, FreedBytes: 40 << 30},
		},
		Summary: api.Summary{ProcessRAMFreed: 40 << 30, ElapsedMs: 3000},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := reportstore.New(t.TempDir())
	require.NoError(t, err)

	original := sampleReport("5cf95a9a-5a2e-4b70-9c68-9f2f6c5e3f10")
	path, err := store.Save(original)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, original.RunUuid+".json.zst"))

	loaded, err := store.Load(original.RunUuid)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := reportstore.New(dir)
	require.NoError(t, err)

	_, err = store.Save(sampleReport("run-a"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-a.json.zst", entries[0].Name())
}

func TestLoadMissingReport(t *testing.T) {
	store, err := reportstore.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("never-saved")
	require.Error(t, err)
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := reportstore.New(dir)
	require.NoError(t, err)

	_, err = store.Save(sampleReport("run-b"))
	require.NoError(t, err)
	_, err = store.Save(sampleReport("run-a"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	uuids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"run-a", "run-b"}, uuids)
}

func TestNewCreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "reports")

	_, err := reportstore.New(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
