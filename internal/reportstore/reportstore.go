// Package reportstore archives pipeline reports on disk as
// zstd-compressed JSON, one file per run uuid.
package reportstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/genpipe/memtrim/api"
	"github.com/klauspost/compress/zstd"
)

const reportExt = ".json.zst"

type Store struct {
	dir string
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the report as <run uuid>.json.zst and returns the path.
// Writing goes through a temp file so a crashed run never leaves a
// truncated archive behind.
func (s *Store) Save(report *api.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "report.*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		tmp.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to finish report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	path := filepath.Join(s.dir, report.RunUuid+reportExt)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}
	return path, nil
}

// Load reads an archived report back by run uuid.
func (s *Store) Load(runUuid string) (*api.Report, error) {
	f, err := os.Open(filepath.Join(s.dir, runUuid+reportExt))
	if err != nil {
		return nil, fmt.Errorf("failed to open report %s: %w", runUuid, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	var report api.Report
	if err := json.NewDecoder(dec).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", runUuid, err)
	}
	return &report, nil
}

// List returns archived run uuids, newest name last.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	uuids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), reportExt) {
			continue
		}
		uuids = append(uuids, strings.TrimSuffix(e.Name(), reportExt))
	}
	sort.Strings(uuids)
	return uuids, nil
}
