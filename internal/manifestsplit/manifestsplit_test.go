// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package manifestsplit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsonv2 "github.com/go-json-experiment/json"
)

func writeManifest(t *testing.T, path string, fileCount int) {
	t.Helper()
	files := make([]map[string]any, fileCount)
	for i := range files {
		files[i] = map[string]any{
			"path": fmt.Sprintf("pkg/file_%04d.go", i),
			"size": 1234,
		}
	}
	manifest := map[string]any{
		"repo_name":    "example",
		"generated_at": "2026-07-31T00:00:00Z",
		"total_files":  fileCount,
		"files":        files,
	}
	data, err := jsonv2.Marshal(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o666); err != nil {
		t.Fatal(err)
	}
}

func TestSplitSinglePage(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "repo_manifest.json")
	writeManifest(t, manifestPath, 10)

	outputDir := filepath.Join(dir, "pages")
	indexPath := filepath.Join(dir, "index.json")
	summaries, err := Split(manifestPath, outputDir, indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len(summaries) = %d; want 1", len(summaries))
	}
	if summaries[0].Entries != 10 {
		t.Errorf("Entries = %d; want 10", summaries[0].Entries)
	}

	indexData, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(indexData), `"page_count":1`) && !strings.Contains(string(indexData), `"page_count": 1`) {
		t.Errorf("index does not report page_count 1: %s", indexData)
	}
}

func TestSplitMultiplePagesOnLineLimit(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "repo_manifest.json")
	writeManifest(t, manifestPath, 4000)

	outputDir := filepath.Join(dir, "pages")
	indexPath := filepath.Join(dir, "index.json")
	summaries, err := Split(manifestPath, outputDir, indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) < 2 {
		t.Fatalf("len(summaries) = %d; want more than one page for 4000 entries", len(summaries))
	}

	total := 0
	for _, s := range summaries {
		if s.Lines > MaxLines {
			t.Errorf("page %d has %d lines; want <= %d", s.Page, s.Lines, MaxLines)
		}
		if s.Bytes > MaxBytes {
			t.Errorf("page %d has %d bytes; want <= %d", s.Page, s.Bytes, MaxBytes)
		}
		total += s.Entries
		path := filepath.Join(outputDir, fmt.Sprintf(PageFilenameTemplate, s.Page))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("page file missing: %v", err)
		}
	}
	if total != 4000 {
		t.Errorf("total entries across pages = %d; want 4000", total)
	}
}

func TestLoadManifestRequiresFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repo_manifest.json")
	if err := os.WriteFile(path, []byte(`{"repo_name": "x"}`), 0o666); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("LoadManifest did not report an error for a manifest with no files list")
	}
}
