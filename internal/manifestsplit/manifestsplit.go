// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package manifestsplit paginates a large JSON manifest into a series
// of smaller documents that stay under a line-count and byte-size
// guardrail, plus an index describing the pages.
package manifestsplit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

const (
	// MaxLines is the largest line count a single page document may have.
	MaxLines = 5000
	// MaxBytes is the largest byte size a single page document may have
	// (2.5 MiB).
	MaxBytes = int(2.5 * 1024 * 1024)

	// PageFilenameTemplate names each page file, formatted with its
	// 1-based page number.
	PageFilenameTemplate = "repo_manifest_page_%d.json"
	// IndexFilename names the index document written alongside the pages.
	IndexFilename = "repo_manifest_index.json"
	// SourceManifest is recorded in every page and the index so a reader
	// can trace a page back to the manifest it was split from.
	SourceManifest = "repo_manifest.json"
)

var baseKeys = []string{"repo_name", "generated_at", "total_files"}

// LoadManifest reads and parses the manifest at path, requiring it to
// contain a "files" array.
func LoadManifest(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	var manifest map[string]any
	if err := jsonv2.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if _, ok := manifest["files"].([]any); !ok {
		return nil, fmt.Errorf("load manifest: missing expected %q list", "files")
	}
	return manifest, nil
}

// PageSummary describes one written page, as recorded in the index.
type PageSummary struct {
	Page            int    `json:"page"`
	Path            string `json:"path"`
	Entries         int    `json:"entries"`
	EntryStartIndex int    `json:"entry_start_index"`
	EntryEndIndex   int    `json:"entry_end_index"`
	Lines           int    `json:"lines"`
	Bytes           int    `json:"bytes"`
}

type pageBuffer struct {
	startIndex int
	entries    []any
}

func (p *pageBuffer) endIndex() int {
	return p.startIndex + len(p.entries) - 1
}

func basePayload(manifest map[string]any) map[string]any {
	base := make(map[string]any, len(baseKeys)+1)
	for _, key := range baseKeys {
		if v, ok := manifest[key]; ok {
			base[key] = v
		}
	}
	base["source_manifest"] = SourceManifest
	return base
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+4)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func measureDocument(doc map[string]any) (lines, byteCount int, text []byte, err error) {
	data, err := jsonv2.Marshal(doc, jsontext.WithIndent("  "), jsonv2.Deterministic(true))
	if err != nil {
		return 0, 0, nil, err
	}
	text = append(data, '\n')
	lines = bytes.Count(text, []byte("\n"))
	byteCount = len(text)
	return lines, byteCount, text, nil
}

// splitEntries partitions manifest's files into pages, each kept under
// the MaxLines/MaxBytes guardrail when rendered with its page metadata.
func splitEntries(manifest map[string]any) ([]*pageBuffer, error) {
	files := manifest["files"].([]any)
	base := basePayload(manifest)

	var buffers []*pageBuffer
	current := &pageBuffer{}

	for idx, entry := range files {
		if len(current.entries) == 0 {
			current.startIndex = idx
		}
		candidate := append(append([]any{}, current.entries...), entry)

		preview := cloneMap(base)
		preview["page"] = len(buffers) + 1
		preview["total_pages"] = 0
		preview["entry_start_index"] = current.startIndex + 1
		preview["entry_end_index"] = idx + 1
		preview["files"] = candidate

		lines, byteCount, _, err := measureDocument(preview)
		if err != nil {
			return nil, err
		}
		exceeds := lines > MaxLines || byteCount > MaxBytes

		if len(current.entries) > 0 && exceeds {
			buffers = append(buffers, current)
			current = &pageBuffer{startIndex: idx, entries: []any{entry}}
		} else {
			current.entries = candidate
		}
	}
	if len(current.entries) > 0 {
		buffers = append(buffers, current)
	}
	return buffers, nil
}

// WritePages renders buffers to outputDir, one file per page, and
// returns a summary of each page written.
func WritePages(manifest map[string]any, buffers []*pageBuffer, outputDir string) ([]PageSummary, error) {
	if err := os.MkdirAll(outputDir, 0o777); err != nil {
		return nil, err
	}
	base := basePayload(manifest)
	totalPages := len(buffers)
	summaries := make([]PageSummary, 0, len(buffers))

	for i, buf := range buffers {
		pageNumber := i + 1
		doc := cloneMap(base)
		doc["page"] = pageNumber
		doc["total_pages"] = totalPages
		doc["entry_start_index"] = buf.startIndex + 1
		doc["entry_end_index"] = buf.endIndex() + 1
		doc["files"] = buf.entries

		lines, byteCount, text, err := measureDocument(doc)
		if err != nil {
			return nil, err
		}
		if lines > MaxLines || byteCount > MaxBytes {
			return nil, fmt.Errorf("page %d exceeds guardrails (lines=%d, bytes=%d)", pageNumber, lines, byteCount)
		}

		path := filepath.Join(outputDir, fmt.Sprintf(PageFilenameTemplate, pageNumber))
		if err := os.WriteFile(path, text, 0o666); err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(filepath.Dir(outputDir), path)
		if err != nil {
			rel = path
		}
		summaries = append(summaries, PageSummary{
			Page:            pageNumber,
			Path:            filepath.ToSlash(rel),
			Entries:         len(buf.entries),
			EntryStartIndex: buf.startIndex + 1,
			EntryEndIndex:   buf.endIndex() + 1,
			Lines:           lines,
			Bytes:           byteCount,
		})
	}
	return summaries, nil
}

// WriteIndex writes the manifest index describing every page in
// summaries.
func WriteIndex(manifest map[string]any, summaries []PageSummary, indexPath string) error {
	doc := make(map[string]any, len(baseKeys)+4)
	for _, key := range baseKeys {
		if v, ok := manifest[key]; ok {
			doc[key] = v
		}
	}
	doc["source_manifest"] = SourceManifest
	doc["page_count"] = len(summaries)
	doc["thresholds"] = map[string]any{"max_lines": MaxLines, "max_bytes": MaxBytes}
	doc["pages"] = summaries

	data, err := jsonv2.Marshal(doc, jsontext.WithIndent("  "), jsonv2.Deterministic(true))
	if err != nil {
		return err
	}
	return os.WriteFile(indexPath, append(data, '\n'), 0o666)
}

// Split loads the manifest at manifestPath, paginates it, writes the
// pages into outputDir, and writes the index at indexPath.
func Split(manifestPath, outputDir, indexPath string) ([]PageSummary, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	buffers, err := splitEntries(manifest)
	if err != nil {
		return nil, err
	}
	summaries, err := WritePages(manifest, buffers, outputDir)
	if err != nil {
		return nil, err
	}
	if err := WriteIndex(manifest, summaries, indexPath); err != nil {
		return nil, err
	}
	return summaries, nil
}
