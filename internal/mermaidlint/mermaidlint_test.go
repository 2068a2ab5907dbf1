// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package mermaidlint

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o666); err != nil {
		t.Fatal(err)
	}
}

func TestExtractBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	writeFile(t, path, "intro\n\n```mermaid\nflowchart TD\n  A --> B\n```\n\nmore text\n")

	blocks, err := ExtractBlocks(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d; want 1", len(blocks))
	}
	if blocks[0].Code != "flowchart TD\n  A --> B" {
		t.Errorf("code = %q", blocks[0].Code)
	}
}

func TestExtractBlocksUnterminated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	writeFile(t, path, "```mermaid\ngraph LR\n  A --> B\n")

	blocks, err := ExtractBlocks(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d; want 1", len(blocks))
	}
}

func TestDetectDiagramType(t *testing.T) {
	tests := []struct{ code, want string }{
		{"flowchart TD\n  A --> B", "flowchart"},
		{"%% a comment\nsequenceDiagram\n  A->>B: hi", "sequenceDiagram"},
		{"stateDiagram-v2\n  [*] --> A", "stateDiagram"},
		{"not a diagram\n", ""},
	}
	for _, tt := range tests {
		if got := DetectDiagramType(tt.code); got != tt.want {
			t.Errorf("DetectDiagramType(%q) = %q; want %q", tt.code, got, tt.want)
		}
	}
}

func TestBlockSlug(t *testing.T) {
	b := Block{FilePath: "docs/guide.md", Index: 2}
	if got, want := b.Slug(), "docs_guide_md_2"; got != want {
		t.Errorf("Slug() = %q; want %q", got, want)
	}
}

func TestRunReportsUnknownDiagramType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.md"), "```mermaid\nnot a real diagram\n```\n")

	var buf bytes.Buffer
	err := Run(context.Background(), &buf, dir, filepath.Join(dir, "out"), false)
	if err == nil {
		t.Fatal("Run returned nil error; want a validation failure")
	}
}

func TestRunValidatesKnownDiagram(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.md"), "```mermaid\nflowchart TD\n  A --> B\n```\n")

	var buf bytes.Buffer
	if err := Run(context.Background(), &buf, dir, filepath.Join(dir, "out"), false); err != nil {
		t.Fatalf("Run returned error: %v; output: %s", err, buf.String())
	}
}

func TestResolveCLIAbsentByDefault(t *testing.T) {
	t.Setenv("MERMAID_CLI", "")
	t.Setenv("PATH", t.TempDir())
	if _, ok := ResolveCLI(); ok {
		t.Error("ResolveCLI() reported a CLI available with an empty PATH")
	}
}
