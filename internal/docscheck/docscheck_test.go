// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package docscheck

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Getting Started", "getting-started"},
		{"API Reference!", "api-reference"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Dashes -- stay single", "dashes-stay-single"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckLinksSameFileAnchor(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "index.md")
	writeFile(t, doc, "# Getting Started\n\nSee [setup](#getting-started) and [missing](#nope).\n")

	issues, total, err := CheckLinks(dir, []string{doc})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("total links = %d; want 2", total)
	}
	if len(issues) != 1 || issues[0].Link != "#nope" {
		t.Errorf("issues = %+v; want one issue for #nope", issues)
	}
}

func TestCheckLinksCrossFile(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.md")
	other := filepath.Join(dir, "guide.md")
	writeFile(t, index, "See [guide](guide.md#setup) and [gone](missing.md).\n")
	writeFile(t, other, "# Setup\n\ntext\n")

	issues, _, err := CheckLinks(dir, []string{index, other})
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || issues[0].Link != "missing.md" {
		t.Errorf("issues = %+v; want one issue for missing.md", issues)
	}
}

func TestCheckLinksOutsideRepoRoot(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	if err := os.MkdirAll(docs, 0o777); err != nil {
		t.Fatal(err)
	}
	doc := filepath.Join(docs, "index.md")
	writeFile(t, doc, "See [escape](../../etc/passwd).\n")

	issues, _, err := CheckLinks(docs, []string{doc})
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || issues[0].Reason != "points outside repository" {
		t.Errorf("issues = %+v; want one outside-repository issue", issues)
	}
}

func TestCheckLinksSkipsImagesAndExternal(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "index.md")
	writeFile(t, doc, "![logo](logo.png) and [site](https://example.com) and [email](mailto:a@example.com).\n")

	issues, total, err := CheckLinks(dir, []string{doc})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("total links = %d; want 0", total)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %+v; want none", issues)
	}
}

func TestRunReportsSuccess(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	if err := os.MkdirAll(docs, 0o777); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(docs, "index.md"), "# Index\n\nNo links here.\n")

	var buf bytes.Buffer
	if err := Run(&buf, dir, docs); err != nil {
		t.Fatalf("Run returned error: %v; output: %s", err, buf.String())
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o666); err != nil {
		t.Fatal(err)
	}
}
