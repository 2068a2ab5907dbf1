// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luacli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCheckCleanScan(t *testing.T) {
	dir := t.TempDir()
	bundlePath := filepath.Join(dir, "bundle.json")
	reportPath := filepath.Join(dir, "report.json")
	if err := os.WriteFile(bundlePath, []byte(`[{"path": "a.luau", "content": "local x = 1\n"}]`), 0o666); err != nil {
		t.Fatal(err)
	}
	if err := runCheck(bundlePath, reportPath); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != cleanScanMessage {
		t.Errorf("report = %q; want %q", got, cleanScanMessage)
	}
}

func TestRunCheckWithDiagnostics(t *testing.T) {
	dir := t.TempDir()
	bundlePath := filepath.Join(dir, "bundle.json")
	reportPath := filepath.Join(dir, "report.json")
	if err := os.WriteFile(bundlePath, []byte(`[{"path": "a.luau", "content": "local t = {\n"}]`), 0o666); err != nil {
		t.Fatal(err)
	}
	if err := runCheck(bundlePath, reportPath); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), `"path": "a.luau"`) && !strings.Contains(string(got), `"path":"a.luau"`) {
		t.Errorf("report = %s; want a diagnostic for a.luau", got)
	}
	if !strings.HasSuffix(string(got), "\n") {
		t.Errorf("report does not end with a trailing newline: %q", got)
	}
}
