// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luacheck orchestrates the validator and auto-fixer over every
// script in a bundle: running them per script, optionally in parallel,
// and assembling the resulting diagnostics (or fix summary) in the
// bundle's original entry order.
package luacheck

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/JEBANERD/luaucheck/internal/luabundle"
	"github.com/JEBANERD/luaucheck/internal/luadiag"
	"github.com/JEBANERD/luaucheck/internal/luafix"
	"github.com/JEBANERD/luaucheck/internal/lualex"
	"github.com/JEBANERD/luaucheck/internal/luaparse"
)

// Summary reports the result of a fix-mode run, matching the JSON shape
// the auto-fixer CLI writes as its diagnostics output.
type Summary struct {
	AutoFixApplied       bool                  `json:"autoFixApplied"`
	FixedFiles           []string              `json:"fixedFiles"`
	AppliedRules         []luafix.Rule         `json:"appliedRules"`
	RemainingDiagnostics []*luadiag.Diagnostic `json:"remainingDiagnostics"`
	OriginalDiagnostics  []*luadiag.Diagnostic `json:"originalDiagnostics"`
}

// ValidateScript lexes and parses source in its entirety, returning a
// [*luadiag.Diagnostic] if it fails to tokenize or parse, or nil if it is
// syntactically valid. It never returns an error: a script that is not
// valid Luau is reported as a diagnostic, not a Go error, since an
// invalid script is the expected input to this system.
func ValidateScript(path, source string) *luadiag.Diagnostic {
	tokens, err := lualex.Tokenize(source)
	if err != nil {
		diag, _ := luadiag.NewFromError(path, source, err)
		return diag
	}
	if err := luaparse.Validate(tokens); err != nil {
		diag, _ := luadiag.NewFromError(path, source, err)
		return diag
	}
	return nil
}

// Validate runs [ValidateScript] over every entry, bounding concurrency to
// GOMAXPROCS and preserving entries' original order in the result. Entries
// that validate cleanly contribute no element to the returned slice.
func Validate(entries []*luabundle.Entry) []*luadiag.Diagnostic {
	results := make([]*luadiag.Diagnostic, len(entries))
	grp := new(errgroup.Group)
	grp.SetLimit(max(1, runtime.GOMAXPROCS(0)))
	for i, entry := range entries {
		i, entry := i, entry
		grp.Go(func() error {
			results[i] = ValidateScript(entry.Path, entry.Source())
			return nil
		})
	}
	_ = grp.Wait() // ValidateScript never returns an error for grp to report
	diagnostics := make([]*luadiag.Diagnostic, 0, len(results))
	for _, d := range results {
		if d != nil {
			diagnostics = append(diagnostics, d)
		}
	}
	return diagnostics
}

// Fix applies [luafix.Apply] to every entry whose path appears in
// targetPaths (or to every entry, if targetPaths is empty), then
// revalidates the whole bundle. originalDiagnostics is folded into the
// returned [Summary] unchanged, matching the reference fixer's behavior
// of reporting the diagnostics that triggered the fix run alongside the
// diagnostics that remain afterward.
func Fix(entries []*luabundle.Entry, targetPaths []string, originalDiagnostics []*luadiag.Diagnostic) *Summary {
	targets := make(map[string]bool, len(targetPaths))
	for _, p := range targetPaths {
		targets[p] = true
	}

	var fixedFiles []string
	for _, entry := range entries {
		if len(targets) > 0 && !targets[entry.Path] {
			continue
		}
		original := entry.Source()
		fixed, changed := luafix.Apply(original)
		if changed {
			entry.SetSource(fixed)
			fixedFiles = append(fixedFiles, entry.Path)
		}
	}
	sort.Strings(fixedFiles)

	return &Summary{
		AutoFixApplied:       true,
		FixedFiles:           fixedFiles,
		AppliedRules:         luafix.AllRules,
		RemainingDiagnostics: Validate(entries),
		OriginalDiagnostics:  originalDiagnostics,
	}
}
