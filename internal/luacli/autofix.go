// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luacli

import (
	"fmt"
	"os"
	"path/filepath"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/JEBANERD/luaucheck/internal/luabundle"
	"github.com/JEBANERD/luaucheck/internal/luacheck"
	"github.com/JEBANERD/luaucheck/internal/luadiag"
)

type autofixOptions struct {
	bundlePath      string
	diagnosticsPath string
	outBundlePath   string
	outDiagnostics  string
}

// NewAutofixCommand returns the luau-autofix root command.
func NewAutofixCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "luau-autofix",
		Short:                 "repair common near-miss Luau syntax errors in a script bundle",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	verbose := c.Flags().BoolP("verbose", "v", false, "show debug logging")
	opts := new(autofixOptions)
	c.Flags().StringVar(&opts.bundlePath, "bundle", "", "`path` to the input bundle JSON")
	c.Flags().StringVar(&opts.diagnosticsPath, "diagnostics", "", "`path` to a prior diagnostics report limiting which scripts are fixed")
	c.Flags().StringVar(&opts.outBundlePath, "out-bundle", "", "`path` to write the fixed bundle JSON")
	c.Flags().StringVar(&opts.outDiagnostics, "out-diagnostics", "", "`path` to write the fix summary JSON")
	c.MarkFlagRequired("bundle")
	c.MarkFlagRequired("out-bundle")
	c.MarkFlagRequired("out-diagnostics")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		initLogging(*verbose, "luau-autofix: ")
		return runAutofix(opts)
	}
	return c
}

func runAutofix(opts *autofixOptions) error {
	data, err := luabundle.Load(opts.bundlePath)
	if err != nil {
		return err
	}
	raw, err := luabundle.Parse(data)
	if err != nil {
		return err
	}
	entries := luabundle.FixerEntries(raw)

	var original []*luadiag.Diagnostic
	var targets []string
	if opts.diagnosticsPath != "" {
		original, err = loadDiagnostics(opts.diagnosticsPath)
		if err != nil {
			return err
		}
		for _, d := range original {
			targets = append(targets, d.Path)
		}
	}

	summary := luacheck.Fix(entries, targets, original)

	if err := writeBundle(opts.outBundlePath, raw); err != nil {
		return err
	}
	return writeSummary(opts.outDiagnostics, summary)
}

func loadDiagnostics(path string) ([]*luadiag.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read diagnostics: %w", err)
	}
	var diagnostics []*luadiag.Diagnostic
	if err := jsonv2.Unmarshal(data, &diagnostics); err != nil {
		return nil, fmt.Errorf("read diagnostics: %w", err)
	}
	return diagnostics, nil
}

func writeBundle(path string, raw any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	data, err := luabundle.Marshal(raw)
	if err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return os.WriteFile(path, data, 0o666)
}

func writeSummary(path string, summary *luacheck.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	data, err := jsonv2.Marshal(summary, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o666)
}
