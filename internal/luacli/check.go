// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luacli wires the validator, auto-fixer, and service commands
// into Cobra commands, following the teacher's New() *cobra.Command
// factory-function convention (see internal/luac.New).
package luacli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
	"zombiezen.com/go/log"

	"github.com/JEBANERD/luaucheck/internal/luabundle"
	"github.com/JEBANERD/luaucheck/internal/luacheck"
	"github.com/JEBANERD/luaucheck/internal/luadiag"
)

// NewCheckCommand returns the luau-syntax-check root command: scanning
// a bundle for syntax errors by default, plus "serve" and "init"
// subcommands.
func NewCheckCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "luau-syntax-check BUNDLE REPORT",
		Short:                 "scan a Luau script bundle for syntax errors",
		Args:                  cobra.ExactArgs(2),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	verbose := c.PersistentFlags().BoolP("verbose", "v", false, "show debug logging")
	c.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initLogging(*verbose, "luau-syntax-check: ")
		return nil
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runCheck(args[0], args[1])
	}
	c.AddCommand(newServeCommand(), newInitCommand())
	return c
}

// cleanScanMessage is written verbatim to the report file when no
// script in the bundle produced a diagnostic.
const cleanScanMessage = "Scan complete. 0 issue(s) found.\n"

func runCheck(bundlePath, reportPath string) error {
	data, err := luabundle.Load(bundlePath)
	if err != nil {
		return err
	}
	raw, err := luabundle.Parse(data)
	if err != nil {
		return err
	}
	entries := luabundle.ValidatorEntries(raw)
	diagnostics := luacheck.Validate(entries)
	printSummary(os.Stdout, diagnostics)

	if err := os.MkdirAll(filepath.Dir(reportPath), 0o777); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if len(diagnostics) == 0 {
		return os.WriteFile(reportPath, []byte(cleanScanMessage), 0o666)
	}
	report, err := marshalDiagnostics(diagnostics)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return os.WriteFile(reportPath, report, 0o666)
}

func marshalDiagnostics(diagnostics []*luadiag.Diagnostic) ([]byte, error) {
	data, err := jsonv2.Marshal(diagnostics, jsontext.WithIndent("  "))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

var initLogOnce sync.Once

func initLogging(verbose bool, prefix string) {
	initLogOnce.Do(func() {
		minLevel := log.Info
		if verbose {
			minLevel = log.Debug
		}
		log.SetDefault(&log.LevelFilter{
			Min:    minLevel,
			Output: log.New(os.Stderr, prefix, log.StdFlags, nil),
		})
	})
}
