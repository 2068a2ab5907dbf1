// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luacli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/JEBANERD/luaucheck/internal/luadiag"
)

// printSummary writes a human-readable summary of diagnostics to w,
// colorizing the offending "> " snippet line when stdout is attached to
// a terminal. This never touches the JSON report file written by
// runCheck; it exists purely for interactive use.
func printSummary(w io.Writer, diagnostics []*luadiag.Diagnostic) {
	if len(diagnostics) == 0 {
		fmt.Fprintln(w, "Scan complete. 0 issue(s) found.")
		return
	}
	colorize := term.IsTerminal(int(os.Stdout.Fd()))
	marker := color.New(color.FgRed, color.Bold)

	fmt.Fprintf(w, "Scan complete. %d issue(s) found.\n", len(diagnostics))
	for _, d := range diagnostics {
		fmt.Fprintf(w, "%s:%d: %s\n", d.Path, d.Line, d.Message)
		for _, line := range strings.Split(d.Snippet, "\n") {
			if colorize && strings.HasPrefix(line, "> ") {
				marker.Fprintln(w, line)
			} else {
				fmt.Fprintln(w, line)
			}
		}
	}
}
