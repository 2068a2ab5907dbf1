// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luadiag builds human-readable diagnostic records from a
// [github.com/JEBANERD/luaucheck/internal/luaparse] syntax error.
package luadiag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JEBANERD/luaucheck/internal/lualex"
	"github.com/JEBANERD/luaucheck/internal/luaparse"
)

// Diagnostic is a single syntax-error report for one script in a bundle.
type Diagnostic struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Message string `json:"message"`
	Snippet string `json:"snippet"`
}

// context is the number of lines shown before and after the offending line.
const context = 2

// New builds a [Diagnostic] for path from a [*luaparse.SyntaxError],
// extracting a snippet of source centered on the error's line.
func New(path, source string, synErr *luaparse.SyntaxError) *Diagnostic {
	return &Diagnostic{
		Path:    path,
		Line:    synErr.Position.Line,
		Message: synErr.Message,
		Snippet: Snippet(source, synErr.Position.Line),
	}
}

// NewFromError builds a [Diagnostic] for path from any error returned by
// [github.com/JEBANERD/luaucheck/internal/lualex.Tokenize] or
// [github.com/JEBANERD/luaucheck/internal/luaparse.Validate]. It reports false if err
// is nil or not a positioned lex or syntax error.
func NewFromError(path, source string, err error) (*Diagnostic, bool) {
	var synErr *luaparse.SyntaxError
	if errors.As(err, &synErr) {
		return New(path, source, synErr), true
	}
	var posErr *lualex.PositionError
	if errors.As(err, &posErr) {
		return &Diagnostic{
			Path:    path,
			Line:    posErr.Position.Line,
			Message: posErr.Err.Error(),
			Snippet: Snippet(source, posErr.Position.Line),
		}, true
	}
	return nil, false
}

// Snippet returns the lines of source centered on errorLine (1-based),
// clamped to the bounds of the file. The offending line is prefixed with
// "> ", every other line with "  ", followed by a 4-wide right-aligned line
// number and ": ".
func Snippet(source string, errorLine int) string {
	lines := splitLines(source)
	if len(lines) == 0 {
		return ""
	}
	start := errorLine - 1 - context
	if start < 0 {
		start = 0
	}
	end := errorLine - 1 + context
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	sb := new(strings.Builder)
	for idx := start; idx <= end; idx++ {
		if idx > start {
			sb.WriteByte('\n')
		}
		prefix := "  "
		if idx == errorLine-1 {
			prefix = "> "
		}
		sb.WriteString(prefix)
		sb.WriteString(padLineNumber(idx + 1))
		sb.WriteString(": ")
		sb.WriteString(lines[idx])
	}
	return sb.String()
}

// splitLines splits source the same way Python's str.splitlines treats a
// script: on "\n", "\r\n", and a bare "\r".
func splitLines(source string) []string {
	if source == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			lines = append(lines, source[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, source[start:i])
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(source) {
		lines = append(lines, source[start:])
	}
	return lines
}

func padLineNumber(n int) string {
	s := strconv.Itoa(n)
	if len(s) >= 4 {
		return s
	}
	return fmt.Sprintf("%*s", 4, s)
}
