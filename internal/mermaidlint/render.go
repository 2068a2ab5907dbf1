// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package mermaidlint

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	shellquote "github.com/kballard/go-shellquote"
)

// ResolveCLI finds a Mermaid CLI to invoke for rendering: the command
// named in $MERMAID_CLI (shell-quoted, like the original collaborator
// tool's shlex.split), falling back to "mmdc" on $PATH. It reports
// (nil, false) when neither is available.
func ResolveCLI() ([]string, bool) {
	if envCLI := os.Getenv("MERMAID_CLI"); envCLI != "" {
		parts, err := shellquote.Split(envCLI)
		if err == nil && len(parts) > 0 {
			if resolved, err := exec.LookPath(parts[0]); err == nil {
				parts[0] = resolved
				return parts, true
			}
		}
	}
	if resolved, err := exec.LookPath("mmdc"); err == nil {
		return []string{resolved}, true
	}
	return nil, false
}

// RenderBlock writes block's code to a temporary .mmd file and invokes
// command to render it to an SVG under outputDir named by the block's
// slug.
func RenderBlock(ctx context.Context, block Block, outputDir string, command []string) error {
	if err := os.MkdirAll(outputDir, 0o777); err != nil {
		return err
	}
	outputPath := filepath.Join(outputDir, block.Slug()+".svg")

	tmp, err := os.CreateTemp("", "mermaidlint-*.mmd")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.WriteString(block.Code); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	args := append(append([]string{}, command[1:]...), "-i", tmpPath, "-o", outputPath)
	cmd := exec.CommandContext(ctx, command[0], args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("render %s: %w: %s", block.Slug(), err, output)
	}
	return nil
}
