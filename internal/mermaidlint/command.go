// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package mermaidlint

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// New returns the mermaid-lint command: it scans a directory of
// Markdown files for Mermaid diagrams, classifies each by type, and
// (with --render) shells out to a Mermaid CLI to produce SVGs.
func New() *cobra.Command {
	c := &cobra.Command{
		Use:                   "mermaid-lint [ROOT]",
		Short:                 "validate Mermaid diagrams embedded in Markdown files",
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	output := c.Flags().String("output", "docs/assets/diagrams", "directory to write rendered SVGs into")
	render := c.Flags().Bool("render", false, "render diagrams to SVG when a Mermaid CLI is available")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		return Run(cmd.Context(), cmd.OutOrStdout(), root, *output, *render)
	}
	return c
}

// Run scans root for Markdown files, validates every Mermaid block it
// finds, and optionally renders them to outputDir. It returns an error
// if any block's diagram type cannot be determined.
func Run(ctx context.Context, w io.Writer, root, outputDir string, render bool) error {
	files, err := FindMarkdownFiles(root)
	if err != nil {
		return err
	}

	var blocks []Block
	for _, file := range files {
		found, err := ExtractBlocks(file)
		if err != nil {
			return err
		}
		blocks = append(blocks, found...)
	}

	if len(blocks) == 0 {
		fmt.Fprintln(w, "No Mermaid code blocks found.")
		return nil
	}

	var badBlocks []Block
	for i := range blocks {
		diagramType := DetectDiagramType(blocks[i].Code)
		if diagramType == "" {
			badBlocks = append(badBlocks, blocks[i])
			continue
		}
		blocks[i].DiagramType = diagramType
	}

	if len(badBlocks) > 0 {
		fmt.Fprintln(w, "Mermaid validation failed:")
		for _, block := range badBlocks {
			fmt.Fprintf(w, "  - %s:%d: unable to determine diagram type\n", block.FilePath, block.StartLine)
		}
		return fmt.Errorf("%d mermaid block(s) failed validation", len(badBlocks))
	}

	fmt.Fprintf(w, "Validated %d Mermaid diagram(s).\n", len(blocks))

	if !render {
		return nil
	}
	command, ok := ResolveCLI()
	if !ok {
		fmt.Fprintln(w, "Mermaid CLI not available (expected 'mmdc' or command specified via MERMAID_CLI). Skipping rendering.")
		return nil
	}
	for _, block := range blocks {
		if err := RenderBlock(ctx, block, outputDir, command); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "Rendered %d diagram(s) into %s.\n", len(blocks), outputDir)
	return nil
}
