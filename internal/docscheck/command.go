// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package docscheck

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
)

// New returns the docs-check command: it walks a directory of Markdown
// files and reports any link or anchor that does not resolve.
func New() *cobra.Command {
	c := &cobra.Command{
		Use:                   "docs-check [DOCS_DIR]",
		Short:                 "check Markdown links and anchors for breakage",
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	repoRoot := c.Flags().String("repo-root", "", "repository root links are resolved against (defaults to the parent of DOCS_DIR)")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		docsDir := "docs"
		if len(args) > 0 {
			docsDir = args[0]
		}
		root := *repoRoot
		if root == "" {
			root = filepath.Dir(docsDir)
		}
		return Run(cmd.OutOrStdout(), root, docsDir)
	}
	return c
}

// Run scans docsDir for Markdown files, validates their links and
// anchors against repoRoot, and writes a summary to w. It returns an
// error if any link or anchor is broken.
func Run(w io.Writer, repoRoot, docsDir string) error {
	docs, err := FindMarkdownFiles(docsDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintf(w, "No Markdown files found under %s.\n", docsDir)
		return nil
	}

	issues, totalLinks, err := CheckLinks(repoRoot, docs)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Scanned %d Markdown files with %d links.\n", len(docs), totalLinks)
	if len(issues) == 0 {
		fmt.Fprintln(w, "No broken links or anchors detected.")
		return nil
	}

	fmt.Fprintln(w, "Broken links/anchors:")
	for _, issue := range issues {
		fmt.Fprintf(w, "  %s: %s (%s)\n", issue.Source, issue.Link, issue.Reason)
	}
	return fmt.Errorf("%d broken link(s)/anchor(s) found", len(issues))
}
