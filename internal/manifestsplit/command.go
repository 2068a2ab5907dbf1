// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package manifestsplit

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
)

// New returns the manifest-split command: it paginates a JSON
// repository manifest into ChatGPT-friendly page files plus an index.
func New() *cobra.Command {
	c := &cobra.Command{
		Use:                   "manifest-split MANIFEST",
		Short:                 "split a JSON repository manifest into paginated files",
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	outputDir := c.Flags().String("output-dir", "", "directory to write page files into (defaults to repo_manifest_pages next to MANIFEST)")
	indexPath := c.Flags().String("index", "", "path to write the page index to (defaults to repo_manifest_index.json next to MANIFEST)")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		manifestPath := args[0]
		dir := *outputDir
		if dir == "" {
			dir = filepath.Join(filepath.Dir(manifestPath), "repo_manifest_pages")
		}
		index := *indexPath
		if index == "" {
			index = filepath.Join(filepath.Dir(manifestPath), IndexFilename)
		}
		return Run(cmd.OutOrStdout(), manifestPath, dir, index)
	}
	return c
}

// Run splits manifestPath into outputDir and writes an index at
// indexPath, printing a one-line summary.
func Run(w io.Writer, manifestPath, outputDir, indexPath string) error {
	summaries, err := Split(manifestPath, outputDir, indexPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %d page(s) to %s and an index at %s.\n", len(summaries), outputDir, indexPath)
	return nil
}
