// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package mermaidlint finds Mermaid fenced code blocks inside a tree of
// Markdown files, classifies each by diagram type, and optionally
// shells out to a Mermaid CLI to render them to SVG.
package mermaidlint

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// diagramKeywords are the first-line tokens that identify a Mermaid
// diagram type.
var diagramKeywords = map[string]bool{
	"flowchart":      true,
	"graph":          true,
	"sequenceDiagram": true,
	"classDiagram":   true,
	"stateDiagram":   true,
	"erDiagram":      true,
	"journey":        true,
	"gantt":          true,
	"timeline":       true,
	"pie":            true,
	"mindmap":        true,
	"quadrantChart":  true,
	"gitGraph":       true,
}

var slugPattern = regexp.MustCompile(`[^0-9A-Za-z]+`)

// Block is one ```mermaid fenced code block found in a Markdown file.
type Block struct {
	FilePath    string
	StartLine   int
	Index       int
	Code        string
	DiagramType string
}

// Slug is a filesystem-safe name for the block, derived from its file
// path and position, matching the reference tool's rendered-file naming.
func (b Block) Slug() string {
	base := fmt.Sprintf("%s_%d", filepath.ToSlash(b.FilePath), b.Index)
	slug := strings.Trim(slugPattern.ReplaceAllString(base, "_"), "_")
	if slug == "" {
		return "diagram"
	}
	return slug
}

// FindMarkdownFiles returns every ".md" file under root, sorted.
func FindMarkdownFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ExtractBlocks reads path and returns every Mermaid fenced code block
// it contains, in document order. A block left unterminated at EOF is
// still reported, matching the reference tool's leniency.
func ExtractBlocks(path string) ([]Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var blocks []Block
	inBlock := false
	var lines []string
	startLine := 0
	index := 0
	lineNumber := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNumber++
		raw := scanner.Text()
		stripped := strings.TrimSpace(raw)
		if !inBlock {
			if strings.HasPrefix(strings.ToLower(stripped), "```mermaid") {
				inBlock = true
				lines = nil
				startLine = lineNumber + 1
				index++
			}
			continue
		}
		if strings.HasPrefix(stripped, "```") {
			blocks = append(blocks, Block{
				FilePath:  path,
				StartLine: startLine,
				Index:     index,
				Code:      strings.Join(lines, "\n"),
			})
			inBlock = false
			continue
		}
		lines = append(lines, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inBlock {
		blocks = append(blocks, Block{
			FilePath:  path,
			StartLine: startLine,
			Index:     index + 1,
			Code:      strings.Join(lines, "\n"),
		})
	}
	return blocks, nil
}

// DetectDiagramType inspects the first non-blank, non-directive line of
// code and returns the Mermaid keyword it opens with, or "" if none of
// the known diagram keywords matches.
func DetectDiagramType(code string) string {
	for _, raw := range strings.Split(code, "\n") {
		stripped := strings.TrimSpace(raw)
		if stripped == "" || strings.HasPrefix(stripped, "%%") {
			continue
		}
		fields := strings.Fields(stripped)
		if len(fields) == 0 {
			break
		}
		keyword := fields[0]
		if diagramKeywords[keyword] {
			return keyword
		}
		if keyword == "stateDiagram-v2" {
			return "stateDiagram"
		}
		break
	}
	return ""
}
