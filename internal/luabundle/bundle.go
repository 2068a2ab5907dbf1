// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luabundle reads and writes the JSON bundle format shared by
// the validator and auto-fixer: a collection of named Luau scripts in
// one of three shapes, plus the on-disk conveniences (HuJSON syntax,
// bzip2 compression) that hand-maintained fixture bundles rely on.
package luabundle

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dsnet/compress/bzip2"
	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tailscale/hujson"
)

// Entry is one script inside a bundle: a path and a handle onto the
// JSON value holding its source text, so [Entry.SetSource] edits the
// decoded document in place.
type Entry struct {
	Path      string
	key       string
	container map[string]any
}

// Source returns the script's current text.
func (e *Entry) Source() string {
	s, _ := e.container[e.key].(string)
	return s
}

// SetSource replaces the script's text in the decoded document. It does
// not by itself change e.Source's return value's backing field name:
// the key the text was found under (content, source, or Source, or the
// bundle's own path-to-content mapping) is preserved.
func (e *Entry) SetSource(source string) {
	e.container[e.key] = source
}

// Load reads a bundle file from path, transparently bzip2-decompressing
// it (detected by a ".bz2" suffix or a "BZh" magic prefix) and
// standardizing HuJSON syntax (trailing commas, // and /* */ comments)
// to strict JSON.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	if strings.HasSuffix(path, ".bz2") || bytes.HasPrefix(data, []byte("BZh")) {
		zr, err := bzip2.NewReader(bytes.NewReader(data), nil)
		if err != nil {
			return nil, fmt.Errorf("load bundle %s: decompress: %w", path, err)
		}
		defer zr.Close()
		data, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("load bundle %s: decompress: %w", path, err)
		}
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("load bundle %s: %w", path, err)
	}
	return standardized, nil
}

// Parse decodes a standardized JSON bundle document into its generic
// object form, ready for [ValidatorEntries] or [FixerEntries].
func Parse(data []byte) (any, error) {
	var raw any
	if err := jsonv2.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	return raw, nil
}

// Marshal re-encodes a decoded bundle document (as returned by [Parse],
// possibly mutated via [Entry.SetSource]) with two-space indentation, to
// match the reference tooling's save_json behavior.
func Marshal(raw any) ([]byte, error) {
	data, err := jsonv2.Marshal(raw, jsontext.WithIndent("  "))
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	return data, nil
}

// sourceKeys lists the fields, in preference order, that may hold a
// script's text.
var sourceKeys = []string{"content", "source", "Source"}

// ValidatorEntries collects script entries the way the reference
// checker does: only a "content" field is recognized as source text.
func ValidatorEntries(raw any) []*Entry {
	return collect(raw, sourceKeys[:1], false)
}

// FixerEntries collects script entries the way the reference fixer
// does: "content", "source", or "Source" (checked in that order) may
// hold the text, and a "files" array entry may still fall back from
// "path" to "name" (matching the reference implementation's shared
// dict handler, which the checker does not use for the "files" shape).
func FixerEntries(raw any) []*Entry {
	return collect(raw, sourceKeys, true)
}

func collect(raw any, keys []string, filesAllowName bool) []*Entry {
	switch v := raw.(type) {
	case []any:
		return collectDicts(v, keys, true)
	case map[string]any:
		if files, ok := v["files"].([]any); ok {
			return collectDicts(files, keys, filesAllowName)
		}
		var entries []*Entry
		for key, value := range v {
			if _, ok := value.(string); ok {
				entries = append(entries, &Entry{Path: key, key: key, container: v})
			}
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
		return entries
	default:
		return nil
	}
}

func collectDicts(items []any, keys []string, allowName bool) []*Entry {
	var entries []*Entry
	for _, item := range items {
		dict, ok := item.(map[string]any)
		if !ok {
			continue
		}
		path, ok := dict["path"].(string)
		if !ok && allowName {
			path, ok = dict["name"].(string)
		}
		if !ok {
			continue
		}
		for _, key := range keys {
			if _, ok := dict[key].(string); ok {
				entries = append(entries, &Entry{Path: path, key: key, container: dict})
				break
			}
		}
	}
	return entries
}
