// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luacache caches diagnostic results for unchanged scripts
// across HTTP validation requests, keyed by a content hash, so the
// serve subcommand can skip re-lexing and re-parsing scripts it has
// already seen.
package luacache

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/redis/go-redis/v9"

	"github.com/JEBANERD/luaucheck/internal/luadiag"
)

// TTL is how long a cached diagnostic result is trusted before it must
// be recomputed.
const TTL = 1 * time.Hour

// Cache stores the outcome of validating a script, keyed by the FNV-1a
// hash of its content, in a Redis-compatible store.
type Cache struct {
	client *redis.Client
}

// New wraps an existing Redis client. The server subcommand constructs
// client from configuration; tests construct one pointed at a
// [github.com/alicebob/miniredis/v2] instance instead of a live server.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Key returns the cache key for a script's content.
func Key(content string) string {
	h := fnv.New64a()
	h.Write([]byte(content))
	return fmt.Sprintf("luacheck:diag:%x", h.Sum64())
}

// cachedResult is the JSON envelope stored per key: nil Diagnostic means
// the script validated cleanly.
type cachedResult struct {
	Diagnostic *luadiag.Diagnostic `json:"diagnostic,omitempty"`
}

// Get looks up the diagnostic (if any) previously recorded for content.
// The second return value reports whether a cached result was found.
func (c *Cache) Get(ctx context.Context, content string) (*luadiag.Diagnostic, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, Key(content)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return nil, false
		}
		return nil, false
	}
	var result cachedResult
	if jsonv2.Unmarshal(data, &result) != nil {
		return nil, false
	}
	return result.Diagnostic, true
}

// Set records the diagnostic produced for content (nil meaning the
// script validated cleanly), expiring after [TTL].
func (c *Cache) Set(ctx context.Context, content string, diagnostic *luadiag.Diagnostic) {
	if c == nil || c.client == nil {
		return
	}
	data, err := jsonv2.Marshal(cachedResult{Diagnostic: diagnostic})
	if err != nil {
		return
	}
	c.client.Set(ctx, Key(content), data, TTL)
}
