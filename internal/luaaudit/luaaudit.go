// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luaaudit persists one row per orchestrator run to a small
// embedded database, giving the serve subcommand an append-only
// history of how many scripts were checked, how many diagnostics were
// produced, and whether auto-fix ran.
package luaaudit

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitemigration"
	"zombiezen.com/go/sqlite/sqlitex"
)

//go:embed schema/*.sql
var migrationFiles embed.FS

//go:embed schema/insert_run.sql
var queryFiles embed.FS

var schemaState struct {
	init   sync.Once
	schema sqlitemigration.Schema
	err    error
}

func loadSchema() (sqlitemigration.Schema, error) {
	schemaState.init.Do(func() {
		for i := 1; ; i++ {
			name := fmt.Sprintf("schema/%02d.sql", i)
			migration, err := fs.ReadFile(migrationFiles, name)
			if errors.Is(err, fs.ErrNotExist) {
				break
			}
			if err != nil {
				schemaState.err = err
				return
			}
			schemaState.schema.Migrations = append(schemaState.schema.Migrations, string(migration))
		}
	})
	return schemaState.schema, schemaState.err
}

// Ledger is an append-only record of orchestrator runs backed by a
// SQLite database.
type Ledger struct {
	pool *sqlitemigration.Pool
	lock *fileLock
}

// Open opens (creating if necessary) the audit database at dbPath,
// taking an advisory lock on dbPath+".lock" so two serve processes
// never write to the same ledger concurrently. Callers are responsible
// for calling [Ledger.Close].
func Open(dbPath string) (*Ledger, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("open audit ledger: %w", err)
	}
	lock, err := lockFile(dbPath + ".lock")
	if err != nil {
		return nil, fmt.Errorf("open audit ledger: %w", err)
	}
	pool := sqlitemigration.NewPool(dbPath, schema, sqlitemigration.Options{
		Flags: sqlite.OpenCreate | sqlite.OpenReadWrite,
	})
	return &Ledger{pool: pool, lock: lock}, nil
}

// Close releases the ledger's database connections and its advisory
// lock.
func (l *Ledger) Close() error {
	closeErr := l.pool.Close()
	if unlockErr := l.lock.unlock(); unlockErr != nil && closeErr == nil {
		closeErr = unlockErr
	}
	return closeErr
}

// Run is one recorded orchestrator invocation.
type Run struct {
	ID              uuid.UUID
	StartedAt       time.Time
	ScriptCount     int
	DiagnosticCount int
	AutoFixApplied  bool
}

// Record appends run to the ledger. Callers writing from an HTTP
// handler should pass a context detached from the request (see
// [zombiezen.com/go/xcontext.Detach]) so that a client disconnecting
// mid-request never drops a row for work that has already happened.
func (l *Ledger) Record(ctx context.Context, run Run) error {
	conn, err := l.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("record audit run: %w", err)
	}
	defer l.pool.Put(conn)

	err = sqlitex.ExecuteFS(conn, queryFiles, "schema/insert_run.sql", &sqlitex.ExecOptions{
		Named: map[string]any{
			":run_id":           run.ID.String(),
			":started_at":       run.StartedAt.UTC().Format(time.RFC3339),
			":script_count":     run.ScriptCount,
			":diagnostic_count": run.DiagnosticCount,
			":auto_fix_applied": boolToInt(run.AutoFixApplied),
		},
	})
	if err != nil {
		return fmt.Errorf("record audit run: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
