// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaaudit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecordRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	ledger, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer ledger.Close()

	run := Run{
		ID:              uuid.New(),
		StartedAt:       time.Now(),
		ScriptCount:     3,
		DiagnosticCount: 1,
		AutoFixApplied:  true,
	}
	if err := ledger.Record(context.Background(), run); err != nil {
		t.Fatalf("Record: %v", err)
	}
}
