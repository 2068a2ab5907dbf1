// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os"
	"os/signal"

	"zombiezen.com/go/bass/sigterm"
	"zombiezen.com/go/log"

	"github.com/JEBANERD/luaucheck/internal/mermaidlint"
)

func main() {
	rootCommand := mermaidlint.New()
	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}
