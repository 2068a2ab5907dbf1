// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os"

	"zombiezen.com/go/log"

	"github.com/JEBANERD/luaucheck/internal/manifestsplit"
)

func main() {
	rootCommand := manifestsplit.New()
	if err := rootCommand.Execute(); err != nil {
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}
