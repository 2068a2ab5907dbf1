// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os"

	"zombiezen.com/go/log"

	"github.com/JEBANERD/luaucheck/internal/luacli"
)

func main() {
	rootCommand := luacli.NewAutofixCommand()
	if err := rootCommand.Execute(); err != nil {
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}
