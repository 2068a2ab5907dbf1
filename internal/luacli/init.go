// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luacli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInitCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "init [PATH]",
		Short:                 "scaffold a starter config file for serve mode",
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		path := "luau-syntax-check.json"
		if len(args) == 1 {
			path = args[0]
		}
		return runInit(path)
	}
	return c
}

func runInit(path string) error {
	cfg := defaultServeConfig()
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if err := askServeConfig(&cfg); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}
	return writeServeConfig(path, cfg)
}

func askServeConfig(cfg *serveConfig) error {
	questions := []*survey.Question{
		{
			Name:   "addr",
			Prompt: &survey.Input{Message: "Listen address:", Default: cfg.Addr},
		},
		{
			Name:   "redisaddr",
			Prompt: &survey.Input{Message: "Redis address for the diagnostic cache:", Default: cfg.RedisAddr},
		},
		{
			Name:   "auditdb",
			Prompt: &survey.Input{Message: "Audit database path:", Default: cfg.AuditDB},
		},
	}
	answers := struct {
		Addr      string
		RedisAddr string
		AuditDB   string
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}
	cfg.Addr = answers.Addr
	cfg.RedisAddr = answers.RedisAddr
	cfg.AuditDB = answers.AuditDB
	return nil
}

func writeServeConfig(path string, cfg serveConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	data, err := jsonv2.Marshal(cfg, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o666)
}
