// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luacli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go4.org/xdgdir"
)

// serveConfig holds the settings the serve subcommand needs, loaded
// with viper's documented precedence: flag > environment > config file
// > default.
type serveConfig struct {
	Addr      string `mapstructure:"addr" json:"addr"`
	RedisAddr string `mapstructure:"redis_addr" json:"redis_addr"`
	AuditDB   string `mapstructure:"audit_db" json:"audit_db"`
}

func defaultServeConfig() serveConfig {
	return serveConfig{
		Addr:      ":8080",
		RedisAddr: "localhost:6379",
		AuditDB:   filepath.Join(xdgdir.Cache.Path(), "luau-syntax-check", "audit.db"),
	}
}

func loadServeConfig(cmd *cobra.Command, configPath string) (serveConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("LUAU_SYNTAX_CHECK")
	v.AutomaticEnv()
	cfg := defaultServeConfig()
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("redis_addr", cfg.RedisAddr)
	v.SetDefault("audit_db", cfg.AuditDB)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return serveConfig{}, fmt.Errorf("load config: %w", err)
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return serveConfig{}, fmt.Errorf("load config: %w", err)
	}
	// The dashed flag names differ from the config keys they override.
	for key, flag := range map[string]string{"redis_addr": "redis-addr", "audit_db": "audit-db"} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return serveConfig{}, fmt.Errorf("load config: %w", err)
		}
	}

	cfg.Addr = v.GetString("addr")
	cfg.RedisAddr = v.GetString("redis_addr")
	cfg.AuditDB = v.GetString("audit_db")
	return cfg, nil
}
