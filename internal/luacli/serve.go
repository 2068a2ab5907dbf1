// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luacli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"zombiezen.com/go/bass/sigterm"
	"zombiezen.com/go/log"

	"github.com/JEBANERD/luaucheck/internal/luaaudit"
	"github.com/JEBANERD/luaucheck/internal/luacache"
	"github.com/JEBANERD/luaucheck/internal/luaserve"
)

// shutdownGrace bounds how long Serve waits for in-flight requests to
// drain after SIGINT/SIGTERM before giving up.
const shutdownGrace = 10 * time.Second

func newServeCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "serve",
		Short:                 "run the HTTP validation service",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	defaults := defaultServeConfig()
	c.Flags().String("addr", defaults.Addr, "`address` to listen on")
	c.Flags().String("redis-addr", defaults.RedisAddr, "`address` of the Redis instance backing the diagnostic cache")
	c.Flags().String("audit-db", defaults.AuditDB, "`path` to the run-history audit database")
	configPath := c.Flags().String("config", "", "`path` to a config file (overridden by flags)")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadServeConfig(cmd, *configPath)
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	}
	return c
}

func runServe(ctx context.Context, cfg serveConfig) error {
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	ledger, err := luaaudit.Open(cfg.AuditDB)
	if err != nil {
		return err
	}
	defer ledger.Close()

	srv := luaserve.New(luaserve.Options{
		Addr:   cfg.Addr,
		Cache:  luacache.New(redisClient),
		Ledger: ledger,
	})

	ctx, stop := signal.NotifyContext(ctx, sigterm.Signals()...)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx) }()

	log.Infof(ctx, "listening on %s", cfg.Addr)
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Infof(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
