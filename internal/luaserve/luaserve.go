// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luaserve implements the HTTP validation service: a small
// surface exposing the validator and auto-fixer over the network, for
// callers that would rather not shell out to the CLI per bundle.
package luaserve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	jsonv2 "github.com/go-json-experiment/json"
	"zombiezen.com/go/log"
	"zombiezen.com/go/xcontext"

	"github.com/JEBANERD/luaucheck/internal/luaaudit"
	"github.com/JEBANERD/luaucheck/internal/luabundle"
	"github.com/JEBANERD/luaucheck/internal/luacache"
	"github.com/JEBANERD/luaucheck/internal/luacheck"
	"github.com/JEBANERD/luaucheck/internal/luadiag"
)

// Options configures a [Server].
type Options struct {
	Addr   string
	Cache  *luacache.Cache
	Ledger *luaaudit.Ledger
}

// Server is the HTTP validation service.
type Server struct {
	httpServer *http.Server
	cache      *luacache.Cache
	ledger     *luaaudit.Ledger
}

// New builds a [Server] listening on opts.Addr. Call [Server.Serve] to
// start it and [Server.Shutdown] to drain it.
func New(opts Options) *Server {
	s := &Server{cache: opts.Cache, ledger: opts.Ledger}

	mux := chi.NewRouter()
	mux.Post("/v1/validate", s.handleValidate)
	mux.Post("/v1/fix", s.handleFix)
	mux.Get("/healthz", s.handleHealthz)

	s.httpServer = &http.Server{
		Addr:    opts.Addr,
		Handler: handlers.CombinedLoggingHandler(os.Stdout, mux),
	}
	return s
}

// Serve runs the server until it is shut down, first sending systemd a
// READY=1 notification (no WATCHDOG=1 keep-alives are sent). It returns
// http.ErrServerClosed on a graceful shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debugf(ctx, "systemd notify failed (likely not running under systemd): %v", err)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var bundle any
	if err := jsonv2.UnmarshalRead(r.Body, &bundle); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}
	diagnostics := s.validateBundle(r.Context(), bundle)
	writeJSON(w, http.StatusOK, diagnostics)
	s.recordRun(r.Context(), len(luabundle.ValidatorEntries(bundle)), len(diagnostics), false)
}

type fixRequest struct {
	Bundle      any                   `json:"bundle"`
	Diagnostics []*luadiag.Diagnostic `json:"diagnostics"`
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	var req fixRequest
	if err := jsonv2.UnmarshalRead(r.Body, &req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}
	entries := luabundle.FixerEntries(req.Bundle)
	var targets []string
	for _, d := range req.Diagnostics {
		targets = append(targets, d.Path)
	}
	summary := luacheck.Fix(entries, targets, req.Diagnostics)
	writeJSON(w, http.StatusOK, summary)
	s.recordRun(r.Context(), len(entries), len(summary.RemainingDiagnostics), true)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// validateBundle runs the orchestrator's validator over bundle, consulting
// and populating the diagnostic cache per script.
func (s *Server) validateBundle(ctx context.Context, bundle any) []*luadiag.Diagnostic {
	entries := luabundle.ValidatorEntries(bundle)
	diagnostics := []*luadiag.Diagnostic{}
	var uncached []*luabundle.Entry
	for _, entry := range entries {
		if diag, ok := s.cache.Get(ctx, entry.Source()); ok {
			if diag != nil {
				diagnostics = append(diagnostics, diag)
			}
			continue
		}
		uncached = append(uncached, entry)
	}
	for _, diag := range luacheck.Validate(uncached) {
		s.cache.Set(ctx, diagnosticSource(uncached, diag), diag)
		diagnostics = append(diagnostics, diag)
	}
	for _, entry := range uncached {
		if !containsPath(diagnostics, entry.Path) {
			s.cache.Set(ctx, entry.Source(), nil)
		}
	}
	return diagnostics
}

func diagnosticSource(entries []*luabundle.Entry, d *luadiag.Diagnostic) string {
	for _, e := range entries {
		if e.Path == d.Path {
			return e.Source()
		}
	}
	return ""
}

func containsPath(diagnostics []*luadiag.Diagnostic, path string) bool {
	for _, d := range diagnostics {
		if d.Path == path {
			return true
		}
	}
	return false
}

func (s *Server) recordRun(ctx context.Context, scriptCount, diagnosticCount int, autoFixApplied bool) {
	if s.ledger == nil {
		return
	}
	detached := xcontext.Detach(ctx)
	go func() {
		err := s.ledger.Record(detached, luaaudit.Run{
			ID:              uuid.New(),
			StartedAt:       time.Now(),
			ScriptCount:     scriptCount,
			DiagnosticCount: diagnosticCount,
			AutoFixApplied:  autoFixApplied,
		})
		if err != nil {
			log.Errorf(detached, "record audit run: %v", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := jsonv2.MarshalWrite(w, v); err != nil {
		log.Errorf(context.Background(), "write response: %v", err)
	}
}
