package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/jobassist/internal/config"
	"github.com/kalambet/jobassist/internal/mcpserver"
	"github.com/kalambet/jobassist/internal/search"
	"github.com/kalambet/jobassist/internal/web"
)

const sweepInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front-end (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the search_jobs tool over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "jobassist version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	client := newSearchClient(cfg)
	searchTimeout := parseDuration("backend.timeout", cfg.Backend.Timeout, search.DefaultTimeout)
	ttl := parseDuration("session.ttl", cfg.Session.TTL, 30*time.Minute)

	sessions := web.NewSessions(client, ttl, slog.Default())
	handler := web.NewHandler(sessions, searchTimeout, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		printSuccess("jobassist listening on http://%s", addr)
		slog.Info("search backend", "url", client.BaseURL(), "envelope_depth", cfg.Backend.EnvelopeDepth)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx, sweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")

		// Graceful shutdown with timeout, shared by the server and the
		// searches it started.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := handler.Shutdown(shutdownCtx); err != nil {
			slog.Warn("cancelled unfinished searches", "error", err)
		}
		return nil
	})

	return g.Wait()
}

func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// stdout carries the protocol; logs stay on stderr.
	setupLogging(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mcpSrv := mcpserver.New(newSearchClient(cfg), version)
	slog.Info("MCP server started (stdio transport)", "backend", cfg.Backend.BaseURL)

	stdioSrv := server.NewStdioServer(mcpSrv)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

func newSearchClient(cfg config.Config) *search.Client {
	return search.New(cfg.Backend.BaseURL,
		search.WithTimeout(parseDuration("backend.timeout", cfg.Backend.Timeout, search.DefaultTimeout)),
		search.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.Burst),
		search.WithEnvelopeDepth(cfg.Backend.EnvelopeDepth),
	)
}

func setupLogging(level string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)})))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(key, raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}
