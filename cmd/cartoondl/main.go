package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/visper-inc/cartoondl/api"
	"github.com/visper-inc/cartoondl/cache"
	"github.com/visper-inc/cartoondl/config"
	"github.com/visper-inc/cartoondl/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("cartoondl starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"allowedPrefix", cfg.Fetch.AllowedPrefix,
		"fetchTimeout", cfg.Fetch.Timeout,
		"chromeTLS", cfg.Fetch.ChromeTLS,
		"proxy", cfg.Fetch.Proxy != "",
	)

	// ── 3. Initialise fetcher ───────────────────────────────────────
	fetcher, err := scraper.NewHTTPFetcher(cfg.Fetch)
	if err != nil {
		slog.Error("failed to initialise fetcher", "error", err)
		os.Exit(1)
	}
	defer fetcher.CloseIdleConnections()

	// ── 4. Initialise cache (nil when disabled) ─────────────────────
	cc := cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	defer cc.Stop()
	if cc != nil {
		slog.Info("response cache enabled", "ttl", cfg.Cache.TTL, "maxEntries", cfg.Cache.MaxEntries)
	}

	// ── 5. Setup router ─────────────────────────────────────────────
	routerCtx, stopRouter := context.WithCancel(context.Background())
	defer stopRouter()
	router := api.NewRouter(routerCtx, fetcher, cc, cfg, time.Now())

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("cartoondl stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
