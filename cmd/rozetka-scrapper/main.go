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

	"github.com/ByteMe6/rozetka-scrapper/api"
	"github.com/ByteMe6/rozetka-scrapper/browser"
	"github.com/ByteMe6/rozetka-scrapper/config"
	"github.com/ByteMe6/rozetka-scrapper/ratelimit"
	"github.com/ByteMe6/rozetka-scrapper/scraper"
	"github.com/ByteMe6/rozetka-scrapper/service"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("rozetka-scrapper starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"contexts", cfg.Browser.Contexts,
	)

	// ── 3. Launch the browser context pool ──────────────────────────
	pool, err := browser.NewPool(cfg.Browser)
	if err != nil {
		slog.Error("failed to launch browser pool", "error", err)
		os.Exit(1)
	}
	defer pool.Shutdown()

	// ── 4. Wire the fetch path: pacing limiter → orchestrator ───────
	limiter := ratelimit.New(cfg.Pacing)
	orc := scraper.NewOrchestrator(pool, limiter, cfg.Fetch, cfg.Browser.Proxy)

	// ── 5. Service layer: cache + retries + batch runner ────────────
	svc := service.New(orc, cfg)

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(svc, pool, cfg, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// pool.Shutdown() runs via defer — closes contexts and kills Chrome.
	slog.Info("rozetka-scrapper stopped")
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
