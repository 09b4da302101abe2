// handlerd is the quest handler HTTP service: recon ingestion, module
// listing, quest generation, feedback and offline sync.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldops/handler/dbopen"
	"github.com/fieldops/handler/dbsync"
	"github.com/fieldops/handler/internal/store"
	"github.com/fieldops/handler/observability"
	"github.com/fieldops/handler/oracle"
	"github.com/fieldops/handler/quest"
)

// eventRetentionDays bounds the business event log table; rows older
// than this are deleted on startup.
const eventRetentionDays = 30

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := quest.DefaultConfig()
	if *configPath != "" {
		loaded, err := quest.LoadConfig(*configPath)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else if key := os.Getenv("ORACLE_API_KEY"); key != "" {
		cfg.Oracle.APIKey = key
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Listen = ":" + port
	}

	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll(), dbopen.WithSchema(store.Schema))
	if err != nil {
		slog.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := observability.Init(db); err != nil {
		slog.Error("init observability", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := observability.Cleanup(ctx, db, observability.RetentionConfig{EventLogsDays: eventRetentionDays}); err != nil {
			slog.Warn("event log cleanup", "error", err)
		}
	}()

	orc := oracle.NewClient(oracle.Config{
		BaseURL:     cfg.Oracle.BaseURL,
		APIKey:      cfg.Oracle.APIKey,
		Model:       cfg.Oracle.Model,
		Temperature: cfg.Oracle.Temperature,
		Timeout:     time.Duration(cfg.Oracle.TimeoutSec) * time.Second,
	})

	events := observability.NewEventLogger(db)
	svc := quest.New(db, orc, cfg, logger, quest.WithEventLogger(events))
	sync := dbsync.New(svc.Store(), logger, dbsync.WithEventLogger(events))

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newRouter(svc, sync),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      180 * time.Second, // oracle calls are slow
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}
