package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/coursestats/internal/analyzer"
	"github.com/JonMunkholm/coursestats/internal/config"
	"github.com/JonMunkholm/coursestats/internal/logging"
	"github.com/JonMunkholm/coursestats/internal/store"
	"github.com/JonMunkholm/coursestats/internal/web"
)

func main() {
	// Overload lets a local .env win over the shell environment
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	src := analyzer.NewFileSource(cfg.Dataset.Path, cfg.Dataset.Cache)
	a := analyzer.New(src)

	// Warm the snapshot so a bad dataset is reported at startup. The server
	// still starts; queries answer with the mapped error until it is fixed.
	ctx := context.Background()
	if records, err := a.Records(ctx); err != nil {
		slog.Warn("dataset not loaded", "path", src.Path(), "error", err)
	} else {
		numbers, instructors := a.Catalog().Counts()
		slog.Info("dataset loaded",
			"path", src.Path(),
			"rows", len(records),
			"course_numbers", numbers,
			"instructors", instructors,
		)
	}

	var archiver web.Archiver
	if cfg.Database.Enabled() {
		st, err := store.Open(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to open archive database", "error", err)
			os.Exit(1)
		}
		defer st.Close()

		if err := st.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare archive schema", "error", err)
			os.Exit(1)
		}

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("archive database connected", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("archive database connected")
		}
		archiver = st
	} else {
		slog.Info("archive disabled: DATABASE_URL not set")
	}

	server := web.NewServer(a, archiver, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
