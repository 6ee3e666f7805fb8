// Command report prints every course report for the configured dataset.
//
// Query arguments come from the REPORT_* environment variables; see
// internal/config for the defaults.
package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/coursestats/internal/analyzer"
	"github.com/JonMunkholm/coursestats/internal/config"
	"github.com/JonMunkholm/coursestats/internal/logging"
	"github.com/JonMunkholm/coursestats/internal/report"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One load serves all six sections.
	a := analyzer.New(analyzer.NewFileSource(cfg.Dataset.Path, true))

	out := bufio.NewWriter(os.Stdout)
	if err := report.Run(ctx, out, a, cfg.Report); err != nil {
		_ = out.Flush()
		msg := analyzer.MapError(err)
		slog.Error("report failed", "error", err, "code", msg.Code, "action", msg.Action)
		os.Exit(1)
	}
	if err := out.Flush(); err != nil {
		slog.Error("write report", "error", err)
		os.Exit(1)
	}
}
