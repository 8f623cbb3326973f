package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"trade_advisor/internal/app/di"
	"trade_advisor/internal/platform/config"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	c, err := di.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to build components", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	symbols, err := c.Instruments.ListActiveCodes(ctx)
	if err != nil {
		slog.Error("failed to load symbols", "error", err)
		os.Exit(1)
	}

	if err := c.Ingest.IngestAll(ctx, symbols); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	slog.Info("ingest ok", "symbols", len(symbols))
}
