package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade_advisor/internal/app/di"
	"trade_advisor/internal/app/router"
	advisorhandler "trade_advisor/internal/feature/advisor/transport/handler"
	analysishandler "trade_advisor/internal/feature/analysis/transport/handler"
	authhandler "trade_advisor/internal/feature/auth/transport/handler"
	candleshandler "trade_advisor/internal/feature/candles/transport/handler"
	chathandler "trade_advisor/internal/feature/chathistory/transport/handler"
	instrumenthandler "trade_advisor/internal/feature/instruments/transport/handler"
	quotehandler "trade_advisor/internal/feature/quotes/transport/handler"
	settingshandler "trade_advisor/internal/feature/settings/transport/handler"
	technicalhandler "trade_advisor/internal/feature/technical/transport/handler"
	"trade_advisor/internal/platform/config"
	platformhandler "trade_advisor/internal/platform/http/handler"
	"trade_advisor/internal/platform/scheduler"
)

const (
	shutdownTimeout = 10 * time.Second
	cycleTimeout    = 5 * time.Minute
	ingestTimeout   = 30 * time.Minute
	purgeTimeout    = 30 * time.Second
	purgeSpec       = "0 0 * * * *"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := di.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()
	// 必須コンポーネントが欠けていれば、すべてを列挙して起動を中止する
	if err := c.Require(di.ServerCapabilities...); err != nil {
		return err
	}

	go c.Hub.Run(ctx)

	// 定期ジョブ
	sched := scheduler.New(ctx)
	watchlist := cfg.Analysis.Watchlist
	cycle := func(ctx context.Context) error {
		return c.Analysis.RunWatchlist(ctx, watchlist)
	}
	ingest := func(ctx context.Context) error {
		codes, err := c.Instruments.ListActiveCodes(ctx)
		if err != nil {
			return err
		}
		return c.Ingest.IngestAll(ctx, codes)
	}
	if err := errors.Join(
		sched.Register("analysis-cycle", cfg.Analysis.CycleCron, cycleTimeout, cycle),
		sched.Register("candle-ingest", cfg.Analysis.IngestCron, ingestTimeout, ingest),
		sched.Register("session-purge", purgeSpec, purgeTimeout, c.Auth.PurgeExpired),
	); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	// 起動直後にダッシュボードが空にならないよう一度実行する
	go sched.RunNow("analysis-cycle", cycleTimeout, cycle)

	r := router.NewRouter(router.Handlers{
		Health:      platformhandler.NewHealthHandler(c.HealthChecks(), cfg.Proxy.HealthTimeout),
		Auth:        authhandler.NewAuthHandler(c.Auth),
		Instruments: instrumenthandler.NewInstrumentHandler(c.Instruments),
		Quotes:      quotehandler.NewQuoteHandler(c.Quotes),
		Technical:   technicalhandler.NewTechnicalHandler(c.Technical),
		Candles:     candleshandler.NewCandlesHandler(c.Candles),
		Analysis:    analysishandler.NewAnalysisHandler(c.Analysis),
		ChatHistory: chathandler.NewChatHistoryHandler(c.ChatHistory),
		Advisor:     advisorhandler.NewAdvisorHandler(c.Advisor),
		Settings:    settingshandler.NewSettingsHandler(c.Settings),
		Stream:      c.Hub.Serve,
	}, router.Options{
		JWTSecret:   cfg.Auth.JWTSecret,
		Sessions:    c.Auth,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Addr, "watchlist", watchlist)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
