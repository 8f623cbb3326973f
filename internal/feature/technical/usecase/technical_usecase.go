// Package usecase はテクニカル分析プロキシの呼び出しと、障害時の合成データ生成を実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/fallback"
	"trade_advisor/internal/shared/synthetic"
)

const (
	// DefaultHealthTimeout はプロキシの死活確認のタイムアウトです。
	DefaultHealthTimeout = 2 * time.Second
	// DefaultRequestTimeout はプロキシへの分析リクエストのタイムアウトです（スクレイピングは遅い）。
	DefaultRequestTimeout = 15 * time.Second

	DefaultTimeframe = "1h"
)

// TechnicalSource はスクレイピングプロキシのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TechnicalSource interface {
	Healthy(ctx context.Context) error
	Technical(ctx context.Context, ticker, timeframe string) (entity.TechnicalSignal, error)
	News(ctx context.Context, ticker string) (entity.NewsRisk, error)
}

// TechnicalUsecase はテクニカル分析とニュースリスクを取得します。どちらも常に値を返します。
type TechnicalUsecase struct {
	src           TechnicalSource
	synth         synthetic.Source
	healthTimeout time.Duration
	timeout       time.Duration
	now           func() time.Time
}

// NewTechnicalUsecase は TechnicalUsecase を生成します。src が nil の場合は常に合成データを返します。
func NewTechnicalUsecase(src TechnicalSource, synth synthetic.Source, healthTimeout, timeout time.Duration) *TechnicalUsecase {
	if healthTimeout <= 0 {
		healthTimeout = DefaultHealthTimeout
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &TechnicalUsecase{
		src:           src,
		synth:         synth,
		healthTimeout: healthTimeout,
		timeout:       timeout,
		now:           time.Now,
	}
}

// GetTechnicalAnalysis はプロキシの死活確認後に分析を取得します。
// プロキシ停止・スクレイプ失敗時は、推奨と信頼度帯が整合した合成シグナルを返します。
// プロキシ自身が isReal=false を返した場合は値を保ったまま Fallback として扱います。
func (u *TechnicalUsecase) GetTechnicalAnalysis(ctx context.Context, ticker, timeframe string) fallback.Result[entity.TechnicalSignal] {
	ticker = strings.ToUpper(ticker)
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	if err := u.checkHealth(ctx); err != nil {
		slog.Warn("technical proxy unavailable, using synthetic signals", "ticker", ticker, "error", err)
		return fallback.Synthetic(u.SyntheticSignal(ticker, timeframe), err)
	}

	rctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	sig, err := u.src.Technical(rctx, ticker, timeframe)
	if err != nil {
		slog.Warn("technical scrape failed, using synthetic signals", "ticker", ticker, "kind", fallback.Classify(err), "error", err)
		return fallback.Synthetic(u.SyntheticSignal(ticker, timeframe), err)
	}
	if !sig.IsReal {
		return fallback.Synthetic(sig, fmt.Errorf("%w: proxy returned simulated signals", fallback.ErrInsufficientData))
	}
	return fallback.Live(sig)
}

// GetNewsRisk はニュースリスクを取得します。失敗時は模擬フィードを返します。
func (u *TechnicalUsecase) GetNewsRisk(ctx context.Context, ticker string) fallback.Result[entity.NewsRisk] {
	ticker = strings.ToUpper(ticker)

	if err := u.checkHealth(ctx); err != nil {
		return fallback.Synthetic(u.SyntheticNews(ticker), err)
	}

	rctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	news, err := u.src.News(rctx, ticker)
	if err != nil {
		slog.Warn("news feed failed, using simulated feed", "ticker", ticker, "kind", fallback.Classify(err), "error", err)
		return fallback.Synthetic(u.SyntheticNews(ticker), err)
	}
	if !news.IsReal {
		return fallback.Synthetic(news, fmt.Errorf("%w: proxy returned simulated news", fallback.ErrInsufficientData))
	}
	return fallback.Live(news)
}

func (u *TechnicalUsecase) checkHealth(ctx context.Context) error {
	if u.src == nil {
		return fallback.Wrap("technical", fallback.ErrTransport, "proxy not configured")
	}
	hctx, cancel := context.WithTimeout(ctx, u.healthTimeout)
	defer cancel()
	return u.src.Healthy(hctx)
}
