// Package usecase は価格・テクニカル・指標データを統合して売買判定を作る戦略エンジンを実装します。
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	indentity "trade_advisor/internal/feature/indicators/domain/entity"
	quote "trade_advisor/internal/feature/quotes/domain/entity"
	"trade_advisor/internal/feature/strategy/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/fallback"
)

// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。

// QuoteSource は照合済み価格を返します。常に値を返す契約です。
type QuoteSource interface {
	GetValidatedPrice(ctx context.Context, code string) quote.ValidatedQuote
}

// TechnicalSource はテクニカル分析を返します。
type TechnicalSource interface {
	GetTechnicalAnalysis(ctx context.Context, ticker, timeframe string) fallback.Result[technical.TechnicalSignal]
}

// IndicatorSource は指標スナップショットを返します。
type IndicatorSource interface {
	Snapshot(ctx context.Context, code, interval string, candles []candle.Candle) fallback.Result[indentity.IndicatorSnapshot]
}

// CandleSource は指標のローカル計算に使うローソク足を返します。
type CandleSource interface {
	GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error)
}

// Config は戦略エンジンの設定です。
type Config struct {
	Timeframe         string // テクニカル分析の時間足
	IndicatorInterval string // SMA/RSI/VWAP の時間足
	IndicatorCandles  int    // ローカル計算用に読むローソク足の本数
}

// DefaultConfig はデフォルト設定を返します。
func DefaultConfig() Config {
	return Config{Timeframe: "1h", IndicatorInterval: "1day", IndicatorCandles: 200}
}

// StrategyUsecase は戦略エンジンです。
type StrategyUsecase struct {
	quotes     QuoteSource
	technical  TechnicalSource
	indicators IndicatorSource
	candles    CandleSource
	cfg        Config
	now        func() time.Time
}

// NewStrategyUsecase は StrategyUsecase を生成します。indicators と candles は nil でも動作します。
func NewStrategyUsecase(quotes QuoteSource, tech TechnicalSource, indicators IndicatorSource, candles CandleSource, cfg Config) *StrategyUsecase {
	def := DefaultConfig()
	if cfg.Timeframe == "" {
		cfg.Timeframe = def.Timeframe
	}
	if cfg.IndicatorInterval == "" {
		cfg.IndicatorInterval = def.IndicatorInterval
	}
	if cfg.IndicatorCandles <= 0 {
		cfg.IndicatorCandles = def.IndicatorCandles
	}
	return &StrategyUsecase{
		quotes:     quotes,
		technical:  tech,
		indicators: indicators,
		candles:    candles,
		cfg:        cfg,
		now:        time.Now,
	}
}

// PerformCompleteAnalysis は価格・テクニカル・指標を並行して取得し、判定を作ります。
// 各取得はそれぞれフォールバックするため、1つの障害で分析全体が止まることはありません。
func (u *StrategyUsecase) PerformCompleteAnalysis(ctx context.Context, ticker string) entity.Analysis {
	ticker = strings.ToUpper(ticker)

	var (
		vq   quote.ValidatedQuote
		tech fallback.Result[technical.TechnicalSignal]
		snap *indentity.IndicatorSnapshot
	)

	// どのゴルーチンも nil を返し、兄弟の取得をキャンセルしない
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vq = u.quotes.GetValidatedPrice(gctx, ticker)
		return nil
	})
	g.Go(func() error {
		tech = u.technical.GetTechnicalAnalysis(gctx, ticker, u.cfg.Timeframe)
		return nil
	})
	if u.indicators != nil {
		g.Go(func() error {
			snap = u.snapshot(gctx, ticker)
			return nil
		})
	}
	_ = g.Wait()

	if tech.Fallback {
		slog.Info("strategy using simulated technical data", "ticker", ticker, "kind", tech.Kind())
	}

	combined := Combine(tech.Value, snap, vq.Quote.Mid)
	verdict := GenerateVerdict(VerdictInput{
		Technical:     tech.Value,
		TechnicalReal: tech.IsReal(),
		Quote:         vq,
		Indicators:    snap,
		Combined:      combined,
	})

	return entity.Analysis{
		Ticker:          ticker,
		Quote:           vq,
		Technical:       tech.Value,
		TechnicalReason: tech.ReasonText(),
		Indicators:      snap,
		Combined:        combined,
		Verdict:         verdict,
		Timestamp:       u.now().UTC(),
	}
}

func (u *StrategyUsecase) snapshot(ctx context.Context, ticker string) *indentity.IndicatorSnapshot {
	var cs []candle.Candle
	if u.candles != nil {
		var err error
		cs, err = u.candles.GetCandles(ctx, ticker, u.cfg.IndicatorInterval, u.cfg.IndicatorCandles)
		if err != nil {
			slog.Warn("failed to load candles for indicators", "ticker", ticker, "error", err)
		}
	}
	res := u.indicators.Snapshot(ctx, ticker, u.cfg.IndicatorInterval, cs)
	if res.Fallback && res.Value.SMA20 == 0 && res.Value.RSI14 == 0 && res.Value.VWAP == 0 {
		// 何も計算できなかった場合は判定に使わない
		return nil
	}
	return &res.Value
}
