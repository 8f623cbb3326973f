// Package usecase は1回の分析サイクル（戦略判定 → オーダーフロー → 売買推奨）を実行し、
// 結果を履歴に保存して購読者へ配信します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"trade_advisor/internal/feature/analysis/domain/entity"
	candle "trade_advisor/internal/feature/candles/domain/entity"
	instentity "trade_advisor/internal/feature/instruments/domain/entity"
	orderflow "trade_advisor/internal/feature/orderflow/domain/entity"
	orderflowuc "trade_advisor/internal/feature/orderflow/usecase"
	recommendation "trade_advisor/internal/feature/recommendation/domain/entity"
	recuc "trade_advisor/internal/feature/recommendation/usecase"
	strategy "trade_advisor/internal/feature/strategy/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/fallback"
)

// MessageTypeAnalysis はWebSocketで配信するメッセージ種別です。
const MessageTypeAnalysis = "analysis"

// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。

type StrategyRunner interface {
	PerformCompleteAnalysis(ctx context.Context, ticker string) strategy.Analysis
}

type CandleSource interface {
	GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error)
}

type NewsSource interface {
	GetNewsRisk(ctx context.Context, ticker string) fallback.Result[technical.NewsRisk]
}

type OrderFlowAnalyzer interface {
	Analyze(in orderflowuc.Input) orderflow.OrderFlowResult
}

type TradeRecommender interface {
	Generate(in recuc.Input) recommendation.TradeRecommendation
}

type InstrumentResolver interface {
	Resolve(ctx context.Context, code string) instentity.Instrument
}

// RecordRepository は分析履歴の永続化を担います。
type RecordRepository interface {
	Save(ctx context.Context, rec entity.AnalysisRecord) error
	Latest(ctx context.Context, ticker string) (entity.AnalysisRecord, error)
	List(ctx context.Context, ticker string, limit int) ([]entity.AnalysisRecord, error)
}

// Publisher は分析結果の配信先です（WebSocketハブ）。
type Publisher interface {
	Publish(msgType, ticker string, data any)
}

// Config は分析サイクルの設定です。
type Config struct {
	OrderFlowInterval string // オーダーフローに使う時間足
	OrderFlowCandles  int
}

// AnalysisUsecase は分析サイクルを実行します。
type AnalysisUsecase struct {
	strategy    StrategyRunner
	candles     CandleSource
	news        NewsSource
	orderflow   OrderFlowAnalyzer
	recommender TradeRecommender
	instruments InstrumentResolver
	records     RecordRepository
	publisher   Publisher
	cfg         Config
	now         func() time.Time
}

// NewAnalysisUsecase は AnalysisUsecase を生成します。publisher は nil でも動作します。
func NewAnalysisUsecase(
	st StrategyRunner,
	candles CandleSource,
	news NewsSource,
	of OrderFlowAnalyzer,
	rec TradeRecommender,
	instruments InstrumentResolver,
	records RecordRepository,
	publisher Publisher,
	cfg Config,
) *AnalysisUsecase {
	if cfg.OrderFlowInterval == "" {
		cfg.OrderFlowInterval = "1h"
	}
	if cfg.OrderFlowCandles <= 0 {
		cfg.OrderFlowCandles = orderflowuc.AnalysisWindow
	}
	return &AnalysisUsecase{
		strategy:    st,
		candles:     candles,
		news:        news,
		orderflow:   of,
		recommender: rec,
		instruments: instruments,
		records:     records,
		publisher:   publisher,
		cfg:         cfg,
		now:         time.Now,
	}
}

// RunCycle は戦略判定・ローソク足・ニュースを並行に取得し、オーダーフローと売買推奨を順に算出します。
// 結果は履歴に保存され、購読者へ配信されます。保存に失敗しても結果は返します。
func (u *AnalysisUsecase) RunCycle(ctx context.Context, ticker string) (entity.AnalysisRecord, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return entity.AnalysisRecord{}, ErrInvalidTicker
	}

	var (
		analysis strategy.Analysis
		cs       []candle.Candle
		news     fallback.Result[technical.NewsRisk]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analysis = u.strategy.PerformCompleteAnalysis(gctx, ticker)
		return nil
	})
	g.Go(func() error {
		var err error
		cs, err = u.candles.GetCandles(gctx, ticker, u.cfg.OrderFlowInterval, u.cfg.OrderFlowCandles)
		if err != nil {
			// ローソク足が無くてもオーダーフローはフォールバック値を返す
			slog.Warn("failed to load candles for order flow", "ticker", ticker, "error", err)
			cs = nil
		}
		return nil
	})
	g.Go(func() error {
		news = u.news.GetNewsRisk(gctx, ticker)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return entity.AnalysisRecord{}, err
	}

	q := analysis.Quote.Quote
	tech := analysis.Technical
	price := q.Mid
	if !q.IsReal {
		// 合成気配値より実際の終値を基準にする
		if last, ok := candle.LastClose(cs); ok {
			price = last
		}
	}
	of := u.orderflow.Analyze(orderflowuc.Input{
		Ticker:    ticker,
		Candles:   cs,
		Price:     price,
		Quote:     &q,
		Technical: &tech,
	})

	rec := u.recommender.Generate(recuc.Input{
		Instrument: u.instruments.Resolve(ctx, ticker),
		Verdict:    analysis.Verdict,
		OrderFlow:  &of,
		News:       &news.Value,
		Quote:      q,
		Candles:    cs,
	})

	record := entity.AnalysisRecord{
		ID:             uuid.NewString(),
		Ticker:         ticker,
		Strategy:       analysis,
		OrderFlow:      of,
		News:           news.Value,
		Recommendation: rec,
		CreatedAt:      u.now().UTC(),
	}

	if err := u.records.Save(ctx, record); err != nil {
		slog.Error("failed to save analysis record", "ticker", ticker, "error", err)
	}
	if u.publisher != nil {
		u.publisher.Publish(MessageTypeAnalysis, ticker, record)
	}

	slog.Info("analysis cycle completed",
		"ticker", ticker,
		"verdict", analysis.Verdict.Direction,
		"confidence", rec.Confidence,
		"action", rec.Action,
		"quote_real", q.IsReal,
		"technical_real", tech.IsReal,
	)
	return record, nil
}

// RunWatchlist は銘柄ごとに分析サイクルを順に実行します。キャンセルされた場合は中断します。
func (u *AnalysisUsecase) RunWatchlist(ctx context.Context, tickers []string) error {
	var errs []error
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := u.RunCycle(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

// Latest は銘柄の最新の分析結果を返します。
func (u *AnalysisUsecase) Latest(ctx context.Context, ticker string) (entity.AnalysisRecord, error) {
	return u.records.Latest(ctx, strings.ToUpper(ticker))
}

// History は新しい順に分析履歴を返します。limit は 1〜100 に丸めます。
func (u *AnalysisUsecase) History(ctx context.Context, ticker string, limit int) ([]entity.AnalysisRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return u.records.List(ctx, strings.ToUpper(ticker), limit)
}
