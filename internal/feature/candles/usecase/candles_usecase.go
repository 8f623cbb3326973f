// Package usecase はローソク足データ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"strings"

	"trade_advisor/internal/feature/candles/domain/entity"
)

const (
	// DefaultInterval はローソク足クエリのデフォルト時間間隔です。
	DefaultInterval = "1day"
	// DefaultOutputSize はデフォルトのローソク足返却件数です。
	DefaultOutputSize = 200
	// MaxOutputSize はローソク足の最大返却件数です。
	MaxOutputSize = 5000
)

// CandleRepository はローソク足データの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleRepository interface {
	// Find はデータベースから新しい順にローソク足データを検索します。
	Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	// UpsertBatch は (symbol, interval, time) をキーに一括で挿入または更新します。
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
}

// MarketRepository は外部APIから時系列データを取得するリポジトリのインターフェイスです。
type MarketRepository interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
}

// candlesUsecase はローソク足データ操作のユースケースを定義します。
type candlesUsecase struct {
	candle CandleRepository
	market MarketRepository
}

// NewCandlesUsecase はcandlesUsecaseの新しいインスタンスを生成します。
// market が nil の場合はストアのみを参照します。
func NewCandlesUsecase(candle CandleRepository, market MarketRepository) *candlesUsecase {
	return &candlesUsecase{candle: candle, market: market}
}

// GetCandles は指定された銘柄と時間間隔のローソク足データを新しい順に取得します。
// ストアが空（または読み取り失敗）の場合は外部APIから取得し、ストアへ書き戻します。
func (cu *candlesUsecase) GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if interval == "" {
		interval = DefaultInterval
	}
	if outputsize <= 0 || outputsize > MaxOutputSize {
		outputsize = DefaultOutputSize
	}

	cs, err := cu.candle.Find(ctx, symbol, interval, outputsize)
	if err == nil && len(cs) > 0 {
		return cs, nil
	}
	if cu.market == nil {
		return cs, err
	}
	if err != nil {
		slog.Warn("candle store read failed, fetching from provider", "symbol", symbol, "interval", interval, "error", err)
	}

	fetched, ferr := cu.market.GetTimeSeries(ctx, symbol, interval, outputsize)
	if ferr != nil {
		if err != nil {
			return nil, err
		}
		return nil, ferr
	}
	for i := range fetched {
		fetched[i].Symbol = symbol
		fetched[i].Interval = interval
	}
	if uerr := cu.candle.UpsertBatch(ctx, fetched); uerr != nil {
		slog.Warn("failed to persist fetched candles", "symbol", symbol, "interval", interval, "error", uerr)
	}
	if len(fetched) > outputsize {
		fetched = fetched[:outputsize]
	}
	return fetched, nil
}
