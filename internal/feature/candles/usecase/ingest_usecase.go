package usecase

import (
	"context"
	"log/slog"
)

const (
	ingestOutputSize = 200 // 1回のリクエストで取得するデータ件数
)

// DefaultIngestIntervals はデータ取得の対象となる時間足のデフォルトです。
var DefaultIngestIntervals = []string{"1h", "1day"}

// IngestUsecase は外部APIからデータを取得し、データベースに永続化するユースケースを定義します。
// APIのクォータはMarketRepository実装側のレートリミッターが守ります。
type IngestUsecase struct {
	market    MarketRepository
	candle    CandleRepository
	intervals []string
}

// NewIngestUsecase は新しい IngestUsecase を作成します。intervals が空ならデフォルトを使います。
func NewIngestUsecase(market MarketRepository, candle CandleRepository, intervals []string) *IngestUsecase {
	if len(intervals) == 0 {
		intervals = DefaultIngestIntervals
	}
	return &IngestUsecase{market: market, candle: candle, intervals: intervals}
}

// ingestOne は指定された銘柄と時間足の時系列データを外部リポジトリから取得し、
// データベースに一括で挿入（または更新）します。
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol, interval string, outputsize int) error {
	cs, err := iu.market.GetTimeSeries(ctx, symbol, interval, outputsize)
	if err != nil {
		return err
	}

	// 取得したデータに銘柄コードと時間足を設定
	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Interval = interval
	}
	return iu.candle.UpsertBatch(ctx, cs)
}

// IngestAll は指定された全銘柄の時系列データを設定された時間足で取得し、永続化します。
// 1件の失敗では止まらず、ctx がキャンセルされた場合のみ中断してそのエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	for _, s := range symbols {
		for _, interval := range iu.intervals {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := iu.ingestOne(ctx, s, interval, ingestOutputSize); err != nil {
				// 1つの銘柄でエラーが発生しても処理を止めずにログに出力し、次の処理を続ける
				slog.Error("failed to ingest data", "symbol", s, "interval", interval, "error", err)
				continue
			}
			slog.Info("ingested candles", "symbol", s, "interval", interval)
		}
	}
	return nil
}
