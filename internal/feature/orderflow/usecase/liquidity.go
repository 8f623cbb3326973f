package usecase

import (
	"math"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/orderflow/domain/entity"
	quote "trade_advisor/internal/feature/quotes/domain/entity"
	"trade_advisor/internal/shared/score"
)

// 流動性スコアの重み（合計 100%）
const (
	LiquiditySpreadWeight     = 0.35
	LiquidityVolumeWeight     = 0.30
	LiquidityVolatilityWeight = 0.20
	LiquidityBalanceWeight    = 0.15

	LiquidityHigh   = 75.0
	LiquidityMedium = 50.0

	TrendWindow     = 5
	TrendIncreasing = 1.1
	TrendDecreasing = 0.9

	// unknownFactorScore はスプレッドが不明な場合の中立スコアです。
	unknownFactorScore = 50.0
)

// bucket は値を昇順のしきい値で 100 / 75 / 50 / 25 に段階分けします。
// lowerIsBetter が false の場合はしきい値を降順に評価します。
func bucket(v float64, thresholds [3]float64, lowerIsBetter bool) float64 {
	levels := [3]float64{100, 75, 50}
	for i, th := range thresholds {
		if (lowerIsBetter && v <= th) || (!lowerIsBetter && v >= th) {
			return levels[i]
		}
	}
	return 25
}

var (
	spreadThresholds     = [3]float64{0.02, 0.05, 0.1} // スプレッド%
	volumeThresholds     = [3]float64{1.5, 1.0, 0.6}   // 直近出来高 / 平均
	volatilityThresholds = [3]float64{0.3, 0.7, 1.5}   // 平均値幅%
	balanceThresholds    = [3]float64{10, 25, 40}      // |delta%|
)

func fallbackLiquidity() entity.Liquidity {
	return entity.Liquidity{
		Score:      50,
		Level:      entity.Medium,
		Trend:      entity.TrendStable,
		BidDepth:   50,
		AskDepth:   50,
		Factors:    entity.LiquidityFactors{Spread: unknownFactorScore, Volume: 50, Volatility: 50, Balance: 50},
		IsFallback: true,
	}
}

// scoreLiquidity はスプレッド・出来高・ボラティリティ・売買バランスの加重和で流動性を評価します。
func scoreLiquidity(cs []candle.Candle, vols []float64, volume entity.VolumeAnalysis, q *quote.PriceQuote) entity.Liquidity {
	if len(cs) < MinCandles {
		return fallbackLiquidity()
	}

	f := entity.LiquidityFactors{Spread: unknownFactorScore}
	if q != nil && q.IsReal && q.Mid > 0 && q.Ask >= q.Bid {
		f.Spread = bucket((q.Ask-q.Bid)/q.Mid*100, spreadThresholds, true)
	}

	avgVol := score.Mean(vols)
	recentVols := tail(vols, TrendWindow)
	if avgVol > 0 {
		f.Volume = bucket(score.Mean(recentVols)/avgVol, volumeThresholds, false)
	} else {
		f.Volume = 25
	}

	window := tail(cs, VelocityWindow)
	rangePct := make([]float64, 0, len(window))
	for _, c := range window {
		if c.Close > 0 {
			rangePct = append(rangePct, c.Range()/c.Close*100)
		}
	}
	f.Volatility = bucket(score.Mean(rangePct), volatilityThresholds, true)
	f.Balance = bucket(math.Abs(volume.DeltaPct), balanceThresholds, true)

	total := score.Round2(LiquiditySpreadWeight*f.Spread +
		LiquidityVolumeWeight*f.Volume +
		LiquidityVolatilityWeight*f.Volatility +
		LiquidityBalanceWeight*f.Balance)

	bid, ask := depth(tail(cs, TrendWindow), recentVols)

	return entity.Liquidity{
		Score:    total,
		Level:    liquidityLevel(total),
		Trend:    volumeTrend(vols),
		BidDepth: bid,
		AskDepth: ask,
		Factors:  f,
	}
}

func liquidityLevel(v float64) entity.Level {
	switch {
	case v >= LiquidityHigh:
		return entity.High
	case v >= LiquidityMedium:
		return entity.Medium
	default:
		return entity.Low
	}
}

// volumeTrend は直近5本と、その前の5本の平均出来高を比較します。
func volumeTrend(vols []float64) entity.Trend {
	if len(vols) < 2*TrendWindow {
		return entity.TrendStable
	}
	recent := score.Mean(vols[len(vols)-TrendWindow:])
	prior := score.Mean(vols[len(vols)-2*TrendWindow : len(vols)-TrendWindow])
	if prior <= 0 {
		return entity.TrendStable
	}
	switch r := recent / prior; {
	case r >= TrendIncreasing:
		return entity.TrendIncreasing
	case r <= TrendDecreasing:
		return entity.TrendDecreasing
	default:
		return entity.TrendStable
	}
}

// depth は直近の足の買い・売り出来高の割合（%）を返します。
func depth(cs []candle.Candle, vols []float64) (bid, ask float64) {
	var buy, total float64
	for i, c := range cs {
		buy += vols[i] * buyShare(c)
		total += vols[i]
	}
	if total <= 0 {
		return 50, 50
	}
	bid = score.Round2(buy / total * 100)
	return bid, score.Round2(100 - bid)
}
