package usecase

import (
	"math"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/orderflow/domain/entity"
)

// 出来高分解のしきい値（delta%）
const (
	DeltaStrongPct    = 30.0
	DeltaModeratePct  = 15.0
	DeltaDirectionPct = 5.0
	VolumeWindow      = 50
)

func fallbackVolume() entity.VolumeAnalysis {
	return entity.VolumeAnalysis{Direction: entity.Neutral, Strength: entity.Weak, IsFallback: true}
}

// analyzeVolume は直近 VolumeWindow 本の出来高を買い・売りに分解し、デルタを算出します。
func analyzeVolume(cs []candle.Candle, vols []float64) entity.VolumeAnalysis {
	if len(cs) < MinCandles {
		return fallbackVolume()
	}
	cs, vols = tail(cs, VolumeWindow), tail(vols, VolumeWindow)

	var buy, sell float64
	for i, c := range cs {
		share := buyShare(c)
		buy += vols[i] * share
		sell += vols[i] * (1 - share)
	}
	total := buy + sell
	if total <= 0 {
		return fallbackVolume()
	}

	delta := buy - sell
	pct := delta / total * 100

	return entity.VolumeAnalysis{
		BuyVolume:   buy,
		SellVolume:  sell,
		TotalVolume: total,
		Delta:       delta,
		DeltaPct:    pct,
		Direction:   directionFor(pct, DeltaDirectionPct),
		Strength:    deltaStrength(pct),
	}
}

func deltaStrength(pct float64) entity.Strength {
	switch a := math.Abs(pct); {
	case a >= DeltaStrongPct:
		return entity.Strong
	case a >= DeltaModeratePct:
		return entity.Moderate
	default:
		return entity.Weak
	}
}

// directionFor は ±band を超えた符号で方向を決めます。
func directionFor(v, band float64) entity.Direction {
	switch {
	case v > band:
		return entity.Bullish
	case v < -band:
		return entity.Bearish
	default:
		return entity.Neutral
	}
}
