package usecase

import (
	candle "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/orderflow/domain/entity"
	"trade_advisor/internal/shared/score"
)

// 吸収パターンのしきい値（平均比）
const (
	AbsorptionVolumeRatio = 1.5
	AbsorptionRangeRatio  = 0.6
	AbsorptionStrong      = 2.5
	AbsorptionModerate    = 2.0
)

// detectAbsorptions は連続する3本 (a, b, c) で、b が高出来高かつ狭い値幅で、
// a から c へ方向が反転したパターンを探します。
// 下落→吸収→上昇は売りが吸収された BULLISH、逆は BEARISH です。
// 出来高が全て0の系列では vols が値幅の代用なので、出来高条件は使わず値幅の収縮だけで判定し、
// 強度は WEAK、VolumeRatio は0とします。
func detectAbsorptions(cs []candle.Candle, vols []float64) []entity.Absorption {
	out := []entity.Absorption{}
	if len(cs) < MinAbsorptionCandles {
		return out
	}

	ranges := make([]float64, len(cs))
	for i, c := range cs {
		ranges[i] = c.Range()
	}
	avgVol := score.Mean(vols)
	avgRange := score.Mean(ranges)
	if avgVol <= 0 || avgRange <= 0 {
		return out
	}

	realVolume := hasVolume(cs)

	for i := 2; i < len(cs); i++ {
		a, b, c := cs[i-2], cs[i-1], cs[i]
		if ranges[i-1] > AbsorptionRangeRatio*avgRange {
			continue
		}
		ratio := 0.0
		if realVolume {
			ratio = vols[i-1] / avgVol
			if ratio < AbsorptionVolumeRatio {
				continue
			}
		}

		var dir entity.Direction
		switch {
		case a.Close < a.Open && c.Close > c.Open:
			dir = entity.Bullish
		case a.Close > a.Open && c.Close < c.Open:
			dir = entity.Bearish
		default:
			continue
		}

		out = append(out, entity.Absorption{
			Time:        b.Time,
			Price:       b.Close,
			Direction:   dir,
			Strength:    absorptionStrength(ratio),
			VolumeRatio: score.Round2(ratio),
		})
	}
	return out
}

func absorptionStrength(ratio float64) entity.Strength {
	switch {
	case ratio >= AbsorptionStrong:
		return entity.Strong
	case ratio >= AbsorptionModerate:
		return entity.Moderate
	default:
		return entity.Weak
	}
}

// hasVolume は出来高を持つ足が1本でもあるかを返します。
func hasVolume(cs []candle.Candle) bool {
	for _, c := range cs {
		if c.Volume > 0 {
			return true
		}
	}
	return false
}
