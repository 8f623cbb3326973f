package usecase

import (
	"math"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/orderflow/domain/entity"
	"trade_advisor/internal/shared/score"
)

// 出来高プロファイルのパラメータ
const (
	ProfileBuckets   = 24
	ProfileSubLevels = 5
	ProfileDecay     = 0.97
	ValueAreaShare   = 0.70

	POCStrongShare   = 0.15
	POCModerateShare = 0.08
)

func fallbackProfile(price float64) entity.VolumeProfile {
	return entity.VolumeProfile{
		POC:           price,
		Strength:      entity.Weak,
		ValueAreaHigh: price,
		ValueAreaLow:  price,
		Levels:        []entity.ProfileLevel{},
		IsFallback:    true,
	}
}

// buildProfile は各足の値幅を ProfileSubLevels 個に分割し、終値に近い水準ほど重く配分した
// 時間減衰付きのヒストグラムを作ります。最大の価格帯が POC です。
func buildProfile(cs []candle.Candle, vols []float64, price float64) entity.VolumeProfile {
	if len(cs) < MinCandles {
		return fallbackProfile(price)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range cs {
		lo = math.Min(lo, c.Low)
		hi = math.Max(hi, c.High)
	}
	if hi <= lo {
		return fallbackProfile(price)
	}
	size := (hi - lo) / ProfileBuckets

	hist := make([]float64, ProfileBuckets)
	n := len(cs)
	for i, c := range cs {
		decay := math.Pow(ProfileDecay, float64(n-1-i))
		distributeCandle(hist, c, vols[i]*decay, lo, size)
	}

	var total float64
	poc := 0
	for i, v := range hist {
		total += v
		if v > hist[poc] {
			poc = i
		}
	}
	if total <= 0 {
		return fallbackProfile(price)
	}

	share := hist[poc] / total
	vaLo, vaHi := valueArea(hist, poc, total)

	levels := make([]entity.ProfileLevel, ProfileBuckets)
	for i, v := range hist {
		levels[i] = entity.ProfileLevel{Price: lo + (float64(i)+0.5)*size, Volume: v}
	}

	return entity.VolumeProfile{
		POC:           lo + (float64(poc)+0.5)*size,
		POCShare:      score.Round2(share),
		Strength:      pocStrength(share),
		ValueAreaHigh: lo + float64(vaHi+1)*size,
		ValueAreaLow:  lo + float64(vaLo)*size,
		Levels:        levels,
	}
}

// distributeCandle は1本の出来高をサブ水準に配分します。重みは終値からの距離に反比例します。
func distributeCandle(hist []float64, c candle.Candle, vol, lo, size float64) {
	r := c.Range()
	if vol <= 0 {
		return
	}
	if r <= 0 {
		hist[bucketIndex(c.Close, lo, size)] += vol
		return
	}
	step := r / ProfileSubLevels

	var weights [ProfileSubLevels]float64
	var sum float64
	for k := range ProfileSubLevels {
		p := c.Low + (float64(k)+0.5)*step
		weights[k] = 1 / (1 + math.Abs(p-c.Close)/step)
		sum += weights[k]
	}
	for k := range ProfileSubLevels {
		p := c.Low + (float64(k)+0.5)*step
		hist[bucketIndex(p, lo, size)] += vol * weights[k] / sum
	}
}

func bucketIndex(p, lo, size float64) int {
	idx := int((p - lo) / size)
	return max(0, min(idx, ProfileBuckets-1))
}

// valueArea は POC から出来高の多い隣接帯へ広げ、全体の70%に達した範囲の両端インデックスを返します。
func valueArea(hist []float64, poc int, total float64) (lo, hi int) {
	lo, hi = poc, poc
	acc := hist[poc]
	for acc < ValueAreaShare*total && (lo > 0 || hi < len(hist)-1) {
		below, above := -1.0, -1.0
		if lo > 0 {
			below = hist[lo-1]
		}
		if hi < len(hist)-1 {
			above = hist[hi+1]
		}
		if above >= below {
			hi++
			acc += above
		} else {
			lo--
			acc += below
		}
	}
	return lo, hi
}

func pocStrength(share float64) entity.Strength {
	switch {
	case share >= POCStrongShare:
		return entity.Strong
	case share >= POCModerateShare:
		return entity.Moderate
	default:
		return entity.Weak
	}
}
