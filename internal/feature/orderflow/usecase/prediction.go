package usecase

import (
	"fmt"
	"math"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/orderflow/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/score"
	"trade_advisor/internal/shared/ta"
)

// 予測の重み（合計100点）
const (
	WeightTechnical  = 35.0
	WeightLiquidity  = 25.0
	WeightImbalances = 20.0
	WeightDelta      = 15.0
	WeightVelocity   = 10.0

	BaseThreshold       = 12.0
	HighConfidenceBonus = 4.0  // 実データかつ信頼度70以上ならしきい値を下げる
	FewFactorsPenalty   = 8.0  // 要素が2つ以下
	ThreeFactorsPenalty = 4.0  // 要素が3つ
	HighConfidenceMin   = 70.0 // HighConfidenceBonus の条件

	MinProbability = 25.0
	MaxProbability = 82.0

	ATRPeriod          = 14
	FallbackATRPct     = 0.005
	StopATRMultiple    = 1.5
	TargetATRMultiple  = 2.0
	MaxTimingHours     = 48.0
	MinTimingHours     = 1.0
	probabilityPerDiff = 0.6
)

var liquidityTargetMultiplier = map[entity.Level]float64{
	entity.High:   1.3,
	entity.Medium: 1.0,
	entity.Low:    0.8,
}

type predictionInput struct {
	candles    []candle.Candle
	price      float64
	technical  *technical.TechnicalSignal
	volume     entity.VolumeAnalysis
	velocity   entity.Velocity
	imbalances []entity.Imbalance
	liquidity  entity.Liquidity
	profile    entity.VolumeProfile
}

type tally struct {
	bull, bear, neutral float64
	factors             []string
}

func (t *tally) add(name string, dir entity.Direction, points float64) {
	t.factors = append(t.factors, name)
	switch dir {
	case entity.Bullish:
		t.bull += points
	case entity.Bearish:
		t.bear += points
	default:
		t.neutral += points
	}
}

func fallbackPrediction(price float64) entity.Prediction {
	return entity.Prediction{
		Direction:   entity.Neutral,
		Probability: 50,
		Entry:       price,
		Target:      price,
		Stop:        price,
		Timing:      "insufficient data",
		Factors:     []string{},
		IsFallback:  true,
	}
}

// predict は5つの要素を加重して方向と確率を決め、ATRと流動性から目標・損切りを設定します。
func predict(in predictionInput) entity.Prediction {
	if len(in.candles) < MinCandles || in.price <= 0 {
		return fallbackPrediction(in.price)
	}

	t := &tally{factors: []string{}}
	if sig := in.technical; sig != nil && sig.Recommendation != "" {
		dir := entity.Neutral
		strength := 1.0
		switch {
		case sig.Recommendation.IsBullish():
			dir = entity.Bullish
		case sig.Recommendation.IsBearish():
			dir = entity.Bearish
		}
		if dir != entity.Neutral && !sig.Recommendation.IsStrong() {
			strength = 0.7
		}
		t.add("technical", dir, WeightTechnical*strength)
	}
	if !in.liquidity.IsFallback {
		// 流動性は方向を持たないため、出来高の方向を流動性の高さで裏付ける
		t.add("liquidity", in.volume.Direction, WeightLiquidity*in.liquidity.Score/100)
	}
	if len(in.imbalances) > 0 {
		var bull, bear float64
		for _, im := range in.imbalances {
			switch im.Direction {
			case entity.Bullish:
				bull += im.Confidence
			case entity.Bearish:
				bear += im.Confidence
			}
		}
		if sum := bull + bear; sum > 0 {
			t.factors = append(t.factors, "imbalances")
			t.bull += WeightImbalances * bull / sum
			t.bear += WeightImbalances * bear / sum
		}
	}
	if !in.volume.IsFallback {
		t.add("delta", in.volume.Direction, WeightDelta*in.volume.Strength.Weight())
	}
	if !in.velocity.IsFallback {
		t.add("velocity", in.velocity.Direction, WeightVelocity*momentumWeight(in.velocity.Momentum))
	}

	threshold := dynamicThreshold(in.technical, len(t.factors))
	diff := t.bull - t.bear

	dir := entity.Neutral
	switch {
	case diff > threshold:
		dir = entity.Bullish
	case diff < -threshold:
		dir = entity.Bearish
	}

	var prob float64
	if dir == entity.Neutral {
		prob = 50 - (threshold - math.Abs(diff))
	} else {
		prob = 50 + math.Abs(diff)*probabilityPerDiff
	}

	atr := estimateATR(in.candles, in.price)
	entry := in.price
	target, stop := levels(dir, entry, atr, in.liquidity.Level, in.profile.POC)

	hours := timing(entry, target, in.velocity.PerHour)
	return entity.Prediction{
		Direction:   dir,
		Probability: score.Round2(score.Clamp(prob, MinProbability, MaxProbability)),
		Entry:       entry,
		Target:      target,
		Stop:        stop,
		ATR:         atr,
		TimingHours: hours,
		Timing:      timingLabel(hours),
		Bullish:     score.Round2(t.bull),
		Bearish:     score.Round2(t.bear),
		Neutral:     score.Round2(t.neutral),
		Threshold:   threshold,
		Factors:     t.factors,
	}
}

// dynamicThreshold は確度の高い実データでは下げ、要素が少ない場合は上げます。
func dynamicThreshold(sig *technical.TechnicalSignal, factors int) float64 {
	th := BaseThreshold
	if sig != nil && sig.IsReal && sig.Confidence >= HighConfidenceMin {
		th -= HighConfidenceBonus
	}
	switch {
	case factors <= 2:
		th += FewFactorsPenalty
	case factors == 3:
		th += ThreeFactorsPenalty
	}
	return th
}

func momentumWeight(m entity.Level) float64 {
	switch m {
	case entity.High:
		return 1
	case entity.Medium:
		return 0.66
	}
	return 0.33
}

// estimateATR は ATR(14) を返します。計算できない場合は価格の0.5%です。
func estimateATR(cs []candle.Candle, price float64) float64 {
	if atr, ok := ta.LastATR(ta.FromCandles(cs), ATRPeriod); ok && atr > 0 {
		return atr
	}
	return price * FallbackATRPct
}

// levels は方向に応じて目標と損切りを返します。
// NEUTRAL の場合は POC への回帰を目標とし、反対側に損切りを置きます。
func levels(dir entity.Direction, entry, atr float64, liq entity.Level, poc float64) (target, stop float64) {
	mult, ok := liquidityTargetMultiplier[liq]
	if !ok {
		mult = 1
	}
	switch dir {
	case entity.Bullish:
		return entry + TargetATRMultiple*atr*mult, entry - StopATRMultiple*atr
	case entity.Bearish:
		return entry - TargetATRMultiple*atr*mult, entry + StopATRMultiple*atr
	}
	if poc <= 0 || poc == entry {
		return entry, entry
	}
	if poc > entry {
		return poc, entry - StopATRMultiple*atr
	}
	return poc, entry + StopATRMultiple*atr
}

// timing は現在の速度で目標に届くまでの時間を見積もります。速度が0なら0を返します。
func timing(entry, target, perHour float64) float64 {
	dist := math.Abs(target-entry) / entry * 100
	speed := math.Abs(perHour)
	if dist == 0 || speed == 0 {
		return 0
	}
	return score.Round2(score.Clamp(dist/speed, MinTimingHours, MaxTimingHours))
}

func timingLabel(hours float64) string {
	switch {
	case hours == 0:
		return "unclear"
	case hours >= MaxTimingHours:
		return fmt.Sprintf("%.0fh+", MaxTimingHours)
	default:
		return fmt.Sprintf("~%.0fh", math.Ceil(hours))
	}
}
