package usecase

import (
	"math"
	"time"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/orderflow/domain/entity"
	"trade_advisor/internal/shared/score"
)

// 価格速度のパラメータ（%/時間）
const (
	VelocityWindow       = 20
	AccelerationWindow   = 5
	MomentumHigh         = 0.5
	MomentumMedium       = 0.15
	VelocityNeutralBand  = 0.02
	defaultCandleSpacing = time.Hour
)

// changesPerHour は隣接する終値の変化率を経過時間（時間）で正規化した値を返します。
func changesPerHour(cs []candle.Candle) []float64 {
	if len(cs) < 2 {
		return nil
	}
	out := make([]float64, 0, len(cs)-1)
	for i := 1; i < len(cs); i++ {
		prev, cur := cs[i-1], cs[i]
		if prev.Close <= 0 {
			continue
		}
		hours := cur.Time.Sub(prev.Time).Hours()
		if hours <= 0 {
			hours = defaultCandleSpacing.Hours()
		}
		out = append(out, (cur.Close-prev.Close)/prev.Close*100/hours)
	}
	return out
}

// analyzeVelocity は直近 VelocityWindow 本の平均変化速度と加速度を算出します。
// 加速度は直近5本の平均から、その前の5本の平均を引いた値です。
func analyzeVelocity(cs []candle.Candle) entity.Velocity {
	if len(cs) < MinCandles {
		return entity.Velocity{Momentum: entity.Low, Direction: entity.Neutral, IsFallback: true}
	}
	changes := tail(changesPerHour(cs), VelocityWindow)

	perHour := score.Mean(changes)
	var accel float64
	if len(changes) >= 2*AccelerationWindow {
		recent := changes[len(changes)-AccelerationWindow:]
		prior := changes[len(changes)-2*AccelerationWindow : len(changes)-AccelerationWindow]
		accel = score.Mean(recent) - score.Mean(prior)
	}

	return entity.Velocity{
		PerHour:      perHour,
		Acceleration: accel,
		Momentum:     momentumFor(perHour),
		Direction:    directionFor(perHour, VelocityNeutralBand),
	}
}

func momentumFor(perHour float64) entity.Level {
	switch a := math.Abs(perHour); {
	case a >= MomentumHigh:
		return entity.High
	case a >= MomentumMedium:
		return entity.Medium
	default:
		return entity.Low
	}
}
