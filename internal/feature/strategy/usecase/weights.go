package usecase

import (
	"math"
	"strings"

	indentity "trade_advisor/internal/feature/indicators/domain/entity"
	"trade_advisor/internal/feature/strategy/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/score"
)

// indicatorWeights は指標名の接頭辞ごとの重みです。長期の移動平均とトレンド系を重く扱います。
var indicatorWeights = []struct {
	prefix string
	weight float64
}{
	{"EMA(200)", 1.5},
	{"SMA(200)", 1.5},
	{"EMA(100)", 1.3},
	{"SMA(100)", 1.3},
	{"EMA(50)", 1.2},
	{"SMA(50)", 1.2},
	{"Ichimoku", 1.2},
	{"MACD", 1.5},
	{"RSI", 1.5},
	{"ADX", 0.8},
	{"Stochastic RSI", 0.8},
	{"Stochastic", 1.0},
	{"CCI", 1.0},
	{"Williams", 0.8},
	{"Awesome", 0.8},
	{"Momentum", 0.8},
}

// DefaultIndicatorWeight は重み表にない指標の重みです。
const DefaultIndicatorWeight = 1.0

// スナップショット指標のポイント
const (
	SnapshotTrendPoints = 1.0 // 価格と SMA20 の位置関係
	SnapshotRSIPoints   = 1.0 // RSI の売られすぎ・買われすぎ
	SnapshotVWAPPoints  = 0.8 // 価格と VWAP の位置関係
	RSIOversold         = 30.0
	RSIOverbought       = 70.0
)

// WeightFor は指標名に対応する重みを返します。
func WeightFor(name string) float64 {
	for _, w := range indicatorWeights {
		if strings.HasPrefix(name, w.prefix) {
			return w.weight
		}
	}
	return DefaultIndicatorWeight
}

// Combine は個別指標のシグナルを重み付きポイントに集計します。STRONG は2倍です。
// snap が nil でない場合、SMA20・RSI14・VWAP と現在価格の関係も加えます。
func Combine(sig technical.TechnicalSignal, snap *indentity.IndicatorSnapshot, price float64) entity.Combined {
	var c entity.Combined
	for _, in := range sig.Indicators {
		w := WeightFor(in.Name)
		switch s := float64(in.Signal.Score()); {
		case s > 0:
			c.BullishPoints += w * s
		case s < 0:
			c.BearishPoints += w * -s
		default:
			c.NeutralPoints += w
		}
	}

	if snap != nil && price > 0 {
		if snap.SMA20 > 0 {
			addSide(&c, price-snap.SMA20, SnapshotTrendPoints)
		}
		switch {
		case snap.RSI14 > 0 && snap.RSI14 < RSIOversold:
			c.BullishPoints += SnapshotRSIPoints
		case snap.RSI14 > RSIOverbought:
			c.BearishPoints += SnapshotRSIPoints
		case snap.RSI14 > 0:
			c.NeutralPoints += SnapshotRSIPoints
		}
		if snap.VWAP > 0 {
			addSide(&c, price-snap.VWAP, SnapshotVWAPPoints)
		}
	}

	c.BullishPoints = score.Round2(c.BullishPoints)
	c.BearishPoints = score.Round2(c.BearishPoints)
	c.NeutralPoints = score.Round2(c.NeutralPoints)

	total := c.BullishPoints + c.BearishPoints + c.NeutralPoints
	switch {
	case c.BullishPoints > c.BearishPoints:
		c.Bias = entity.Bullish
	case c.BearishPoints > c.BullishPoints:
		c.Bias = entity.Bearish
	default:
		c.Bias = entity.Neutral
	}
	if total > 0 {
		c.Agreement = score.Round2(math.Max(c.BullishPoints, c.BearishPoints) / total * 100)
	}
	return c
}

func addSide(c *entity.Combined, diff, points float64) {
	switch {
	case diff > 0:
		c.BullishPoints += points
	case diff < 0:
		c.BearishPoints += points
	default:
		c.NeutralPoints += points
	}
}
