package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/orderflow/domain/entity"
	quote "trade_advisor/internal/feature/quotes/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/synthetic"
)

var t0 = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

// trend は1時間足で step ずつ動くローソク足を n 本作ります。
// 上昇時は高値引け、下落時は安値引けに近い形になります。
func trend(n int, start, step, vol float64) []candle.Candle {
	const wick = 0.05
	cs := make([]candle.Candle, n)
	p := start
	for i := range n {
		open, close := p, p+step
		cs[i] = candle.Candle{
			Symbol:   "XAUUSD",
			Interval: "1h",
			Time:     t0.Add(time.Duration(i) * time.Hour),
			Open:     open,
			Close:    close,
			High:     max(open, close) + wick,
			Low:      min(open, close) - wick,
			Volume:   vol,
		}
		p = close
	}
	return cs
}

func fixedNow(a *Analyzer) *Analyzer {
	a.now = func() time.Time { return t0 }
	return a
}

// TestAnalyze_ZeroCandles はローソク足が0本でもパニックせず、固定のフォールバック結果を返すことを検証します。
func TestAnalyze_ZeroCandles(t *testing.T) {
	t.Parallel()

	var res entity.OrderFlowResult
	require.NotPanics(t, func() {
		res = fixedNow(NewAnalyzer()).Analyze(Input{Ticker: "xauusd"})
	})

	assert.Equal(t, "XAUUSD", res.Ticker)
	assert.Equal(t, 0, res.CandleCount)
	assert.Equal(t, fallbackVolume(), res.Volume)
	assert.True(t, res.Velocity.IsFallback)
	assert.NotNil(t, res.Absorptions)
	assert.Empty(t, res.Absorptions)
	assert.NotNil(t, res.Imbalances)
	assert.Empty(t, res.Imbalances)
	assert.Equal(t, fallbackLiquidity(), res.Liquidity)
	assert.Equal(t, fallbackProfile(0), res.Profile)
	assert.Equal(t, fallbackPrediction(0), res.Prediction)
	assert.Equal(t, t0, res.Timestamp)
}

func TestAnalyze_TooFewCandlesUsesPrice(t *testing.T) {
	t.Parallel()

	res := NewAnalyzer().Analyze(Input{Ticker: "XAUUSD", Candles: trend(5, 100, 1, 10), Price: 2650})

	assert.Equal(t, 2650.0, res.Profile.POC)
	assert.True(t, res.Profile.IsFallback)
	assert.True(t, res.Prediction.IsFallback)
	assert.Equal(t, entity.Neutral, res.Prediction.Direction)
	assert.Equal(t, 50.0, res.Prediction.Probability)
}

func TestAnalyze_BullishTrend(t *testing.T) {
	t.Parallel()

	res := NewAnalyzer().Analyze(Input{Ticker: "XAUUSD", Candles: trend(30, 100, 0.5, 1000)})

	assert.Equal(t, 115.0, res.Price, "価格未指定なら最新の終値")
	assert.Equal(t, entity.Bullish, res.Volume.Direction)
	assert.Equal(t, entity.Strong, res.Volume.Strength)
	assert.Greater(t, res.Volume.BuyVolume, res.Volume.SellVolume)
	assert.Equal(t, entity.Bullish, res.Velocity.Direction)
	assert.Equal(t, entity.Medium, res.Liquidity.Level)
	assert.InDelta(t, 58.75, res.Liquidity.Score, 1e-9)

	p := res.Prediction
	assert.Equal(t, entity.Bullish, p.Direction)
	assert.Equal(t, []string{"liquidity", "delta", "velocity"}, p.Factors)
	assert.Equal(t, BaseThreshold+ThreeFactorsPenalty, p.Threshold)
	assert.Greater(t, p.Target, p.Entry)
	assert.Less(t, p.Stop, p.Entry)
	assert.InDelta(t, StopATRMultiple*p.ATR, p.Entry-p.Stop, 1e-9)
	assert.GreaterOrEqual(t, p.Probability, MinProbability)
	assert.LessOrEqual(t, p.Probability, MaxProbability)
}

func TestAnalyze_BearishTrendWithTechnical(t *testing.T) {
	t.Parallel()

	sig := &technical.TechnicalSignal{Recommendation: technical.StrongSell, Confidence: 85, IsReal: true}
	q := &quote.PriceQuote{Bid: 184.99, Ask: 185.01, Mid: 185, IsReal: true}

	res := NewAnalyzer().Analyze(Input{Ticker: "XAUUSD", Candles: trend(30, 200, -0.5, 1000), Price: 185, Quote: q, Technical: sig})

	assert.Equal(t, entity.Bearish, res.Volume.Direction)
	assert.Equal(t, 100.0, res.Liquidity.Factors.Spread)

	p := res.Prediction
	assert.Equal(t, entity.Bearish, p.Direction)
	assert.Equal(t, "technical", p.Factors[0])
	assert.Equal(t, BaseThreshold-HighConfidenceBonus, p.Threshold)
	assert.Less(t, p.Target, p.Entry)
	assert.Greater(t, p.Stop, p.Entry)
	assert.Equal(t, 0.0, p.Bullish)
}

func TestDetectAbsorptions(t *testing.T) {
	t.Parallel()

	cs := make([]candle.Candle, 12)
	for i := range cs {
		// 陽線・陰線を交互に並べ、値幅2・出来高100で揃える
		open, close := 100.0, 101.0
		if i%2 == 0 {
			open, close = 101.0, 100.0
		}
		cs[i] = candle.Candle{Time: t0.Add(time.Duration(i) * time.Hour), Open: open, Close: close, High: 101.5, Low: 99.5, Volume: 100}
	}
	// cs[6]（陰線）→ 狭い値幅に大出来高 → cs[8]（陽線）
	cs[7] = candle.Candle{Time: cs[7].Time, Open: 100.2, Close: 100.4, High: 100.5, Low: 100.0, Volume: 300}
	cs[8].Open, cs[8].Close = 100, 101

	got := detectAbsorptions(cs, effectiveVolumes(cs))

	require.Len(t, got, 1)
	assert.Equal(t, entity.Bullish, got[0].Direction)
	assert.Equal(t, entity.Strong, got[0].Strength)
	assert.Equal(t, 100.4, got[0].Price)
	assert.Equal(t, cs[7].Time, got[0].Time)
}

func TestDetectAbsorptions_ZeroVolumeSeries(t *testing.T) {
	t.Parallel()

	cs := make([]candle.Candle, 12)
	for i := range cs {
		open, close := 100.0, 101.0
		if i%2 == 0 {
			open, close = 101.0, 100.0
		}
		cs[i] = candle.Candle{Time: t0.Add(time.Duration(i) * time.Hour), Open: open, Close: close, High: 101.5, Low: 99.5}
	}
	// FXの足: 出来高なし。陰線 → 狭い値幅 → 陽線
	cs[7] = candle.Candle{Time: cs[7].Time, Open: 100.2, Close: 100.4, High: 100.5, Low: 100.0}
	cs[8].Open, cs[8].Close = 100, 101

	got := detectAbsorptions(cs, effectiveVolumes(cs))

	require.Len(t, got, 1)
	assert.Equal(t, entity.Bullish, got[0].Direction)
	assert.Equal(t, entity.Weak, got[0].Strength)
	assert.Equal(t, 0.0, got[0].VolumeRatio)
	assert.Equal(t, cs[7].Time, got[0].Time)
}

func TestDetectAbsorptions_TooFew(t *testing.T) {
	t.Parallel()

	got := detectAbsorptions(trend(2, 100, 1, 10), []float64{10, 10})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDetectImbalances_RankedAndFiltered(t *testing.T) {
	t.Parallel()

	cs := trend(30, 100, 0.1, 100)
	// 窓を開けて始まる足と、急変した足を入れる
	for i := 20; i < len(cs); i++ {
		cs[i].Open += 1
		cs[i].Close += 1
		cs[i].High += 1
		cs[i].Low += 1
	}
	cs[25].Close += 2
	cs[25].High += 2
	cs[25].Volume = 400

	got := detectImbalances(cs, effectiveVolumes(cs), cs[len(cs)-1].Close)

	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), MaxImbalances)
	for i, im := range got {
		assert.GreaterOrEqual(t, im.Confidence, MinImbalanceConfidence)
		assert.LessOrEqual(t, im.Confidence, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Score, im.Score)
		}
	}
}

func TestBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		v     float64
		th    [3]float64
		lower bool
		want  float64
	}{
		{"tight spread", 0.01, spreadThresholds, true, 100},
		{"normal spread", 0.05, spreadThresholds, true, 75},
		{"wide spread", 0.08, spreadThresholds, true, 50},
		{"very wide spread", 0.5, spreadThresholds, true, 25},
		{"volume surge", 1.6, volumeThresholds, false, 100},
		{"average volume", 1.0, volumeThresholds, false, 75},
		{"thin volume", 0.7, volumeThresholds, false, 50},
		{"dry volume", 0.2, volumeThresholds, false, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, bucket(tt.v, tt.th, tt.lower))
		})
	}
}

func TestVolumeTrend(t *testing.T) {
	t.Parallel()

	assert.Equal(t, entity.TrendIncreasing, volumeTrend([]float64{10, 10, 10, 10, 10, 12, 12, 12, 12, 12}))
	assert.Equal(t, entity.TrendDecreasing, volumeTrend([]float64{10, 10, 10, 10, 10, 8, 8, 8, 8, 8}))
	assert.Equal(t, entity.TrendStable, volumeTrend([]float64{10, 10, 10, 10, 10, 10.5, 10, 10, 10, 10}))
	assert.Equal(t, entity.TrendStable, volumeTrend([]float64{1, 2, 3}))
}

func TestBuildProfile_POCAtDenseCluster(t *testing.T) {
	t.Parallel()

	cs := []candle.Candle{{Time: t0, Open: 95.5, Close: 95.2, High: 96, Low: 95, Volume: 100}}
	for i := 1; i <= 20; i++ {
		cs = append(cs, candle.Candle{Time: t0.Add(time.Duration(i) * time.Hour), Open: 100.2, Close: 100.9, High: 101, Low: 100, Volume: 100})
	}

	p := buildProfile(cs, effectiveVolumes(cs), 100.9)

	require.False(t, p.IsFallback)
	assert.InDelta(t, 100.875, p.POC, 1e-9)
	assert.Equal(t, entity.Strong, p.Strength)
	assert.LessOrEqual(t, p.ValueAreaLow, p.POC)
	assert.GreaterOrEqual(t, p.ValueAreaHigh, p.POC)
	assert.Len(t, p.Levels, ProfileBuckets)

	var total, inArea float64
	for _, l := range p.Levels {
		total += l.Volume
		if l.Price >= p.ValueAreaLow && l.Price <= p.ValueAreaHigh {
			inArea += l.Volume
		}
	}
	assert.GreaterOrEqual(t, inArea/total, ValueAreaShare)
}

func TestDynamicThreshold(t *testing.T) {
	t.Parallel()

	real80 := &technical.TechnicalSignal{IsReal: true, Confidence: 80}
	synthetic80 := &technical.TechnicalSignal{IsReal: false, Confidence: 80}

	assert.Equal(t, 12.0, dynamicThreshold(nil, 5))
	assert.Equal(t, 8.0, dynamicThreshold(real80, 5))
	assert.Equal(t, 12.0, dynamicThreshold(synthetic80, 4))
	assert.Equal(t, 16.0, dynamicThreshold(real80, 2))
	assert.Equal(t, 16.0, dynamicThreshold(nil, 3))
}

// TestAnalyze_BoundsHold はランダムな系列でも確率と流動性スコアが範囲内に収まることを検証します。
func TestAnalyze_BoundsHold(t *testing.T) {
	t.Parallel()

	src := synthetic.New(2024)
	a := NewAnalyzer()
	signals := append([]technical.Signal{""}, technical.Signals...)

	for i := range 200 {
		n := src.Intn(80)
		cs := make([]candle.Candle, n)
		p := 100.0
		for j := range n {
			open := p
			close := src.Jitter(open, 0.02)
			cs[j] = candle.Candle{
				Time:   t0.Add(time.Duration(j) * time.Hour),
				Open:   open,
				Close:  close,
				High:   max(open, close) * (1 + src.Between(0, 0.01)),
				Low:    min(open, close) * (1 - src.Between(0, 0.01)),
				Volume: src.Between(0, 1000),
			}
			p = close
		}
		var sig *technical.TechnicalSignal
		if rec := signals[i%len(signals)]; rec != "" {
			sig = &technical.TechnicalSignal{Recommendation: rec, Confidence: src.Between(40, 90), IsReal: src.Chance(0.5)}
		}

		res := a.Analyze(Input{Candles: cs, Technical: sig})

		assert.GreaterOrEqual(t, res.Prediction.Probability, MinProbability)
		assert.LessOrEqual(t, res.Prediction.Probability, MaxProbability)
		assert.GreaterOrEqual(t, res.Liquidity.Score, 0.0)
		assert.LessOrEqual(t, res.Liquidity.Score, 100.0)
		assert.LessOrEqual(t, len(res.Imbalances), MaxImbalances)
		assert.LessOrEqual(t, res.Profile.POCShare, 1.0)
	}
}
