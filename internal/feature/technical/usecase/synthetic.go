package usecase

import (
	"fmt"
	"math"
	"time"

	"trade_advisor/internal/feature/technical/domain/entity"
)

// 合成シグナルの信頼度帯
const (
	strongConfidenceMin  = 75.0
	strongConfidenceMax  = 90.0
	directionalConfMin   = 60.0
	directionalConfMax   = 75.0
	neutralConfidenceMin = 40.0
	neutralConfidenceMax = 60.0
)

type indicatorDef struct {
	name     string
	family   entity.Family
	min, max float64
}

// syntheticIndicators はプロキシがスクレイプする指標と同じ構成です。
var syntheticIndicators = []indicatorDef{
	{"EMA(10)", entity.FamilyMovingAverages, 0, 0},
	{"SMA(10)", entity.FamilyMovingAverages, 0, 0},
	{"EMA(20)", entity.FamilyMovingAverages, 0, 0},
	{"SMA(20)", entity.FamilyMovingAverages, 0, 0},
	{"EMA(50)", entity.FamilyMovingAverages, 0, 0},
	{"SMA(50)", entity.FamilyMovingAverages, 0, 0},
	{"EMA(100)", entity.FamilyMovingAverages, 0, 0},
	{"SMA(100)", entity.FamilyMovingAverages, 0, 0},
	{"EMA(200)", entity.FamilyMovingAverages, 0, 0},
	{"SMA(200)", entity.FamilyMovingAverages, 0, 0},
	{"Ichimoku Base Line", entity.FamilyMovingAverages, 0, 0},
	{"VWMA(20)", entity.FamilyMovingAverages, 0, 0},
	{"Hull MA(9)", entity.FamilyMovingAverages, 0, 0},
	{"RSI(14)", entity.FamilyOscillators, 20, 80},
	{"Stochastic %K", entity.FamilyOscillators, 10, 90},
	{"CCI(20)", entity.FamilyOscillators, -200, 200},
	{"ADX(14)", entity.FamilyOscillators, 10, 50},
	{"Awesome Oscillator", entity.FamilyOscillators, -5, 5},
	{"Momentum(10)", entity.FamilyOscillators, -10, 10},
	{"MACD Level", entity.FamilyOscillators, -3, 3},
	{"Stochastic RSI", entity.FamilyOscillators, 0, 100},
	{"Williams %R", entity.FamilyOscillators, -100, 0},
	{"Bull Bear Power", entity.FamilyOscillators, -10, 10},
	{"Ultimate Oscillator", entity.FamilyOscillators, 20, 80},
}

// SyntheticSignal は推奨と信頼度帯が整合した合成シグナルを生成します。
// 強い推奨は 75〜90%、BUY/SELL は 60〜75%、NEUTRAL は 40〜60% です。
func (u *TechnicalUsecase) SyntheticSignal(ticker, timeframe string) entity.TechnicalSignal {
	rec := entity.Signals[u.synth.Intn(len(entity.Signals))]

	var conf float64
	switch {
	case rec.IsStrong():
		conf = u.synth.Between(strongConfidenceMin, strongConfidenceMax)
	case rec == entity.Neutral:
		conf = u.synth.Between(neutralConfidenceMin, neutralConfidenceMax)
	default:
		conf = u.synth.Between(directionalConfMin, directionalConfMax)
	}

	indicators := make([]entity.IndicatorSignal, 0, len(syntheticIndicators))
	for _, def := range syntheticIndicators {
		indicators = append(indicators, entity.IndicatorSignal{
			Name:   def.name,
			Family: def.family,
			Value:  math.Round(u.synth.Between(def.min, def.max)*100) / 100,
			Signal: u.biasedSignal(rec),
		})
	}

	return entity.TechnicalSignal{
		Ticker:         ticker,
		Timeframe:      timeframe,
		Indicators:     indicators,
		MovingAverages: entity.Summarize(indicators, entity.FamilyMovingAverages),
		Oscillators:    entity.Summarize(indicators, entity.FamilyOscillators),
		Recommendation: rec,
		Confidence:     math.Round(conf*10) / 10,
		IsReal:         false,
		Timestamp:      u.now().UTC(),
	}
}

// biasedSignal は推奨方向に寄せた個別シグナルを返します。
// 方向付きの推奨では 65% が同方向、25% が中立、10% が逆方向です。
func (u *TechnicalUsecase) biasedSignal(rec entity.Signal) entity.Signal {
	r := u.synth.Float64()
	if rec == entity.Neutral {
		switch {
		case r < 0.5:
			return entity.Neutral
		case r < 0.75:
			return entity.Buy
		default:
			return entity.Sell
		}
	}

	with, against := entity.Buy, entity.Sell
	if rec.IsBearish() {
		with, against = entity.Sell, entity.Buy
	}
	switch {
	case r < 0.65:
		if rec.IsStrong() && u.synth.Chance(0.4) {
			return rec
		}
		return with
	case r < 0.90:
		return entity.Neutral
	default:
		return against
	}
}

var newsTemplates = map[entity.RiskLevel][]string{
	entity.RiskLow: {
		"%s trades in a narrow range ahead of quiet calendar",
		"Analysts see limited catalysts for %s this session",
		"%s steady as markets digest earlier moves",
	},
	entity.RiskMedium: {
		"%s traders eye upcoming central bank commentary",
		"Mixed economic data keeps %s volatile",
		"%s positioning shifts ahead of key data release",
	},
	entity.RiskHigh: {
		"%s swings sharply on surprise policy headlines",
		"Major data release set to move %s",
		"Geopolitical tension drives heavy flows in %s",
	},
}

// SyntheticNews は模擬ニュースフィードを生成します。
// 段階は LOW 60% / MEDIUM 30% / HIGH 10% の比率で、スコアは段階の範囲内です。
func (u *TechnicalUsecase) SyntheticNews(ticker string) entity.NewsRisk {
	var level entity.RiskLevel
	var score float64
	switch r := u.synth.Float64(); {
	case r < 0.6:
		level, score = entity.RiskLow, u.synth.Between(10, 35)
	case r < 0.9:
		level, score = entity.RiskMedium, u.synth.Between(35, 65)
	default:
		level, score = entity.RiskHigh, u.synth.Between(65, 90)
	}

	now := u.now().UTC()
	templates := newsTemplates[level]
	n := 1 + u.synth.Intn(3)
	headlines := make([]entity.Headline, 0, n)
	for i := range n {
		headlines = append(headlines, entity.Headline{
			Title:       fmt.Sprintf(templates[u.synth.Intn(len(templates))], ticker),
			Source:      "simulated",
			PublishedAt: now.Add(-time.Duration(15*(i+1)) * time.Minute),
			Impact:      level,
		})
	}

	return entity.NewsRisk{
		Ticker:    ticker,
		Level:     level,
		Score:     math.Floor(score),
		Headlines: headlines,
		IsReal:    false,
		Timestamp: now,
	}
}
