package usecase

import (
	"fmt"

	indentity "trade_advisor/internal/feature/indicators/domain/entity"
	quote "trade_advisor/internal/feature/quotes/domain/entity"
	"trade_advisor/internal/feature/strategy/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/score"
)

// 判定のパラメータ
const (
	// MaxVerdictConfidence は判定の信頼度の上限です。
	MaxVerdictConfidence = 90.0
	// SyntheticTechnicalFactor は合成テクニカルデータに掛ける割引率です。
	SyntheticTechnicalFactor = 0.8
	// MaxQuoteAdjustment は価格データによる調整の上限（±ポイント）です。
	MaxQuoteAdjustment = 5.0

	StrongRecommendationMin = 75.0

	RiskLowMin    = 75.0
	RiskMediumMin = 60.0

	tightSpreadPct = 0.02
	wideSpreadPct  = 0.1
)

// VerdictInput は判定の入力です。
type VerdictInput struct {
	Technical     technical.TechnicalSignal
	TechnicalReal bool
	Quote         quote.ValidatedQuote
	Indicators    *indentity.IndicatorSnapshot
	Combined      entity.Combined
}

// GenerateVerdict はテクニカルの推奨を主軸にした最終判定を作ります。
// 価格データは実データの場合のみ ±5 ポイントの範囲で信頼度を調整します。
// 実データの STRONG シグナルは価格データで弱めません（減点は0に切り上げます）。
func GenerateVerdict(in VerdictInput) entity.Verdict {
	rec := in.Technical.Recommendation
	reasons := []string{}

	dir := entity.Neutral
	switch {
	case rec.IsBullish():
		dir = entity.Bullish
	case rec.IsBearish():
		dir = entity.Bearish
	}

	conf := in.Technical.Confidence
	reasons = append(reasons, fmt.Sprintf("technical recommendation %s at %.0f%%", rec, conf))
	if !in.TechnicalReal {
		conf *= SyntheticTechnicalFactor
		reasons = append(reasons, "technical data is simulated, confidence discounted")
	}

	adj, quoteReasons := quoteAdjustment(in.Quote)
	reasons = append(reasons, quoteReasons...)
	if adj < 0 && in.TechnicalReal && rec.IsStrong() {
		adj = 0
		reasons = append(reasons, "strong technical signal, quote penalty not applied")
	}
	conf += adj

	if in.Combined.Bias != entity.Neutral {
		if in.Combined.Bias == dir {
			reasons = append(reasons, fmt.Sprintf("weighted indicators agree (%.0f%%)", in.Combined.Agreement))
		} else {
			reasons = append(reasons, fmt.Sprintf("weighted indicators lean %s", in.Combined.Bias))
		}
	}

	conf = score.Round2(score.Clamp(conf, 0, MaxVerdictConfidence))

	return entity.Verdict{
		Direction:       dir,
		Confidence:      conf,
		Recommendation:  recommendationFor(dir, conf),
		RiskLevel:       riskFor(conf),
		EntryStrategy:   entryStrategy(dir, in.Indicators, in.Quote.Quote.Mid),
		QuoteAdjustment: adj,
		Reasons:         reasons,
	}
}

// quoteAdjustment は照合状態・スプレッド・出来高から信頼度の調整値を返します。合成価格では0です。
func quoteAdjustment(vq quote.ValidatedQuote) (float64, []string) {
	q := vq.Quote
	if !q.IsReal {
		return 0, []string{"quote is simulated, no adjustment"}
	}

	var adj float64
	var reasons []string
	switch vq.Status {
	case quote.StatusCrossValidated:
		adj += 2
		reasons = append(reasons, "price cross-validated by two providers")
	case quote.StatusPriceDiscrepancy:
		adj -= 3
		reasons = append(reasons, "providers disagree on price")
	}

	if q.Mid > 0 && q.Ask >= q.Bid {
		switch spread := (q.Ask - q.Bid) / q.Mid * 100; {
		case spread <= tightSpreadPct:
			adj += 2
			reasons = append(reasons, "tight spread")
		case spread >= wideSpreadPct:
			adj -= 2
			reasons = append(reasons, "wide spread")
		}
	}
	if q.Volume > 0 {
		adj++
	}

	return score.Clamp(adj, -MaxQuoteAdjustment, MaxQuoteAdjustment), reasons
}

func recommendationFor(dir entity.Direction, conf float64) entity.Recommendation {
	switch dir {
	case entity.Bullish:
		if conf >= StrongRecommendationMin {
			return entity.RecStrongBuy
		}
		return entity.RecBuy
	case entity.Bearish:
		if conf >= StrongRecommendationMin {
			return entity.RecStrongSell
		}
		return entity.RecSell
	}
	return entity.RecHold
}

func riskFor(conf float64) entity.RiskLevel {
	switch {
	case conf >= RiskLowMin:
		return entity.RiskLow
	case conf >= RiskMediumMin:
		return entity.RiskMedium
	default:
		return entity.RiskHigh
	}
}

func entryStrategy(dir entity.Direction, snap *indentity.IndicatorSnapshot, price float64) string {
	switch dir {
	case entity.Bullish:
		if snap != nil && snap.RSI14 > RSIOverbought {
			return "overbought: wait for a pullback toward SMA20 before buying"
		}
		if snap != nil && snap.SMA20 > 0 && price > 0 && price < snap.SMA20 {
			return "buy on a close back above SMA20"
		}
		return "buy on confirmation, scale in on dips"
	case entity.Bearish:
		if snap != nil && snap.RSI14 > 0 && snap.RSI14 < RSIOversold {
			return "oversold: wait for a bounce toward SMA20 before selling"
		}
		if snap != nil && snap.SMA20 > 0 && price > snap.SMA20 {
			return "sell on a close back below SMA20"
		}
		return "sell on confirmation, add on rallies"
	}
	return "stay flat and wait for a clear breakout"
}
