// Package usecase は戦略判定・オーダーフロー・ニュースリスクから売買推奨を作るトレード推奨器を実装します。
// すべての分岐は入力の純粋関数で、欠けた入力には決まったフォールバックを使います。
package usecase

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	instentity "trade_advisor/internal/feature/instruments/domain/entity"
	orderflow "trade_advisor/internal/feature/orderflow/domain/entity"
	quote "trade_advisor/internal/feature/quotes/domain/entity"
	"trade_advisor/internal/feature/recommendation/domain/entity"
	strategy "trade_advisor/internal/feature/strategy/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/score"
	"trade_advisor/internal/shared/ta"
)

// 総合信頼度の重み
const (
	WeightTechnical = 0.7
	WeightOrderFlow = 0.2
	WeightQuote     = 0.1

	RealQuoteScore      = 100.0
	SyntheticQuoteScore = 50.0

	// MinTradeConfidence 以上で売買を推奨します（ちょうど60は推奨）。
	MinTradeConfidence = 60.0
)

// 方向の投票
const (
	VoteTechnical = 0.8
	VoteOrderFlow = 0.2
	MinVoteShare  = 0.4
)

// 価格水準とポジションサイズ
const (
	ATRPeriod         = 14
	MinATRCandles     = 15
	StopATRMultiple   = 1.5
	TargetATRMultiple = 3.0

	BaseRiskPct         = 2.0
	NewsHighFactor      = 0.5
	NewsMediumFactor    = 0.75
	LowConfidenceFactor = 0.75
	LowConfidenceBelow  = 70.0

	ValidFor = 4 * time.Hour
)

// assetClassATRPct はローソク足が足りない場合のATR代替値（価格に対する割合）です。
var assetClassATRPct = map[instentity.AssetClass]float64{
	instentity.AssetForex:  0.005,
	instentity.AssetMetal:  0.010,
	instentity.AssetCrypto: 0.025,
	instentity.AssetIndex:  0.008,
	instentity.AssetStock:  0.015,
}

const defaultATRPct = 0.01

// Input は推奨の入力です。OrderFlow と News は省略できます。
type Input struct {
	Instrument instentity.Instrument
	Verdict    strategy.Verdict
	OrderFlow  *orderflow.OrderFlowResult
	News       *technical.NewsRisk
	Quote      quote.PriceQuote
	Candles    []candle.Candle
}

// Recommender はトレード推奨器です。
type Recommender struct {
	now func() time.Time
}

// NewRecommender は Recommender を生成します。
func NewRecommender() *Recommender {
	return &Recommender{now: time.Now}
}

// WithClock は時刻の取得元を差し替えます。
func (r *Recommender) WithClock(now func() time.Time) *Recommender {
	r.now = now
	return r
}

// OverallConfidence は テクニカル 70% / オーダーフロー 20% / 価格 10% の加重平均です。
// オーダーフローが無い場合は残りの重みで正規化します。
func OverallConfidence(verdict float64, orderFlow *float64, quoteReal bool) float64 {
	q := SyntheticQuoteScore
	if quoteReal {
		q = RealQuoteScore
	}
	if orderFlow == nil {
		return score.Round2(score.Confidence((WeightTechnical*verdict + WeightQuote*q) / (WeightTechnical + WeightQuote)))
	}
	of := *orderFlow
	return score.Round2(score.Confidence(WeightTechnical*verdict + WeightOrderFlow*of + WeightQuote*q))
}

// Generate は売買推奨を作ります。
func (r *Recommender) Generate(in Input) entity.TradeRecommendation {
	now := r.now().UTC()
	rec := entity.TradeRecommendation{
		Reasons:    []string{},
		ValidUntil: now.Add(ValidFor),
		Timestamp:  now,
	}

	var ofProb *float64
	var ofDir orderflow.Direction
	if in.OrderFlow != nil && !in.OrderFlow.Prediction.IsFallback {
		p := in.OrderFlow.Prediction.Probability
		ofProb = &p
		ofDir = in.OrderFlow.Prediction.Direction
	}

	rec.Confidence = OverallConfidence(in.Verdict.Confidence, ofProb, in.Quote.IsReal)
	rec.Reasons = append(rec.Reasons, fmt.Sprintf("strategy verdict %s at %.0f%%", in.Verdict.Direction, in.Verdict.Confidence))
	if ofProb != nil {
		rec.Reasons = append(rec.Reasons, fmt.Sprintf("order flow %s at %.0f%%", ofDir, *ofProb))
	} else {
		rec.Reasons = append(rec.Reasons, "order flow unavailable, weights renormalized")
	}
	if !in.Quote.IsReal {
		rec.Reasons = append(rec.Reasons, "quote is simulated")
	}

	if rec.Confidence < MinTradeConfidence {
		return noTrade(rec, fmt.Sprintf("overall confidence %.2f%% is below %.0f%%, check again later", rec.Confidence, MinTradeConfidence))
	}

	dir, share := vote(in.Verdict.Direction, ofDir, ofProb != nil)
	if dir == "" {
		return noTrade(rec, fmt.Sprintf("no clear direction (vote share %.2f), check again later", share))
	}

	price := currentPrice(in)
	if price <= 0 {
		return noTrade(rec, "no usable price, check again later")
	}

	atr, src := estimateATR(in.Candles, price, in.Instrument.AssetClass)
	mult := confidenceMultiplier(rec.Confidence)
	stopDist := StopATRMultiple * atr
	targetDist := TargetATRMultiple * atr * mult

	sign := 1.0
	if dir == entity.Short {
		sign = -1
	}
	places := in.Instrument.Decimals()

	rec.Action = entity.ActionTrade
	rec.Direction = dir
	rec.Entry = roundPrice(price, places)
	rec.Stop = roundPrice(price-sign*stopDist, places)
	rec.Target = roundPrice(price+sign*targetDist, places)
	rec.RiskReward = score.Round2(targetDist / stopDist)
	rec.ATR = roundPrice(atr, places)
	rec.ATRSource = src
	rec.PositionSizePct = positionSize(rec.Confidence, in.News)
	rec.Reasons = append(rec.Reasons,
		fmt.Sprintf("%s with vote share %.2f", dir, share),
		fmt.Sprintf("ATR %.5g from %s, target scaled by %.1f", atr, src, mult),
	)
	if in.News != nil && in.News.Level != technical.RiskLow {
		rec.Reasons = append(rec.Reasons, fmt.Sprintf("news risk %s, position reduced", in.News.Level))
	}
	return rec
}

func noTrade(rec entity.TradeRecommendation, hint string) entity.TradeRecommendation {
	rec.Action = entity.ActionNoTrade
	rec.Hint = hint
	return rec
}

// vote はテクニカル 0.8 / オーダーフロー 0.2 で方向を投票し、占有率 0.4 以上の方向を返します。
func vote(verdict strategy.Direction, of orderflow.Direction, hasOrderFlow bool) (entity.Direction, float64) {
	var long, short, total float64

	total += VoteTechnical
	switch verdict {
	case strategy.Bullish:
		long += VoteTechnical
	case strategy.Bearish:
		short += VoteTechnical
	}
	if hasOrderFlow {
		total += VoteOrderFlow
		switch of {
		case orderflow.Bullish:
			long += VoteOrderFlow
		case orderflow.Bearish:
			short += VoteOrderFlow
		}
	}

	longShare, shortShare := long/total, short/total
	switch {
	case longShare > shortShare && longShare >= MinVoteShare:
		return entity.Long, score.Round2(longShare)
	case shortShare > longShare && shortShare >= MinVoteShare:
		return entity.Short, score.Round2(shortShare)
	}
	return "", score.Round2(max(longShare, shortShare))
}

// currentPrice は実データの気配値、最新足の終値、合成気配値の順に基準価格を選びます。
// 合成気配値は基準価格表からの値なので、実際のローソク足があればそちらを優先します。
func currentPrice(in Input) float64 {
	if in.Quote.IsReal && in.Quote.Mid > 0 {
		return in.Quote.Mid
	}
	if last, ok := candle.LastClose(in.Candles); ok {
		return last
	}
	if in.Quote.Mid > 0 {
		return in.Quote.Mid
	}
	if in.OrderFlow != nil {
		return in.OrderFlow.Price
	}
	return 0
}

// estimateATR は15本以上のローソク足があれば ATR(14) を、無ければ資産クラスの割合を使います。
func estimateATR(cs []candle.Candle, price float64, class instentity.AssetClass) (float64, entity.ATRSource) {
	if len(cs) >= MinATRCandles {
		if atr, ok := ta.LastATR(ta.FromCandles(candle.SortAscending(cs)), ATRPeriod); ok && atr > 0 {
			return atr, entity.ATRFromCandles
		}
	}
	pct, ok := assetClassATRPct[class]
	if !ok {
		pct = defaultATRPct
	}
	return price * pct, entity.ATRFromAssetClass
}

func confidenceMultiplier(conf float64) float64 {
	switch {
	case conf >= 80:
		return 1.0
	case conf >= 70:
		return 0.8
	default:
		return 0.7
	}
}

// positionSize は口座に対するリスク割合（%）を返します。
func positionSize(conf float64, news *technical.NewsRisk) float64 {
	size := BaseRiskPct
	if news != nil {
		switch news.Level {
		case technical.RiskHigh:
			size *= NewsHighFactor
		case technical.RiskMedium:
			size *= NewsMediumFactor
		}
	}
	if conf < LowConfidenceBelow {
		size *= LowConfidenceFactor
	}
	return score.Round2(size)
}

func roundPrice(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
