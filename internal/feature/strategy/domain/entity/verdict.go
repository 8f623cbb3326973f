// Package entity はstrategyフィーチャーのドメインモデルを定義します。
package entity

import (
	"time"

	indentity "trade_advisor/internal/feature/indicators/domain/entity"
	quote "trade_advisor/internal/feature/quotes/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
)

// Direction は判定の方向です。
type Direction string

const (
	Bullish Direction = "BULLISH"
	Bearish Direction = "BEARISH"
	Neutral Direction = "NEUTRAL"
)

// Recommendation は判定の推奨アクションです。
type Recommendation string

const (
	RecStrongBuy  Recommendation = "STRONG_BUY"
	RecBuy        Recommendation = "BUY"
	RecHold       Recommendation = "HOLD"
	RecSell       Recommendation = "SELL"
	RecStrongSell Recommendation = "STRONG_SELL"
)

// RiskLevel は判定のリスク段階です。信頼度が高いほど低リスクです。
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Combined は指標ごとの重み付きポイントの集計です。
type Combined struct {
	BullishPoints float64   `json:"bullishPoints"`
	BearishPoints float64   `json:"bearishPoints"`
	NeutralPoints float64   `json:"neutralPoints"`
	Bias          Direction `json:"bias"`
	// Agreement は優勢側のポイントが占める割合（0〜100）です。
	Agreement float64 `json:"agreement"`
}

// Verdict は1回の分析サイクルの最終判定です。Confidence は [0,90] に収まります。
type Verdict struct {
	Direction       Direction      `json:"direction"`
	Confidence      float64        `json:"confidence"`
	Recommendation  Recommendation `json:"recommendation"`
	RiskLevel       RiskLevel      `json:"riskLevel"`
	EntryStrategy   string         `json:"entryStrategy"`
	QuoteAdjustment float64        `json:"quoteAdjustment"`
	Reasons         []string       `json:"reasons"`
}

// Analysis は PerformCompleteAnalysis の結果です。
type Analysis struct {
	Ticker          string                       `json:"ticker"`
	Quote           quote.ValidatedQuote         `json:"quote"`
	Technical       technical.TechnicalSignal    `json:"technical"`
	TechnicalReason string                       `json:"technicalReason,omitempty"`
	Indicators      *indentity.IndicatorSnapshot `json:"indicators,omitempty"`
	Combined        Combined                     `json:"combined"`
	Verdict         Verdict                      `json:"verdict"`
	Timestamp       time.Time                    `json:"timestamp"`
}
