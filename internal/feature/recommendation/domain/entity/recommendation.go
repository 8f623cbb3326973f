// Package entity はrecommendationフィーチャーのドメインモデルを定義します。
package entity

import "time"

// Action は推奨アクションです。
type Action string

const (
	ActionTrade   Action = "TRADE_RECOMMENDED"
	ActionNoTrade Action = "NO_TRADE"
)

// Direction は売買方向です。NO_TRADE の場合は空です。
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ATRSource はATRの算出方法です。
type ATRSource string

const (
	ATRFromCandles    ATRSource = "candles"
	ATRFromAssetClass ATRSource = "asset_class"
)

// TradeRecommendation は1回の分析サイクルの売買推奨です。ValidUntil を過ぎたら再評価が必要です。
type TradeRecommendation struct {
	Action          Action    `json:"action"`
	Direction       Direction `json:"direction,omitempty"`
	Confidence      float64   `json:"confidence"`
	Entry           float64   `json:"entry,omitempty"`
	Stop            float64   `json:"stop,omitempty"`
	Target          float64   `json:"target,omitempty"`
	RiskReward      float64   `json:"riskReward,omitempty"`
	PositionSizePct float64   `json:"positionSizePct,omitempty"`
	ATR             float64   `json:"atr,omitempty"`
	ATRSource       ATRSource `json:"atrSource,omitempty"`
	Reasons         []string  `json:"reasons"`
	Hint            string    `json:"hint,omitempty"`
	ValidUntil      time.Time `json:"validUntil"`
	Timestamp       time.Time `json:"timestamp"`
}

// IsTrade は売買を推奨しているかを返します。
func (r TradeRecommendation) IsTrade() bool {
	return r.Action == ActionTrade
}
