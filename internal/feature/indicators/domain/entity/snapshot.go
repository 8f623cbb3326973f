// Package entity はindicatorsフィーチャーのドメインモデルを定義します。
package entity

import "time"

// 指標の取得元
const (
	SourceTwelveData = "TWELVEDATA"
	SourceLocal      = "LOCAL"
	SourceMixed      = "MIXED"
)

// IndicatorSnapshot はある時点のSMA/RSI/VWAPです。
// IsReal は3つすべてを外部APIから取得できた場合のみ true です。
type IndicatorSnapshot struct {
	Instrument string    `json:"instrument"`
	Interval   string    `json:"interval"`
	SMA20      float64   `json:"sma20"`
	RSI14      float64   `json:"rsi14"`
	VWAP       float64   `json:"vwap"`
	IsReal     bool      `json:"isReal"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}
