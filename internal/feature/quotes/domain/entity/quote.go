// Package entity はquotesフィーチャーのドメインモデルを定義します。
package entity

import "time"

// プロバイダー名。ValidationStatus の SINGLE_SOURCE_<PROVIDER> にも使います。
const (
	SourceOanda        = "OANDA"
	SourceAlphaVantage = "ALPHAVANTAGE"
	SourceSynthetic    = "SYNTHETIC"
)

// PriceQuote はある時点の価格スナップショットです。生成後は変更しません。
type PriceQuote struct {
	Instrument string    `json:"instrument"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	Mid        float64   `json:"mid"`
	SpreadPips float64   `json:"spreadPips"`
	Volume     float64   `json:"volume"`
	Timestamp  time.Time `json:"timestamp"`
	IsReal     bool      `json:"isReal"`
	Source     string    `json:"source"`
}

// ValidationStatus は複数プロバイダーの照合結果です。
type ValidationStatus string

const (
	StatusCrossValidated   ValidationStatus = "CROSS_VALIDATED"
	StatusPriceDiscrepancy ValidationStatus = "PRICE_DISCREPANCY"
	StatusFallback         ValidationStatus = "FALLBACK"
)

// SingleSource は1つのプロバイダーのみ成功した場合のステータスを返します。
func SingleSource(provider string) ValidationStatus {
	return ValidationStatus("SINGLE_SOURCE_" + provider)
}

// ValidatedQuote は照合済みの価格です。
// Quote は照合に使った代表値（主プロバイダー優先）、Difference は mid の相対差です。
type ValidatedQuote struct {
	Quote      PriceQuote        `json:"quote"`
	Status     ValidationStatus  `json:"status"`
	Confidence float64           `json:"confidence"`
	Difference float64           `json:"difference"`
	Sources    []string          `json:"sources"`
	Failures   map[string]string `json:"failures,omitempty"`
}
