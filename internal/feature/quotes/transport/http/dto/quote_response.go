package dto

import (
	"time"

	"trade_advisor/internal/feature/quotes/domain/entity"
)

// QuoteResponse は GET /v1/quotes/:code のレスポンスです。
type QuoteResponse struct {
	Instrument string            `json:"instrument"`
	Bid        float64           `json:"bid"`
	Ask        float64           `json:"ask"`
	Mid        float64           `json:"mid"`
	SpreadPips float64           `json:"spreadPips"`
	Volume     float64           `json:"volume"`
	Timestamp  time.Time         `json:"timestamp"`
	IsReal     bool              `json:"isReal"`
	Source     string            `json:"source"`
	Validation string            `json:"validation"`
	Confidence float64           `json:"confidence"`
	Difference float64           `json:"difference"`
	Sources    []string          `json:"sources"`
	Failures   map[string]string `json:"failures,omitempty"`
}

// FromValidated は照合済み価格をレスポンスに変換します。
func FromValidated(vq entity.ValidatedQuote) QuoteResponse {
	q := vq.Quote
	return QuoteResponse{
		Instrument: q.Instrument,
		Bid:        q.Bid,
		Ask:        q.Ask,
		Mid:        q.Mid,
		SpreadPips: q.SpreadPips,
		Volume:     q.Volume,
		Timestamp:  q.Timestamp,
		IsReal:     q.IsReal,
		Source:     q.Source,
		Validation: string(vq.Status),
		Confidence: vq.Confidence,
		Difference: vq.Difference,
		Sources:    vq.Sources,
		Failures:   vq.Failures,
	}
}
