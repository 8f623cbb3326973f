package dto

import (
	"trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/fallback"
)

// TechnicalResponse は GET /v1/technical/:code のレスポンスです。
type TechnicalResponse struct {
	entity.TechnicalSignal
	FallbackReason string `json:"fallbackReason,omitempty"`
	FailureKind    string `json:"failureKind,omitempty"`
}

// FromResult はフォールバック情報を含めてレスポンスに変換します。
func FromResult(res fallback.Result[entity.TechnicalSignal]) TechnicalResponse {
	return TechnicalResponse{
		TechnicalSignal: res.Value,
		FallbackReason:  res.ReasonText(),
		FailureKind:     string(res.Kind()),
	}
}

// NewsResponse は GET /v1/technical/:code/news のレスポンスです。
type NewsResponse struct {
	entity.NewsRisk
	FallbackReason string `json:"fallbackReason,omitempty"`
}

func FromNews(res fallback.Result[entity.NewsRisk]) NewsResponse {
	return NewsResponse{NewsRisk: res.Value, FallbackReason: res.ReasonText()}
}
