// Package entity はanalysisフィーチャーのドメインモデルを定義します。
package entity

import (
	"time"

	orderflow "trade_advisor/internal/feature/orderflow/domain/entity"
	recommendation "trade_advisor/internal/feature/recommendation/domain/entity"
	strategy "trade_advisor/internal/feature/strategy/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
)

// AnalysisRecord は1回の分析サイクルの結果です。チャットアドバイザーの文脈にも使います。
type AnalysisRecord struct {
	ID             string                             `json:"id"`
	Ticker         string                             `json:"ticker"`
	Strategy       strategy.Analysis                  `json:"strategy"`
	OrderFlow      orderflow.OrderFlowResult          `json:"orderFlow"`
	News           technical.NewsRisk                 `json:"news"`
	Recommendation recommendation.TradeRecommendation `json:"recommendation"`
	CreatedAt      time.Time                          `json:"createdAt"`
}
