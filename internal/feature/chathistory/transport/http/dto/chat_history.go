// Package dto はchathistoryフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "trade_advisor/internal/feature/chathistory/domain/entity"

// HistoryResponse は GET /v1/chat/:code/history のレスポンスです。
type HistoryResponse struct {
	Ticker   string               `json:"ticker"`
	Messages []entity.ChatMessage `json:"messages"`
}

// SearchResponse は GET /v1/chat/search のレスポンスです。
type SearchResponse struct {
	Query string             `json:"query"`
	Hits  []entity.SearchHit `json:"hits"`
}

// ImportResponse は POST /v1/chat/import のレスポンスです。
type ImportResponse struct {
	Imported int `json:"imported"`
}
