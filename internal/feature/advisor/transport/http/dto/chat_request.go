// Package dto はadvisorフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import chat "trade_advisor/internal/feature/chathistory/domain/entity"

// ChatRequest は POST /v1/chat/:code のJSONボディです。画像は base64 で渡します。
type ChatRequest struct {
	Message string       `json:"message"`
	Images  []chat.Image `json:"images"`
}
