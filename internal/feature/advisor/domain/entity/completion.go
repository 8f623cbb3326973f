// Package entity はadvisorフィーチャーのドメインモデルを定義します。
package entity

import chat "trade_advisor/internal/feature/chathistory/domain/entity"

// Message はLLMへ送る1件のメッセージです。Role は user か assistant です。
type Message struct {
	Role   chat.Role
	Text   string
	Images []chat.Image
}

// CompletionRequest はチャット補完の入力です。APIKey は呼び出しごとに解決します。
type CompletionRequest struct {
	APIKey   string
	System   string
	Messages []Message
}

// HasImages は画像付きのメッセージを含むかを返します。
func (r CompletionRequest) HasImages() bool {
	for _, m := range r.Messages {
		if len(m.Images) > 0 {
			return true
		}
	}
	return false
}

// Reply はアドバイザーの応答です。
type Reply struct {
	Ticker   string           `json:"ticker"`
	Message  chat.ChatMessage `json:"message"`
	Model    string           `json:"model"`
	TextOnly bool             `json:"textOnly"`
}
