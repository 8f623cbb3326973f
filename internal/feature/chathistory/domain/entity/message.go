// Package entity はchathistoryフィーチャーのドメインモデルを定義します。
package entity

import "time"

// Role は発言者です。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid は既知のロールかを返します。
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Image はメッセージに添付された画像です。Data は base64 エンコード済みです。
type Image struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// ChatMessage は1件の発言です。銘柄ごとに挿入順で保持されます。
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Images    []Image   `json:"images,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Thread は銘柄ごとの会話履歴です。
type Thread struct {
	Ticker       string
	Messages     []ChatMessage
	LastActivity time.Time
}

// ExportVersion はエクスポート形式のバージョンです。
const ExportVersion = 1

// Export は全履歴の一括エクスポート形式です。
type Export struct {
	Version    int                      `json:"version"`
	ExportedAt time.Time                `json:"exportedAt"`
	Histories  map[string][]ChatMessage `json:"histories"`
}

// SearchHit は検索結果の1件です。
type SearchHit struct {
	Ticker  string      `json:"ticker"`
	Message ChatMessage `json:"message"`
}
