// Package oanda はOANDA v20 pricing APIのクライアントを提供します。
package oanda

import "time"

// Config はOANDAクライアントの設定を保持します。
type Config struct {
	BaseURL   string        // 例: "https://api-fxpractice.oanda.com"
	AccountID string        // v20 アカウントID
	Token     string        // Bearer トークン
	Timeout   time.Duration // HTTPリクエストタイムアウト
}
