// Package proxy はテクニカル分析スクレイピングプロキシのクライアントを提供します。
package proxy

import "time"

// Config はプロキシクライアントの設定を保持します。
type Config struct {
	BaseURL string        // 例: "http://localhost:3001"
	Timeout time.Duration // HTTPリクエストタイムアウト
}
