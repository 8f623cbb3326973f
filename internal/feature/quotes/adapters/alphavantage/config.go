// Package alphavantage はAlpha Vantage GLOBAL_QUOTE APIのクライアントを提供します。
package alphavantage

import "time"

// Config はAlpha Vantageクライアントの設定を保持します。
type Config struct {
	BaseURL string        // 例: "https://www.alphavantage.co"
	APIKey  string        // apikey クエリパラメータ
	Timeout time.Duration // HTTPリクエストタイムアウト
}
