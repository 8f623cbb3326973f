// Package twelvedata はTwelve Data APIのクライアント（時系列・テクニカル指標）を提供します。
package twelvedata

import (
	"os"
	"strconv"
	"time"
)

// Config はTwelve Data APIクライアントの設定を保持します。
type Config struct {
	TwelveDataAPIKey   string        // 認証用APIキー
	BaseURL            string        // APIのベースURL（例: "https://api.twelvedata.com"）
	Timeout            time.Duration // HTTPリクエストタイムアウト
	RateLimitPerMinute int           // 1分あたりのリクエスト上限（無料プランは8）
}

// LoadConfig は環境変数からTwelve Dataの設定を読み込みます。
func LoadConfig() Config {
	perMinute, err := strconv.Atoi(os.Getenv("TWELVE_DATA_RATE_LIMIT"))
	if err != nil || perMinute <= 0 {
		perMinute = 8
	}
	return Config{
		TwelveDataAPIKey:   os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:            os.Getenv("TWELVE_DATA_BASE_URL"),
		Timeout:            10 * time.Second,
		RateLimitPerMinute: perMinute,
	}
}
