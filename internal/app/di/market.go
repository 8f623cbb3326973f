package di

import (
	"net/http"
	"time"

	"trade_advisor/internal/platform/config"
	"trade_advisor/internal/platform/externalapi/twelvedata"
	"trade_advisor/internal/shared/ratelimiter"
)

// NewMarket は設定からTwelve Dataクライアントを生成します。
// レートリミッターはローソク足取り込みと指標取得で共有され、無料プランのクォータを守ります。
func NewMarket(cfg *config.Config, httpClient *http.Client) *twelvedata.TwelveDataMarket {
	tdCfg := twelvedata.Config{
		TwelveDataAPIKey:   cfg.Indicators.APIKey,
		BaseURL:            cfg.Indicators.BaseURL,
		Timeout:            cfg.HTTPTimeout,
		RateLimitPerMinute: cfg.Indicators.RateLimitPerMinute,
	}
	limiter := ratelimiter.NewRateLimiter("twelvedata", tdCfg.RateLimitPerMinute, time.Minute)
	return twelvedata.NewTwelveDataMarket(tdCfg, httpClient, limiter)
}
