package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	geminiadapter "trade_advisor/internal/feature/advisor/adapters/gemini"
	openaiadapter "trade_advisor/internal/feature/advisor/adapters/openai"
	"trade_advisor/internal/feature/advisor/adapters/vision"
	advisoruc "trade_advisor/internal/feature/advisor/usecase"
	"trade_advisor/internal/feature/quotes/adapters/alphavantage"
	"trade_advisor/internal/feature/quotes/adapters/oanda"
	quoteuc "trade_advisor/internal/feature/quotes/usecase"
	"trade_advisor/internal/platform/config"
	httpc "trade_advisor/internal/platform/http"
)

// NewQuoteProviders は認証情報が設定されている価格プロバイダーだけを返します。
// 未設定のプロバイダーは nil（インターフェースとしての nil）です。
func NewQuoteProviders(cfg *config.Config, httpClient *http.Client) (primary, secondary quoteuc.QuoteProvider) {
	if cfg.Broker.Token != "" && cfg.Broker.AccountID != "" {
		primary = oanda.NewClient(oanda.Config{
			BaseURL:   cfg.Broker.BaseURL,
			AccountID: cfg.Broker.AccountID,
			Token:     cfg.Broker.Token,
			Timeout:   cfg.HTTPTimeout,
		}, httpClient)
	} else {
		slog.Warn("broker credentials not set; primary quotes disabled")
	}
	if cfg.QuoteAPI.APIKey != "" {
		secondary = alphavantage.NewClient(alphavantage.Config{
			BaseURL: cfg.QuoteAPI.BaseURL,
			APIKey:  cfg.QuoteAPI.APIKey,
			Timeout: cfg.HTTPTimeout,
		}, httpClient)
	} else {
		slog.Warn("quote api key not set; secondary quotes disabled")
	}
	return primary, secondary
}

// NewChatCompleter は llm.provider に応じたチャット補完クライアントを生成します。
// APIキーは呼び出しごとに設定から解決するため、ここでは渡しません。
func NewChatCompleter(cfg *config.Config) (advisoruc.ChatCompleter, error) {
	client := httpc.NewHTTPClient(advisoruc.DefaultTimeout)
	switch cfg.LLM.Provider {
	case "openai":
		return openaiadapter.NewClient(openaiadapter.Config{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
		}, client), nil
	case "gemini":
		return geminiadapter.NewGeminiCompleter(geminiadapter.Config{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
		}, client), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}
}

// NewImageDescriber は vision.enabled の場合にCloud Visionクライアントを生成します。
// 無効または初期化に失敗した場合は nil を返し、テキストのみ再送は画像の説明なしで動作します。
func NewImageDescriber(ctx context.Context, cfg *config.Config) (advisoruc.ImageDescriber, func() error) {
	if !cfg.Vision.Enabled {
		return nil, nil
	}
	v, err := vision.NewVisionDescriber(ctx)
	if err != nil {
		slog.Warn("vision client unavailable; text-only resend will skip image descriptions", "error", err)
		return nil, nil
	}
	return v, v.Close
}
