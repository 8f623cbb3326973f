// Package openai はOpenAI互換のチャット補完APIクライアントを提供します。
package openai

// Config はチャット補完クライアントの設定を保持します。
type Config struct {
	BaseURL     string // 例: "https://api.openai.com/v1"
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
}
