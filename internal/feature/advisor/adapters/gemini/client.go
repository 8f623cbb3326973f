// Package gemini はGoogle Gemini APIを使用したチャット補完クライアントを提供します。
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"trade_advisor/internal/feature/advisor/domain/entity"
	"trade_advisor/internal/feature/advisor/usecase"
	chat "trade_advisor/internal/feature/chathistory/domain/entity"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// Config はGeminiクライアントの設定を保持します。BaseURL は空なら既定のエンドポイントです。
type Config struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiCompleter はGemini APIでチャット補完を行います。
type GeminiCompleter struct {
	cfg        Config
	httpClient *http.Client
}

// GeminiCompleterがChatCompleterを実装していることをコンパイル時に検証します。
var _ usecase.ChatCompleter = (*GeminiCompleter)(nil)

// NewGeminiCompleter は GeminiCompleter を生成します。
func NewGeminiCompleter(cfg Config, httpClient *http.Client) *GeminiCompleter {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &GeminiCompleter{cfg: cfg, httpClient: httpClient}
}

func (g *GeminiCompleter) Model() string { return g.cfg.Model }

// Complete は履歴と新しい発言を送り、生成されたテキストを返します。
func (g *GeminiCompleter) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	cc := &genai.ClientConfig{
		APIKey:     req.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	contents, err := toContents(req.Messages)
	if err != nil {
		return "", err
	}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.cfg.MaxTokens),
	}
	if g.cfg.Temperature > 0 {
		config.Temperature = genai.Ptr(g.cfg.Temperature)
	}
	if g.cfg.TopP > 0 {
		config.TopP = genai.Ptr(g.cfg.TopP)
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		return "", classify(err, req.HasImages())
	}
	return resp.Text(), nil
}

func toContents(msgs []entity.Message) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Role == chat.RoleAssistant {
			role = genai.RoleModel
		}
		parts := make([]*genai.Part, 0, len(m.Images)+1)
		if m.Text != "" {
			parts = append(parts, genai.NewPartFromText(m.Text))
		}
		for i, img := range m.Images {
			data, err := base64.StdEncoding.DecodeString(img.Data)
			if err != nil {
				return nil, fmt.Errorf("image %d: %w", i+1, err)
			}
			parts = append(parts, genai.NewPartFromBytes(data, img.MimeType))
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, genai.NewContentFromParts(parts, role))
	}
	return out, nil
}

// classify はAPIエラーをアドバイザーのエラー分類に変換します。
// Gemini は不正なAPIキーを 400 INVALID_ARGUMENT で返すことがあるため本文も確認します。
func classify(err error, hadImages bool) error {
	code, msg, ok := apiError(err)
	if !ok {
		return fmt.Errorf("gemini API request failed: %w", err)
	}
	lower := strings.ToLower(msg)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden || strings.Contains(lower, "api key not valid"):
		return fmt.Errorf("%w: %s", usecase.ErrCredentialRequired, msg)
	case hadImages && code == http.StatusBadRequest && strings.Contains(lower, "image"):
		return fmt.Errorf("%w: %s", usecase.ErrImagesUnsupported, msg)
	}
	return fmt.Errorf("gemini API request failed: status %d: %s", code, msg)
}

func apiError(err error) (int, string, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v.Code, v.Message, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return p.Code, p.Message, true
	}
	return 0, "", false
}
