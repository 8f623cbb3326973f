package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"trade_advisor/internal/feature/advisor/domain/entity"
	"trade_advisor/internal/feature/advisor/usecase"
	chat "trade_advisor/internal/feature/chathistory/domain/entity"
)

// Client は go-openai でチャット補完を行います。
// APIキーは呼び出しごとに変わり得るため、リクエストのたびにクライアントを組み立てます。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ usecase.ChatCompleter = (*Client)(nil)

// NewClient は Client を生成します。
func NewClient(cfg Config, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, httpClient: httpClient}
}

func (c *Client) Model() string { return c.cfg.Model }

// Complete は system、履歴、新しい発言の順にメッセージを送り、最初の候補の本文を返します。
func (c *Client) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	oc := goopenai.DefaultConfig(req.APIKey)
	if c.cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(c.cfg.BaseURL, "/")
	}
	if c.httpClient != nil {
		oc.HTTPClient = c.httpClient
	}
	client := goopenai.NewClientWithConfig(oc)

	resp, err := client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    toMessages(req),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
	})
	if err != nil {
		return "", classify(err, req.HasImages())
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toMessages(req entity.CompletionRequest) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := goopenai.ChatMessageRoleUser
		if m.Role == chat.RoleAssistant {
			role = goopenai.ChatMessageRoleAssistant
		}
		if len(m.Images) == 0 {
			out = append(out, goopenai.ChatCompletionMessage{Role: role, Content: m.Text})
			continue
		}
		// 画像付きの発言はマルチパートで送る
		parts := make([]goopenai.ChatMessagePart, 0, len(m.Images)+1)
		if m.Text != "" {
			parts = append(parts, goopenai.ChatMessagePart{Type: goopenai.ChatMessagePartTypeText, Text: m.Text})
		}
		for _, img := range m.Images {
			parts = append(parts, goopenai.ChatMessagePart{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL:    "data:" + img.MimeType + ";base64," + img.Data,
					Detail: goopenai.ImageURLDetailAuto,
				},
			})
		}
		out = append(out, goopenai.ChatCompletionMessage{Role: role, MultiContent: parts})
	}
	return out
}

// classify はAPIエラーをアドバイザーのエラー分類に変換します。
func classify(err error, hadImages bool) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", usecase.ErrCredentialRequired, apiErr.Message)
		case hadImages && apiErr.HTTPStatusCode == http.StatusBadRequest && mentionsImages(apiErr.Message):
			return fmt.Errorf("%w: %s", usecase.ErrImagesUnsupported, apiErr.Message)
		}
		return fmt.Errorf("openai: status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %v", usecase.ErrCredentialRequired, reqErr.Err)
	}
	return fmt.Errorf("openai: %w", err)
}

func mentionsImages(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "image") || strings.Contains(msg, "vision") || strings.Contains(msg, "multimodal")
}
