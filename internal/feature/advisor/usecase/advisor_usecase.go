// Package usecase はチャットアドバイザーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trade_advisor/internal/feature/advisor/domain/entity"
	analysis "trade_advisor/internal/feature/analysis/domain/entity"
	analysisuc "trade_advisor/internal/feature/analysis/usecase"
	chat "trade_advisor/internal/feature/chathistory/domain/entity"
	settingsuc "trade_advisor/internal/feature/settings/usecase"
)

const (
	// DefaultHistoryTurns はプロンプトに含める直近の履歴件数です。
	DefaultHistoryTurns = 10
	// DefaultTimeout はLLM呼び出し1回あたりの上限時間です。
	DefaultTimeout = 60 * time.Second
	// MaxImages は1メッセージに添付できる画像の数です。
	MaxImages = 4
	// MaxImageSize は画像1枚あたりの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// MaxMessageLength は本文の最大文字数（rune数）です。
	MaxMessageLength = 4000
)

// ChatCompleter はチャット補完を行うLLMクライアントです。
// 401 は ErrCredentialRequired、画像非対応は ErrImagesUnsupported に変換して返します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ChatCompleter interface {
	Complete(ctx context.Context, req entity.CompletionRequest) (string, error)
	Model() string
}

// ImageDescriber は画像から文字とラベルを抽出します（テキストのみ再送用）。
type ImageDescriber interface {
	Describe(ctx context.Context, img []byte) (string, error)
}

// CredentialSource はLLMのAPIキーを呼び出しごとに解決します。
type CredentialSource interface {
	LLMCredential(ctx context.Context) (string, error)
}

// HistoryStore は銘柄ごとの会話履歴です。
type HistoryStore interface {
	Get(ctx context.Context, ticker string) ([]chat.ChatMessage, error)
	Append(ctx context.Context, ticker string, msgs ...chat.ChatMessage) ([]chat.ChatMessage, error)
}

// AnalysisSource は直近の分析結果を返します。
type AnalysisSource interface {
	Latest(ctx context.Context, ticker string) (analysis.AnalysisRecord, error)
}

// Config はアドバイザーの設定です。
type Config struct {
	HistoryTurns int
	Timeout      time.Duration
}

type AdvisorUsecase struct {
	llm         ChatCompleter
	describer   ImageDescriber // nil の場合はOCRなしでテキストのみ再送します
	credentials CredentialSource
	history     HistoryStore
	analyses    AnalysisSource
	cfg         Config
	now         func() time.Time
}

// NewAdvisorUsecase は AdvisorUsecase を生成します。describer は nil でも構いません。
func NewAdvisorUsecase(llm ChatCompleter, describer ImageDescriber, credentials CredentialSource,
	history HistoryStore, analyses AnalysisSource, cfg Config) *AdvisorUsecase {
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = DefaultHistoryTurns
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &AdvisorUsecase{
		llm:         llm,
		describer:   describer,
		credentials: credentials,
		history:     history,
		analyses:    analyses,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SendMessage はユーザーの発言（画像付き可）をLLMに送り、応答を返します。
// 成功した往復のみ履歴に保存します。失敗時は自動で再試行しません。
func (u *AdvisorUsecase) SendMessage(ctx context.Context, ticker, text string, images []chat.Image) (entity.Reply, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if err := validate(ticker, text, images); err != nil {
		return entity.Reply{}, err
	}
	return u.exchange(ctx, ticker, chat.ChatMessage{Role: chat.RoleUser, Content: strings.TrimSpace(text), Images: images}, false)
}

// ResendTextOnly は画像を外して再送します。画像解析が使える場合は抽出した文字とラベルを本文に追記します。
func (u *AdvisorUsecase) ResendTextOnly(ctx context.Context, ticker, text string, images []chat.Image) (entity.Reply, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if err := validate(ticker, text, images); err != nil {
		return entity.Reply{}, err
	}
	content := strings.TrimSpace(text)
	if notes := u.describeImages(ctx, images); notes != "" {
		content = strings.TrimSpace(content + "\n\n" + notes)
	}
	if content == "" {
		return entity.Reply{}, fmt.Errorf("%w: no text to send without images", ErrInvalidRequest)
	}
	return u.exchange(ctx, ticker, chat.ChatMessage{Role: chat.RoleUser, Content: content}, true)
}

func (u *AdvisorUsecase) exchange(ctx context.Context, ticker string, userMsg chat.ChatMessage, textOnly bool) (entity.Reply, error) {
	apiKey, err := u.credentials.LLMCredential(ctx)
	if err != nil {
		if errors.Is(err, settingsuc.ErrCredentialNotSet) {
			return entity.Reply{}, ErrCredentialRequired
		}
		return entity.Reply{}, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}

	req := entity.CompletionRequest{
		APIKey:   apiKey,
		System:   BuildSystemPrompt(ticker, u.latest(ctx, ticker)),
		Messages: append(u.recentTurns(ctx, ticker), entity.Message{Role: chat.RoleUser, Text: userMsg.Content, Images: userMsg.Images}),
	}

	callCtx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	start := u.now()
	answer, err := u.llm.Complete(callCtx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrCredentialRequired), errors.Is(err, ErrImagesUnsupported):
			slog.Warn("advisor request rejected", "ticker", ticker, "model", u.llm.Model(), "error", err)
			return entity.Reply{}, err
		default:
			slog.Error("advisor request failed", "ticker", ticker, "model", u.llm.Model(), "error", err)
			return entity.Reply{}, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
		}
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return entity.Reply{}, fmt.Errorf("%w: empty completion", ErrAdvisorUnavailable)
	}

	now := u.now().UTC()
	userMsg.Timestamp = now
	assistant := chat.ChatMessage{Role: chat.RoleAssistant, Content: answer, Timestamp: now}
	saved, err := u.history.Append(ctx, ticker, userMsg, assistant)
	if err != nil {
		slog.Error("failed to save chat turn", "ticker", ticker, "error", err)
	} else if len(saved) > 0 {
		assistant = saved[len(saved)-1]
	}

	slog.Info("advisor replied",
		"ticker", ticker,
		"model", u.llm.Model(),
		"images", len(userMsg.Images),
		"text_only", textOnly,
		"elapsed", u.now().Sub(start),
	)
	return entity.Reply{Ticker: ticker, Message: assistant, Model: u.llm.Model(), TextOnly: textOnly}, nil
}

// latest は直近の分析結果を返します。未実施や取得失敗の場合は nil です。
func (u *AdvisorUsecase) latest(ctx context.Context, ticker string) *analysis.AnalysisRecord {
	rec, err := u.analyses.Latest(ctx, ticker)
	if err != nil {
		if !errors.Is(err, analysisuc.ErrRecordNotFound) {
			slog.Warn("failed to load latest analysis for chat", "ticker", ticker, "error", err)
		}
		return nil
	}
	return &rec
}

// recentTurns は直近の履歴を返します。過去の画像は再送せず、添付があったことだけを本文に残します。
func (u *AdvisorUsecase) recentTurns(ctx context.Context, ticker string) []entity.Message {
	msgs, err := u.history.Get(ctx, ticker)
	if err != nil {
		slog.Warn("failed to load chat history", "ticker", ticker, "error", err)
		return nil
	}
	if len(msgs) > u.cfg.HistoryTurns {
		msgs = msgs[len(msgs)-u.cfg.HistoryTurns:]
	}
	out := make([]entity.Message, 0, len(msgs)+1)
	for _, m := range msgs {
		text := m.Content
		if n := len(m.Images); n > 0 {
			text = strings.TrimSpace(fmt.Sprintf("%s\n[%d image(s) attached]", text, n))
		}
		out = append(out, entity.Message{Role: m.Role, Text: text})
	}
	return out
}

func (u *AdvisorUsecase) describeImages(ctx context.Context, images []chat.Image) string {
	if u.describer == nil || len(images) == 0 {
		return ""
	}
	var notes []string
	for i, img := range images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			continue
		}
		desc, err := u.describer.Describe(ctx, data)
		if err != nil {
			slog.Warn("image description failed", "index", i, "error", err)
			continue
		}
		if desc = strings.TrimSpace(desc); desc != "" {
			notes = append(notes, fmt.Sprintf("[Image %d]\n%s", i+1, desc))
		}
	}
	return strings.Join(notes, "\n\n")
}

func validate(ticker, text string, images []chat.Image) error {
	if ticker == "" {
		return fmt.Errorf("%w: ticker is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(text) == "" && len(images) == 0 {
		return fmt.Errorf("%w: message is empty", ErrInvalidRequest)
	}
	if len([]rune(text)) > MaxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidRequest, MaxMessageLength)
	}
	if len(images) > MaxImages {
		return fmt.Errorf("%w: at most %d images", ErrInvalidRequest, MaxImages)
	}
	for i, img := range images {
		if !strings.HasPrefix(img.MimeType, "image/") {
			return fmt.Errorf("%w: image %d has unsupported type %q", ErrInvalidRequest, i+1, img.MimeType)
		}
		if base64.StdEncoding.DecodedLen(len(img.Data)) > MaxImageSize {
			return fmt.Errorf("%w: image %d exceeds %d bytes", ErrInvalidRequest, i+1, MaxImageSize)
		}
		if _, err := base64.StdEncoding.DecodeString(img.Data); err != nil {
			return fmt.Errorf("%w: image %d is not valid base64", ErrInvalidRequest, i+1)
		}
	}
	return nil
}
