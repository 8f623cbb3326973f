// Package usecase は銘柄ごとのチャット履歴の保持と上限管理を実装します。
package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"trade_advisor/internal/feature/chathistory/domain/entity"
)

const (
	// DefaultMaxMessages は1銘柄あたりの保持件数の既定値です。超えた分は古い順に切り捨てます。
	DefaultMaxMessages = 50
	// DefaultMaxTickers は保持する銘柄数の既定値です。超えた分は最終更新が古い順に削除します。
	DefaultMaxTickers = 20
	// MaxSearchHits は検索結果の最大件数です。
	MaxSearchHits = 100
)

// ThreadRepository は会話履歴の永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ThreadRepository interface {
	// Get は存在しない場合 ErrThreadNotFound を返します。
	Get(ctx context.Context, ticker string) (entity.Thread, error)
	Save(ctx context.Context, t entity.Thread) error
	Delete(ctx context.Context, ticker string) error
	DeleteAll(ctx context.Context) error
	List(ctx context.Context) ([]entity.Thread, error)
}

// Limits は履歴の上限です。
type Limits struct {
	MaxMessages int
	MaxTickers  int
}

// ChatHistoryUsecase は履歴の読み書きを行います。
// 読み込み、変更、書き込みの一連の操作は mu で直列化します。
type ChatHistoryUsecase struct {
	repo   ThreadRepository
	limits Limits
	now    func() time.Time
	mu     sync.Mutex
}

// NewChatHistoryUsecase は ChatHistoryUsecase を生成します。0以下の上限は既定値になります。
func NewChatHistoryUsecase(repo ThreadRepository, limits Limits) *ChatHistoryUsecase {
	if limits.MaxMessages <= 0 {
		limits.MaxMessages = DefaultMaxMessages
	}
	if limits.MaxTickers <= 0 {
		limits.MaxTickers = DefaultMaxTickers
	}
	return &ChatHistoryUsecase{repo: repo, limits: limits, now: time.Now}
}

// Get は銘柄の履歴を古い順に返します。履歴がなければ空のスライスです。
func (u *ChatHistoryUsecase) Get(ctx context.Context, ticker string) ([]entity.ChatMessage, error) {
	ticker, err := normalize(ticker)
	if err != nil {
		return nil, err
	}
	t, err := u.load(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return t.Messages, nil
}

// Append はメッセージを末尾に追加し、上限を適用した後の履歴を返します。
// ID と時刻が空のメッセージには採番します。
func (u *ChatHistoryUsecase) Append(ctx context.Context, ticker string, msgs ...entity.ChatMessage) ([]entity.ChatMessage, error) {
	ticker, err := normalize(ticker)
	if err != nil {
		return nil, err
	}
	now := u.now().UTC()
	for i := range msgs {
		if !msgs[i].Role.Valid() {
			return nil, fmt.Errorf("%w: role %q", ErrInvalidMessage, msgs[i].Role)
		}
		if strings.TrimSpace(msgs[i].Content) == "" && len(msgs[i].Images) == 0 {
			return nil, fmt.Errorf("%w: empty content", ErrInvalidMessage)
		}
		if msgs[i].ID == "" {
			msgs[i].ID = uuid.NewString()
		}
		if msgs[i].Timestamp.IsZero() {
			msgs[i].Timestamp = now
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	t, err := u.load(ctx, ticker)
	if err != nil {
		return nil, err
	}
	t.Messages = u.capMessages(append(t.Messages, msgs...))
	t.LastActivity = now
	if err := u.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save chat thread %s: %w", ticker, err)
	}
	if err := u.evict(ctx, ticker); err != nil {
		return nil, err
	}
	return t.Messages, nil
}

// Clear は銘柄の履歴を削除します。
func (u *ChatHistoryUsecase) Clear(ctx context.Context, ticker string) error {
	ticker, err := normalize(ticker)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.repo.Delete(ctx, ticker)
}

// ClearAll はすべての履歴を削除します。
func (u *ChatHistoryUsecase) ClearAll(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.repo.DeleteAll(ctx)
}

// Search は本文に query を含むメッセージを大文字小文字を区別せずに探し、新しい順に返します。
func (u *ChatHistoryUsecase) Search(ctx context.Context, query string) ([]entity.SearchHit, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []entity.SearchHit{}, nil
	}
	threads, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	hits := []entity.SearchHit{}
	for _, t := range threads {
		for _, m := range t.Messages {
			if strings.Contains(strings.ToLower(m.Content), q) {
				hits = append(hits, entity.SearchHit{Ticker: t.Ticker, Message: m})
			}
		}
	}
	slices.SortStableFunc(hits, func(a, b entity.SearchHit) int {
		return b.Message.Timestamp.Compare(a.Message.Timestamp)
	})
	return hits[:min(len(hits), MaxSearchHits)], nil
}

// Export は全履歴を一括エクスポート形式で返します。
func (u *ChatHistoryUsecase) Export(ctx context.Context) (entity.Export, error) {
	threads, err := u.repo.List(ctx)
	if err != nil {
		return entity.Export{}, err
	}
	out := entity.Export{
		Version:    entity.ExportVersion,
		ExportedAt: u.now().UTC(),
		Histories:  make(map[string][]entity.ChatMessage, len(threads)),
	}
	for _, t := range threads {
		out.Histories[t.Ticker] = t.Messages
	}
	return out, nil
}

// Import はエクスポートを取り込みます。同じ銘柄の履歴は上書きし、上限は通常の追加と同じく適用します。
// 取り込んだ銘柄数を返します。
func (u *ChatHistoryUsecase) Import(ctx context.Context, exp entity.Export) (int, error) {
	if exp.Version != entity.ExportVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedExport, exp.Version)
	}

	threads := make([]entity.Thread, 0, len(exp.Histories))
	for raw, msgs := range exp.Histories {
		ticker, err := normalize(raw)
		if err != nil {
			slog.Warn("skipping chat history with empty ticker")
			continue
		}
		kept := make([]entity.ChatMessage, 0, len(msgs))
		for _, m := range msgs {
			if !m.Role.Valid() {
				continue
			}
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			continue
		}
		threads = append(threads, entity.Thread{
			Ticker:       ticker,
			Messages:     u.capMessages(kept),
			LastActivity: lastActivity(kept),
		})
	}
	// 古い順に保存すると、上限を超えた場合に最終更新の古い銘柄から削除される
	slices.SortFunc(threads, func(a, b entity.Thread) int {
		if c := a.LastActivity.Compare(b.LastActivity); c != 0 {
			return c
		}
		return cmp.Compare(a.Ticker, b.Ticker)
	})

	u.mu.Lock()
	defer u.mu.Unlock()

	for _, t := range threads {
		if err := u.repo.Save(ctx, t); err != nil {
			return 0, fmt.Errorf("import chat thread %s: %w", t.Ticker, err)
		}
	}
	if err := u.evict(ctx, ""); err != nil {
		return 0, err
	}
	slog.Info("chat history imported", "tickers", len(threads))
	return len(threads), nil
}

func (u *ChatHistoryUsecase) load(ctx context.Context, ticker string) (entity.Thread, error) {
	t, err := u.repo.Get(ctx, ticker)
	if err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			return entity.Thread{Ticker: ticker, Messages: []entity.ChatMessage{}}, nil
		}
		return entity.Thread{}, fmt.Errorf("load chat thread %s: %w", ticker, err)
	}
	if t.Messages == nil {
		t.Messages = []entity.ChatMessage{}
	}
	return t, nil
}

func (u *ChatHistoryUsecase) capMessages(msgs []entity.ChatMessage) []entity.ChatMessage {
	if len(msgs) <= u.limits.MaxMessages {
		return msgs
	}
	return slices.Clone(msgs[len(msgs)-u.limits.MaxMessages:])
}

// evict は銘柄数が上限を超えていれば最終更新が古い銘柄から削除します。keep は削除対象から外します。
func (u *ChatHistoryUsecase) evict(ctx context.Context, keep string) error {
	threads, err := u.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list chat threads: %w", err)
	}
	excess := len(threads) - u.limits.MaxTickers
	if excess <= 0 {
		return nil
	}
	slices.SortFunc(threads, func(a, b entity.Thread) int {
		if c := a.LastActivity.Compare(b.LastActivity); c != 0 {
			return c
		}
		return cmp.Compare(a.Ticker, b.Ticker)
	})
	for _, t := range threads {
		if excess == 0 {
			break
		}
		if t.Ticker == keep {
			continue
		}
		if err := u.repo.Delete(ctx, t.Ticker); err != nil {
			return fmt.Errorf("evict chat thread %s: %w", t.Ticker, err)
		}
		slog.Info("chat thread evicted", "ticker", t.Ticker, "last_activity", t.LastActivity)
		excess--
	}
	return nil
}

func lastActivity(msgs []entity.ChatMessage) time.Time {
	var last time.Time
	for _, m := range msgs {
		if m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}
	return last.UTC()
}

func normalize(ticker string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return "", ErrInvalidTicker
	}
	return t, nil
}
