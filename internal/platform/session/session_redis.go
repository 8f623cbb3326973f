// Package session はRedisを使ったオペレーターセッションの保存を提供します。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trade_advisor/internal/feature/auth/domain"
	"trade_advisor/internal/feature/auth/domain/entity"
	"trade_advisor/internal/feature/auth/usecase"
)

// revokedTTL は無効化済みセッションを監査用に残す期間です。
const revokedTTL = 24 * time.Hour

// SessionRedis は usecase.SessionRepository のRedis実装です。
// 有効期限はRedisのTTLで管理します。
type SessionRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis は SessionRedis を生成します。
func NewSessionRedis(client *redis.Client, prefix string) *SessionRedis {
	return &SessionRedis{
		client: client,
		prefix: prefix,
	}
}

func (r *SessionRedis) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Create はセッションをTTL付きで保存します。
func (r *SessionRedis) Create(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	return r.client.Set(ctx, r.sessionKey(session.ID), data, ttl).Err()
}

// FindByID はIDでセッションを取得します。
func (r *SessionRedis) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Revoke はセッションを無効化し、監査用に短いTTLで残します。
func (r *SessionRedis) Revoke(ctx context.Context, id string, at time.Time) error {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if session.IsRevoked() {
		return domain.ErrSessionNotFound
	}
	session.RevokedAt = &at

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(id), data, revokedTTL).Err()
}

// DeleteExpired はRedisのTTLに任せるため何もしません。
func (r *SessionRedis) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}
