package usecase

import (
	"context"
	"time"

	"trade_advisor/internal/feature/auth/domain/entity"
)

// SessionRepository はセッションの永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SessionRepository interface {
	// Create は新しいセッションを保存します。
	Create(ctx context.Context, session *entity.Session) error

	// FindByID はIDでセッションを取得します。存在しない場合は domain.ErrSessionNotFound を返します。
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Revoke はセッションを無効化します。
	Revoke(ctx context.Context, id string, at time.Time) error

	// DeleteExpired は before より前に失効したセッションを削除し、削除件数を返します。
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
