// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"trade_advisor/internal/feature/auth/domain"
	"trade_advisor/internal/feature/auth/domain/entity"
)

// OperatorSubject は単一オペレーターのトークン subject です。
const OperatorSubject = "operator"

// dummyHash はハッシュ未設定時にも比較処理の時間を揃えるためのダミーです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type JWTGenerator interface {
	GenerateToken(subject, sessionID string) (string, time.Time, error)
}

// ClientMeta はセッション監査用のクライアント情報です。
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// LoginResult はログイン成功時のトークンと有効期限です。
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	passwordHash string
	sessions     SessionRepository
	jwtGenerator JWTGenerator
	now          func() time.Time
}

// NewAuthUsecase は authUsecase の新しいインスタンスを生成します。
// passwordHash は bcrypt でハッシュ化したオペレーターのパスワードです。
func NewAuthUsecase(passwordHash string, sessions SessionRepository, jwtGenerator JWTGenerator) *authUsecase {
	return &authUsecase{
		passwordHash: passwordHash,
		sessions:     sessions,
		jwtGenerator: jwtGenerator,
		now:          time.Now,
	}
}

// HashPassword はオペレーターパスワードの bcrypt ハッシュを生成します。
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters long")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Login はパスワードを検証し、セッションを作成してJWTを返します。
// タイミング攻撃を防止するため、ハッシュ未設定時もbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, password string, meta ClientMeta) (LoginResult, error) {
	hash := u.passwordHash
	if hash == "" {
		hash = dummyHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if u.passwordHash == "" {
		return LoginResult{}, domain.ErrNotConfigured
	}
	if compareErr != nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	sid := uuid.NewString()
	token, exp, err := u.jwtGenerator.GenerateToken(OperatorSubject, sid)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &entity.Session{
		ID:        sid,
		Subject:   OperatorSubject,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: u.now(),
		ExpiresAt: exp,
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return LoginResult{}, fmt.Errorf("failed to create session: %w", err)
	}

	return LoginResult{Token: token, ExpiresAt: exp}, nil
}

// Logout はセッションを無効化します。存在しないセッションは成功扱いです。
func (u *authUsecase) Logout(ctx context.Context, sessionID string) error {
	err := u.sessions.Revoke(ctx, sessionID, u.now())
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	return err
}

// IsActive はセッションが有効かを返します。jwt ミドルウェアから呼ばれます。
func (u *authUsecase) IsActive(ctx context.Context, sessionID string) (bool, error) {
	s, err := u.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.IsValid(u.now()), nil
}

// PurgeExpired は期限切れセッションを削除します。スケジューラから定期実行されます。
func (u *authUsecase) PurgeExpired(ctx context.Context) error {
	n, err := u.sessions.DeleteExpired(ctx, u.now())
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("expired sessions purged", "count", n)
	}
	return nil
}
