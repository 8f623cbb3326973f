package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_advisor/internal/feature/auth/domain"
	"trade_advisor/internal/feature/auth/domain/entity"
)

// mockSessionRepository は SessionRepository のモックです。
type mockSessionRepository struct {
	sessions       map[string]*entity.Session
	CreateErr      error
	FindErr        error
	DeleteExpiredN int64
}

func newMockSessions() *mockSessionRepository {
	return &mockSessionRepository{sessions: map[string]*entity.Session{}}
}

func (m *mockSessionRepository) Create(ctx context.Context, s *entity.Session) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.RevokedAt = &at
	return nil
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return m.DeleteExpiredN, nil
}

// mockJWTGenerator は JWTGenerator のモックです。
type mockJWTGenerator struct {
	GenerateTokenFunc func(subject, sessionID string) (string, time.Time, error)
	LastSessionID     string
}

func (m *mockJWTGenerator) GenerateToken(subject, sessionID string) (string, time.Time, error) {
	m.LastSessionID = sessionID
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(subject, sessionID)
	}
	return "mock-jwt-token", time.Now().Add(time.Hour), nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestHashPassword_TooShort(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("short")
	assert.Error(t, err)
}

func TestAuthUsecase_Login(t *testing.T) {
	t.Parallel()

	hash := mustHash(t, "correct-horse")

	tests := []struct {
		name     string
		hash     string
		password string
		jwtErr   error
		wantErr  error
	}{
		{name: "success", hash: hash, password: "correct-horse"},
		{name: "wrong password", hash: hash, password: "wrong-horse", wantErr: domain.ErrInvalidCredentials},
		{name: "not configured", hash: "", password: "anything", wantErr: domain.ErrNotConfigured},
		{name: "token failure", hash: hash, password: "correct-horse", jwtErr: errors.New("sign failed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sessions := newMockSessions()
			gen := &mockJWTGenerator{}
			if tt.jwtErr != nil {
				gen.GenerateTokenFunc = func(string, string) (string, time.Time, error) {
					return "", time.Time{}, tt.jwtErr
				}
			}
			uc := NewAuthUsecase(tt.hash, sessions, gen)

			res, err := uc.Login(context.Background(), tt.password, ClientMeta{UserAgent: "ua", IPAddress: "1.2.3.4"})

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, sessions.sessions)
			case tt.jwtErr != nil:
				assert.ErrorIs(t, err, tt.jwtErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "mock-jwt-token", res.Token)
				require.Contains(t, sessions.sessions, gen.LastSessionID)
				s := sessions.sessions[gen.LastSessionID]
				assert.Equal(t, OperatorSubject, s.Subject)
				assert.Equal(t, "1.2.3.4", s.IPAddress)
				assert.Equal(t, res.ExpiresAt, s.ExpiresAt)
			}
		})
	}
}

func TestAuthUsecase_LogoutAndIsActive(t *testing.T) {
	t.Parallel()

	sessions := newMockSessions()
	gen := &mockJWTGenerator{}
	uc := NewAuthUsecase(mustHash(t, "correct-horse"), sessions, gen)
	ctx := context.Background()

	_, err := uc.Login(ctx, "correct-horse", ClientMeta{})
	require.NoError(t, err)
	sid := gen.LastSessionID

	active, err := uc.IsActive(ctx, sid)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, uc.Logout(ctx, sid))
	active, err = uc.IsActive(ctx, sid)
	require.NoError(t, err)
	assert.False(t, active)

	// 未知のセッションのログアウトは成功扱い
	assert.NoError(t, uc.Logout(ctx, "unknown"))
	active, err = uc.IsActive(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestAuthUsecase_IsActive_Expired(t *testing.T) {
	t.Parallel()

	sessions := newMockSessions()
	sessions.sessions["s"] = &entity.Session{ID: "s", ExpiresAt: time.Now().Add(-time.Minute)}
	uc := NewAuthUsecase("", sessions, &mockJWTGenerator{})

	active, err := uc.IsActive(context.Background(), "s")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestAuthUsecase_IsActive_StoreError(t *testing.T) {
	t.Parallel()

	sessions := newMockSessions()
	sessions.FindErr = errors.New("db down")
	uc := NewAuthUsecase("", sessions, &mockJWTGenerator{})

	_, err := uc.IsActive(context.Background(), "s")
	assert.Error(t, err)
}

func TestAuthUsecase_PurgeExpired(t *testing.T) {
	t.Parallel()

	sessions := newMockSessions()
	sessions.DeleteExpiredN = 3
	uc := NewAuthUsecase("", sessions, &mockJWTGenerator{})

	assert.NoError(t, uc.PurgeExpired(context.Background()))
}
