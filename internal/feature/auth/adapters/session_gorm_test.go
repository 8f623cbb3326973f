package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trade_advisor/internal/feature/auth/domain"
	"trade_advisor/internal/feature/auth/domain/entity"
)

// setupSessionTestDB はセッションテスト用のインメモリSQLiteを準備します。
func setupSessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&SessionModel{}), "failed to migrate table")
	return db
}

func newSession(id string, expiresAt time.Time) *entity.Session {
	return &entity.Session{
		ID:        id,
		Subject:   "operator",
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
}

func TestSessionGorm_CreateAndFind(t *testing.T) {
	t.Parallel()

	repo := NewSessionGorm(setupSessionTestDB(t))
	ctx := context.Background()

	s := newSession("sess-1", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, s))

	found, err := repo.FindByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "operator", found.Subject)
	assert.Equal(t, "test-agent", found.UserAgent)
	assert.Nil(t, found.RevokedAt)
}

func TestSessionGorm_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewSessionGorm(setupSessionTestDB(t))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionGorm_Revoke(t *testing.T) {
	t.Parallel()

	repo := NewSessionGorm(setupSessionTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newSession("sess-1", time.Now().Add(time.Hour))))

	at := time.Now()
	require.NoError(t, repo.Revoke(ctx, "sess-1", at))

	found, err := repo.FindByID(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, found.RevokedAt)
	assert.False(t, found.IsValid(time.Now()))

	// 2回目は対象なし
	assert.ErrorIs(t, repo.Revoke(ctx, "sess-1", at), domain.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Revoke(ctx, "missing", at), domain.ErrSessionNotFound)
}

func TestSessionGorm_DeleteExpired(t *testing.T) {
	t.Parallel()

	repo := NewSessionGorm(setupSessionTestDB(t))
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, newSession("old-1", now.Add(-2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newSession("old-2", now.Add(-time.Minute))))
	require.NoError(t, repo.Create(ctx, newSession("live", now.Add(time.Hour))))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.FindByID(ctx, "live")
	assert.NoError(t, err)
}
