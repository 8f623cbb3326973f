package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_advisor/internal/feature/auth/domain"
	"trade_advisor/internal/feature/auth/domain/entity"
)

// setupTestRedis はテスト用のminiredisを起動します。
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func createTestSession(id string, expiresIn time.Duration) *entity.Session {
	now := time.Now()
	return &entity.Session{
		ID:        id,
		Subject:   "operator",
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: now,
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestSessionRedis_CreateAndFind(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, createTestSession("s1", time.Hour)))
	assert.True(t, mr.Exists("session:s1"))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL("session:s1").Seconds(), 5)

	found, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "operator", found.Subject)
}

func TestSessionRedis_Create_Expired(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")

	err := repo.Create(context.Background(), createTestSession("s1", -time.Minute))
	assert.Error(t, err)
}

func TestSessionRedis_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRedis_FindByID_ExpiredByTTL(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, createTestSession("s1", time.Minute)))
	mr.FastForward(2 * time.Minute)

	_, err := repo.FindByID(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRedis_Revoke(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, createTestSession("s1", time.Hour)))
	require.NoError(t, repo.Revoke(ctx, "s1", time.Now()))

	found, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, found.IsRevoked())
	assert.Equal(t, revokedTTL, mr.TTL("session:s1"))

	assert.ErrorIs(t, repo.Revoke(ctx, "s1", time.Now()), domain.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Revoke(ctx, "missing", time.Now()), domain.ErrSessionNotFound)
}
