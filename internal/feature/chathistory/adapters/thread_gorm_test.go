package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trade_advisor/internal/feature/chathistory/domain/entity"
	"trade_advisor/internal/feature/chathistory/usecase"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&ChatThreadModel{}), "failed to migrate table")
	return db
}

var t0 = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestThreadRepository_SaveOverwrites(t *testing.T) {
	t.Parallel()

	repo := NewThreadRepository(setupTestDB(t))
	ctx := context.Background()

	first := entity.Thread{
		Ticker:       "XAUUSD",
		Messages:     []entity.ChatMessage{{ID: "1", Role: entity.RoleUser, Content: "hello", Timestamp: t0}},
		LastActivity: t0,
	}
	require.NoError(t, repo.Save(ctx, first))

	second := first
	second.Messages = append(second.Messages, entity.ChatMessage{
		ID: "2", Role: entity.RoleAssistant, Content: "hi",
		Images:    []entity.Image{{MimeType: "image/png", Data: "iVBORw0K"}},
		Timestamp: t0.Add(time.Minute),
	})
	second.LastActivity = t0.Add(time.Minute)
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx, "XAUUSD")
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "hi", got.Messages[1].Content)
	assert.Equal(t, "image/png", got.Messages[1].Images[0].MimeType)
	assert.True(t, got.LastActivity.Equal(t0.Add(time.Minute)))
}

func TestThreadRepository_ListAndDelete(t *testing.T) {
	t.Parallel()

	repo := NewThreadRepository(setupTestDB(t))
	ctx := context.Background()

	for i, ticker := range []string{"EURUSD", "XAUUSD", "BTCUSD"} {
		require.NoError(t, repo.Save(ctx, entity.Thread{
			Ticker:       ticker,
			Messages:     []entity.ChatMessage{{ID: ticker, Role: entity.RoleUser, Content: ticker}},
			LastActivity: t0.Add(time.Duration(i) * time.Hour),
		}))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "BTCUSD", list[0].Ticker)

	require.NoError(t, repo.Delete(ctx, "BTCUSD"))
	_, err = repo.Get(ctx, "BTCUSD")
	assert.ErrorIs(t, err, usecase.ErrThreadNotFound)

	require.NoError(t, repo.DeleteAll(ctx))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
