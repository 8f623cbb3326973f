package adapters

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trade_advisor/internal/feature/analysis/domain/entity"
	"trade_advisor/internal/feature/analysis/usecase"
	recommendation "trade_advisor/internal/feature/recommendation/domain/entity"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&AnalysisRecordModel{}), "failed to migrate table")
	return db
}

func record(i int, ticker string) entity.AnalysisRecord {
	return entity.AnalysisRecord{
		ID:             fmt.Sprintf("rec-%d", i),
		Ticker:         ticker,
		Recommendation: recommendation.TradeRecommendation{Action: recommendation.ActionNoTrade, Confidence: float64(50 + i)},
		CreatedAt:      time.Date(2025, 1, 15, 10, i, 0, 0, time.UTC),
	}
}

// TestRecordRepository_CapsHistory は上限を超えた古い履歴が削除されることを検証します。
func TestRecordRepository_CapsHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewRecordRepository(db, 3)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, repo.Save(ctx, record(i, "XAUUSD")))
	}

	var count int64
	require.NoError(t, db.Model(&AnalysisRecordModel{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	list, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "rec-4", list[0].ID)
	assert.Equal(t, "rec-2", list[2].ID)
	assert.Equal(t, 54.0, list[0].Recommendation.Confidence, "JSONで往復できること")
}

func TestRecordRepository_LatestAndFilter(t *testing.T) {
	t.Parallel()

	repo := NewRecordRepository(setupTestDB(t), 0)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, record(1, "XAUUSD")))
	require.NoError(t, repo.Save(ctx, record(2, "EURUSD")))
	require.NoError(t, repo.Save(ctx, record(3, "XAUUSD")))

	latest, err := repo.Latest(ctx, "XAUUSD")
	require.NoError(t, err)
	assert.Equal(t, "rec-3", latest.ID)

	list, err := repo.List(ctx, "EURUSD", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "rec-2", list[0].ID)

	_, err = repo.Latest(ctx, "BTCUSD")
	assert.ErrorIs(t, err, usecase.ErrRecordNotFound)
}
