package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trade_advisor/internal/feature/candles/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&CandleModel{}), "failed to migrate table")
	return db
}

func candleAt(symbol, interval string, tm time.Time, close float64) entity.Candle {
	return entity.Candle{
		Symbol: symbol, Interval: interval, Time: tm,
		Open: close - 1, High: close + 2, Low: close - 2, Close: close, Volume: 1000,
	}
}

func TestCandleGorm_UpsertBatch(t *testing.T) {
	t.Parallel()

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		seed      []entity.Candle
		candles   []entity.Candle
		wantCount int64
		wantClose float64
	}{
		{
			name:      "insert multiple",
			candles:   []entity.Candle{candleAt("XAUUSD", "1h", baseTime, 2650), candleAt("XAUUSD", "1h", baseTime.Add(time.Hour), 2655)},
			wantCount: 2,
			wantClose: 2650,
		},
		{
			name:      "empty slice is a no-op",
			candles:   []entity.Candle{},
			wantCount: 0,
		},
		{
			name:      "upsert updates existing row",
			seed:      []entity.Candle{candleAt("XAUUSD", "1h", baseTime, 2650)},
			candles:   []entity.Candle{candleAt("XAUUSD", "1h", baseTime, 2700)},
			wantCount: 1,
			wantClose: 2700,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewCandleRepository(db)
			ctx := context.Background()

			require.NoError(t, repo.UpsertBatch(ctx, tt.seed))
			require.NoError(t, repo.UpsertBatch(ctx, tt.candles))

			var count int64
			db.Model(&CandleModel{}).Count(&count)
			assert.Equal(t, tt.wantCount, count)

			if tt.wantCount > 0 {
				var m CandleModel
				require.NoError(t, db.Where("time = ?", baseTime).First(&m).Error)
				assert.Equal(t, tt.wantClose, m.Close)
			}
		})
	}
}

func TestCandleGorm_Find(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewCandleRepository(db)
	ctx := context.Background()
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var cs []entity.Candle
	for i := range 5 {
		cs = append(cs, candleAt("EURUSD", "1h", baseTime.Add(time.Duration(i)*time.Hour), 1.08+float64(i)*0.001))
	}
	cs = append(cs, candleAt("EURUSD", "1day", baseTime, 1.07), candleAt("XAUUSD", "1h", baseTime, 2650))
	require.NoError(t, repo.UpsertBatch(ctx, cs))

	got, err := repo.Find(ctx, "EURUSD", "1h", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// 新しい順
	assert.True(t, got[0].Time.After(got[1].Time))
	assert.Equal(t, baseTime.Add(4*time.Hour), got[0].Time.UTC())
	for _, c := range got {
		assert.Equal(t, "EURUSD", c.Symbol)
		assert.Equal(t, "1h", c.Interval)
	}

	all, err := repo.Find(ctx, "EURUSD", "1h", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := repo.Find(ctx, "GBPUSD", "1h", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
