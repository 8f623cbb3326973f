// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/candles/usecase"
)

// cachedCandle はRedisに保存する形式です。銘柄と時間足はキーに含まれるため持ちません。
type cachedCandle struct {
	T time.Time `json:"t"`
	O float64   `json:"o"`
	H float64   `json:"h"`
	L float64   `json:"l"`
	C float64   `json:"c"`
	V float64   `json:"v"`
}

// CachingCandleRepository decorates a CandleRepository with Redis caching.
// TTL は固定値、または ttl=0 のとき時間足ごとの IntervalTTL に従います。
type CachingCandleRepository struct {
	inner      usecase.CandleRepository
	rdb        *redis.Client
	ttl        time.Duration
	namespace  string
	ingestHour int
	now        func() time.Time
}

var _ usecase.CandleRepository = (*CachingCandleRepository)(nil)

// NewCachingCandleRepository decorates a CandleRepository with Redis caching.
// ttl <= 0 の場合は時間足に応じたTTLを使います。namespace が空なら "candles" です。
func NewCachingCandleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CandleRepository, namespace string) *CachingCandleRepository {
	if namespace == "" {
		namespace = "candles"
	}
	return &CachingCandleRepository{
		inner:      inner,
		rdb:        rdb,
		ttl:        ttl,
		namespace:  namespace,
		ingestHour: 6,
		now:        time.Now,
	}
}

// WithIngestHour は日足TTLの基準となる取り込み時刻（UTC）を設定します。
func (c *CachingCandleRepository) WithIngestHour(hour int) *CachingCandleRepository {
	c.ingestHour = hour
	return c
}

// UpsertBatch inserts or updates candles and invalidates related cache entries.
func (c *CachingCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if err := c.inner.UpsertBatch(ctx, candles); err != nil {
		return err
	}
	if c.rdb == nil || len(candles) == 0 {
		return nil
	}

	// symbol+interval ごとに1回だけ無効化する
	seen := map[string]struct{}{}
	for _, cd := range candles {
		prefix := c.keyPrefix(cd.Symbol, cd.Interval)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		if err := c.deleteByPattern(ctx, prefix+"*"); err != nil {
			slog.Warn("candle cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
	return nil
}

// Find retrieves candles, checking cache first then falling back to the inner repository.
// 空の結果はキャッシュしません（プロバイダーからの取得を妨げないため）。
func (c *CachingCandleRepository) Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, interval, outputsize)
	}

	key := c.key(symbol, interval, outputsize)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var cached []cachedCandle
		if err := json.Unmarshal(b, &cached); err == nil {
			return fromCache(symbol, interval, cached), nil
		}
		slog.Warn("corrupted candle cache entry, deleting", "key", key)
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.Find(ctx, symbol, interval, outputsize)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	if b, err := json.Marshal(toCache(out)); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttlFor(interval)).Err(); err != nil {
			slog.Debug("candle cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

func (c *CachingCandleRepository) ttlFor(interval string) time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return IntervalTTL(interval, c.now(), c.ingestHour)
}

func toCache(cs []entity.Candle) []cachedCandle {
	out := make([]cachedCandle, 0, len(cs))
	for _, x := range cs {
		out = append(out, cachedCandle{T: x.Time, O: x.Open, H: x.High, L: x.Low, C: x.Close, V: x.Volume})
	}
	return out
}

func fromCache(symbol, interval string, cs []cachedCandle) []entity.Candle {
	out := make([]entity.Candle, 0, len(cs))
	for _, x := range cs {
		out = append(out, entity.Candle{
			Symbol: symbol, Interval: interval, Time: x.T,
			Open: x.O, High: x.H, Low: x.L, Close: x.C, Volume: x.V,
		})
	}
	return out
}

func (c *CachingCandleRepository) key(symbol, interval string, outputsize int) string {
	return fmt.Sprintf("%s%d", c.keyPrefix(symbol, interval), outputsize)
}

func (c *CachingCandleRepository) keyPrefix(symbol, interval string) string {
	return fmt.Sprintf("%s:%s:%s:", c.namespace, safe(symbol), safe(interval))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCandleRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	return strings.NewReplacer(" ", "_", ":", "_", "*", "_").Replace(s)
}
