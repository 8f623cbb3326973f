// Package ratelimiter は外部APIのクォータを守るための固定ウィンドウ型レートリミッターを提供します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	// Wait は上限に達していればウィンドウのリセットまで待機します。
	// ctx がキャンセルされた場合はそのエラーを返します。
	Wait(ctx context.Context) error
}

// RateLimiter は interval ごとに limit 回まで呼び出しを許可します。
type RateLimiter struct {
	mu        sync.Mutex
	name      string
	limit     int           // ウィンドウあたりの上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
	now       func() time.Time
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit <= 0 の場合は制限なしとして動作します。
func NewRateLimiter(name string, limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		name:      name,
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// Wait はレートリミットの上限に達しているかを確認し、必要であれば待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limit <= 0 {
		return nil
	}

	rl.mu.Lock()
	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}
	rl.count++
	if rl.count <= rl.limit {
		rl.mu.Unlock()
		return nil
	}

	sleep := rl.interval - now.Sub(rl.lastReset)
	// 次のウィンドウの1件目として予約しておく
	rl.count = 1
	rl.lastReset = now.Add(sleep)
	rl.mu.Unlock()

	if sleep <= 0 {
		return nil
	}
	slog.Info("rate limit reached, waiting", "limiter", rl.name, "limit", rl.limit, "sleep", sleep)

	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
