package ratelimiter

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateLimiterは、ストアへの取得などの操作の頻度を制限します。
// 複数のゴルーチンから同時に使用できます。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // interval あたりの上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// Waitはレートリミットの上限に達しているかを確認し、必要であれば次の区間まで待機します。
// 待機中にctxが終了した場合はctx.Err()を返し、枠を消費しません。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count <= rl.limit {
		return nil
	}

	sleep := rl.interval - now.Sub(rl.lastReset)
	zap.L().Warn("rate limit hit, waiting", zap.Int("limit", rl.limit), zap.Duration("sleep", sleep))

	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		rl.count--
		return ctx.Err()
	case <-timer.C:
	}

	// リセット
	rl.count = 1
	rl.lastReset = time.Now()
	return nil
}
