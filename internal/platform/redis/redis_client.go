// Package redis connects to the optional shared dataset cache.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 3 * time.Second

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.L().Error("Redis connection failed", zap.String("address", addr), zap.Error(err))
		_ = rdb.Close()
		return nil, err
	}

	zap.L().Info("Redis connection successful", zap.String("address", addr))
	return rdb, nil
}
