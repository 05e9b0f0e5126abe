package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dividend_dashboard/internal/feature/dividends/domain/entity"
	"dividend_dashboard/internal/feature/dividends/usecase"
)

// CachingDividendRepository decorates a DividendSource with a shared Redis copy
// of the fetched dataset, so several dashboard replicas hit the store once
// per TTL instead of once each.
type CachingDividendRepository struct {
	inner     usecase.DividendSource
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	name      string
}

var _ usecase.DividendSource = (*CachingDividendRepository)(nil)

// NewCachingDividendRepository decorates a DividendSource with Redis caching.
// name identifies the dataset (typically the index name).
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "dividends".
func NewCachingDividendRepository(rdb *redis.Client, ttl time.Duration, inner usecase.DividendSource, namespace, name string) *CachingDividendRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "dividends"
	}
	return &CachingDividendRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		name:      name,
	}
}

// FetchDividends returns the dataset from Redis, falling back to the inner source.
func (c *CachingDividendRepository) FetchDividends(ctx context.Context) ([]entity.Dividend, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FetchDividends(ctx)
	}

	key := c.cacheKey()

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		// UseNumber keeps numeric passthrough fields exactly as the source sent them
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		var out []entity.Dividend
		if err := dec.Decode(&out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the store
	out, err := c.inner.FetchDividends(ctx)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			zap.L().Warn("failed to cache dividend dataset", zap.String("key", key), zap.Error(err))
		}
	}

	return out, nil
}

// Invalidate removes the shared copy of the dataset.
func (c *CachingDividendRepository) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.cacheKey()).Err()
}

// cacheKey generates the cache key of the dataset.
func (c *CachingDividendRepository) cacheKey() string {
	return fmt.Sprintf("%s:dataset:%s", c.namespace, safe(c.name))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
