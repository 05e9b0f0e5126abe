// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"dividend_dashboard/internal/config"
	"dividend_dashboard/internal/feature/dividends/adapters"
	"dividend_dashboard/internal/feature/dividends/adapters/search"
	"dividend_dashboard/internal/feature/dividends/usecase"
	"dividend_dashboard/internal/platform/cache"
	infradb "dividend_dashboard/internal/platform/db"
	infraes "dividend_dashboard/internal/platform/elasticsearch"
	"dividend_dashboard/internal/platform/http/handler"
	"dividend_dashboard/internal/platform/scheduler"
	"dividend_dashboard/internal/shared/ratelimiter"
)

// Source is a configured dividend backend together with its readiness probe.
type Source struct {
	usecase.DividendSource
	// Check probes the backend for /readyz.
	Check handler.Checker
	// Name identifies the dataset, used in shared cache keys.
	Name  string
	close func() error
}

// Close releases the backend connection, if any.
func (s *Source) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// NewDividendSource creates the DividendSource selected by cfg.Source.
// A positive cfg.Store.FetchLimit throttles it to that many fetches per minute.
func NewDividendSource(cfg *config.Config) (*Source, error) {
	var (
		src *Source
		err error
	)
	switch cfg.Source {
	case config.SourceElasticsearch:
		es, esErr := infraes.NewClient(cfg.Store)
		if esErr != nil {
			return nil, esErr
		}
		src = NewSearchSource(es, cfg.Store.Index)
	case config.SourceSQL:
		db, dbErr := infradb.OpenDB(cfg.Database)
		if dbErr != nil {
			return nil, dbErr
		}
		if src, err = NewSQLSource(db); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported dividend source %q", cfg.Source)
	}

	if cfg.Store.FetchLimit > 0 {
		src.DividendSource = adapters.NewThrottledSource(src.DividendSource,
			ratelimiter.NewRateLimiter(cfg.Store.FetchLimit, time.Minute))
	}
	return src, nil
}

// NewSearchSource wraps an Elasticsearch client.
func NewSearchSource(es *elasticsearch.Client, index string) *Source {
	s := search.NewDividendSearch(es, index)
	if index == "" {
		index = search.DefaultIndex
	}
	return &Source{
		DividendSource: s,
		Name:           index,
		Check: func(ctx context.Context) error {
			res, err := es.Ping(es.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.IsError() {
				return fmt.Errorf("elasticsearch ping: %s", res.Status())
			}
			return nil
		},
	}
}

// NewSQLSource wraps a gorm connection.
func NewSQLSource(db *gorm.DB) (*Source, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	return &Source{
		DividendSource: adapters.NewDividendRepository(db),
		Name:           adapters.DividendModel{}.TableName(),
		Check:          sqlDB.PingContext,
		close:          sqlDB.Close,
	}, nil
}

// NewCachedSource decorates src with the shared Redis cache.
// If Redis is not available, it returns src unchanged and no SharedCache.
func NewCachedSource(rdb *redis.Client, cfg config.RedisConfig, src *Source) (usecase.DividendSource, scheduler.SharedCache) {
	if rdb == nil {
		return src, nil
	}
	c := cache.NewCachingDividendRepository(rdb, cfg.TTL, src, cfg.Namespace, src.Name)
	return c, c
}

// NewChecks collects the readiness probes of the configured dependencies.
func NewChecks(src *Source, rdb *redis.Client) map[string]handler.Checker {
	checks := map[string]handler.Checker{"store": src.Check}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}
