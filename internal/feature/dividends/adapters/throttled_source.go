package adapters

import (
	"context"
	"fmt"

	"dividend_dashboard/internal/feature/dividends/domain/entity"
	"dividend_dashboard/internal/feature/dividends/usecase"
)

// Limiter throttles calls to the store.
type Limiter interface {
	Wait(ctx context.Context) error
}

// throttledSource は取得回数を制限するDividendSourceのデコレーターです。
// 取得失敗はキャッシュされないため、ストア障害中のリクエスト集中からストアを守ります。
type throttledSource struct {
	inner   usecase.DividendSource
	limiter Limiter
}

var _ usecase.DividendSource = (*throttledSource)(nil)

// NewThrottledSource wraps inner so that each fetch first waits on limiter.
func NewThrottledSource(inner usecase.DividendSource, limiter Limiter) *throttledSource {
	return &throttledSource{inner: inner, limiter: limiter}
}

// FetchDividends waits for a fetch slot, then delegates to the inner source.
func (s *throttledSource) FetchDividends(ctx context.Context) ([]entity.Dividend, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for fetch slot: %w", err)
	}
	return s.inner.FetchDividends(ctx)
}
