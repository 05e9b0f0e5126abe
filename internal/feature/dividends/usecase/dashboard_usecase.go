// Package usecase implements the business logic of the dividend dashboard.
package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dividend_dashboard/internal/feature/dividends/domain/entity"
)

// FetchSize caps the number of documents read from the store in one fetch.
const FetchSize = 1000

// DividendSource abstracts the read side of the dividend store.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type DividendSource interface {
	// FetchDividends reads up to FetchSize dividend records.
	FetchDividends(ctx context.Context) ([]entity.Dividend, error)
}

// DatasetCache memoizes the fetched dataset until it is invalidated.
type DatasetCache interface {
	GetOrCompute(ctx context.Context, compute func(context.Context) ([]entity.Dividend, error)) ([]entity.Dividend, error)
	Invalidate()
}

// DashboardUsecase serves dashboard views over a memoized dividend dataset.
type DashboardUsecase struct {
	source DividendSource
	cache  DatasetCache
}

// NewDashboardUsecase creates a DashboardUsecase reading from source through cache.
func NewDashboardUsecase(source DividendSource, cache DatasetCache) *DashboardUsecase {
	return &DashboardUsecase{source: source, cache: cache}
}

// Dataset returns the cached dataset sorted by date descending, fetching it
// from the source on the first call of a cache lifetime.
func (u *DashboardUsecase) Dataset(ctx context.Context) ([]entity.Dividend, error) {
	return u.cache.GetOrCompute(ctx, u.load)
}

// Dashboard renders the view for sel over the cached dataset.
func (u *DashboardUsecase) Dashboard(ctx context.Context, sel Selection) (View, error) {
	ds, err := u.Dataset(ctx)
	if err != nil {
		return View{}, err
	}
	return Render(ds, sel)
}

// Refresh drops the cached dataset; the next request fetches it again.
func (u *DashboardUsecase) Refresh() {
	u.cache.Invalidate()
	zap.L().Info("dividend dataset invalidated")
}

func (u *DashboardUsecase) load(ctx context.Context) ([]entity.Dividend, error) {
	ds, err := u.source.FetchDividends(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch dividends: %w", err)
	}
	zap.L().Info("dividend dataset loaded", zap.Int("records", len(ds)))
	return SortByDateDesc(ds), nil
}
