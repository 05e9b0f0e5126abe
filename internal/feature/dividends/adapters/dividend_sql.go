// Package adapters はdividendsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dividend_dashboard/internal/feature/dividends/domain/entity"
	"dividend_dashboard/internal/feature/dividends/usecase"
)

// dividendSQL はリレーショナルDBに複製された配当テーブルを読むDividendSource実装です。
type dividendSQL struct {
	db *gorm.DB
}

var _ usecase.DividendSource = (*dividendSQL)(nil)

// NewDividendRepository は指定されたDB接続でdividendSQLの新しいインスタンスを生成します。
func NewDividendRepository(db *gorm.DB) *dividendSQL {
	return &dividendSQL{db: db}
}

// DividendModel is the row layout of the dividends table.
type DividendModel struct {
	ID       uint            `gorm:"primaryKey"`
	Ticker   string          `gorm:"size:32;not null;index"`
	Date     time.Time       `gorm:"not null;index"`
	Amount   decimal.Decimal `gorm:"type:numeric(18,6);not null"`
	Currency string          `gorm:"size:8"`
	Kind     string          `gorm:"size:32"` // e.g. "dividend", "jcp"
}

func (DividendModel) TableName() string {
	return "dividends"
}

// FetchDividends returns up to usecase.FetchSize rows, newest first.
func (r *dividendSQL) FetchDividends(ctx context.Context) ([]entity.Dividend, error) {
	var rows []DividendModel
	if err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(usecase.FetchSize).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Dividend, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

func toEntity(m DividendModel) entity.Dividend {
	d := entity.Dividend{
		Ticker: m.Ticker,
		Date:   m.Date.UTC(),
		Amount: m.Amount,
	}
	extra := map[string]any{}
	if m.Currency != "" {
		extra["currency"] = m.Currency
	}
	if m.Kind != "" {
		extra["kind"] = m.Kind
	}
	if len(extra) > 0 {
		d.Extra = extra
	}
	return d
}
