// Package entity defines the domain models for the dividends feature.
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Dividend represents one payout event stored in the dividend index.
type Dividend struct {
	Ticker string          `json:"ticker"` // Security symbol (e.g., "AAPL", "ITSA4")
	Date   time.Time       `json:"date"`   // Date of the dividend event
	Amount decimal.Decimal `json:"amount"` // Payout per share

	// Extra holds the remaining source fields untouched. They are shown in the
	// table but never interpreted.
	Extra map[string]any `json:"extra,omitempty"`
}

// Day returns the calendar day of the dividend as midnight UTC.
func (d Dividend) Day() time.Time {
	return TruncateDay(d.Date)
}

// TruncateDay drops the clock part of t, keeping its calendar day.
func TruncateDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
}

// ParseDate parses a dividend date as it appears in a source document.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unsupported format", s)
}

// DateFromEpochMillis converts the numeric date encoding used by search indexes.
func DateFromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
