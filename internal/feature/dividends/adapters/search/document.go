package search

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"dividend_dashboard/internal/feature/dividends/domain"
	"dividend_dashboard/internal/feature/dividends/domain/entity"
)

// toDividend maps a document _source to a Dividend. Fields other than
// ticker, date and amount are kept in Extra as decoded.
func toDividend(id string, source json.RawMessage) (entity.Dividend, error) {
	dec := json.NewDecoder(bytes.NewReader(source))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return entity.Dividend{}, fmt.Errorf("%w: document %s: %v", domain.ErrMalformedDocument, id, err)
	}

	ticker, ok := doc["ticker"].(string)
	if !ok || ticker == "" {
		return entity.Dividend{}, fmt.Errorf("%w: document %s: missing ticker", domain.ErrMalformedDocument, id)
	}

	// 日付をパース
	var d entity.Dividend
	d.Ticker = ticker
	switch v := doc["date"].(type) {
	case string:
		t, err := entity.ParseDate(v)
		if err != nil {
			return entity.Dividend{}, fmt.Errorf("%w: document %s: %v", domain.ErrMalformedDocument, id, err)
		}
		d.Date = t
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return entity.Dividend{}, fmt.Errorf("%w: document %s: date %q: %v", domain.ErrMalformedDocument, id, v, err)
		}
		d.Date = entity.DateFromEpochMillis(ms)
	default:
		return entity.Dividend{}, fmt.Errorf("%w: document %s: missing date", domain.ErrMalformedDocument, id)
	}

	// 金額をパース
	var raw string
	switch v := doc["amount"].(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = v
	default:
		return entity.Dividend{}, fmt.Errorf("%w: document %s: missing amount", domain.ErrMalformedDocument, id)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return entity.Dividend{}, fmt.Errorf("%w: document %s: amount %q: %v", domain.ErrMalformedDocument, id, raw, err)
	}
	d.Amount = amount

	delete(doc, "ticker")
	delete(doc, "date")
	delete(doc, "amount")
	if len(doc) > 0 {
		d.Extra = doc
	}
	return d, nil
}
