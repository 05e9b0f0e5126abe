// Package search reads dividend documents from an Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"dividend_dashboard/internal/feature/dividends/adapters/search/dto"
	"dividend_dashboard/internal/feature/dividends/domain/entity"
	"dividend_dashboard/internal/feature/dividends/usecase"
)

// DefaultIndex is the index holding dividend documents.
const DefaultIndex = "dividends"

const indexNotFound = "index_not_found_exception"

// DividendSearch はElasticsearchのインデックスから配当データを取得するDividendSource実装です。
type DividendSearch struct {
	es    *elasticsearch.Client
	index string
	size  int
}

// DividendSearchがDividendSourceを実装していることをコンパイル時に検証します。
var _ usecase.DividendSource = (*DividendSearch)(nil)

// NewDividendSearch creates a DividendSearch over index. An empty index uses DefaultIndex.
func NewDividendSearch(es *elasticsearch.Client, index string) *DividendSearch {
	if index == "" {
		index = DefaultIndex
	}
	return &DividendSearch{es: es, index: index, size: usecase.FetchSize}
}

// FetchDividends runs a single match_all query capped at usecase.FetchSize hits
// and maps each hit's _source to a Dividend. A missing index yields no records.
func (s *DividendSearch) FetchDividends(ctx context.Context) ([]entity.Dividend, error) {
	body, err := json.Marshal(map[string]any{
		"size":  s.size,
		"query": map[string]any{"match_all": map[string]any{}},
	})
	if err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.index, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			zap.L().Warn("failed to close response body", zap.Error(err))
		}
	}()

	if res.IsError() {
		return s.handleError(res.StatusCode, res.Body)
	}

	var out dto.SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	dividends := make([]entity.Dividend, 0, len(out.Hits.Hits))
	for _, hit := range out.Hits.Hits {
		d, err := toDividend(hit.ID, hit.Source)
		if err != nil {
			return nil, err
		}
		dividends = append(dividends, d)
	}

	if out.Hits.Total.Value > len(dividends) {
		zap.L().Info("dividend index holds more documents than fetched",
			zap.String("index", s.index),
			zap.Int("total", out.Hits.Total.Value),
			zap.Int("fetched", len(dividends)))
	}
	return dividends, nil
}

func (s *DividendSearch) handleError(status int, body io.Reader) ([]entity.Dividend, error) {
	var e dto.ErrorResponse
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		return nil, fmt.Errorf("elasticsearch http %d", status)
	}
	if status == http.StatusNotFound && e.Error.Type == indexNotFound {
		zap.L().Warn("dividend index does not exist", zap.String("index", s.index))
		return []entity.Dividend{}, nil
	}
	return nil, fmt.Errorf("elasticsearch http %d: %s: %s", status, e.Error.Type, e.Error.Reason)
}
