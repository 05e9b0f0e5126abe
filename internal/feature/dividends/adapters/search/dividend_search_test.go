package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dividend_dashboard/internal/feature/dividends/domain"
)

// newTestSearch は指定したハンドラーを持つテストサーバーに接続したDividendSearchを生成します。
func newTestSearch(t *testing.T, index string, h http.HandlerFunc) *DividendSearch {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The client refuses to talk to servers that do not identify as Elasticsearch.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(server.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{server.URL},
		DisableRetry: true,
	})
	require.NoError(t, err)

	return NewDividendSearch(es, index)
}

func TestNewDividendSearch_DefaultIndex(t *testing.T) {
	t.Parallel()

	s := NewDividendSearch(nil, "")

	assert.Equal(t, DefaultIndex, s.index)
	assert.Equal(t, 1000, s.size)
}

func TestDividendSearch_FetchDividends_Success(t *testing.T) {
	t.Parallel()

	s := newTestSearch(t, "dividends", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dividends/_search", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"size":1000,"query":{"match_all":{}}}`, string(body))

		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 3, "relation": "eq"},
				"hits": [
					{"_index": "dividends", "_id": "1", "_source": {"ticker": "AAPL", "date": "2023-01-01", "amount": 0.24, "currency": "USD"}},
					{"_index": "dividends", "_id": "2", "_source": {"ticker": "AAPL", "date": "2023-04-01T00:00:00Z", "amount": "0.25"}},
					{"_index": "dividends", "_id": "3", "_source": {"ticker": "MSFT", "date": 1675209600000, "amount": 0.5}}
				]
			}
		}`))
	})

	out, err := s.FetchDividends(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "AAPL", out[0].Ticker)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), out[0].Date)
	assert.True(t, out[0].Amount.Equal(decimal.RequireFromString("0.24")))
	assert.Equal(t, "USD", out[0].Extra["currency"])

	assert.True(t, out[1].Amount.Equal(decimal.RequireFromString("0.25")))
	assert.Nil(t, out[1].Extra)

	assert.Equal(t, "MSFT", out[2].Ticker)
	assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), out[2].Date)
}

func TestDividendSearch_FetchDividends_Empty(t *testing.T) {
	t.Parallel()

	s := newTestSearch(t, "dividends", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":0},"hits":[]}}`))
	})

	out, err := s.FetchDividends(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDividendSearch_FetchDividends_IndexNotFound(t *testing.T) {
	t.Parallel()

	s := newTestSearch(t, "missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception","reason":"no such index [missing]"},"status":404}`))
	})

	out, err := s.FetchDividends(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDividendSearch_FetchDividends_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"bad request", http.StatusBadRequest, `{"error":{"type":"parsing_exception","reason":"bad query"},"status":400}`},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"type":"security_exception","reason":"missing credentials"},"status":401}`},
		{"internal server error", http.StatusInternalServerError, `not json`},
		{"service unavailable", http.StatusServiceUnavailable, `{"error":{"type":"cluster_block_exception","reason":"blocked"},"status":503}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestSearch(t, "dividends", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := s.FetchDividends(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "elasticsearch http")
		})
	}
}

func TestDividendSearch_FetchDividends_Unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}, DisableRetry: true})
	require.NoError(t, err)

	_, err = NewDividendSearch(es, "dividends").FetchDividends(context.Background())
	assert.Error(t, err)
}

func TestDividendSearch_FetchDividends_MalformedDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{"missing ticker", `{"date":"2023-01-01","amount":1}`},
		{"missing date", `{"ticker":"AAPL","amount":1}`},
		{"unparsable date", `{"ticker":"AAPL","date":"first of january","amount":1}`},
		{"missing amount", `{"ticker":"AAPL","date":"2023-01-01"}`},
		{"unparsable amount", `{"ticker":"AAPL","date":"2023-01-01","amount":"a lot"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestSearch(t, "dividends", func(w http.ResponseWriter, r *http.Request) {
				resp := map[string]any{
					"hits": map[string]any{
						"hits": []any{map[string]any{"_id": "x", "_source": json.RawMessage(tt.source)}},
					},
				}
				_ = json.NewEncoder(w).Encode(resp)
			})

			_, err := s.FetchDividends(context.Background())
			assert.ErrorIs(t, err, domain.ErrMalformedDocument)
		})
	}
}
