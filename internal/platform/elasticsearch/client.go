// Package elasticsearch builds the document store client.
package elasticsearch

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"dividend_dashboard/internal/config"
	infrahttp "dividend_dashboard/internal/platform/http"
)

// NewClient creates an Elasticsearch client for cfg.URL.
// No connection is made here; the first search surfaces connectivity errors.
func NewClient(cfg config.StoreConfig) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Transport: infrahttp.NewTransport(cfg.Timeout),
		// No retries: a failed fetch is reported as is.
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	zap.L().Info("elasticsearch client configured", zap.String("url", cfg.URL))
	return es, nil
}
