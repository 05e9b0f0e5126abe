// Package dto defines data transfer objects for Elasticsearch search responses.
package dto

import "encoding/json"

// SearchResponse is the subset of the _search response body the adapter reads.
type SearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"` // 一致件数
		} `json:"total"`
		Hits []Hit `json:"hits"`
	} `json:"hits"`
}

// Hit is one matching document.
type Hit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"` // 元ドキュメント
}

// ErrorResponse is the body returned with a non-2xx status.
type ErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}
