// Package dto defines the JSON payloads of the dividends endpoints.
package dto

// DashboardResponse is the JSON rendering of a dashboard view.
type DashboardResponse struct {
	Empty   bool           `json:"empty"`
	Warning string         `json:"warning,omitempty"`
	Tickers []string       `json:"tickers"`
	Ticker  string         `json:"ticker,omitempty"`
	MinDate string         `json:"min_date,omitempty"` // YYYY-MM-DD
	MaxDate string         `json:"max_date,omitempty"`
	Start   string         `json:"start,omitempty"`
	End     string         `json:"end,omitempty"`
	Chart   *ChartResponse `json:"chart,omitempty"`
	Table   *TableResponse `json:"table,omitempty"`
}

// ChartResponse is a bar chart: one bar per (x[i], y[i]).
type ChartResponse struct {
	Title string    `json:"title"`
	X     []string  `json:"x"` // 日付
	Y     []float64 `json:"y"` // 配当額
}

// TableResponse holds the table cells row by row.
type TableResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ErrorResponse is returned with every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}
